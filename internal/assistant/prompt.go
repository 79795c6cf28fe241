// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"bytes"
	"strings"
	"text/template"
	"unicode/utf8"
)

// DefaultSystemPrompt is used when no system context is configured.
const DefaultSystemPrompt = `You are LearnBuddy, a friendly and helpful AI study assistant.

1. EDUCATIONAL CONTENT: Help students understand their study material deeply.
   - Break complex topics into simple explanations with headers and bullet points.
   - Give examples and analogies, and check understanding with a question when useful.
2. MATHEMATICS: Work through problems step by step in readable notation, pitched to the student's level.
3. CURRENT INFORMATION: When a web research block is provided, prefer it over prior knowledge for recent facts and say where the information came from.
4. INAPPROPRIATE CONTENT: Politely steer the conversation back to learning.

Keep a friendly, organized tone and leave a blank line between ideas.`

const (
	// MaxMaterialChars bounds the study material included in one turn.
	MaxMaterialChars = 2000

	// MaxHistoryChars bounds each prior message sent back to the model.
	MaxHistoryChars = 500
)

// turnTmpl renders the final user turn: the research block, the study
// material, then the question.
var turnTmpl = template.Must(template.New("turn").Parse(
	`{{if .WebContext}}{{.WebContext}}

{{end}}{{if .Material}}STUDY MATERIAL CONTEXT:
{{.Material}}

{{end}}{{.Message}}`))

// Turn is the input to BuildTurn.
type Turn struct {
	WebContext string
	Material   string
	Message    string
}

// BuildTurn renders the user turn sent to the model. Material longer than
// MaxMaterialChars is cut; an empty WebContext or Material is omitted.
func BuildTurn(t Turn) (string, error) {
	t.WebContext = strings.TrimSpace(t.WebContext)
	t.Material = cutRunes(strings.TrimSpace(t.Material), MaxMaterialChars)

	var buf bytes.Buffer
	if err := turnTmpl.Execute(&buf, t); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// cutRunes returns at most n runes of s.
func cutRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
