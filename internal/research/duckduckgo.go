// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/learnbuddy/internal/httputil"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// duckduckgoAPIBase is the instant-answer endpoint. Declared as a var so
// tests can substitute an httptest server.
var duckduckgoAPIBase = "https://api.duckduckgo.com/"

const maxRelatedTopics = 5

// DuckDuckGo queries the instant-answer API.
type DuckDuckGo struct {
	fetch httputil.Fetcher
}

// NewDuckDuckGo creates the instant-answer source.
func NewDuckDuckGo(client *http.Client, cfg types.HTTPConfig) *DuckDuckGo {
	return &DuckDuckGo{fetch: fetcher(client, cfg, duckduckgoTimeout)}
}

// Name returns the source identifier.
func (s *DuckDuckGo) Name() string { return "duckduckgo" }

// Fetch maps AbstractText, Answer, Definition, Infobox.content and
// RelatedTopics into an InstantAnswer.
func (s *DuckDuckGo) Fetch(ctx context.Context, query string) (*types.InstantAnswer, error) {
	params := url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_html":       {"1"},
		"skip_disambig": {"1"},
	}

	var resp ddgResponse
	if err := s.fetch.GetJSON(ctx, duckduckgoAPIBase+"?"+params.Encode(), &resp); err != nil {
		return nil, classify(s.Name(), err)
	}

	ia := &types.InstantAnswer{
		Answer:         strings.TrimSpace(scalarText(resp.Answer)),
		Abstract:       strings.TrimSpace(resp.AbstractText),
		AbstractSource: strings.TrimSpace(resp.AbstractSource),
		Definition:     strings.TrimSpace(resp.Definition),
		Infobox:        infoboxPairs(resp.Infobox),
		RelatedTopics:  relatedTopics(resp.RelatedTopics),
	}
	if ia.Abstract == "" {
		ia.AbstractSource = ""
	}

	if ia.Answer == "" && ia.Abstract == "" && ia.Definition == "" &&
		len(ia.Infobox) == 0 && len(ia.RelatedTopics) == 0 {
		return nil, emptyResult(s.Name(), "no instant answer")
	}
	return ia, nil
}

// infoboxPairs decodes Infobox, which the API sends as "" when absent and
// as {"content": [...]} otherwise. Pairs with an empty label or value are
// dropped; nil is returned when none remain.
func infoboxPairs(raw json.RawMessage) []types.LabeledValue {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var box struct {
		Content []struct {
			Label string          `json:"label"`
			Value json.RawMessage `json:"value"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &box); err != nil {
		return nil
	}

	var pairs []types.LabeledValue
	for _, c := range box.Content {
		label := strings.TrimSpace(c.Label)
		value := strings.TrimSpace(scalarText(c.Value))
		if label == "" || value == "" {
			continue
		}
		pairs = append(pairs, types.LabeledValue{Label: label, Value: value})
	}
	return pairs
}

// scalarText renders a JSON string or number as text. Objects, arrays and
// null render as "".
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	case '{', '[', 'n':
		return ""
	default:
		var f float64
		if json.Unmarshal(raw, &f) == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return ""
}

// relatedTopics reduces each related-topic item to one string: the item
// text, or the group name for grouped topics.
func relatedTopics(items []ddgTopic) []string {
	var out []string
	for _, t := range items {
		if len(out) == maxRelatedTopics {
			break
		}
		text := strings.TrimSpace(t.Text)
		if text == "" {
			text = strings.TrimSpace(t.Name)
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

// DuckDuckGo instant-answer JSON structures.
type ddgResponse struct {
	AbstractText   string          `json:"AbstractText"`
	AbstractSource string          `json:"AbstractSource"`
	Answer         json.RawMessage `json:"Answer"`
	Definition     string          `json:"Definition"`
	Infobox        json.RawMessage `json:"Infobox"`
	RelatedTopics  []ddgTopic      `json:"RelatedTopics"`
}

type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Name     string     `json:"Name"`
	Topics   []ddgTopic `json:"Topics"`
}
