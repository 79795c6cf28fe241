// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assistant sends a chat turn to a text-completion model and returns
// its reply.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/learnbuddy/internal/httputil"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// Request is one completion call: a system prompt, prior conversation, and
// the new user turn.
type Request struct {
	System  string
	History []types.Message
	Prompt  string
}

// Completer produces a reply for a Request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrNoAPIKey is returned when the client has no credentials.
var ErrNoAPIKey = errors.New("no API key configured (set chat.api_key or .secrets/anthropic-api-key)")

// APIError reports a non-200 response from the completion API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Claude API returned %d: %s", e.Status, e.Body)
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const anthropicVersion = "2023-06-01"

// Claude calls the Claude Messages API.
type Claude struct {
	APIKey     string
	Model      string
	MaxTokens  int
	MaxRetries int
	Timeout    time.Duration
	Client     *http.Client
}

// NewClaude creates a client from cfg, filling zero values from defaults.
func NewClaude(cfg types.AIConfig, client *http.Client) *Claude {
	c := &Claude{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		MaxTokens:  cfg.MaxTokens,
		MaxRetries: cfg.MaxRetries,
		Timeout:    cfg.Timeout,
		Client:     client,
	}
	if c.Model == "" {
		c.Model = types.DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = types.DefaultMaxTokens
	}
	return c
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends the request and returns the concatenated text blocks of
// the reply. Throttled responses are retried.
func (c *Claude) Complete(ctx context.Context, r Request) (string, error) {
	if c.APIKey == "" {
		return "", ErrNoAPIKey
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		System:    r.System,
		Messages:  conversation(r.History, r.Prompt),
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var parts []string
	for _, block := range cResp.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text content in Claude API response")
	}
	return strings.Join(parts, "\n"), nil
}

// conversation converts history plus the new prompt into API messages. The
// API expects the first message from the user and roles to alternate, so
// leading assistant turns are dropped and consecutive turns of one role are
// merged. Each history message is cut to MaxHistoryChars.
func conversation(history []types.Message, prompt string) []claudeMessage {
	var msgs []claudeMessage
	add := func(role types.Role, text string) {
		if text == "" {
			return
		}
		if len(msgs) == 0 && role != types.RoleUser {
			return
		}
		if n := len(msgs); n > 0 && msgs[n-1].Role == string(role) {
			msgs[n-1].Content += "\n\n" + text
			return
		}
		msgs = append(msgs, claudeMessage{Role: string(role), Content: text})
	}

	for _, m := range history {
		add(m.Role, cutRunes(strings.TrimSpace(m.Text), MaxHistoryChars))
	}
	add(types.RoleUser, prompt)
	return msgs
}
