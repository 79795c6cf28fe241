// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/learnbuddy/internal/assistant"
	"github.com/pdiddy/learnbuddy/internal/intent"
	"github.com/pdiddy/learnbuddy/internal/logging"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// Researcher produces a formatted web context block for a query, or "" when
// nothing useful was found. *research.Bridge satisfies it.
type Researcher interface {
	Context(ctx context.Context, query string) string
}

// History persists conversation turns. *Store satisfies it.
type History interface {
	Append(ctx context.Context, session string, msg types.Message) error
	Recent(ctx context.Context, session string, limit int) ([]types.Message, error)
}

// Reply is the outcome of one chat turn.
type Reply struct {
	Text       string            `json:"text"`
	Intent     types.IntentFlags `json:"intent"`
	WebContext string            `json:"web_context,omitempty"`
}

// Service runs chat turns.
type Service struct {
	research  Researcher
	completer assistant.Completer
	history   History
	cfg       types.ChatConfig
	log       *logging.Logger
	now       func() time.Time
}

// NewService wires a chat service. research and history may be nil, in
// which case turns run without web lookups or without memory.
func NewService(r Researcher, c assistant.Completer, h History, cfg types.ChatConfig, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = types.DefaultHistoryTurns
	}
	if cfg.ResearchTimeout <= 0 {
		cfg.ResearchTimeout = types.DefaultResearchTimeout
	}
	return &Service{
		research:  r,
		completer: c,
		history:   h,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Reply answers message within session. Research failures never fail the
// turn; a completion failure does, and nothing is stored in that case.
func (s *Service) Reply(ctx context.Context, session, message, material string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, fmt.Errorf("empty message")
	}

	out := Reply{Intent: intent.Classify(message)}
	if out.Intent.NeedsLookup {
		out.WebContext = s.lookup(ctx, message)
	}

	var history []types.Message
	if s.history != nil && session != "" {
		h, err := s.history.Recent(ctx, session, s.cfg.HistoryTurns)
		if err != nil {
			s.log.Warn("loading history failed", "session", session, "error", err)
		} else {
			history = h
		}
	}

	prompt, err := assistant.BuildTurn(assistant.Turn{
		WebContext: out.WebContext,
		Material:   material,
		Message:    message,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("building prompt: %w", err)
	}

	system := s.cfg.SystemContext
	if system == "" {
		system = assistant.DefaultSystemPrompt
	}

	asked := s.now()
	text, err := s.completer.Complete(ctx, assistant.Request{
		System:  system,
		History: history,
		Prompt:  prompt,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("completing reply: %w", err)
	}
	out.Text = text

	if s.history != nil && session != "" {
		for _, m := range []types.Message{
			{Role: types.RoleUser, Text: message, CreatedAt: asked},
			{Role: types.RoleAssistant, Text: text, CreatedAt: s.now()},
		} {
			if err := s.history.Append(ctx, session, m); err != nil {
				s.log.Warn("saving history failed", "session", session, "error", err)
				break
			}
		}
	}

	s.log.Info("chat turn complete",
		"session", session,
		"lookup", out.Intent.NeedsLookup,
		"web_context", out.WebContext != "",
		"reply_chars", len(out.Text),
	)
	return out, nil
}

// lookup runs research under the configured timeout. A panic inside the
// researcher is logged and treated as no context.
func (s *Service) lookup(ctx context.Context, query string) (block string) {
	if s.research == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ResearchTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("research panicked", "query", query, "panic", r)
			block = ""
		}
	}()
	return s.research.Context(ctx, query)
}
