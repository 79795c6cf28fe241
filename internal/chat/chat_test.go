// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/learnbuddy/internal/assistant"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// --- test helpers ---

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type fakeCompleter struct {
	mu    sync.Mutex
	reqs  []assistant.Request
	reply string
	err   error
}

func (f *fakeCompleter) Complete(_ context.Context, r assistant.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, r)
	return f.reply, f.err
}

func (f *fakeCompleter) last(t *testing.T) assistant.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.reqs)
	return f.reqs[len(f.reqs)-1]
}

type fakeResearcher struct {
	block   string
	panics  bool
	queries []string
	ctxErr  bool
}

func (f *fakeResearcher) Context(ctx context.Context, query string) string {
	f.queries = append(f.queries, query)
	if f.panics {
		panic("boom")
	}
	if _, ok := ctx.Deadline(); !ok {
		f.ctxErr = true
	}
	return f.block
}

// --- store ---

func TestStoreAppendRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, text := range []string{"one", "two", "three", "four"} {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		require.NoError(t, s.Append(ctx, "s1", types.Message{Role: role, Text: text, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}
	require.NoError(t, s.Append(ctx, "s2", types.Message{Role: types.RoleUser, Text: "other"}))

	all, err := s.Recent(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "one", all[0].Text)
	assert.Equal(t, types.RoleAssistant, all[3].Role)
	assert.True(t, all[0].CreatedAt.Equal(base))

	last, err := s.Recent(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "three", last[0].Text)
	assert.Equal(t, "four", last[1].Text)

	none, err := s.Recent(ctx, "missing", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreRejectsBadInput(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.Append(ctx, "", types.Message{Role: types.RoleUser, Text: "x"}))
	assert.Error(t, s.Append(ctx, "s", types.Message{Role: "narrator", Text: "x"}))
}

func TestStoreNormalizesLegacyRoles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "s", types.Message{Role: "model", Text: "hi"}))
	msgs, err := s.Recent(ctx, "s", 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, types.RoleAssistant, msgs[0].Role)
}

func TestStoreSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Append(ctx, "old", types.Message{Role: types.RoleUser, Text: "a", CreatedAt: early}))
	require.NoError(t, s.Append(ctx, "new", types.Message{Role: types.RoleUser, Text: "b", CreatedAt: early.Add(time.Hour)}))
	require.NoError(t, s.Append(ctx, "new", types.Message{Role: types.RoleAssistant, Text: "c", CreatedAt: early.Add(2 * time.Hour)}))

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, 2, sessions[0].Messages)
	assert.True(t, sessions[0].UpdatedAt.Equal(early.Add(2*time.Hour)))
	assert.Equal(t, "old", sessions[1].ID)
	assert.Equal(t, 1, sessions[1].Messages)
}

func TestStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, "s", types.Message{Role: types.RoleUser, Text: "kept"}))
	require.NoError(t, s.Close())

	s, err = OpenStore(path)
	require.NoError(t, err)
	defer s.Close()
	msgs, err := s.Recent(ctx, "s", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "kept", msgs[0].Text)
}

// --- service ---

func TestReplyWithResearch(t *testing.T) {
	store := openTestStore(t)
	comp := &fakeCompleter{reply: "The current president is..."}
	res := &fakeResearcher{block: "\n=== CURRENT INFORMATION (Web Search Results) ===\n\nfacts\n"}
	svc := NewService(res, comp, store, types.ChatConfig{}, nil)

	out, err := svc.Reply(context.Background(), "s1", "Who is the current president?", "")
	require.NoError(t, err)

	assert.Equal(t, "The current president is...", out.Text)
	assert.True(t, out.Intent.NeedsLookup)
	assert.Equal(t, []string{"Who is the current president?"}, res.queries)
	assert.False(t, res.ctxErr, "research must run under a deadline")

	req := comp.last(t)
	assert.Equal(t, assistant.DefaultSystemPrompt, req.System)
	assert.Contains(t, req.Prompt, "=== CURRENT INFORMATION (Web Search Results) ===")
	assert.Contains(t, req.Prompt, "Who is the current president?")
	assert.Empty(t, req.History)

	msgs, err := store.Recent(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, types.Message{Role: types.RoleUser, Text: "Who is the current president?"}, types.Message{Role: msgs[0].Role, Text: msgs[0].Text})
	assert.Equal(t, types.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "The current president is...", msgs[1].Text)
}

func TestReplySkipsResearchForNonLookup(t *testing.T) {
	comp := &fakeCompleter{reply: "x = 2"}
	res := &fakeResearcher{block: "unused"}
	svc := NewService(res, comp, nil, types.ChatConfig{SystemContext: "tutor"}, nil)

	out, err := svc.Reply(context.Background(), "", "Solve 2x + 3 = 7 for x", "Algebra notes")
	require.NoError(t, err)

	assert.False(t, out.Intent.NeedsLookup)
	assert.Empty(t, res.queries)
	assert.Empty(t, out.WebContext)

	req := comp.last(t)
	assert.Equal(t, "tutor", req.System)
	assert.Equal(t, "STUDY MATERIAL CONTEXT:\nAlgebra notes\n\nSolve 2x + 3 = 7 for x", req.Prompt)
}

func TestReplySurvivesResearchPanic(t *testing.T) {
	comp := &fakeCompleter{reply: "ok"}
	svc := NewService(&fakeResearcher{panics: true}, comp, nil, types.ChatConfig{}, nil)

	out, err := svc.Reply(context.Background(), "", "What is the latest news?", "")
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Text)
	assert.Empty(t, out.WebContext)
	assert.Equal(t, "What is the latest news?", comp.last(t).Prompt)
}

func TestReplySendsRecentHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		require.NoError(t, store.Append(ctx, "s", types.Message{Role: role, Text: string(rune('a' + i))}))
	}

	comp := &fakeCompleter{reply: "r"}
	svc := NewService(nil, comp, store, types.ChatConfig{HistoryTurns: 4}, nil)

	_, err := svc.Reply(ctx, "s", "Solve 2x + 3 = 7 for x", "")
	require.NoError(t, err)

	hist := comp.last(t).History
	require.Len(t, hist, 4)
	assert.Equal(t, "c", hist[0].Text)
	assert.Equal(t, "f", hist[3].Text)

	msgs, err := store.Recent(ctx, "s", 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 8)
}

func TestReplyCompletionError(t *testing.T) {
	store := openTestStore(t)
	comp := &fakeCompleter{err: errors.New("upstream down")}
	svc := NewService(nil, comp, store, types.ChatConfig{}, nil)

	_, err := svc.Reply(context.Background(), "s", "Solve 2x + 3 = 7 for x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")

	msgs, err := store.Recent(context.Background(), "s", 0)
	require.NoError(t, err)
	assert.Empty(t, msgs, "failed turns are not stored")
}

func TestReplyEmptyMessage(t *testing.T) {
	svc := NewService(nil, &fakeCompleter{}, nil, types.ChatConfig{}, nil)
	_, err := svc.Reply(context.Background(), "s", "   ", "")
	assert.Error(t, err)
}
