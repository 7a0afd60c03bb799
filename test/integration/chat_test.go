package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/personabot/internal/config"
	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/internal/service/chat"
	"github.com/sandevgo/personabot/internal/service/composer"
	"github.com/sandevgo/personabot/internal/service/history"
	"github.com/sandevgo/personabot/internal/service/persona"
	"github.com/sandevgo/personabot/internal/service/policy"
	"github.com/sandevgo/personabot/internal/storage/sqlite"
	"github.com/sandevgo/personabot/internal/transport/httpapi"
	"github.com/sandevgo/personabot/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator answers with a counter so every reply is distinct.
type scriptedGenerator struct {
	mu      sync.Mutex
	n       int
	prompts []string
}

func (g *scriptedGenerator) Complete(_ context.Context, prompt string, params core.GenerationParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	g.prompts = append(g.prompts, prompt)
	return " reply " + string(rune('a'+g.n-1)), nil
}

type stack struct {
	server   *httptest.Server
	registry *persona.Registry
	gen      *scriptedGenerator
	rt       test.Runtime
}

func newStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()
	rt := test.NewRuntime(t)

	registry := persona.NewRegistry(persona.NewFileSource(rt.PersonasPath, 10*time.Millisecond))
	require.NoError(t, registry.Load(ctx))

	block, err := policy.LoadFile(rt.PolicyPath)
	require.NoError(t, err)

	db, err := sqlite.NewDB(ctx, rt.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := history.NewGuard(sqlite.NewTurnsRepo(db), 1)
	comp := composer.New(registry, policy.NewProvider(block), store)
	gen := &scriptedGenerator{}
	svc := chat.NewService(comp, gen, store,
		&config.ComposerConfig{DefaultMaxHistoryTurns: 20, DefaultMaxTotalLength: 6000},
		&config.LLMConfig{MaxTokens: 100, Stop: []string{"Human:"}},
	)

	server := httptest.NewServer(httpapi.NewHandler(ctx, svc, registry))
	t.Cleanup(server.Close)

	return &stack{server: server, registry: registry, gen: gen, rt: rt}
}

func (s *stack) post(t *testing.T, path string, body map[string]any, out any) int {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(s.server.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type composed struct {
	Prompt           string `json:"prompt"`
	Truncated        bool   `json:"truncated"`
	TurnsIncluded    int    `json:"turns_included"`
	HistoryAvailable int    `json:"history_available"`
}

func TestChatConversationEndToEnd(t *testing.T) {
	s := newStack(t)

	for _, msg := range []string{"hello", "I feel lonely", "what should I do?"} {
		var res struct {
			Text string `json:"text"`
		}
		code := s.post(t, "/v1/chat", map[string]any{"user_id": "alice", "character_id": "love_guru", "message": msg}, &res)
		require.Equal(t, http.StatusOK, code)
		assert.True(t, strings.HasPrefix(res.Text, "reply "))
	}

	// The third prompt carried the first two turns in order.
	last := s.gen.prompts[2]
	assert.Less(t, strings.Index(last, "Human: hello"), strings.Index(last, "Human: I feel lonely"))
	assert.Contains(t, last, "Character: Aura")
	assert.True(t, strings.HasSuffix(last, "Human: what should I do?\n\nAssistant:"))

	var c composed
	require.Equal(t, http.StatusOK, s.post(t, "/v1/compose", map[string]any{
		"user_id": "alice", "character_id": "love_guru", "message": "next",
	}, &c))
	assert.Equal(t, 3, c.TurnsIncluded)
	assert.False(t, c.Truncated)

	// Same user, other character: isolated.
	require.Equal(t, http.StatusOK, s.post(t, "/v1/compose", map[string]any{
		"user_id": "alice", "character_id": "rhyme_bard", "message": "next",
	}, &c))
	assert.Equal(t, 0, c.TurnsIncluded)
	assert.NotContains(t, c.Prompt, "lonely")

	// Tight turn limit keeps the newest turns.
	require.Equal(t, http.StatusOK, s.post(t, "/v1/compose", map[string]any{
		"user_id": "alice", "character_id": "love_guru", "message": "next", "max_history_turns": 1,
	}, &c))
	assert.Equal(t, 1, c.TurnsIncluded)
	assert.Contains(t, c.Prompt, "what should I do?")
	assert.NotContains(t, c.Prompt, "Human: hello")
}

func TestPersonaHotReload(t *testing.T) {
	s := newStack(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.registry.Start(ctx) }()

	code := s.post(t, "/v1/compose", map[string]any{"user_id": "bob", "character_id": "night_owl", "message": "hi"}, nil)
	require.Equal(t, http.StatusNotFound, code)

	data, err := os.ReadFile(s.rt.PersonasPath)
	require.NoError(t, err)
	data = append(data, []byte("\n  - id: night_owl\n    name: Hoot\n")...)
	require.NoError(t, os.WriteFile(s.rt.PersonasPath, data, 0644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(s.rt.PersonasPath, future, future))

	assert.Eventually(t, func() bool {
		return s.post(t, "/v1/compose", map[string]any{"user_id": "bob", "character_id": "night_owl", "message": "hi"}, nil) == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	assert.NoError(t, s.registry.Shutdown(shutdownCtx))
}
