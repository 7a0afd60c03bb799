package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandevgo/personabot/internal/config"
	"github.com/sandevgo/personabot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompatible_Complete(t *testing.T) {
	var got completionRequest
	var auth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"text":" Roses are red."}]}`))
	}))
	defer ts.Close()

	p := NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:    ts.URL + "/",
		APIKey:     "secret",
		Model:      "bard-7b",
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
	})

	text, err := p.Complete(context.Background(), "System: rhyme\n\nHuman: hi\n\nAssistant:", core.GenerationParams{
		MaxTokens:   100,
		Temperature: 0.5,
		Stop:        []string{"Human:"},
	})
	require.NoError(t, err)

	assert.Equal(t, " Roses are red.", text)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "bard-7b", got.Model)
	assert.Equal(t, 100, got.MaxTokens)
	assert.Equal(t, []string{"Human:"}, got.Stop)
	assert.False(t, got.Echo)
	assert.Contains(t, got.Prompt, "Human: hi")
}

func TestOpenAICompatible_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{name: "http error", status: http.StatusServiceUnavailable, body: "loading model", errMsg: "http 503"},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`, errMsg: "empty choices"},
		{name: "bad json", status: http.StatusOK, body: `{`, errMsg: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			p := NewOpenAICompatible(OpenAICompatibleConfig{BaseURL: ts.URL})
			_, err := p.Complete(context.Background(), "x", core.GenerationParams{})
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestOpenAICompatible_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	p := NewOpenAICompatible(OpenAICompatibleConfig{BaseURL: ts.URL, Timeout: 50 * time.Millisecond})
	assert.Equal(t, 50*time.Millisecond, p.client.Timeout)

	_, err := p.Complete(context.Background(), "x", core.GenerationParams{})
	assert.Error(t, err)

	assert.Equal(t, defaultTimeout, NewOpenAICompatible(OpenAICompatibleConfig{BaseURL: ts.URL}).client.Timeout)
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, &config.LLMConfig{Provider: "llamacpp", BaseURL: "http://localhost:8080"})
	assert.NoError(t, err)

	_, err = NewProvider(ctx, &config.LLMConfig{Provider: "openai"})
	assert.ErrorContains(t, err, "LLM_API_KEY")

	p, err := NewProvider(ctx, &config.LLMConfig{Provider: "ollama", BaseURL: config.DefaultLLMBaseURL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, ollamaBaseURL, p.(*OpenAICompatible).baseURL)
	assert.Equal(t, 5*time.Second, p.(*OpenAICompatible).client.Timeout)

	_, err = NewProvider(ctx, &config.LLMConfig{Provider: "mystery"})
	assert.ErrorContains(t, err, "unknown llm provider")
}
