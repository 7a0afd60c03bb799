package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/internal/service/chat"
)

const maxRequestBodySize = 1 << 20

type ChatService interface {
	Compose(ctx context.Context, req chat.Request) (core.ComposedPrompt, error)
	Reply(ctx context.Context, req chat.Request) (chat.Result, error)
}

type chatRequest struct {
	UserID          string   `json:"user_id"`
	CharacterID     string   `json:"character_id"`
	Message         string   `json:"message"`
	MaxHistoryTurns *int     `json:"max_history_turns,omitempty"`
	MaxTotalLength  *int     `json:"max_total_length,omitempty"`
	MaxTokens       int      `json:"max_tokens,omitempty"`
	Temperature     *float32 `json:"temperature,omitempty"`
}

func (r chatRequest) toService() chat.Request {
	return chat.Request{
		UserID:          r.UserID,
		CharacterID:     r.CharacterID,
		Message:         r.Message,
		MaxHistoryTurns: r.MaxHistoryTurns,
		MaxTotalLength:  r.MaxTotalLength,
		MaxTokens:       r.MaxTokens,
		Temperature:     r.Temperature,
	}
}

type chatResponse struct {
	Text             string `json:"text"`
	Truncated        bool   `json:"truncated"`
	Degraded         bool   `json:"degraded"`
	TurnsIncluded    int    `json:"turns_included"`
	HistoryAvailable int    `json:"history_available"`
}

type personaSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewHandler returns the HTTP API router.
func NewHandler(ctx context.Context, svc ChatService, personas core.PersonaLister) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestContext(ctx))
	r.Use(accessLog)

	r.Get("/health", handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/personas", handlePersonas(personas))
		r.Get("/personas/{id}", handlePersona(personas))
		r.Post("/compose", handleCompose(svc))
		r.Post("/chat", handleChat(svc))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handlePersonas(personas core.PersonaLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := personas.List()
		out := make([]personaSummary, 0, len(list))
		for _, p := range list {
			out = append(out, personaSummary{ID: p.CharacterID, Name: p.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handlePersona(personas core.PersonaLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := personas.Lookup(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleCompose(svc ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest(w, r)
		if !ok {
			return
		}

		res, err := svc.Compose(r.Context(), req.toService())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleChat(svc ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest(w, r)
		if !ok {
			return
		}

		res, err := svc.Reply(r.Context(), req.toService())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{
			Text:             res.Text,
			Truncated:        res.Prompt.Truncated,
			Degraded:         res.Prompt.Degraded,
			TurnsIncluded:    res.Prompt.TurnsIncluded,
			HistoryAvailable: res.Prompt.HistoryAvailable,
		})
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (chatRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	var req chatRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body: %v", err)
		return chatRequest{}, false
	}
	return req, true
}
