package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/pkg/log"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, core.ErrPromptTooLarge):
		return http.StatusRequestEntityTooLarge, "prompt_too_large"
	case errors.Is(err, core.ErrGeneration):
		return http.StatusBadGateway, "generation_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, errType := statusFor(err)
	logger := log.FromCtx(r.Context())
	if code >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("type", errType).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("type", errType).Msg("request rejected")
	}

	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	httpError(w, code, errType, "%s", msg)
}
