package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/white-rabbit/internal/engine"
	"github.com/jwebster45206/white-rabbit/internal/game"
	"github.com/jwebster45206/white-rabbit/pkg/narrative"
	"github.com/jwebster45206/white-rabbit/pkg/prompts"
)

// SessionHeader carries the session key on requests and responses.
const SessionHeader = "X-Session-ID"

type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	var (
		stageErr    *narrative.InvalidStageError
		choiceErr   *narrative.InvalidChoiceError
		flagErr     *narrative.InvalidOutcomeFlagError
		missingErr  *engine.MissingFieldError
		notFoundErr *game.ChoiceNotFoundError
	)
	switch {
	case errors.Is(err, game.ErrTurnInProgress), errors.Is(err, game.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, prompts.ErrInvalidLanguage),
		errors.As(err, &stageErr),
		errors.As(err, &choiceErr),
		errors.As(err, &flagErr),
		errors.As(err, &missingErr),
		errors.As(err, &notFoundErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// writeDomainError logs err at a level matching its class and writes it to the client.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)

	var notFoundErr *game.ChoiceNotFoundError
	switch {
	case errors.As(err, &notFoundErr):
		// A well-formed round always offers both outcomes.
		logger.Error("Current round is missing the requested choice", "path", r.URL.Path, "error", err)
	case status >= http.StatusInternalServerError:
		logger.Error("Request failed", "path", r.URL.Path, "error", err)
	default:
		logger.Warn("Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, logger, status, err.Error())
}
