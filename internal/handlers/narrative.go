package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/white-rabbit/internal/engine"
	"github.com/jwebster45206/white-rabbit/pkg/narrative"
	"github.com/jwebster45206/white-rabbit/pkg/prompts"
)

// NarrativeRequest is the body of POST /api/narrative. Fields that do not belong
// to the requested stage are ignored.
type NarrativeRequest struct {
	Stage                    string  `json:"stage"`
	NarrativeContext         *string `json:"narrative_context,omitempty"`
	Action                   *string `json:"action,omitempty"`
	OutcomeValue             *int    `json:"outcome_value,omitempty"`
	ActionConfirmingSentence *string `json:"action_confirming_sentence,omitempty"`
	WinOrLoss                *string `json:"win_or_loss,omitempty"`
	Language                 string  `json:"language,omitempty"`
}

type NarrativeResponse struct {
	Status             string             `json:"status"`
	Stage              narrative.Stage    `json:"stage"`
	ConfirmingSentence string             `json:"confirming_sentence,omitempty"`
	Situation          string             `json:"situation"`
	Choices            []narrative.Choice `json:"choices,omitempty"`
}

// Generator runs a single stateless generation call.
type Generator interface {
	Generate(ctx context.Context, req engine.Request) (narrative.Record, error)
}

// NarrativeHandler exposes one generation call per request, without a session.
type NarrativeHandler struct {
	gen    Generator
	logger *slog.Logger
}

func NewNarrativeHandler(gen Generator, logger *slog.Logger) *NarrativeHandler {
	return &NarrativeHandler{
		gen:    gen,
		logger: logger,
	}
}

func (h *NarrativeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	var req NarrativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid narrative request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Language == "" {
		req.Language = prompts.DefaultLanguage
	}

	genReq, err := engine.NewRequest(req.Stage, engine.Params{
		NarrativeContext:         req.NarrativeContext,
		Action:                   req.Action,
		OutcomeValue:             req.OutcomeValue,
		ActionConfirmingSentence: req.ActionConfirmingSentence,
		WinOrLoss:                req.WinOrLoss,
		Language:                 req.Language,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	rec, err := h.gen.Generate(r.Context(), genReq)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	resp := NarrativeResponse{Status: "success", Stage: rec.Stage()}
	switch rec := rec.(type) {
	case *narrative.InitialRecord:
		resp.Situation = rec.Situation
		resp.Choices = rec.Choices
	case *narrative.RoundRecord:
		resp.ConfirmingSentence = rec.ConfirmingSentence
		resp.Situation = rec.Situation
		resp.Choices = rec.Choices
	case *narrative.FinalRecord:
		resp.ConfirmingSentence = rec.ConfirmingSentence
		resp.Situation = rec.Situation
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}
