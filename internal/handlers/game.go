package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/white-rabbit/internal/game"
	"github.com/jwebster45206/white-rabbit/internal/logger"
	"github.com/jwebster45206/white-rabbit/pkg/narrative"
	"github.com/jwebster45206/white-rabbit/pkg/prompts"
	"github.com/jwebster45206/white-rabbit/pkg/state"
)

// GameResponse is returned by start, choose and state.
type GameResponse struct {
	Status           string                 `json:"status"`
	SessionID        uuid.UUID              `json:"session_id"`
	State            state.Status           `json:"state,omitempty"`
	NarrativeContext string                 `json:"narrative_context"`
	CurrentRound     *narrative.RoundRecord `json:"current_round,omitempty"`
	Score            int                    `json:"score"`
	Turns            int                    `json:"turns"`
	GameOver         bool                   `json:"game_over"`
	EndGameThreshold int                    `json:"end_game_threshold"`
	WinOrLoss        narrative.Result       `json:"win_or_loss,omitempty"`
}

// ChooseRequest is the body of POST /api/choose.
type ChooseRequest struct {
	ChoiceType string `json:"choice_type"`
	SessionID  string `json:"session_id,omitempty"`
}

type GameHandler struct {
	manager *game.Manager
	logger  *slog.Logger
}

func NewGameHandler(manager *game.Manager, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		manager: manager,
		logger:  logger,
	}
}

// ServeHTTP routes the game endpoints:
// GET  /api/start  - start or restart a game
// POST /api/choose - play one choice
// GET    /api/state  - read the current game
// DELETE /api/state  - end the session and discard its game
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	route := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/"), "/")
	switch {
	case route == "start" && r.Method == http.MethodGet:
		h.handleStart(w, r)
	case route == "choose" && r.Method == http.MethodPost:
		h.handleChoose(w, r)
	case route == "state" && r.Method == http.MethodGet:
		h.handleState(w, r)
	case route == "state" && r.Method == http.MethodDelete:
		h.handleEnd(w, r)
	case route == "start":
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
	case route == "state":
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
	case route == "choose":
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *GameHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r, "")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	if fresh, _ := strconv.ParseBool(r.URL.Query().Get("new_session")); fresh {
		id = uuid.New()
	}

	language := strings.TrimSpace(r.URL.Query().Get("language"))
	if language == "" {
		language = prompts.DefaultLanguage
	}
	if _, err := prompts.LanguageName(language); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	log := logger.WithSessionID(h.logger, id.String())
	gs, err := h.manager.Start(r.Context(), id, language)
	if err != nil {
		writeDomainError(w, r, log, err)
		return
	}

	w.Header().Set(SessionHeader, id.String())
	writeJSON(w, h.logger, http.StatusOK, h.stateResponse(gs))
}

func (h *GameHandler) handleChoose(w http.ResponseWriter, r *http.Request) {
	var req ChooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Invalid choose request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	id, err := sessionID(r, req.SessionID)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	log := logger.WithSessionID(h.logger, id.String())
	res, err := h.manager.Choose(r.Context(), id, req.ChoiceType)
	if err != nil {
		writeDomainError(w, r, log, err)
		return
	}

	resp := GameResponse{
		Status:           "success",
		SessionID:        id,
		NarrativeContext: res.NarrativeContext,
		Score:            res.Score,
		GameOver:         res.GameOver,
		EndGameThreshold: h.manager.Threshold(),
	}
	if res.GameOver {
		resp.WinOrLoss = res.Result
	} else {
		resp.CurrentRound = res.CurrentRound
	}
	w.Header().Set(SessionHeader, id.String())
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *GameHandler) handleState(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r, r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	gs, err := h.manager.State(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, logger.WithSessionID(h.logger, id.String()), err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.stateResponse(gs))
}

func (h *GameHandler) handleEnd(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r, r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.manager.End(r.Context(), id); err != nil {
		writeDomainError(w, r, logger.WithSessionID(h.logger, id.String()), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) stateResponse(gs *state.GameState) GameResponse {
	return GameResponse{
		Status:           "success",
		SessionID:        gs.ID,
		State:            gs.Status(),
		NarrativeContext: gs.NarrativeContext,
		CurrentRound:     gs.CurrentRound,
		Score:            gs.Score,
		Turns:            gs.Turns,
		GameOver:         gs.GameOver,
		EndGameThreshold: h.manager.Threshold(),
		WinOrLoss:        gs.Result,
	}
}

// sessionID reads the session key from the header, then from fallback. Requests
// without a key share the default session.
func sessionID(r *http.Request, fallback string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(SessionHeader))
	if raw == "" {
		raw = strings.TrimSpace(fallback)
	}
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid session ID format")
	}
	return id, nil
}
