package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/white-rabbit/internal/handlers"
)

// apiClient talks to the game API on behalf of one session.
type apiClient struct {
	client    *http.Client
	baseURL   string
	sessionID uuid.UUID
	language  string
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// start begins a new game. The first call asks the server for a fresh session key.
func (c *apiClient) start() (*handlers.GameResponse, error) {
	url := fmt.Sprintf("%s/api/start?language=%s", c.baseURL, c.language)
	if c.sessionID == uuid.Nil {
		url += "&new_session=true"
	}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	gs, err := c.do(req, "start game")
	if err != nil {
		return nil, err
	}
	c.sessionID = gs.SessionID
	return gs, nil
}

func (c *apiClient) choose(choiceType string) (*handlers.GameResponse, error) {
	jsonData, err := json.Marshal(handlers.ChooseRequest{ChoiceType: choiceType})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/choose", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "choose")
}

// end discards the session on the server. It is a no-op before the first start.
func (c *apiClient) end() error {
	if c.sessionID == uuid.Nil {
		return nil
	}
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/api/state", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(handlers.SessionHeader, c.sessionID.String())
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to end session: API returned status %d", resp.StatusCode)
	}
	c.sessionID = uuid.Nil
	return nil
}

func (c *apiClient) do(req *http.Request, action string) (*handlers.GameResponse, error) {
	if c.sessionID != uuid.Nil {
		req.Header.Set(handlers.SessionHeader, c.sessionID.String())
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to %s: %s", action, errorResp.Error)
	}

	var gs handlers.GameResponse
	if err := json.Unmarshal(body, &gs); err != nil {
		return nil, fmt.Errorf("failed to parse game response: %w", err)
	}
	return &gs, nil
}
