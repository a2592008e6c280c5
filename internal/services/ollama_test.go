package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOllama struct {
	mu       sync.Mutex
	hasModel bool
	pulled   []string
	prompts  []string
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/api/show":
		if !f.hasModel {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"model not found"}`)
			return
		}
		_, _ = io.WriteString(w, `{"modelfile":"FROM llama3"}`)
	case "/api/pull":
		f.pulled = append(f.pulled, body["model"].(string))
		f.hasModel = true
		_, _ = io.WriteString(w, `{"status":"success"}`+"\n")
	case "/api/generate":
		f.prompts = append(f.prompts, body["prompt"].(string))
		_, _ = io.WriteString(w, `{"model":"llama3","response":"  SITUATION: Fog.\n","done":true}`+"\n")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestOllama(t *testing.T, fake *fakeOllama) *OllamaService {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service, err := NewOllamaService(srv.URL, "llama3", 5*time.Second, log)
	require.NoError(t, err)
	return service
}

func TestOllamaService_InitModelPullsMissingModel(t *testing.T) {
	fake := &fakeOllama{}
	service := newTestOllama(t, fake)

	require.NoError(t, service.InitModel(context.Background(), ""))
	assert.Equal(t, []string{"llama3"}, fake.pulled)

	require.NoError(t, service.InitModel(context.Background(), ""))
	assert.Len(t, fake.pulled, 1, "an available model is not pulled again")
}

func TestOllamaService_Complete(t *testing.T) {
	fake := &fakeOllama{hasModel: true}
	service := newTestOllama(t, fake)

	text, err := service.Complete(context.Background(), "Begin.")
	require.NoError(t, err)
	assert.Equal(t, "SITUATION: Fog.", text)
	assert.Equal(t, []string{"Begin."}, fake.prompts)
}

func TestNewOllamaService_InvalidURL(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewOllamaService("http://[::1", "llama3", time.Second, log)
	assert.Error(t, err)
}
