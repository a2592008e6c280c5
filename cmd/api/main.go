package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwebster45206/white-rabbit/internal/config"
	"github.com/jwebster45206/white-rabbit/internal/engine"
	"github.com/jwebster45206/white-rabbit/internal/game"
	"github.com/jwebster45206/white-rabbit/internal/handlers"
	"github.com/jwebster45206/white-rabbit/internal/logger"
	"github.com/jwebster45206/white-rabbit/internal/middleware"
	"github.com/jwebster45206/white-rabbit/internal/services"
	"github.com/jwebster45206/white-rabbit/internal/storage"
	"github.com/jwebster45206/white-rabbit/pkg/prompts"
)

// Models used when MODEL_NAME is not set.
var defaultModels = map[string]string{
	config.ProviderGemini:    services.DefaultGeminiModel,
	config.ProviderAnthropic: "claude-3-5-haiku-latest",
	config.ProviderOpenAI:    services.DefaultOpenAIModel,
	config.ProviderVenice:    "llama-3.3-70b",
	config.ProviderOllama:    "llama3.2",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	if cfg.ModelName == "" {
		cfg.ModelName = defaultModels[cfg.LLMProvider]
	}

	log.Info("Starting White Rabbit API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"end_game_threshold", cfg.EndGameThreshold,
		"session_store", cfg.SessionStore)

	narrativeCfg, err := prompts.LoadConfig(cfg.NarrativeConfig)
	if err != nil {
		log.Error("Invalid narrative configuration", "error", err, "path", cfg.NarrativeConfig)
		os.Exit(1)
	}
	builder, err := prompts.NewBuilder(narrativeCfg)
	if err != nil {
		log.Error("Invalid prompt templates", "error", err)
		os.Exit(1)
	}
	patterns, err := narrativeCfg.PatternSet()
	if err != nil {
		log.Error("Invalid parse patterns", "error", err)
		os.Exit(1)
	}

	llmService, err := newLLMService(cfg, log)
	if err != nil {
		log.Error("Failed to create LLM service", "error", err, "provider", cfg.LLMProvider)
		os.Exit(1)
	}

	// Initialize the model on startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := llmService.InitModel(ctx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	store, err := newSessionStore(cfg, log)
	if err != nil {
		log.Error("Failed to connect to session store", "error", err)
		os.Exit(1)
	}
	log.Info("Session store ready", "store", cfg.SessionStore)

	eng := engine.New(llmService, builder, patterns, engine.Options{
		Timeout:       cfg.LLMTimeout,
		DebugLLM:      cfg.DebugLLM,
		ContentRating: cfg.ContentRating,
	}, log)
	manager := game.NewManager(eng, store, game.ManagerOptions{
		Threshold:  cfg.EndGameThreshold,
		DebugState: cfg.DebugState,
	}, log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, log))
	mux.Handle("/metrics", promhttp.Handler())

	gameHandler := handlers.NewGameHandler(manager, log)
	mux.Handle("/api/start", gameHandler)
	mux.Handle("/api/choose", gameHandler)
	mux.Handle("/api/state", gameHandler)

	mux.Handle("/api/narrative", handlers.NewNarrativeHandler(eng, log))

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.Logger(log, mux))
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Turns can take two LLM calls.
		WriteTimeout: 2*cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing session store", "error", err)
	}

	log.Info("Server exited")
}

// newLLMService builds the configured provider, instrumented and optionally retried.
func newLLMService(cfg *config.Config, log *slog.Logger) (services.LLMService, error) {
	var llm services.LLMService
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required when using the gemini provider")
		}
		g, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.ModelName, "", log)
		if err != nil {
			return nil, err
		}
		llm = g
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is required when using the anthropic provider")
		}
		llm = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required when using the openai provider")
		}
		llm = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName, cfg.OpenAIBaseURL, log)
	case config.ProviderVenice:
		if cfg.VeniceAPIKey == "" {
			return nil, errors.New("VENICE_API_KEY is required when using the venice provider")
		}
		llm = services.NewOpenAIService(cfg.VeniceAPIKey, cfg.ModelName, services.VeniceBaseURL, log)
	case config.ProviderOllama:
		o, err := services.NewOllamaService(cfg.OllamaURL, cfg.ModelName, cfg.LLMTimeout, log)
		if err != nil {
			return nil, err
		}
		llm = o
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
	log.Info("Using LLM provider", "provider", cfg.LLMProvider)

	llm = services.NewInstrumentedLLM(llm, cfg.LLMProvider, cfg.ModelName)
	if cfg.LLMMaxAttempts > 1 {
		llm = services.NewRetryingLLM(llm, cfg.LLMMaxAttempts, 500*time.Millisecond, log)
	}
	return llm, nil
}

func newSessionStore(cfg *config.Config, log *slog.Logger) (storage.SessionStore, error) {
	if cfg.SessionStore != config.StoreRedis {
		return storage.NewMemoryStore(), nil
	}
	r, err := storage.NewRedisStore(cfg.RedisURL, cfg.SessionTTL, log)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := r.WaitForConnection(ctx, 10, 2*time.Second); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}
