package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbecker42/intrigue-engine/internal/config"
	"github.com/kbecker42/intrigue-engine/internal/engine"
	"github.com/kbecker42/intrigue-engine/internal/handlers"
	"github.com/kbecker42/intrigue-engine/internal/logger"
	"github.com/kbecker42/intrigue-engine/internal/middleware"
	"github.com/kbecker42/intrigue-engine/internal/services"
	"github.com/kbecker42/intrigue-engine/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Intrigue Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	var llmService services.LLMService
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		llmService = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName, "", log)
		log.Info("Using OpenAI LLM provider")
	case config.ProviderAnthropic:
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic LLM provider")
	case config.ProviderMock:
		llmService = services.NewMockLLM()
		log.Warn("Using mock LLM provider, stories will repeat")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider)
		os.Exit(1)
	}

	store := storage.NewRedisStore(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	eng := engine.New(store, llmService, cfg.GenerationTimeout, log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, llmService, log))
	mux.Handle("/v1/options", handlers.NewOptionsHandler(log))

	storyHandler := handlers.NewStoryHandler(eng, store, log)
	mux.Handle("/v1/stories", storyHandler)
	mux.Handle("/v1/stories/", storyHandler)

	missionsHandler := handlers.NewMissionsHandler(eng, store, log)
	mux.Handle("/v1/missions", missionsHandler)
	mux.Handle("/v1/missions/", missionsHandler)

	mux.Handle("/v1/progress/", handlers.NewProgressHandler(store, log))
	mux.Handle("/v1/characters/", handlers.NewCharactersHandler(store, log))

	handler := middleware.Logger(mux, log)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

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
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
