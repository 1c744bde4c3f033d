package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hyu460659-glitch/paoTuanGame/internal/config"
	"github.com/hyu460659-glitch/paoTuanGame/internal/handlers"
	"github.com/hyu460659-glitch/paoTuanGame/internal/logger"
	"github.com/hyu460659-glitch/paoTuanGame/internal/middleware"
	"github.com/hyu460659-glitch/paoTuanGame/internal/services"
	"github.com/hyu460659-glitch/paoTuanGame/internal/services/events"
	"github.com/hyu460659-glitch/paoTuanGame/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Game Master API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	var llmService services.LLMService
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, cfg.LLMTimeout, log)
		log.Info("Using Anthropic LLM provider")
	case config.ProviderVenice:
		llmService = services.NewVeniceService(cfg.VeniceAPIKey, cfg.ModelName, cfg.LLMTimeout)
		log.Info("Using Venice LLM provider")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := llmService.InitModel(ctx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	opts := session.Options{
		GameMaster:   services.NewGameMasterService(llmService, cfg.HistoryLimit, log),
		Logger:       log,
		HistoryLimit: cfg.HistoryLimit,
	}

	var (
		redisSvc    *services.RedisService
		broadcaster *events.Broadcaster
		health      *handlers.HealthHandler
		forgetter   handlers.Forgetter
	)
	if cfg.RedisURL != "" {
		redisSvc, err = services.NewRedisService(cfg.RedisURL, log)
		if err != nil {
			log.Error("Invalid Redis URL", "error", err)
			os.Exit(1)
		}
		if err := redisSvc.WaitForConnection(ctx, 10, 2*time.Second); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		broadcaster = events.NewBroadcaster(redisSvc.Client(), log)
		opts.Publisher = broadcaster
		forgetter = broadcaster
		log.Info("Session events enabled")
	} else {
		log.Info("REDIS_URL not set, session events disabled")
	}

	manager := session.NewManager(opts)

	if redisSvc != nil {
		health = handlers.NewHealthHandler(redisSvc, manager.Count, log)
	} else {
		health = handlers.NewHealthHandler(nil, manager.Count, log)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", health)

	sessionHandler := handlers.NewSessionHandler(manager, forgetter, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	if broadcaster != nil {
		mux.Handle("/v1/events/sessions/", handlers.NewEventsHandler(redisSvc.Client(), broadcaster, manager, log))
	}

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log, mux),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: SSE streams stay open and turns wait on the LLM.
		IdleTimeout: 60 * time.Second,
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

	if redisSvc != nil {
		if err := redisSvc.Close(); err != nil {
			log.Error("Error closing Redis connection", "error", err)
		}
	}

	log.Info("Server exited")
}
