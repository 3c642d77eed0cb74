package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/dgallion1/fnstitch/internal/api"
	"github.com/dgallion1/fnstitch/internal/config"
	"github.com/dgallion1/fnstitch/internal/pipeline"
	"github.com/dgallion1/fnstitch/internal/rewrite"
	"github.com/dgallion1/fnstitch/internal/semantic"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	llmStats := rewrite.NewStats(time.Hour)
	completer := rewrite.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, llmStats)
	embedder := semantic.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.EmbeddingModel)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, completer, embedder, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, llmStats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		completer.Close()
		embedder.Close()
	}()

	log.Info("starting fnstitch", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
