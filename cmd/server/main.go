package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwestergaard/slrpipe/internal/api"
	"github.com/mwestergaard/slrpipe/internal/artifacts"
	"github.com/mwestergaard/slrpipe/internal/chunker"
	"github.com/mwestergaard/slrpipe/internal/config"
	"github.com/mwestergaard/slrpipe/internal/evidence"
	"github.com/mwestergaard/slrpipe/internal/llm"
	"github.com/mwestergaard/slrpipe/internal/pipeline"
	"github.com/mwestergaard/slrpipe/internal/summary"
	"github.com/mwestergaard/slrpipe/internal/vectorstore"
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
	vs := vectorstore.NewClient(cfg.VectorStoreURL, cfg.VectorStoreAPIKey)
	art := artifacts.NewClient(cfg.ArtifactsURL, cfg.ArtifactsAPIKey)
	tf := llm.NewClient(llm.ClientConfig{
		APIKey:      cfg.OpenAIAPIKey,
		LightModel:  cfg.LightModel,
		StrongModel: cfg.StrongModel,
	}, log)

	counter, err := chunker.NewTiktokenCounter(cfg.TiktokenEncoding)
	if err != nil {
		log.Error("token counter init failed", "error", err)
		os.Exit(1)
	}

	agg := summary.New(tf, log, cfg.MaxConcurrentTransform)
	eb := evidence.NewBuilder(vs, tf, log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, vs, art, agg, counter, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, tf, vs, art, eb, log, cfg)

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

		vs.Close()
		art.Close()
	}()

	log.Info("starting slrpipe", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
