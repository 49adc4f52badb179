package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hqin77/lifepath/config"
	"github.com/hqin77/lifepath/internal/logging"
	"github.com/hqin77/lifepath/internal/narrative"
	store "github.com/hqin77/lifepath/internal/repository"
	"github.com/hqin77/lifepath/internal/service"
	handler "github.com/hqin77/lifepath/internal/transport/http"
	"github.com/hqin77/lifepath/policy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.NewLogger(cfg.LogLevel, os.Stderr)
	log.Info("starting lifepath server",
		"http_port", cfg.HTTPPort, "database", cfg.DatabaseURL)

	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	client := narrative.NewClient(cfg.NarrativeURL, cfg.NarrativeAPIKey, cfg.NarrativeModel, cfg.NarrativeTimeout, log)
	gen := narrative.NewGenerator(client, narrative.NewAvailability(cfg.NarrativeCooldown), log)

	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Error("failed to initialize policy engine", "error", err)
		os.Exit(1)
	}

	svc := service.New(db, gen, policyEngine, log)
	server := handler.NewServer(svc)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()
	log.Info("server started", "port", cfg.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
