package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"susurro/internal/ai"
	"susurro/internal/config"
	"susurro/internal/database"
	"susurro/internal/logging"
	"susurro/internal/prompt"
	"susurro/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel)

	dbCfg := database.Config{Path: cfg.DBPath}
	if !cfg.UseLocalDB {
		dbCfg = database.Config{URL: cfg.TursoURL, AuthToken: cfg.TursoToken}
	}
	db, err := database.Open(dbCfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	prompts, err := prompt.Load()
	if err != nil {
		slog.Error("failed to load prompt templates", "error", err)
		os.Exit(1)
	}
	aiClient := ai.NewClient(cfg.GroqAPIKey, cfg.Language, prompts, logger.With("component", "ai"))

	srv := server.New(db, cfg, aiClient, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background sweeps: rate-limit windows every minute, expired sessions
	// every hour.
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := srv.Limiter().Sweep(); n > 0 {
					slog.Debug("swept rate-limit entries", "count", n)
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("susurro starting", "addr", ":"+cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	sweepCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
