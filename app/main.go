package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/giovanniberti/cartellone/app/api"
	"github.com/giovanniberti/cartellone/app/cache"
	"github.com/giovanniberti/cartellone/app/cfg"
	"github.com/giovanniberti/cartellone/app/database"
	"github.com/giovanniberti/cartellone/app/ingest"
	"github.com/giovanniberti/cartellone/app/mailgun"
	"github.com/giovanniberti/cartellone/app/source"
	"github.com/giovanniberti/cartellone/app/tasks"
	"github.com/giovanniberti/cartellone/app/telegram"
)

func main() {
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown, exit gracefully
		return
	}

	if c.Debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	slog.Info("Starting Cartellone server", "version", c.Version)

	db, err := database.NewConnection(c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	configCache := source.NewConfigCache(c.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "count", configCache.GetConfigCount())

	sourceRepo := database.NewSourceRepository(db)
	newsletterRepo := database.NewNewsletterRepository(db)
	showingRepo := database.NewShowingRepository(db)

	var tokenStore mailgun.TokenStore
	if c.RedisAddr != "" {
		replayCache, err := cache.NewReplayCache(c.RedisAddr)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer replayCache.Close()
		tokenStore = replayCache
		slog.Info("Webhook replay detection enabled", "redis", c.RedisAddr)
	} else {
		slog.Warn("REDIS_ADDR not set, webhook replay detection disabled")
	}

	verifier := mailgun.NewVerifier(c.MailgunSigningKey,
		time.Duration(c.WebhookWindow)*time.Second, tokenStore)

	telegramClient := telegram.NewClient(c.TelegramToken)
	notifier := telegram.NewNotifier(telegramClient, c.TelegramErrorChat)

	processor := ingest.NewProcessor(newsletterRepo, showingRepo, telegramClient, notifier)

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	scheduler := tasks.NewScheduler(configCache, sourceRepo, newsletterRepo, processor, httpClient)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", c.WorkerCount, "interval", c.SchedulerInterval)

	handler := api.NewHandler(configCache, sourceRepo, newsletterRepo, showingRepo,
		verifier, processor, scheduler, httpClient, c.UserAgent)
	server := api.NewServer(handler, c.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler and connections are stopped via defer
	slog.Info("Shutdown complete")
}
