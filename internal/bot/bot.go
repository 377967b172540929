// Package bot wires the photobot components together and manages their lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/photobot/internal/config"
)

const shutdownTimeout = 10 * time.Second

// UpdateSource delivers Telegram updates until ctx is cancelled.
// *bot.Bot from go-telegram satisfies it.
type UpdateSource interface {
	Start(ctx context.Context)
	StartWebhook(ctx context.Context)
}

// HTTPServer is the API server lifecycle.
type HTTPServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// JobScheduler is the scheduled task lifecycle.
type JobScheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

// Bot represents the running application.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	updates   UpdateSource
	server    HTTPServer
	scheduler JobScheduler
}

// NewBot creates a Bot from its components.
func NewBot(logger *slog.Logger, cfg *config.Config, updates UpdateSource, server HTTPServer, scheduler JobScheduler) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		updates:   updates,
		server:    server,
		scheduler: scheduler,
	}
}

// Run starts update delivery, the HTTP server and the scheduler, and blocks
// until ctx is cancelled or one of them fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...", "webhook", b.cfg.UseWebhook)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if b.cfg.UseWebhook {
			b.logger.Info("Starting Telegram webhook processing...")
			b.updates.StartWebhook(gCtx)
		} else {
			b.logger.Info("Starting Telegram long polling...")
			b.updates.Start(gCtx)
		}
		b.logger.Info("Telegram update processing stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram update processing stopped unexpectedly without context cancellation.")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := b.server.Start(); err != nil {
			b.logger.Error("HTTP server failed", "error", err)
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gCtx), shutdownTimeout)
		defer cancel()
		if err := b.server.Shutdown(shutdownCtx); err != nil {
			b.logger.Error("Error stopping HTTP server", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(gCtx); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
