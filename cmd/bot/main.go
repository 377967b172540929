// Package main contains the entrypoint for the photobot service.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/edgard/photobot/internal/api"
	"github.com/edgard/photobot/internal/bot"
	"github.com/edgard/photobot/internal/bot/handlers"
	"github.com/edgard/photobot/internal/bot/tasks"
	"github.com/edgard/photobot/internal/config"
	"github.com/edgard/photobot/internal/database"
	"github.com/edgard/photobot/internal/ingest"
	"github.com/edgard/photobot/internal/logger"
	"github.com/edgard/photobot/internal/media"
	"github.com/edgard/photobot/internal/metrics"
	"github.com/edgard/photobot/internal/telegram"
	"github.com/edgard/photobot/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, blocks until shutdown and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	envPath := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		slog.Error("Failed to load .env file", "path", *envPath, "error", err)
		return 1
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Error("Failed to create upload directory", "path", cfg.UploadDir, "error", err)
		return 1
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.DBPath, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	// The service keeps running without a schema; storage calls fail until it exists.
	if err := database.ApplyMigrations(db.DB, database.ExtractDBNameFromPath(cfg.DBPath)); err != nil {
		log.Error("Failed to apply database migrations", "path", cfg.DBPath, "error", err)
	}
	store := database.NewStore(db, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
	}
	tg, err := telegram.NewTelegramBot(cfg.TelegramToken, log, telegram.BotOptions(cfg, log, hDeps)...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	fetcher := media.NewFetcher(tg, cfg.DownloadTimeout, log)
	hDeps.Pipeline = ingest.New(store, fetcher, cfg.UploadDir, log, ingest.WithMetrics(m))

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllHandlers(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.ConfigureDelivery(ctx, tg, cfg, log); err != nil {
		log.Error("Failed to configure update delivery", "error", err)
		return 1
	}

	var static fs.FS = web.Public()
	if cfg.StaticDir != "" {
		static = os.DirFS(cfg.StaticDir)
	}
	serverOpts := api.Options{
		Addr:        cfg.Addr(),
		Store:       store,
		UploadDir:   cfg.UploadDir,
		Static:      static,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.APIRateLimit,
		RateBurst:   cfg.APIRateBurst,
		Metrics:     m,
		Gatherer:    reg,
		Logger:      log,
	}
	if cfg.UseWebhook {
		serverOpts.Webhook = tg.WebhookHandler()
	}
	server := api.NewServer(serverOpts)

	tDeps := tasks.TaskDeps{
		Logger:    log,
		Store:     store,
		UploadDir: cfg.UploadDir,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, tg, server, sched)

	log.Info("Starting photobot...", "addr", cfg.Addr(), "upload_dir", cfg.UploadDir, "db_path", cfg.DBPath)
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Photobot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Photobot stopped gracefully.")
	return 0
}
