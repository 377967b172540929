package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/photobot/internal/config"
	"github.com/edgard/photobot/internal/ingest"
)

// PhotoProcessor runs the ingestion pipeline for one event.
// *ingest.Pipeline satisfies it.
type PhotoProcessor interface {
	Process(ctx context.Context, ev ingest.PhotoEvent) ingest.Outcome
}

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Pipeline PhotoProcessor
}
