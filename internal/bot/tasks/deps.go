// Package tasks implements the photobot scheduled tasks and their registry.
package tasks

import (
	"context"
	"log/slog"
)

// TaskStore is the storage used by scheduled tasks. database.Store satisfies it.
type TaskStore interface {
	RunSQLMaintenance(ctx context.Context) error
	ListImageFilenames(ctx context.Context) ([]string, error)
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger    *slog.Logger
	Store     TaskStore
	UploadDir string
}
