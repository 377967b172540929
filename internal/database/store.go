package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertGroup inserts the group or overwrites its name if the id already exists.
	UpsertGroup(ctx context.Context, group *Group) error

	// SaveImage inserts a new image row and sets its ID.
	// CreatedAt is set to the current time unless already populated.
	SaveImage(ctx context.Context, image *Image) error

	// ListImages returns images matching the filter, newest first.
	ListImages(ctx context.Context, filter ImageFilter) ([]Image, error)

	// ListGroups returns all groups sorted by name ascending.
	ListGroups(ctx context.Context) ([]Group, error)

	// ListImageFilenames returns the filename of every image row.
	ListImageFilenames(ctx context.Context) ([]string, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    time.Now,
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UpsertGroup inserts or updates a group keyed by chat id.
func (s *sqlxStore) UpsertGroup(ctx context.Context, group *Group) error {
	if group == nil {
		return errors.New("cannot save nil group")
	}
	if group.ID == 0 {
		return errors.New("group must have a non-zero id")
	}

	now := s.now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now

	query := `
        INSERT INTO chat_groups (id, name, created_at, updated_at)
        VALUES (:id, :name, :created_at, :updated_at)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            updated_at = excluded.updated_at;
    `

	if _, err := s.db.NamedExecContext(ctx, query, group); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting group", "group_id", group.ID, "error", err)
		return fmt.Errorf("failed to upsert group %d: %w", group.ID, err)
	}

	s.logger.DebugContext(ctx, "Group upserted", "group_id", group.ID, "name", group.Name)
	return nil
}

// SaveImage inserts a new image record.
func (s *sqlxStore) SaveImage(ctx context.Context, image *Image) error {
	if image == nil {
		return errors.New("cannot save nil image")
	}
	if image.Filename == "" {
		return errors.New("image must have a filename")
	}
	if image.ChatID == 0 {
		return errors.New("image must have a non-zero chat_id")
	}
	if image.GroupID != image.ChatID {
		return fmt.Errorf("image group_id %d does not match chat_id %d", image.GroupID, image.ChatID)
	}

	if image.CreatedAt.IsZero() {
		image.CreatedAt = s.now()
	}
	image.CreatedAt = image.CreatedAt.UTC()

	query := `
        INSERT INTO images (filename, file_id, sender, chat_id, group_id, caption, created_at)
        VALUES (:filename, :file_id, :sender, :chat_id, :group_id, :caption, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, image)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving image", "chat_id", image.ChatID, "filename", image.Filename, "error", err)
		return fmt.Errorf("failed to save image %s: %w", image.Filename, err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		image.ID = id
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving image",
			"chat_id", image.ChatID, "filename", image.Filename, "error", err)
	}

	s.logger.DebugContext(ctx, "Image saved successfully", "image_id", image.ID, "filename", image.Filename)
	return nil
}

// ListImages retrieves images matching the filter, ordered by created_at descending.
func (s *sqlxStore) ListImages(ctx context.Context, filter ImageFilter) ([]Image, error) {
	var (
		where []string
		args  []any
	)
	if filter.GroupID != nil {
		where = append(where, "group_id = ?")
		args = append(args, *filter.GroupID)
	}
	if !filter.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, filter.To.UTC())
	}

	var b strings.Builder
	b.WriteString("SELECT id, filename, file_id, sender, chat_id, group_id, caption, created_at FROM images")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")

	images := []Image{}
	err := s.db.SelectContext(ctx, &images, s.db.Rebind(b.String()), args...)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while listing images", "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing images", "error", err)
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	s.logger.DebugContext(ctx, "Listed images", "count", len(images))
	return images, nil
}

// ListGroups retrieves every group ordered by name.
func (s *sqlxStore) ListGroups(ctx context.Context) ([]Group, error) {
	groups := []Group{}
	query := `SELECT id, name, created_at, updated_at FROM chat_groups ORDER BY name ASC, id ASC`
	if err := s.db.SelectContext(ctx, &groups, query); err != nil {
		s.logger.ErrorContext(ctx, "Error listing groups", "error", err)
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// ListImageFilenames retrieves the filename of every stored image.
func (s *sqlxStore) ListImageFilenames(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, `SELECT filename FROM images`); err != nil {
		s.logger.ErrorContext(ctx, "Error listing image filenames", "error", err)
		return nil, fmt.Errorf("failed to list image filenames: %w", err)
	}
	return names, nil
}

// RunSQLMaintenance refreshes query planner statistics and executes VACUUM.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		s.logger.WarnContext(ctx, "PRAGMA optimize failed", "error", err)
	}

	// VACUUM must run outside a transaction in SQLite
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return err
	case err != nil:
		s.logger.ErrorContext(ctx, "Error running VACUUM", "error", err)
		return fmt.Errorf("failed to run VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully.")
	return nil
}
