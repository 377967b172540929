// Package media resolves Telegram file references to download URLs and
// streams the referenced bytes into the local upload directory.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrFileExists is returned by Download when the destination name is already taken.
var ErrFileExists = errors.New("destination file already exists")

// FileResolver is the part of the Telegram client the fetcher needs.
// *bot.Bot satisfies it.
type FileResolver interface {
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

// Remote describes a resolved, time-limited download location.
type Remote struct {
	FileID string
	Path   string // file_path as reported by Telegram, e.g. "photos/file_12.jpg"
	URL    string
	Size   int64
}

// Fetcher resolves file ids and downloads their content.
type Fetcher struct {
	resolver   FileResolver
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher. A zero timeout leaves the HTTP client unbounded.
func NewFetcher(resolver FileResolver, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		resolver:   resolver,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "media_fetcher"),
	}
}

// Resolve maps a Telegram file id to its remote path and download URL.
func (f *Fetcher) Resolve(ctx context.Context, fileID string) (Remote, error) {
	if fileID == "" {
		return Remote{}, errors.New("file id is empty")
	}

	file, err := f.resolver.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return Remote{}, fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}
	if file == nil || file.FilePath == "" {
		return Remote{}, fmt.Errorf("telegram returned no file path for %s", fileID)
	}

	remote := Remote{
		FileID: fileID,
		Path:   file.FilePath,
		URL:    f.resolver.FileDownloadLink(file),
		Size:   file.FileSize,
	}
	f.logger.DebugContext(ctx, "Resolved file", "file_id", fileID, "file_path", remote.Path)
	return remote, nil
}

// Download streams url into dst. dst must not exist; if it does, ErrFileExists
// is returned and nothing is written. The call returns only after the data has
// been synced and the file closed. On any failure the partial file is removed.
func (f *Fetcher) Download(ctx context.Context, url, dst string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return 0, fmt.Errorf("%w: %s", ErrFileExists, filepath.Base(dst))
		}
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	n, err := io.Copy(out, resp.Body)
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := os.Remove(dst); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			f.logger.WarnContext(ctx, "Failed to remove partial download", "path", dst, "error", rmErr)
		}
		return n, fmt.Errorf("failed to write %s: %w", filepath.Base(dst), err)
	}

	f.logger.DebugContext(ctx, "Downloaded file", "path", dst, "bytes", n)
	return n, nil
}
