// Package ingest persists photos posted to group chats: it records the chat,
// downloads the largest photo variant into the upload directory and inserts
// the image metadata row.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/edgard/photobot/internal/database"
	"github.com/edgard/photobot/internal/media"
	"github.com/edgard/photobot/internal/metrics"
)

const (
	defaultExtension = ".jpg"
	privateChatName  = "Private"

	// maxNameAttempts bounds the collision suffixes tried for one event.
	maxNameAttempts = 10
)

// ErrNoPhoto is returned when an event carries no photo variants.
var ErrNoPhoto = errors.New("event has no photo variants")

// Stage names the pipeline step an event finished in.
type Stage string

// Pipeline stages, in execution order.
const (
	StageSelect   Stage = "select"
	StageGroup    Stage = "group"
	StageResolve  Stage = "resolve"
	StageDownload Stage = "download"
	StageSave     Stage = "save"
	StageDone     Stage = "done"
)

// Variant is one resolution of a posted photo.
type Variant struct {
	FileID string
	Width  int
	Height int
}

// PhotoEvent is a photo posted to a chat.
type PhotoEvent struct {
	ChatID    int64
	ChatTitle string
	Sender    string
	Caption   string
	Variants  []Variant
}

// Outcome reports how far an event got. Err is nil only when the image row
// was inserted. GroupErr records a failed group upsert, which does not stop
// the pipeline.
type Outcome struct {
	Stage    Stage
	Filename string
	ImageID  int64
	GroupErr error
	Err      error
}

// Saved reports whether the event produced an image row.
func (o Outcome) Saved() bool { return o.Err == nil && o.Stage == StageDone }

// Store is the persistence the pipeline writes to.
type Store interface {
	UpsertGroup(ctx context.Context, group *database.Group) error
	SaveImage(ctx context.Context, image *database.Image) error
}

// Fetcher resolves and downloads media. *media.Fetcher satisfies it.
type Fetcher interface {
	Resolve(ctx context.Context, fileID string) (media.Remote, error)
	Download(ctx context.Context, url, dst string) (int64, error)
}

// Pipeline runs the per-event ingestion steps.
type Pipeline struct {
	store     Store
	fetcher   Fetcher
	uploadDir string
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source used for filenames and created_at.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithMetrics records outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a Pipeline writing files into uploadDir.
func New(store Store, fetcher Fetcher, uploadDir string, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		store:     store,
		fetcher:   fetcher,
		uploadDir: uploadDir,
		logger:    logger.With("component", "ingest"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs every stage for ev and returns the outcome. Failures are
// logged here and never retried.
func (p *Pipeline) Process(ctx context.Context, ev PhotoEvent) Outcome {
	log := p.logger.With("chat_id", ev.ChatID)
	out := p.run(ctx, ev)

	switch {
	case out.Saved():
		log.InfoContext(ctx, "Saved photo", "filename", out.Filename, "image_id", out.ImageID)
	case out.Stage == StageSave && out.Filename != "":
		log.ErrorContext(ctx, "Photo written but metadata insert failed; file left on disk",
			"filename", out.Filename, "error", out.Err)
	default:
		log.ErrorContext(ctx, "Dropped photo event", "stage", out.Stage, "error", out.Err)
	}

	p.record(out)
	return out
}

func (p *Pipeline) run(ctx context.Context, ev PhotoEvent) Outcome {
	variant, err := SelectLargest(ev.Variants)
	if err != nil {
		return Outcome{Stage: StageSelect, Err: err}
	}

	out := Outcome{Stage: StageGroup}
	// A failed upsert is recorded but does not abort image persistence.
	if err := p.store.UpsertGroup(ctx, &database.Group{ID: ev.ChatID, Name: GroupName(ev.ChatTitle)}); err != nil {
		out.GroupErr = err
		p.logger.WarnContext(ctx, "Group upsert failed, continuing", "chat_id", ev.ChatID, "error", err)
	}

	out.Stage = StageResolve
	remote, err := p.fetcher.Resolve(ctx, variant.FileID)
	if err != nil {
		out.Err = err
		return out
	}

	out.Stage = StageDownload
	now := p.now()
	filename, written, err := p.download(ctx, remote, ev.ChatID, now)
	if err != nil {
		out.Err = err
		return out
	}
	out.Filename = filename
	if p.metrics != nil {
		p.metrics.DownloadBytes.Add(float64(written))
	}

	out.Stage = StageSave
	img := &database.Image{
		Filename:  filename,
		FileID:    variant.FileID,
		Sender:    ev.Sender,
		ChatID:    ev.ChatID,
		GroupID:   ev.ChatID,
		Caption:   ev.Caption,
		CreatedAt: now,
	}
	if err := p.store.SaveImage(ctx, img); err != nil {
		out.Err = err
		return out
	}

	out.ImageID = img.ID
	out.Stage = StageDone
	return out
}

// download writes the remote file under a fresh name, adding a numeric
// suffix when a same-millisecond name is already taken.
func (p *Pipeline) download(ctx context.Context, remote media.Remote, chatID int64, at time.Time) (string, int64, error) {
	base := Filename(chatID, at, remote.Path)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := withSuffix(base, attempt)
		n, err := p.fetcher.Download(ctx, remote.URL, filepath.Join(p.uploadDir, name))
		if errors.Is(err, media.ErrFileExists) {
			p.logger.DebugContext(ctx, "Filename taken, trying next suffix", "filename", name)
			continue
		}
		if err != nil {
			return "", 0, err
		}
		return name, n, nil
	}
	return "", 0, fmt.Errorf("no free filename for %s after %d attempts", base, maxNameAttempts)
}

func (p *Pipeline) record(out Outcome) {
	if p.metrics == nil {
		return
	}
	outcome := "dropped"
	if out.Saved() {
		outcome = "saved"
	}
	p.metrics.Photos.WithLabelValues(outcome, string(out.Stage)).Inc()

	if out.Stage == StageSelect {
		return
	}
	result := "ok"
	if out.GroupErr != nil {
		result = "error"
	}
	p.metrics.GroupUpserts.WithLabelValues(result).Inc()
}

// SelectLargest returns the variant with the most pixels. On ties the later
// variant wins, since Telegram lists sizes from smallest to largest.
func SelectLargest(variants []Variant) (Variant, error) {
	if len(variants) == 0 {
		return Variant{}, ErrNoPhoto
	}
	best := variants[0]
	for _, v := range variants[1:] {
		if v.Width*v.Height >= best.Width*best.Height {
			best = v
		}
	}
	if best.FileID == "" {
		return Variant{}, fmt.Errorf("%w: largest variant has no file id", ErrNoPhoto)
	}
	return best, nil
}

// GroupName returns the stored name for a chat title.
func GroupName(title string) string {
	if title == "" {
		return privateChatName
	}
	return title
}

// SenderName prefers the username, then "first last", then empty.
func SenderName(username, firstName, lastName string) string {
	if username != "" {
		return username
	}
	return strings.TrimSpace(firstName + " " + lastName)
}

// Filename builds "{chatID}_{unixMillis}{ext}" where ext comes from the remote
// path, defaulting to ".jpg".
func Filename(chatID int64, at time.Time, remotePath string) string {
	ext := path.Ext(remotePath)
	if ext == "" {
		ext = defaultExtension
	}
	return strconv.FormatInt(chatID, 10) + "_" + strconv.FormatInt(at.UnixMilli(), 10) + ext
}

func withSuffix(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + strconv.Itoa(n) + ext
}
