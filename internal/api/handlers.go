package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/edgard/photobot/internal/database"
)

// jsTimeFormat matches JavaScript's Date.toISOString.
const jsTimeFormat = "2006-01-02T15:04:05.000Z"

// Store is the read side of the archive.
type Store interface {
	Ping(ctx context.Context) error
	ListImages(ctx context.Context, filter database.ImageFilter) ([]database.Image, error)
	ListGroups(ctx context.Context) ([]database.Group, error)
}

type imageResponse struct {
	ID        int64  `json:"id"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	Sender    string `json:"sender"`
	Caption   string `json:"caption"`
	CreatedAt string `json:"created_at"`
	GroupID   int64  `json:"group_id"`
}

type groupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	store    Store
	logger   *slog.Logger
	location *time.Location
}

func (h *handlers) listImages(w http.ResponseWriter, r *http.Request) {
	filter, err := parseImageFilter(r.URL.Query(), h.location)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	images, err := h.store.ListImages(r.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list images", "error", err)
		writeServerError(w)
		return
	}

	resp := make([]imageResponse, 0, len(images))
	for _, img := range images {
		resp = append(resp, imageResponse{
			ID:        img.ID,
			Filename:  img.Filename,
			URL:       UploadsPrefix + img.Filename,
			Sender:    img.Sender,
			Caption:   img.Caption,
			CreatedAt: img.CreatedAt.UTC().Format(jsTimeFormat),
			GroupID:   img.GroupID,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ListGroups(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list groups", "error", err)
		writeServerError(w)
		return
	}

	resp := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, groupResponse{ID: g.ID, Name: g.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeServerError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		_ = err // Client disconnected
	}
}
