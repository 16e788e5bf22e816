package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/garnizeh/posbackup/internal/archive"
	"github.com/garnizeh/posbackup/internal/dump"
	"github.com/garnizeh/posbackup/internal/snapshot"
	"github.com/garnizeh/posbackup/pkg/models"
)

// SnapshotService is the subset of snapshot.Store the handlers need.
type SnapshotService interface {
	Create(ctx context.Context) (*models.SnapshotRef, error)
	List(ctx context.Context) ([]models.SnapshotInfo, error)
	Get(ctx context.Context, id string) (*models.SnapshotFile, error)
	Remove(ctx context.Context, id string) error
}

var _ SnapshotService = (*snapshot.Store)(nil)

type SnapshotsHandler struct {
	store SnapshotService
}

func NewSnapshotsHandler(store SnapshotService) *SnapshotsHandler {
	return &SnapshotsHandler{store: store}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "error", err)
	}
}

// writeStoreError maps store failures to status codes. Store failures are
// transient and reported as 503 so callers may retry.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	logger.Error("snapshot "+op+" failed", "error", err)
	switch {
	case errors.Is(err, snapshot.ErrStore):
		http.Error(w, "Snapshot store unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, dump.ErrIntrospection):
		http.Error(w, "Error reading database catalog", http.StatusInternalServerError)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *SnapshotsHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	ref, err := h.store.Create(r.Context())
	if err != nil {
		writeStoreError(w, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, ref)
}

func (h *SnapshotsHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		writeStoreError(w, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *SnapshotsHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	file, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, "get", err)
		return
	}
	if file == nil {
		http.Error(w, "Snapshot not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", archive.MediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Content); err != nil {
		logger.Error("write snapshot", "id", id, "error", err)
	}
}

func (h *SnapshotsHandler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.Remove(r.Context(), id); err != nil {
		writeStoreError(w, "remove", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
