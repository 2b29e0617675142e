package blackouts

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casaondara/booking-platform/pkg/logging"
)

// Handler exposes the admin blackout endpoints.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a blackouts handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /admin/blackouts
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBlackoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create blackout", "error", err)
		http.Error(w, "failed to create blackout", http.StatusInternalServerError)
		return
	}

	h.logger.Info("blackout created", "id", b.ID, "starts_at", b.StartsAt, "ends_at", b.EndsAt)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(b)
}

// List handles GET /admin/blackouts
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.List(r.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Error("failed to list blackouts", "error", err)
		http.Error(w, "failed to list blackouts", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"blackouts": out})
}

// Delete handles DELETE /admin/blackouts/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing blackout id", http.StatusBadRequest)
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete blackout", "error", err, "id", id)
		http.Error(w, "failed to delete blackout", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}
