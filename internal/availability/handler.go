package availability

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/casaondara/booking-platform/pkg/logging"
)

// Handler exposes the public availability endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an availability handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Get handles GET /availability?days=N
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"code":    "VALIDATION_ERROR",
				"field":   "days",
				"message": "days must be an integer",
			})
			return
		}
		days = n
	}

	window, err := h.service.GetAvailability(r.Context(), days)
	if err != nil {
		h.logger.Error("availability request failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "INTERNAL_ERROR",
			"message": "something went wrong, please try again",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(window)
}
