package bookings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/casaondara/booking-platform/pkg/logging"
)

// Handler exposes the public reservation and enquiry endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a bookings handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Create handles POST /bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRejection(w, rejectField("body", "invalid json"))
		return
	}
	res, err := h.service.Reserve(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Enquire handles POST /enquiries
func (h *Handler) Enquire(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRejection(w, rejectField("body", "invalid json"))
		return
	}
	res, err := h.service.Enquire(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var rej *Rejection
	if errors.As(err, &rej) {
		writeRejection(w, rej)
		return
	}
	h.logger.Error("booking request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"code":    "INTERNAL_ERROR",
		"message": "something went wrong, please try again",
	})
}

func writeRejection(w http.ResponseWriter, rej *Rejection) {
	writeJSON(w, rej.HTTPStatus(), rej)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
