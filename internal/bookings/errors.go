package bookings

import (
	"errors"
	"net/http"
)

// Rejection codes surfaced to callers.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeRateLimit  = "RATE_LIMIT_HOURLY"
	CodeSlotTaken  = "SLOT_TAKEN"
)

// ErrSlotConflict is returned by the repository when the storage-level
// exclusion constraint rejects an overlapping reserved row.
var ErrSlotConflict = errors.New("bookings: slot already reserved")

// Rejection is the terminal outcome of a failed gate. It travels as an
// error value and serializes to the stable {code, field, message} shape.
type Rejection struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (r *Rejection) Error() string {
	return r.Code + ": " + r.Message
}

// HTTPStatus maps the rejection code to its transport status.
func (r *Rejection) HTTPStatus() int {
	switch r.Code {
	case CodeRateLimit:
		return http.StatusTooManyRequests
	case CodeSlotTaken:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func rejectField(field, message string) *Rejection {
	return &Rejection{Code: CodeValidation, Field: field, Message: message}
}

func rejectRateLimited() *Rejection {
	return &Rejection{Code: CodeRateLimit, Message: "too many booking attempts, try again later"}
}

func rejectSlotTaken() *Rejection {
	return &Rejection{Code: CodeSlotTaken, Message: "the requested slot is no longer available"}
}
