package bookings

import (
	"regexp"
	"strings"
	"time"
)

// Booking statuses. Enquiry rows carry no slot; their start/end are null.
const (
	StatusReserved = "reserved"
	StatusEnquiry  = "enquiry"
)

// Booking is the persisted reservation or enquiry row. The core never
// mutates it after commit; pipeline transitions live on the customer row.
type Booking struct {
	ID                string     `json:"id"`
	CustomerKey       string     `json:"customer_key"`
	Status            string     `json:"status"`
	PackName          string     `json:"pack_name"`
	CustomerName      string     `json:"customer_name"`
	PhoneDigits       string     `json:"phone"`
	Email             string     `json:"email,omitempty"`
	ContactPreference string     `json:"contact_preference"`
	HomeVisit         bool       `json:"home_visit"`
	AddressLine1      string     `json:"address_line1,omitempty"`
	PostalCode        string     `json:"postal_code,omitempty"`
	City              string     `json:"city,omitempty"`
	Message           string     `json:"message,omitempty"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
	EndsAt            *time.Time `json:"ends_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// CreateBookingRequest is the request body for reservations and enquiries.
// Start is ignored on the enquiry path.
type CreateBookingRequest struct {
	PackName          string `json:"pack_name"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	ContactPreference string `json:"contact_preference"`
	HomeVisit         bool   `json:"home_visit"`
	AddressLine1      string `json:"address_line1"`
	PostalCode        string `json:"postal_code"`
	City              string `json:"city"`
	Message           string `json:"message"`
	Start             string `json:"start"`
}

// Spanish mobile/landline: 9 digits starting with 6, 7, 8 or 9.
var spanishPhoneRe = regexp.MustCompile(`^[6789]\d{8}$`)

var nonDigitRe = regexp.MustCompile(`\D`)

// NormalizePhone strips everything but digits.
func NormalizePhone(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// NormalizeEmail lowercases and trims.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DeriveCustomerKey produces the canonical identity for a contact:
// the normalized email when one is present (selected by "@"), otherwise
// the normalized phone digits. Two records with the same normalized
// contact always resolve to the same key.
func DeriveCustomerKey(email, phone string) string {
	e := NormalizeEmail(email)
	if strings.Contains(e, "@") {
		return e
	}
	return NormalizePhone(phone)
}

// validateContact applies the gates shared by reservations and enquiries.
func (r *CreateBookingRequest) validateContact() *Rejection {
	if strings.TrimSpace(r.Name) == "" {
		return rejectField("name", "name is required")
	}
	if !spanishPhoneRe.MatchString(NormalizePhone(r.Phone)) {
		return rejectField("phone", "phone must be a Spanish number of 9 digits starting with 6, 7, 8 or 9")
	}
	if r.HomeVisit {
		if strings.TrimSpace(r.AddressLine1) == "" {
			return rejectField("address_line1", "address is required for home visits")
		}
		if strings.TrimSpace(r.PostalCode) == "" {
			return rejectField("postal_code", "postal code is required for home visits")
		}
		if strings.TrimSpace(r.City) == "" {
			return rejectField("city", "city is required for home visits")
		}
	}
	return nil
}

// ValidateReservation checks a reservation request and parses its start.
func (r *CreateBookingRequest) ValidateReservation() (time.Time, *Rejection) {
	if rej := r.validateContact(); rej != nil {
		return time.Time{}, rej
	}
	start, err := time.Parse(time.RFC3339, r.Start)
	if err != nil {
		return time.Time{}, rejectField("start", "start must be a valid RFC 3339 timestamp")
	}
	return start.UTC(), nil
}

// ValidateEnquiry checks an enquiry request (no slot involved).
func (r *CreateBookingRequest) ValidateEnquiry() *Rejection {
	return r.validateContact()
}
