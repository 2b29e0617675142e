package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/casaondara/booking-platform/pkg/logging"
)

// BookingSummary carries the fields the studio wants to see in a
// notification, decoupled from the bookings package types.
type BookingSummary struct {
	CustomerName string
	PhoneDigits  string
	Email        string
	PackName     string
	Message      string
	HomeVisit    bool
	City         string
	Start        *time.Time
	End          *time.Time
}

// Service emails the studio after a booking or enquiry is committed. It is
// a best-effort post-commit step: callers log failures and attach them as
// a warning on the success payload, never as a hard failure.
type Service struct {
	email  EmailSender
	to     string
	loc    *time.Location
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, to string, loc *time.Location, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{email: email, to: to, loc: loc, logger: logger}
}

// BookingConfirmed notifies the studio of a committed reservation.
func (s *Service) BookingConfirmed(ctx context.Context, b BookingSummary) error {
	if s.email == nil || s.to == "" {
		s.logger.Debug("notify: email not configured, skipping booking notification")
		return nil
	}

	when := "sin cita"
	if b.Start != nil {
		when = b.Start.In(s.loc).Format("Monday, 2 January 15:04")
	}
	visit := "en el estudio"
	if b.HomeVisit {
		visit = "visita a domicilio"
		if b.City != "" {
			visit += " (" + b.City + ")"
		}
	}

	msg := EmailMessage{
		To:      s.to,
		Subject: fmt.Sprintf("Nueva reserva - %s", b.CustomerName),
		Body: fmt.Sprintf(`Nueva reserva confirmada.

Cliente: %s
Teléfono: %s
Email: %s
Pack: %s
Cita: %s
Modalidad: %s
Mensaje: %s
`, b.CustomerName, b.PhoneDigits, b.Email, b.PackName, when, visit, b.Message),
	}

	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: booking email failed", "error", err, "to", s.to)
		return err
	}
	s.logger.Info("notify: booking email sent", "to", s.to, "customer", b.CustomerName)
	return nil
}

// EnquiryReceived notifies the studio of a contact-me-later enquiry.
func (s *Service) EnquiryReceived(ctx context.Context, b BookingSummary) error {
	if s.email == nil || s.to == "" {
		return nil
	}

	msg := EmailMessage{
		To:      s.to,
		Subject: fmt.Sprintf("Nueva consulta - %s", b.CustomerName),
		Body: fmt.Sprintf(`Nueva consulta recibida.

Cliente: %s
Teléfono: %s
Email: %s
Pack: %s
Mensaje: %s
`, b.CustomerName, b.PhoneDigits, b.Email, b.PackName, b.Message),
	}

	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: enquiry email failed", "error", err, "to", s.to)
		return err
	}
	return nil
}
