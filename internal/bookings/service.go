package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/casaondara/booking-platform/internal/notify"
	"github.com/casaondara/booking-platform/internal/observability/metrics"
	"github.com/casaondara/booking-platform/internal/schedule"
	"github.com/casaondara/booking-platform/pkg/logging"
)

var bookingsTracer = otel.Tracer("ondara.internal.bookings")

// Store is the persistence surface the service needs.
type Store interface {
	ListBusyBetween(ctx context.Context, from, to time.Time) ([]schedule.Interval, error)
	CreateReserved(ctx context.Context, b *Booking) error
	CreateEnquiry(ctx context.Context, b *Booking) error
}

// RateLimiter gates reservation attempts per customer key. The count-and-
// check must be atomic at the storage layer; this service only consumes
// the boolean.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Notifier is the best-effort post-commit notification step.
type Notifier interface {
	BookingConfirmed(ctx context.Context, b notify.BookingSummary) error
	EnquiryReceived(ctx context.Context, b notify.BookingSummary) error
}

// Config carries the booking engine settings.
type Config struct {
	Location     *time.Location
	BlockMinutes int
	LeadTimeDays int
}

// Service runs a reservation through its gates: validate, rate check,
// commit-time slot recheck, transactional commit, post-commit notify.
type Service struct {
	store    Store
	limiter  RateLimiter
	notifier Notifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	cfg      Config
	now      func() time.Time
}

// NewService constructs a bookings service.
func NewService(store Store, limiter RateLimiter, notifier Notifier, m *metrics.BookingMetrics, logger *logging.Logger, cfg Config) *Service {
	if store == nil {
		panic("bookings: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.BlockMinutes <= 0 {
		cfg.BlockMinutes = 120
	}
	return &Service{
		store:    store,
		limiter:  limiter,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ReserveResult is the success payload for reservations and enquiries.
type ReserveResult struct {
	Booking      *Booking   `json:"booking"`
	Start        *time.Time `json:"start,omitempty"`
	End          *time.Time `json:"end,omitempty"`
	BlockMinutes int        `json:"block_minutes"`
	CustomerKey  string     `json:"customer_key"`
	Warning      string     `json:"warning,omitempty"`
}

// Reserve validates the request, re-checks the slot against busy intervals
// at commit time and persists the reservation. The commit-time recheck
// closes the gap between an earlier availability read and this write; the
// storage exclusion constraint catches whatever still races past it.
// Gate failures return a *Rejection; anything else is an upstream error.
func (s *Service) Reserve(ctx context.Context, req *CreateBookingRequest) (*ReserveResult, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.reserve")
	defer span.End()
	began := s.now()

	start, rej := req.ValidateReservation()
	if rej != nil {
		s.metrics.ObserveReservation("validation_error", s.now().Sub(began).Seconds())
		return nil, rej
	}
	earliest := s.now().Add(time.Duration(s.cfg.LeadTimeDays) * 24 * time.Hour)
	if start.Before(earliest) {
		s.metrics.ObserveReservation("validation_error", s.now().Sub(began).Seconds())
		return nil, rejectField("start", fmt.Sprintf("bookings need at least %d days of notice; first bookable day is %s",
			s.cfg.LeadTimeDays, schedule.DateInZone(earliest, s.cfg.Location)))
	}

	key := DeriveCustomerKey(req.Email, req.Phone)
	span.SetAttributes(attribute.String("ondara.customer_key", key))

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, key)
		if err != nil {
			span.RecordError(err)
			s.metrics.ObserveReservation("error", s.now().Sub(began).Seconds())
			return nil, fmt.Errorf("bookings: rate limit check: %w", err)
		}
		if !ok {
			s.metrics.ObserveReservation("rate_limited", s.now().Sub(began).Seconds())
			return nil, rejectRateLimited()
		}
	}

	end := start.Add(time.Duration(s.cfg.BlockMinutes) * time.Minute)
	busy, err := s.store.ListBusyBetween(ctx, start, end)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveReservation("error", s.now().Sub(began).Seconds())
		return nil, err
	}
	if schedule.OverlapsAny(start, end, busy) {
		s.metrics.ObserveReservation("slot_taken", s.now().Sub(began).Seconds())
		return nil, rejectSlotTaken()
	}

	b := s.buildBooking(req, key)
	b.StartsAt = &start
	b.EndsAt = &end

	if err := s.store.CreateReserved(ctx, b); err != nil {
		if errors.Is(err, ErrSlotConflict) {
			s.metrics.ObserveReservation("slot_taken", s.now().Sub(began).Seconds())
			return nil, rejectSlotTaken()
		}
		span.RecordError(err)
		s.metrics.ObserveReservation("error", s.now().Sub(began).Seconds())
		return nil, err
	}

	res := &ReserveResult{
		Booking:      b,
		Start:        &start,
		End:          &end,
		BlockMinutes: s.cfg.BlockMinutes,
		CustomerKey:  key,
	}
	if s.notifier != nil {
		if err := s.notifier.BookingConfirmed(ctx, s.summary(b)); err != nil {
			s.logger.Warn("booking notification failed", "error", err, "booking_id", b.ID)
			res.Warning = "booking confirmed, but the studio notification could not be sent"
		}
	}

	s.metrics.ObserveReservation("committed", s.now().Sub(began).Seconds())
	s.logger.Info("booking committed", "booking_id", b.ID, "customer_key", key, "starts_at", start)
	return res, nil
}

// Enquire persists a contact-me-later request. No slot is involved, so the
// rate and slot gates are skipped and start/end stay null.
func (s *Service) Enquire(ctx context.Context, req *CreateBookingRequest) (*ReserveResult, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.enquire")
	defer span.End()

	if rej := req.ValidateEnquiry(); rej != nil {
		return nil, rej
	}

	key := DeriveCustomerKey(req.Email, req.Phone)
	span.SetAttributes(attribute.String("ondara.customer_key", key))

	b := s.buildBooking(req, key)
	if err := s.store.CreateEnquiry(ctx, b); err != nil {
		span.RecordError(err)
		return nil, err
	}

	res := &ReserveResult{Booking: b, BlockMinutes: s.cfg.BlockMinutes, CustomerKey: key}
	if s.notifier != nil {
		if err := s.notifier.EnquiryReceived(ctx, s.summary(b)); err != nil {
			s.logger.Warn("enquiry notification failed", "error", err, "booking_id", b.ID)
			res.Warning = "enquiry saved, but the studio notification could not be sent"
		}
	}

	s.logger.Info("enquiry committed", "booking_id", b.ID, "customer_key", key)
	return res, nil
}

func (s *Service) buildBooking(req *CreateBookingRequest, key string) *Booking {
	email := NormalizeEmail(req.Email)
	if !strings.Contains(email, "@") {
		email = ""
	}
	return &Booking{
		CustomerKey:       key,
		PackName:          req.PackName,
		CustomerName:      req.Name,
		PhoneDigits:       NormalizePhone(req.Phone),
		Email:             email,
		ContactPreference: req.ContactPreference,
		HomeVisit:         req.HomeVisit,
		AddressLine1:      req.AddressLine1,
		PostalCode:        req.PostalCode,
		City:              req.City,
		Message:           req.Message,
	}
}

func (s *Service) summary(b *Booking) notify.BookingSummary {
	return notify.BookingSummary{
		CustomerName: b.CustomerName,
		PhoneDigits:  b.PhoneDigits,
		Email:        b.Email,
		PackName:     b.PackName,
		Message:      b.Message,
		HomeVisit:    b.HomeVisit,
		City:         b.City,
		Start:        b.StartsAt,
		End:          b.EndsAt,
	}
}
