package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/casaondara/booking-platform/internal/availability"
	"github.com/casaondara/booking-platform/internal/blackouts"
	"github.com/casaondara/booking-platform/internal/bookings"
	"github.com/casaondara/booking-platform/internal/schedule"
	"github.com/casaondara/booking-platform/pkg/logging"
)

type memoryStore struct {
	busy     []schedule.Interval
	reserved []*bookings.Booking
}

func (s *memoryStore) ListBusyBetween(_ context.Context, from, to time.Time) ([]schedule.Interval, error) {
	var out []schedule.Interval
	for _, b := range s.busy {
		if schedule.Overlaps(from, to, b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memoryStore) CreateReserved(_ context.Context, b *bookings.Booking) error {
	b.ID = "router-test"
	b.Status = bookings.StatusReserved
	s.reserved = append(s.reserved, b)
	s.busy = append(s.busy, schedule.Interval{Kind: schedule.KindBooking, Start: *b.StartsAt, End: *b.EndsAt})
	return nil
}

func (s *memoryStore) CreateEnquiry(_ context.Context, b *bookings.Booking) error {
	b.ID = "router-test"
	b.Status = bookings.StatusEnquiry
	return nil
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

func newTestRouter(t *testing.T) (http.Handler, pgxmock.PgxPoolIface) {
	t.Helper()

	logger := logging.Default()
	madrid, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	store := &memoryStore{}
	availSvc := availability.NewService(store, nil, logger, availability.Config{
		Location:          madrid,
		BlockMinutes:      120,
		LeadTimeDays:      2,
		DefaultWindowDays: 14,
	})
	bookSvc := bookings.NewService(store, allowAllLimiter{}, nil, nil, logger, bookings.Config{
		Location:     madrid,
		BlockMinutes: 120,
		LeadTimeDays: 2,
	})

	cfg := &Config{
		Logger:              logger,
		AvailabilityHandler: availability.NewHandler(availSvc, logger),
		BookingsHandler:     bookings.NewHandler(bookSvc, logger),
		BlackoutsHandler:    blackouts.NewHandler(blackouts.NewRepository(mock), logger),
		HealthHandler: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		},
		AdminAuthSecret: "test-secret",
	}

	return New(cfg), mock
}

func TestRouterHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterAvailabilityEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/availability?days=3", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var window availability.Window
	if err := json.NewDecoder(rr.Body).Decode(&window); err != nil {
		t.Fatalf("failed to decode availability response: %v", err)
	}
	if window.Timezone != "Europe/Madrid" {
		t.Errorf("expected timezone Europe/Madrid, got %q", window.Timezone)
	}
	if len(window.Days) != 3 {
		t.Errorf("expected 3 days, got %d", len(window.Days))
	}
}

func TestRouterBookingEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := bookings.CreateBookingRequest{
		PackName: "Pack Esencial",
		Name:     "Router Test",
		Phone:    "612345678",
		Email:    "router@example.com",
		Start:    time.Now().UTC().Add(96 * time.Hour).Truncate(time.Hour).Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	var created bookings.ReserveResult
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.CustomerKey != "router@example.com" {
		t.Errorf("expected customer key router@example.com, got %s", created.CustomerKey)
	}
}

func TestRouterEnquiryEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := bookings.CreateBookingRequest{
		PackName: "Pack Premium",
		Name:     "Router Test",
		Phone:    "698765432",
		Message:  "Llamadme por la tarde",
	}

	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/enquiries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
}

func TestRouterAdminRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/blackouts", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestRouterAdminAcceptsSignedToken(t *testing.T) {
	router, mock := newTestRouter(t)

	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	mock.ExpectQuery(`SELECT id, reason, starts_at, ends_at, created_at`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "reason", "starts_at", "ends_at", "created_at"}))

	req := httptest.NewRequest(http.MethodGet, "/admin/blackouts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet pgx expectations: %v", err)
	}
}
