package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/casaondara/booking-platform/internal/customers"
	"github.com/casaondara/booking-platform/internal/schedule"
)

// DB is the pgx surface the repository needs; pgxpool.Pool and pgxmock
// pools both satisfy it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository provides persistence for bookings and the busy-range reads
// the availability calculator filters against.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("bookings: db required")
	}
	return &Repository{db: db}
}

// ListBusyBetween returns every busy interval intersecting the half-open
// range [from, to): reserved bookings plus blackout windows. Rows are read
// fresh on every call.
func (r *Repository) ListBusyBetween(ctx context.Context, from, to time.Time) ([]schedule.Interval, error) {
	var busy []schedule.Interval

	rows, err := r.db.Query(ctx, `
		SELECT starts_at, ends_at FROM bookings
		WHERE status = 'reserved' AND starts_at < $2 AND ends_at > $1
		ORDER BY starts_at ASC`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("bookings: busy range query: %w", err)
	}
	busy, err = appendIntervals(busy, rows, schedule.KindBooking)
	if err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT starts_at, ends_at FROM blackout_windows
		WHERE starts_at < $2 AND ends_at > $1
		ORDER BY starts_at ASC`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("bookings: blackout range query: %w", err)
	}
	busy, err = appendIntervals(busy, rows, schedule.KindBlackout)
	if err != nil {
		return nil, err
	}

	return busy, nil
}

func appendIntervals(busy []schedule.Interval, rows pgx.Rows, kind schedule.IntervalKind) ([]schedule.Interval, error) {
	defer rows.Close()
	for rows.Next() {
		var start, end time.Time
		if err := rows.Scan(&start, &end); err != nil {
			return nil, err
		}
		busy = append(busy, schedule.Interval{Kind: kind, Start: start, End: end})
	}
	return busy, rows.Err()
}

// CreateReserved commits a reservation: booking row, contact-log row and
// customer upsert in one transaction. An exclusion-constraint violation on
// the booking insert maps to ErrSlotConflict so the service can reject the
// loser of a storage race as SLOT_TAKEN.
func (r *Repository) CreateReserved(ctx context.Context, b *Booking) error {
	return r.create(ctx, b, StatusReserved)
}

// CreateEnquiry commits a contact-me-later row with null start/end.
func (r *Repository) CreateEnquiry(ctx context.Context, b *Booking) error {
	return r.create(ctx, b, StatusEnquiry)
}

func (r *Repository) create(ctx context.Context, b *Booking, status string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("bookings: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b.ID = uuid.NewString()
	b.Status = status

	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (id, customer_key, status, pack_name, customer_name, phone,
		    email, contact_preference, home_visit, address_line1, postal_code, city,
		    message, starts_at, ends_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at`,
		b.ID, b.CustomerKey, b.Status, b.PackName, b.CustomerName, b.PhoneDigits,
		b.Email, b.ContactPreference, b.HomeVisit, b.AddressLine1, b.PostalCode, b.City,
		b.Message, b.StartsAt, b.EndsAt,
	).Scan(&b.CreatedAt)
	if err != nil {
		if isOverlapViolation(err) {
			return ErrSlotConflict
		}
		return fmt.Errorf("bookings: insert: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO contact_log (customer_key, kind, pack_name, detail)
		VALUES ($1, $2, $3, $4)`,
		b.CustomerKey, b.Status, b.PackName, b.Message,
	); err != nil {
		return fmt.Errorf("bookings: contact log insert: %w", err)
	}

	if err := customers.Upsert(ctx, tx, &customers.Customer{
		CustomerKey: b.CustomerKey,
		Name:        b.CustomerName,
		Phone:       b.PhoneDigits,
		Email:       b.Email,
		City:        b.City,
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("bookings: commit: %w", err)
	}
	return nil
}

// isOverlapViolation recognizes the bookings_no_overlap exclusion
// constraint (23P01) and unique violations (23505).
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23P01" || pgErr.Code == "23505"
}
