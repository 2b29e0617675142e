package blackouts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Blackout is an externally declared unavailable window not tied to a
// customer booking, half-open [StartsAt, EndsAt).
type Blackout struct {
	ID        string    `json:"id"`
	Reason    string    `json:"reason"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateBlackoutRequest is the admin request body for declaring a window.
type CreateBlackoutRequest struct {
	Reason   string    `json:"reason"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Validate checks the window is well-formed.
func (r *CreateBlackoutRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return fmt.Errorf("reason is required")
	}
	if r.StartsAt.IsZero() || r.EndsAt.IsZero() || !r.EndsAt.After(r.StartsAt) {
		return fmt.Errorf("window must end after it starts")
	}
	return nil
}

// DB is the pgx surface the repository needs; pgxpool.Pool and pgxmock
// pools both satisfy it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists blackout windows.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("blackouts: db required")
	}
	return &Repository{db: db}
}

// Create inserts a blackout window.
func (r *Repository) Create(ctx context.Context, req *CreateBlackoutRequest) (*Blackout, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	var createdAt time.Time
	err := r.db.QueryRow(ctx, `
		INSERT INTO blackout_windows (id, reason, starts_at, ends_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		id, req.Reason, req.StartsAt.UTC(), req.EndsAt.UTC(),
	).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("blackouts: insert failed: %w", err)
	}
	return &Blackout{
		ID:        id.String(),
		Reason:    req.Reason,
		StartsAt:  req.StartsAt.UTC(),
		EndsAt:    req.EndsAt.UTC(),
		CreatedAt: createdAt,
	}, nil
}

// List returns blackout windows ending after from, soonest first.
func (r *Repository) List(ctx context.Context, from time.Time) ([]Blackout, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, reason, starts_at, ends_at, created_at
		FROM blackout_windows
		WHERE ends_at > $1
		ORDER BY starts_at ASC`, from.UTC())
	if err != nil {
		return nil, fmt.Errorf("blackouts: list failed: %w", err)
	}
	defer rows.Close()

	var out []Blackout
	for rows.Next() {
		var b Blackout
		if err := rows.Scan(&b.ID, &b.Reason, &b.StartsAt, &b.EndsAt, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if out == nil {
		out = []Blackout{}
	}
	return out, rows.Err()
}

// Delete removes a blackout window by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM blackout_windows WHERE id = $1`, id)
	return err
}
