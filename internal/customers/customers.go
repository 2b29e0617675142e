package customers

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// StatusNew is the pipeline status assigned when a customer first appears.
// Later stages are set from the admin surface, not here.
const StatusNew = "nuevo"

// Customer is the pipeline record keyed by customer key. Its status is the
// canonical pipeline stage the admin view joins back onto bookings.
type Customer struct {
	CustomerKey string    `json:"customer_key"`
	Status      string    `json:"status"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	City        string    `json:"city"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Execer is satisfied by pgxpool.Pool, pgx.Tx and pgxmock pools, so the
// upsert can run standalone or inside a booking transaction.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Upsert inserts or merges the customer row for c.CustomerKey.
//
// TODO: the merge resets status to "nuevo" on every booking, so returning
// customers lose their pipeline stage. Decide with the studio whether the
// conflict branch should keep customers.status instead.
func Upsert(ctx context.Context, db Execer, c *Customer) error {
	_, err := db.Exec(ctx, `
		INSERT INTO customers (customer_key, status, name, phone, email, city, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (customer_key) DO UPDATE SET
		    status=EXCLUDED.status, name=EXCLUDED.name, phone=EXCLUDED.phone,
		    email=EXCLUDED.email, city=EXCLUDED.city, updated_at=$7`,
		c.CustomerKey, StatusNew, c.Name, c.Phone, c.Email, c.City, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("customers: upsert %s: %w", c.CustomerKey, err)
	}
	return nil
}
