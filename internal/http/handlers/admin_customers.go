package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casaondara/booking-platform/pkg/logging"
)

// AdminCustomersHandler handles admin API endpoints for the customer
// pipeline. It reads through database/sql so the admin surface can run
// against a separate read-only connection.
type AdminCustomersHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewAdminCustomersHandler creates a new admin customers handler.
func NewAdminCustomersHandler(db *sql.DB, logger *logging.Logger) *AdminCustomersHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminCustomersHandler{
		db:     db,
		logger: logger,
	}
}

// CustomerResponse represents a pipeline customer in API responses.
type CustomerResponse struct {
	CustomerKey   string  `json:"customer_key"`
	Status        string  `json:"status"`
	Name          string  `json:"name,omitempty"`
	Phone         string  `json:"phone,omitempty"`
	Email         string  `json:"email,omitempty"`
	City          string  `json:"city,omitempty"`
	BookingCount  int     `json:"booking_count"`
	LastPackName  string  `json:"last_pack_name,omitempty"`
	LastBookingAt *string `json:"last_booking_at,omitempty"`
	UpdatedAt     string  `json:"updated_at"`
}

// CustomersListResponse represents a paginated pipeline view.
type CustomersListResponse struct {
	Customers  []CustomerResponse `json:"customers"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// Pipeline stages an admin can move a customer to.
var validCustomerStatuses = map[string]bool{
	"nuevo":      true,
	"contactado": true,
	"visitado":   true,
	"cerrado":    true,
	"descartado": true,
}

// ListCustomers returns the paginated pipeline view, each customer joined
// to their latest booking.
// GET /admin/customers
func (h *AdminCustomersHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	status := r.URL.Query().Get("status")
	offset := (page - 1) * pageSize

	countQuery := `SELECT COUNT(*) FROM customers`
	countArgs := []any{}
	if status != "" {
		countQuery += ` WHERE status = $1`
		countArgs = append(countArgs, status)
	}
	var total int
	if err := h.db.QueryRowContext(r.Context(), countQuery, countArgs...).Scan(&total); err != nil {
		h.logger.Error("failed to count customers", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Subqueries avoid JOIN inflation when a customer has several bookings.
	query := `
		SELECT c.customer_key, c.status, c.name, c.phone, c.email, c.city, c.updated_at,
			   (SELECT COUNT(*) FROM bookings b WHERE b.customer_key = c.customer_key) as booking_count,
			   (SELECT b.pack_name FROM bookings b WHERE b.customer_key = c.customer_key ORDER BY b.created_at DESC LIMIT 1) as last_pack_name,
			   (SELECT MAX(b.starts_at) FROM bookings b WHERE b.customer_key = c.customer_key AND b.status = 'reserved') as last_booking_at
		FROM customers c
	`
	args := []any{}
	argNum := 1
	if status != "" {
		query += " WHERE c.status = $" + strconv.Itoa(argNum)
		args = append(args, status)
		argNum++
	}
	query += " ORDER BY c.updated_at DESC"
	query += " LIMIT $" + strconv.Itoa(argNum) + " OFFSET $" + strconv.Itoa(argNum+1)
	args = append(args, pageSize, offset)

	rows, err := h.db.QueryContext(r.Context(), query, args...)
	if err != nil {
		h.logger.Error("failed to query customers", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var customers []CustomerResponse
	for rows.Next() {
		var c CustomerResponse
		var name, phone, email, city, lastPack sql.NullString
		var updatedAt time.Time
		var lastBooking sql.NullTime

		err := rows.Scan(
			&c.CustomerKey, &c.Status, &name, &phone, &email, &city, &updatedAt,
			&c.BookingCount, &lastPack, &lastBooking,
		)
		if err != nil {
			h.logger.Error("failed to scan customer", "error", err)
			continue
		}

		c.Name = name.String
		c.Phone = phone.String
		c.Email = email.String
		c.City = city.String
		c.LastPackName = lastPack.String
		c.UpdatedAt = updatedAt.Format(time.RFC3339)
		if lastBooking.Valid {
			formatted := lastBooking.Time.Format(time.RFC3339)
			c.LastBookingAt = &formatted
		}

		customers = append(customers, c)
	}

	if customers == nil {
		customers = []CustomerResponse{}
	}

	totalPages := (total + pageSize - 1) / pageSize
	response := CustomersListResponse{
		Customers:  customers,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// UpdateCustomerStatusRequest moves a customer to another pipeline stage.
type UpdateCustomerStatusRequest struct {
	Status string `json:"status"`
}

// UpdateCustomerStatus updates a customer's pipeline stage.
// PATCH /admin/customers/{customerKey}
func (h *AdminCustomersHandler) UpdateCustomerStatus(w http.ResponseWriter, r *http.Request) {
	customerKey := chi.URLParam(r, "customerKey")
	if customerKey == "" {
		http.Error(w, "missing customerKey", http.StatusBadRequest)
		return
	}

	var req UpdateCustomerStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !validCustomerStatuses[req.Status] {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	result, err := h.db.ExecContext(r.Context(),
		`UPDATE customers SET status = $1, updated_at = $2 WHERE customer_key = $3`,
		req.Status, time.Now().UTC(), customerKey,
	)
	if err != nil {
		h.logger.Error("failed to update customer status", "error", err, "customer_key", customerKey)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		http.Error(w, "customer not found", http.StatusNotFound)
		return
	}

	h.logger.Info("customer status updated", "customer_key", customerKey, "status", req.Status)
	w.WriteHeader(http.StatusNoContent)
}

// CustomerStatsResponse contains aggregated pipeline statistics.
type CustomerStatsResponse struct {
	TotalCustomers int            `json:"total_customers"`
	ByStatus       map[string]int `json:"by_status"`
	NewThisWeek    int            `json:"new_this_week"`
}

// GetCustomerStats returns aggregated pipeline statistics.
// GET /admin/customers/stats
func (h *AdminCustomersHandler) GetCustomerStats(w http.ResponseWriter, r *http.Request) {
	stats := CustomerStatsResponse{
		ByStatus: make(map[string]int),
	}

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM customers`,
	).Scan(&stats.TotalCustomers)

	rows, err := h.db.QueryContext(r.Context(),
		`SELECT status, COUNT(*) FROM customers GROUP BY status`,
	)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var status string
			var count int
			if rows.Scan(&status, &count) == nil {
				stats.ByStatus[status] = count
			}
		}
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM customers WHERE updated_at >= $1 AND status = 'nuevo'`, weekAgo,
	).Scan(&stats.NewThisWeek)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
