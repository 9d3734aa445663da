package repository

import (
	"context"
	"database/sql"

	"github.com/homesolutions/marketplace/internal/model"
)

// TicketRepo persists support tickets.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketCols = `id, user_id, booking_id, subject, description, status, priority, created_at, updated_at`

// Create inserts a ticket and populates ID and timestamps.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tickets (user_id, booking_id, subject, description, status, priority)
		 VALUES (?,?,?,?,?,?)`,
		t.UserID, t.BookingID, t.Subject, t.Description, t.Status, t.Priority)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM tickets WHERE id = ?`, t.ID).
		Scan(&t.CreatedAt, &t.UpdatedAt)
}

// ListByUser returns the user's tickets, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketCols+` FROM tickets WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		var bookingID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.UserID, &bookingID, &t.Subject, &t.Description,
			&t.Status, &t.Priority, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if bookingID.Valid {
			bid := uint64(bookingID.Int64)
			t.BookingID = &bid
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
