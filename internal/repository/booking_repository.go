package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/homesolutions/marketplace/internal/lifecycle"
	"github.com/homesolutions/marketplace/internal/model"
)

// BookingRepo persists bookings in MySQL and implements
// lifecycle.BookingStore.  Every status mutation is a single conditional
// UPDATE whose WHERE clause carries the expected current state; the row
// count tells whether the compare-and-set landed.  When it did not, a
// follow-up read distinguishes a missing row (lifecycle.ErrNotFound)
// from a row someone else moved first (lifecycle.ErrStale).  MySQL
// applies each UPDATE atomically under row locks, so two racing writers
// can never both observe one affected row.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `id, customer_id, service_id, address_id, expert_id, scheduled_at,
	duration_minutes, total_price_cents, discount_cents, coupon_code, status, notes,
	created_at, updated_at`

// Create inserts the booking and populates ID and timestamps from the
// stored row.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings
		 (customer_id, service_id, address_id, scheduled_at, duration_minutes,
		  total_price_cents, discount_cents, coupon_code, status, notes)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		b.CustomerID, b.ServiceID, b.AddressID, b.ScheduledAt.UTC(), b.DurationMinutes,
		b.TotalPriceCents, b.DiscountCents, b.CouponCode, b.Status, b.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Read back to pick up created_at/updated_at defaults.
	stored, err := r.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = *stored
	return nil
}

// GetByID loads one booking, lifecycle.ErrNotFound when absent.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

// TransitionStatus moves id between two statuses with no expert
// predicate.  Used by the sweeper cancel and the payment confirmation.
func (r *BookingRepo) TransitionStatus(ctx context.Context, id uint64, from, to model.BookingStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		to, id, from)
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, res, id)
}

// AssignExpert applies CONFIRMED -> ASSIGNED, attaching the expert.  The
// expert_id IS NULL predicate makes the accept race safe: of two experts
// racing for the same booking exactly one UPDATE matches.
func (r *BookingRepo) AssignExpert(ctx context.Context, id, expertID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, expert_id = ?
		 WHERE id = ? AND status = ? AND expert_id IS NULL`,
		model.BookingAssigned, expertID, id, model.BookingConfirmed)
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, res, id)
}

// ReleaseExpert applies ASSIGNED -> CONFIRMED and clears the expert,
// succeeding only while this expert holds the booking.
func (r *BookingRepo) ReleaseExpert(ctx context.Context, id, expertID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, expert_id = NULL
		 WHERE id = ? AND status = ? AND expert_id = ?`,
		model.BookingConfirmed, id, model.BookingAssigned, expertID)
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, res, id)
}

// AdvanceByExpert moves the booking between two statuses while this
// expert holds it.
func (r *BookingRepo) AdvanceByExpert(ctx context.Context, id, expertID uint64, from, to model.BookingStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?
		 WHERE id = ? AND status = ? AND expert_id = ?`,
		to, id, from, expertID)
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, res, id)
}

// ListStalePending returns ids of bookings still PENDING_PAYMENT created
// strictly before the cutoff.
func (r *BookingRepo) ListStalePending(ctx context.Context, cutoff time.Time) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM bookings WHERE status = ? AND created_at < ?`,
		model.BookingPendingPayment, cutoff.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByCustomer returns the customer's bookings, newest first.
func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE customer_id = ? ORDER BY created_at DESC`,
		customerID)
}

// ListByExpert returns bookings this expert is or was engaged on,
// newest first.
func (r *BookingRepo) ListByExpert(ctx context.Context, expertID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE expert_id = ? ORDER BY created_at DESC`,
		expertID)
}

// ListOpen returns CONFIRMED bookings with no expert yet, soonest
// scheduled first.  This is the job board experts pick from.
func (r *BookingRepo) ListOpen(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingCols+` FROM bookings
		 WHERE status = ? AND expert_id IS NULL ORDER BY scheduled_at ASC`,
		model.BookingConfirmed)
}

func (r *BookingRepo) list(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// casOutcome classifies a zero-row conditional UPDATE.  One affected row
// is success; zero rows means either the booking does not exist
// (ErrNotFound) or it exists in some other state (ErrStale).
func (r *BookingRepo) casOutcome(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var status string
	err = r.db.QueryRowContext(ctx,
		`SELECT status FROM bookings WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return lifecycle.ErrNotFound
	}
	if err != nil {
		return err
	}
	return lifecycle.ErrStale
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	var expertID sql.NullInt64
	var coupon, notes sql.NullString
	err := row.Scan(
		&b.ID, &b.CustomerID, &b.ServiceID, &b.AddressID, &expertID, &b.ScheduledAt,
		&b.DurationMinutes, &b.TotalPriceCents, &b.DiscountCents, &coupon, &b.Status, &notes,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lifecycle.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if expertID.Valid {
		eid := uint64(expertID.Int64)
		b.ExpertID = &eid
	}
	if coupon.Valid {
		c := coupon.String
		b.CouponCode = &c
	}
	if notes.Valid {
		n := notes.String
		b.Notes = &n
	}
	return &b, nil
}
