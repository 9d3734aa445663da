package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/homesolutions/marketplace/internal/lifecycle"
	"github.com/homesolutions/marketplace/internal/model"
)

// PaymentRepo persists payments and implements lifecycle.PaymentStore.
// The payments table carries UNIQUE(booking_id), so at most one payment
// can ever exist per booking; a duplicate insert surfaces as MySQL
// error 1062 and is mapped to lifecycle.ErrPaymentExists.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentCols = `id, booking_id, amount_cents, method, status, transaction_id, created_at, updated_at`

// Create inserts the payment and populates ID and timestamps.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (booking_id, amount_cents, method, status, transaction_id)
		 VALUES (?,?,?,?,?)`,
		p.BookingID, p.AmountCents, p.Method, p.Status, p.TransactionID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return lifecycle.ErrPaymentExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	stored, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// GetByID loads one payment, lifecycle.ErrNotFound when absent.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (*model.Payment, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE id = ?`, id))
}

// GetByBooking loads the payment attached to a booking, if any.
func (r *PaymentRepo) GetByBooking(ctx context.Context, bookingID uint64) (*model.Payment, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE booking_id = ?`, bookingID))
}

// ConfirmWithBooking marks the payment SUCCEEDED and its booking
// CONFIRMED in one transaction.  Both UPDATEs are conditional; if either
// matches no row the whole transaction rolls back, so a SUCCEEDED
// payment can never sit on a booking the sweeper cancelled first.  The
// booking update is the commit point: it is the one a concurrent
// sweeper competes with.
func (r *PaymentRepo) ConfirmWithBooking(ctx context.Context, paymentID, bookingID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = ? WHERE id = ? AND status <> ?`,
		model.PaymentSucceeded, paymentID, model.PaymentSucceeded)
	if err != nil {
		return err
	}
	if err := oneRowOr(ctx, tx, res,
		`SELECT 1 FROM payments WHERE id = ?`, paymentID); err != nil {
		return err
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		model.BookingConfirmed, bookingID, model.BookingPendingPayment)
	if err != nil {
		return err
	}
	if err := oneRowOr(ctx, tx, res,
		`SELECT 1 FROM bookings WHERE id = ?`, bookingID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// oneRowOr succeeds when the conditional UPDATE hit exactly one row.
// Otherwise it probes for the row inside the same transaction and
// reports ErrNotFound or ErrStale accordingly.
func oneRowOr(ctx context.Context, tx *sql.Tx, res sql.Result, probe string, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var one int
	err = tx.QueryRowContext(ctx, probe, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return lifecycle.ErrNotFound
	}
	if err != nil {
		return err
	}
	return lifecycle.ErrStale
}

func (r *PaymentRepo) scanOne(row *sql.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.Method, &p.Status,
		&p.TransactionID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lifecycle.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
