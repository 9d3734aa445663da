package lifecycle

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/homesolutions/marketplace/internal/model"
	"github.com/homesolutions/marketplace/internal/pricing"
)

// Engine validates and applies every booking state change.  It depends
// only on the store interfaces in stores.go; callers supply the already
// authenticated actor id with each operation, so the engine holds no
// ambient identity.
type Engine struct {
	bookings  BookingStore
	payments  PaymentStore
	catalog   ServiceCatalog
	addresses AddressBook
}

// NewEngine constructs an Engine.  All dependencies must be non-nil.
func NewEngine(bookings BookingStore, payments PaymentStore, catalog ServiceCatalog, addresses AddressBook) *Engine {
	if bookings == nil || payments == nil || catalog == nil || addresses == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{bookings: bookings, payments: payments, catalog: catalog, addresses: addresses}
}

// CreateBookingInput carries the customer-supplied fields for a new
// booking.  CouponCode and Notes may be empty.
type CreateBookingInput struct {
	ServiceID       uint64
	AddressID       uint64
	ScheduledAt     time.Time
	DurationMinutes int
	CouponCode      string
	Notes           string
}

// CreateBooking validates references, freezes the price via the pricing
// quote and persists the booking in PENDING_PAYMENT.  The price fields
// are set here exactly once and never recomputed.
func (e *Engine) CreateBooking(ctx context.Context, customerID uint64, in CreateBookingInput) (*model.Booking, error) {
	if in.DurationMinutes <= 0 {
		return nil, &ValidationError{Field: "duration_minutes", Reason: "must be positive"}
	}
	if in.ScheduledAt.IsZero() {
		return nil, &ValidationError{Field: "scheduled_at", Reason: "required"}
	}

	svc, err := e.catalog.GetService(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Resource: "service", ID: in.ServiceID}
		}
		return nil, err
	}
	addr, err := e.addresses.GetAddress(ctx, in.AddressID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Resource: "address", ID: in.AddressID}
		}
		return nil, err
	}
	if addr.UserID != customerID {
		return nil, &ConflictError{Op: "create booking", Reason: "address does not belong to the customer"}
	}

	q := pricing.Compute(svc.BasePriceCents, svc.ExtraHourlyRateCents, in.DurationMinutes, in.CouponCode)

	b := &model.Booking{
		CustomerID:      customerID,
		ServiceID:       svc.ID,
		AddressID:       addr.ID,
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: in.DurationMinutes,
		TotalPriceCents: q.TotalPriceCents,
		DiscountCents:   q.DiscountCents,
		Status:          model.BookingPendingPayment,
	}
	if in.CouponCode != "" {
		code := in.CouponCode
		b.CouponCode = &code
	}
	if in.Notes != "" {
		notes := in.Notes
		b.Notes = &notes
	}
	if err := e.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBooking loads a booking and enforces customer ownership.
func (e *Engine) GetBooking(ctx context.Context, customerID, bookingID uint64) (*model.Booking, error) {
	b, err := e.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, &ConflictError{Op: "get booking", Reason: "booking does not belong to the customer"}
	}
	return b, nil
}

// CreatePayment opens settlement for a booking.  The booking must belong
// to the customer and still be PENDING_PAYMENT, and no payment may exist
// yet (at-most-one per booking is enforced here at creation, backed by
// the store's uniqueness guarantee).  The amount is copied from the
// booking's frozen total and a fresh transaction id is assigned.
func (e *Engine) CreatePayment(ctx context.Context, customerID, bookingID uint64, method model.PaymentMethod) (*model.Payment, error) {
	if _, ok := model.ParsePaymentMethod(string(method)); !ok {
		return nil, &ValidationError{Field: "method", Reason: "unknown payment method"}
	}
	b, err := e.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, &ConflictError{Op: "create payment", Reason: "booking does not belong to the customer"}
	}
	if b.Status != model.BookingPendingPayment {
		return nil, &ConflictError{Op: "create payment", Expected: model.BookingPendingPayment, Actual: b.Status}
	}

	p := &model.Payment{
		BookingID:     b.ID,
		AmountCents:   b.TotalPriceCents,
		Method:        method,
		Status:        model.PaymentPending,
		TransactionID: uuid.NewString(),
	}
	if err := e.payments.Create(ctx, p); err != nil {
		if errors.Is(err, ErrPaymentExists) {
			return nil, &ConflictError{Op: "create payment", Reason: "payment already exists for this booking"}
		}
		return nil, err
	}
	return p, nil
}

// ConfirmPayment asserts settlement success for a pending payment.  On
// success the payment becomes SUCCEEDED and its booking CONFIRMED in a
// single atomic store operation.  Confirming an already-succeeded
// payment is a conflict, never a silent re-apply; losing the race to
// the sweeper's cancel is a conflict too, leaving the payment pending.
func (e *Engine) ConfirmPayment(ctx context.Context, customerID, paymentID uint64) (*model.Payment, error) {
	p, err := e.loadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	b, err := e.loadBooking(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, &ConflictError{Op: "confirm payment", Reason: "payment does not belong to the customer"}
	}
	if p.Status == model.PaymentSucceeded {
		return nil, &ConflictError{Op: "confirm payment", Reason: "payment is already confirmed"}
	}

	if err := e.payments.ConfirmWithBooking(ctx, p.ID, p.BookingID); err != nil {
		if errors.Is(err, ErrStale) {
			return nil, e.statusConflict(ctx, "confirm payment", p.BookingID, model.BookingPendingPayment)
		}
		return nil, err
	}
	return e.loadPayment(ctx, paymentID)
}

// AcceptJob attaches the expert to a CONFIRMED booking.  The check and
// the write are one compare-and-set: when two experts race, exactly one
// wins and the loser observes a conflict naming the actual status.
func (e *Engine) AcceptJob(ctx context.Context, expertID, bookingID uint64) (*model.Booking, error) {
	err := e.bookings.AssignExpert(ctx, bookingID, expertID)
	switch {
	case err == nil:
		return e.loadBooking(ctx, bookingID)
	case errors.Is(err, ErrNotFound):
		return nil, &NotFoundError{Resource: "booking", ID: bookingID}
	case errors.Is(err, ErrStale):
		return nil, e.statusConflict(ctx, "accept job", bookingID, model.BookingConfirmed)
	default:
		return nil, err
	}
}

// DeclineJob releases an ASSIGNED booking back to CONFIRMED, clearing
// the expert.  Only the currently assigned expert may decline.
func (e *Engine) DeclineJob(ctx context.Context, expertID, bookingID uint64) (*model.Booking, error) {
	err := e.bookings.ReleaseExpert(ctx, bookingID, expertID)
	switch {
	case err == nil:
		return e.loadBooking(ctx, bookingID)
	case errors.Is(err, ErrNotFound):
		return nil, &NotFoundError{Resource: "booking", ID: bookingID}
	case errors.Is(err, ErrStale):
		return nil, &ConflictError{Op: "decline job", Reason: "booking is not assigned to this expert"}
	default:
		return nil, err
	}
}

// ArrivedAtJob validates that the expert holds the booking in ASSIGNED.
// It writes nothing: arrival has no state of its own in the machine.
func (e *Engine) ArrivedAtJob(ctx context.Context, expertID, bookingID uint64) (*model.Booking, error) {
	b, err := e.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ExpertID == nil || *b.ExpertID != expertID {
		return nil, &ConflictError{Op: "arrive at job", Reason: "booking is not assigned to this expert"}
	}
	if b.Status != model.BookingAssigned {
		return nil, &ConflictError{Op: "arrive at job", Expected: model.BookingAssigned, Actual: b.Status}
	}
	return b, nil
}

// StartJob moves the expert's ASSIGNED booking into IN_PROGRESS.
func (e *Engine) StartJob(ctx context.Context, expertID, bookingID uint64) (*model.Booking, error) {
	return e.advance(ctx, "start job", expertID, bookingID, model.BookingAssigned, model.BookingInProgress)
}

// CompleteJob moves the expert's IN_PROGRESS booking into COMPLETED.
func (e *Engine) CompleteJob(ctx context.Context, expertID, bookingID uint64) (*model.Booking, error) {
	return e.advance(ctx, "complete job", expertID, bookingID, model.BookingInProgress, model.BookingCompleted)
}

// CancelStale cancels every booking still PENDING_PAYMENT and created
// before the cutoff, through the same compare-and-set path as every
// other transition.  A booking paid for between the listing and the
// cancel loses nothing: its CAS fails and it is skipped for this run.
// Returns the number of bookings actually cancelled.
func (e *Engine) CancelStale(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := e.bookings.ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for _, id := range ids {
		err := e.bookings.TransitionStatus(ctx, id, model.BookingPendingPayment, model.BookingCancelled)
		switch {
		case err == nil:
			cancelled++
		case errors.Is(err, ErrStale), errors.Is(err, ErrNotFound):
			// Lost the race to a confirming payment; expected, not an error.
			log.Printf("lifecycle: skip cancel of booking %d: no longer pending", id)
		default:
			return cancelled, err
		}
	}
	return cancelled, nil
}

func (e *Engine) advance(ctx context.Context, op string, expertID, bookingID uint64, from, to model.BookingStatus) (*model.Booking, error) {
	err := e.bookings.AdvanceByExpert(ctx, bookingID, expertID, from, to)
	switch {
	case err == nil:
		return e.loadBooking(ctx, bookingID)
	case errors.Is(err, ErrNotFound):
		return nil, &NotFoundError{Resource: "booking", ID: bookingID}
	case errors.Is(err, ErrStale):
		b, lerr := e.loadBooking(ctx, bookingID)
		if lerr != nil {
			return nil, lerr
		}
		if b.ExpertID == nil || *b.ExpertID != expertID {
			return nil, &ConflictError{Op: op, Reason: "booking is not assigned to this expert"}
		}
		return nil, &ConflictError{Op: op, Expected: from, Actual: b.Status}
	default:
		return nil, err
	}
}

// statusConflict re-reads a booking after a failed CAS to report the
// status actually found.  The extra read happens on the error path only.
func (e *Engine) statusConflict(ctx context.Context, op string, bookingID uint64, expected model.BookingStatus) error {
	b, err := e.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	return &ConflictError{Op: op, Expected: expected, Actual: b.Status}
}

func (e *Engine) loadBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := e.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: id}
		}
		return nil, err
	}
	return b, nil
}

func (e *Engine) loadPayment(ctx context.Context, id uint64) (*model.Payment, error) {
	p, err := e.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Resource: "payment", ID: id}
		}
		return nil, err
	}
	return p, nil
}
