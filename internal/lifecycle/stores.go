package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/homesolutions/marketplace/internal/model"
)

// Sentinel errors returned by store implementations.  The engine maps
// them onto the typed errors in errors.go; nothing above the engine
// should see them.
var (
	// ErrNotFound means the addressed row does not exist at all.
	ErrNotFound = errors.New("not found")
	// ErrStale means a compare-and-set matched the row by id but not by
	// its expected state: someone else moved it first.
	ErrStale = errors.New("stale state")
	// ErrPaymentExists means a payment row already exists for the booking.
	ErrPaymentExists = errors.New("payment already exists for booking")
)

// BookingStore is the persistent collection of bookings.  Every mutating
// method is a linearizable compare-and-set keyed on the expected current
// status (and, where relevant, the expected owning expert): when the row
// exists but no longer matches, implementations return ErrStale without
// writing anything.  Reads and writes may block on I/O; implementations
// must not require callers to hold any in-process lock.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)

	// TransitionStatus moves id from one status to another with no
	// expert-ownership predicate.  Used for the sweeper cancel.
	TransitionStatus(ctx context.Context, id uint64, from, to model.BookingStatus) error

	// AssignExpert applies CONFIRMED -> ASSIGNED and attaches the expert,
	// succeeding only while the booking is CONFIRMED with no expert.
	AssignExpert(ctx context.Context, id, expertID uint64) error

	// ReleaseExpert applies ASSIGNED -> CONFIRMED and clears the expert,
	// succeeding only while this expert holds the booking.
	ReleaseExpert(ctx context.Context, id, expertID uint64) error

	// AdvanceByExpert moves id from one status to another, succeeding
	// only while this expert holds the booking in the expected status.
	AdvanceByExpert(ctx context.Context, id, expertID uint64, from, to model.BookingStatus) error

	// ListStalePending returns ids of bookings still PENDING_PAYMENT and
	// created strictly before the cutoff.
	ListStalePending(ctx context.Context, cutoff time.Time) ([]uint64, error)
}

// PaymentStore is the persistent collection of payments, one-to-one with
// bookings.
type PaymentStore interface {
	// Create inserts a new payment; ErrPaymentExists when the booking
	// already has one.
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id uint64) (*model.Payment, error)

	// ConfirmWithBooking atomically marks the payment SUCCEEDED and its
	// booking CONFIRMED.  Both writes are conditional (payment not yet
	// SUCCEEDED, booking still PENDING_PAYMENT) and are applied together
	// or not at all: a SUCCEEDED payment must never end up attached to a
	// booking the sweeper cancelled first.  Returns ErrStale when either
	// precondition no longer holds.
	ConfirmWithBooking(ctx context.Context, paymentID, bookingID uint64) error
}

// ServiceCatalog resolves a service's rate card at booking creation.
// Catalog management itself lives outside this package.
type ServiceCatalog interface {
	GetService(ctx context.Context, id uint64) (*model.Service, error)
}

// AddressBook resolves a customer address so ownership can be checked
// at booking creation.
type AddressBook interface {
	GetAddress(ctx context.Context, id uint64) (*model.Address, error)
}
