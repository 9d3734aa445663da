package lifecycle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homesolutions/marketplace/internal/lifecycle"
	"github.com/homesolutions/marketplace/internal/model"
)

const (
	customerID = uint64(1)
	otherCust  = uint64(2)
	expertA    = uint64(10)
	expertB    = uint64(11)
)

// newTestEngine wires an engine over fresh in-memory stores with one
// service (500.00 base, 200.00 per extra hour) and one address per
// customer.
func newTestEngine() (*lifecycle.Engine, *memBookings, *memPayments) {
	bookings := newMemBookings()
	payments := newMemPayments(bookings)
	catalog := &memCatalog{services: map[uint64]*model.Service{
		7: {ID: 7, CategoryID: 1, Name: "Deep Cleaning", BasePriceCents: 500_00, ExtraHourlyRateCents: 200_00, Active: true},
	}}
	addresses := &memAddresses{addrs: map[uint64]*model.Address{
		3: {ID: 3, UserID: customerID},
		4: {ID: 4, UserID: otherCust},
	}}
	return lifecycle.NewEngine(bookings, payments, catalog, addresses), bookings, payments
}

func validInput() lifecycle.CreateBookingInput {
	return lifecycle.CreateBookingInput{
		ServiceID:       7,
		AddressID:       3,
		ScheduledAt:     time.Now().UTC().Add(24 * time.Hour),
		DurationMinutes: 90,
	}
}

// mustCreate drives a booking into the requested status through regular
// engine operations so tests never bypass the transition path.
func mustCreate(t *testing.T, e *lifecycle.Engine, status model.BookingStatus) *model.Booking {
	t.Helper()
	ctx := context.Background()
	b, err := e.CreateBooking(ctx, customerID, validInput())
	require.NoError(t, err)
	if status == model.BookingPendingPayment {
		return b
	}
	p, err := e.CreatePayment(ctx, customerID, b.ID, model.PaymentCard)
	require.NoError(t, err)
	_, err = e.ConfirmPayment(ctx, customerID, p.ID)
	require.NoError(t, err)
	if status == model.BookingConfirmed {
		return reload(t, e, b.ID)
	}
	_, err = e.AcceptJob(ctx, expertA, b.ID)
	require.NoError(t, err)
	if status == model.BookingAssigned {
		return reload(t, e, b.ID)
	}
	_, err = e.StartJob(ctx, expertA, b.ID)
	require.NoError(t, err)
	if status == model.BookingInProgress {
		return reload(t, e, b.ID)
	}
	_, err = e.CompleteJob(ctx, expertA, b.ID)
	require.NoError(t, err)
	return reload(t, e, b.ID)
}

func reload(t *testing.T, e *lifecycle.Engine, id uint64) *model.Booking {
	t.Helper()
	b, err := e.GetBooking(context.Background(), customerID, id)
	require.NoError(t, err)
	return b
}

func TestCreateBooking_FreezesPrice(t *testing.T) {
	e, _, _ := newTestEngine()
	in := validInput()
	in.CouponCode = "NEW50"
	in.Notes = "gate code 4711"

	b, err := e.CreateBooking(context.Background(), customerID, in)
	require.NoError(t, err)

	assert.Equal(t, model.BookingPendingPayment, b.Status)
	// 500.00 base + 200.00 for the started extra half hour - 50.00 coupon.
	assert.Equal(t, int64(650_00), b.TotalPriceCents)
	assert.Equal(t, int64(50_00), b.DiscountCents)
	require.NotNil(t, b.CouponCode)
	assert.Equal(t, "NEW50", *b.CouponCode)
	require.NotNil(t, b.Notes)
	assert.Nil(t, b.ExpertID)
}

func TestCreateBooking_Validation(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	in := validInput()
	in.DurationMinutes = 0
	_, err := e.CreateBooking(ctx, customerID, in)
	var verr *lifecycle.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "duration_minutes", verr.Field)

	in = validInput()
	in.ServiceID = 999
	_, err = e.CreateBooking(ctx, customerID, in)
	var nferr *lifecycle.NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "service", nferr.Resource)

	// Address exists but belongs to another customer.
	in = validInput()
	in.AddressID = 4
	_, err = e.CreateBooking(ctx, customerID, in)
	var cerr *lifecycle.ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestCreatePayment(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()
	b := mustCreate(t, e, model.BookingPendingPayment)

	p, err := e.CreatePayment(ctx, customerID, b.ID, model.PaymentUpi)
	require.NoError(t, err)
	assert.Equal(t, b.TotalPriceCents, p.AmountCents)
	assert.Equal(t, model.PaymentPending, p.Status)
	assert.NotEmpty(t, p.TransactionID)

	// At most one payment per booking, enforced at creation.
	_, err = e.CreatePayment(ctx, customerID, b.ID, model.PaymentCard)
	var cerr *lifecycle.ConflictError
	require.ErrorAs(t, err, &cerr)

	// Wrong owner is a conflict, not a silent pass.
	b2, err := e.CreateBooking(ctx, customerID, validInput())
	require.NoError(t, err)
	_, err = e.CreatePayment(ctx, otherCust, b2.ID, model.PaymentCard)
	require.ErrorAs(t, err, &cerr)

	_, err = e.CreatePayment(ctx, customerID, b2.ID, model.PaymentMethod("IOU"))
	var verr *lifecycle.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestConfirmPayment_IdempotencyGuard(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()
	b := mustCreate(t, e, model.BookingPendingPayment)
	p, err := e.CreatePayment(ctx, customerID, b.ID, model.PaymentCard)
	require.NoError(t, err)

	got, err := e.ConfirmPayment(ctx, customerID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentSucceeded, got.Status)
	assert.Equal(t, model.BookingConfirmed, reload(t, e, b.ID).Status)

	// Confirming twice is a conflict and leaves state untouched.
	_, err = e.ConfirmPayment(ctx, customerID, p.ID)
	var cerr *lifecycle.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, model.BookingConfirmed, reload(t, e, b.ID).Status)
}

func TestAcceptJob(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()
	b := mustCreate(t, e, model.BookingConfirmed)

	got, err := e.AcceptJob(ctx, expertB, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingAssigned, got.Status)
	require.NotNil(t, got.ExpertID)
	assert.Equal(t, expertB, *got.ExpertID)

	// A second accept sees ASSIGNED, not CONFIRMED: distinguishable from 404.
	_, err = e.AcceptJob(ctx, expertA, b.ID)
	var cerr *lifecycle.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, model.BookingConfirmed, cerr.Expected)
	assert.Equal(t, model.BookingAssigned, cerr.Actual)

	var nferr *lifecycle.NotFoundError
	_, err = e.AcceptJob(ctx, expertA, 9999)
	require.ErrorAs(t, err, &nferr)
}

func TestAcceptJob_ConcurrentExpertsExactlyOneWins(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()
	b := mustCreate(t, e, model.BookingConfirmed)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, expert := range []uint64{expertA, expertB} {
		wg.Add(1)
		go func(i int, expert uint64) {
			defer wg.Done()
			_, errs[i] = e.AcceptJob(ctx, expert, b.ID)
		}(i, expert)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		var cerr *lifecycle.ConflictError
		require.ErrorAs(t, err, &cerr)
		conflicts++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	final := reload(t, e, b.ID)
	assert.Equal(t, model.BookingAssigned, final.Status)
	require.NotNil(t, final.ExpertID)
	assert.Contains(t, []uint64{expertA, expertB}, *final.ExpertID)
}

func TestDeclineJob(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()
	b := mustCreate(t, e, model.BookingAssigned)

	// Decline by an expert who does not hold the booking changes nothing.
	_, err := e.DeclineJob(ctx, expertB, b.ID)
	var cerr *lifecycle.ConflictError
	require.ErrorAs(t, err, &cerr)
	unchanged := reload(t, e, b.ID)
	assert.Equal(t, model.BookingAssigned, unchanged.Status)
	require.NotNil(t, unchanged.ExpertID)

	got, err := e.DeclineJob(ctx, expertA, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, got.Status)
	assert.Nil(t, got.ExpertID)
}

func TestArrivedAtJob_ValidatesWithoutWriting(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()
	b := mustCreate(t, e, model.BookingAssigned)
	before := reload(t, e, b.ID)

	got, err := e.ArrivedAtJob(ctx, expertA, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingAssigned, got.Status)
	assert.Equal(t, before.UpdatedAt, reload(t, e, b.ID).UpdatedAt)

	_, err = e.ArrivedAtJob(ctx, expertB, b.ID)
	var cerr *lifecycle.ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestForwardTrajectoryOnly(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	// COMPLETED is reachable only through ASSIGNED then IN_PROGRESS.
	b := mustCreate(t, e, model.BookingConfirmed)
	_, err := e.CompleteJob(ctx, expertA, b.ID)
	var cerr *lifecycle.ConflictError
	require.ErrorAs(t, err, &cerr)
	_, err = e.StartJob(ctx, expertA, b.ID)
	require.ErrorAs(t, err, &cerr)

	b = mustCreate(t, e, model.BookingCompleted)
	assert.Equal(t, model.BookingCompleted, b.Status)

	// Terminal: no transition leaves COMPLETED.
	_, err = e.StartJob(ctx, expertA, b.ID)
	require.ErrorAs(t, err, &cerr)
	_, err = e.AcceptJob(ctx, expertB, b.ID)
	require.ErrorAs(t, err, &cerr)
}

func TestCancelStale(t *testing.T) {
	e, bookings, _ := newTestEngine()
	ctx := context.Background()

	stale := mustCreate(t, e, model.BookingPendingPayment)
	bookings.backdate(stale.ID, 31*time.Minute)
	fresh := mustCreate(t, e, model.BookingPendingPayment)
	bookings.backdate(fresh.ID, 29*time.Minute)

	cancelled, err := e.CancelStale(ctx, time.Now().UTC().Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)
	assert.Equal(t, model.BookingCancelled, reload(t, e, stale.ID).Status)
	assert.Equal(t, model.BookingPendingPayment, reload(t, e, fresh.ID).Status)

	// Re-running is idempotent: the cancelled booking stays cancelled and
	// is no longer selected.
	cancelled, err = e.CancelStale(ctx, time.Now().UTC().Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, cancelled)
}

func TestConfirmPaymentRacesSweep_NeverMixedState(t *testing.T) {
	// Run the race many times; whichever compare-and-set lands first must
	// leave a coherent pair: CONFIRMED+SUCCEEDED or CANCELLED+PENDING.
	for i := 0; i < 50; i++ {
		e, bookings, payments := newTestEngine()
		ctx := context.Background()
		b := mustCreate(t, e, model.BookingPendingPayment)
		bookings.backdate(b.ID, 31*time.Minute)
		p, err := e.CreatePayment(ctx, customerID, b.ID, model.PaymentCard)
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = e.ConfirmPayment(ctx, customerID, p.ID)
		}()
		go func() {
			defer wg.Done()
			_, _ = e.CancelStale(ctx, time.Now().UTC().Add(-30*time.Minute))
		}()
		wg.Wait()

		finalBooking := reload(t, e, b.ID)
		finalPayment, gerr := payments.GetByID(ctx, p.ID)
		require.NoError(t, gerr)
		switch finalBooking.Status {
		case model.BookingConfirmed:
			assert.Equal(t, model.PaymentSucceeded, finalPayment.Status)
		case model.BookingCancelled:
			assert.Equal(t, model.PaymentPending, finalPayment.Status)
		default:
			t.Fatalf("booking ended in unexpected status %s", finalBooking.Status)
		}
	}
}
