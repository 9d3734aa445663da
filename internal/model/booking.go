package model

import "time"

// BookingStatus enumerates the states of the booking state machine.
// The only legal moves are:
//
//  (create)        -> PENDING_PAYMENT
//  PENDING_PAYMENT -> CONFIRMED   (payment confirmation)
//  PENDING_PAYMENT -> CANCELLED   (stale-booking sweeper)
//  CONFIRMED       -> ASSIGNED    (expert accepts)
//  ASSIGNED        -> CONFIRMED   (expert declines; expert cleared)
//  ASSIGNED        -> IN_PROGRESS (expert starts)
//  IN_PROGRESS     -> COMPLETED   (expert completes)
//
// COMPLETED and CANCELLED are terminal.  Every move is applied as a
// compare-and-set on the current status so concurrent actors can never
// drive a booking down two paths at once.
type BookingStatus string

const (
    BookingPendingPayment BookingStatus = "PENDING_PAYMENT"
    BookingConfirmed      BookingStatus = "CONFIRMED"
    BookingAssigned       BookingStatus = "ASSIGNED"
    BookingInProgress     BookingStatus = "IN_PROGRESS"
    BookingCompleted      BookingStatus = "COMPLETED"
    BookingCancelled      BookingStatus = "CANCELLED"
)

// Terminal reports whether no transition leaves this status.
func (s BookingStatus) Terminal() bool {
    return s == BookingCompleted || s == BookingCancelled
}

// Booking records one scheduled service engagement from the `bookings`
// table.  Commercial fields (TotalPriceCents, DiscountCents,
// CouponCode) are fixed at creation by the pricing quote and never
// recomputed.  ExpertID is non-null only while an expert is, or
// historically was, engaged (ASSIGNED, IN_PROGRESS, COMPLETED); a
// decline clears it.
//
// Fields:
//  ID              – primary key identifier.
//  CustomerID      – customer who created the booking.
//  ServiceID       – booked catalog service.
//  AddressID       – service location (owned by the customer).
//  ExpertID        – assigned expert, null until accepted.
//  ScheduledAt     – requested start time.
//  DurationMinutes – requested duration; no reschedule operation exists.
//  TotalPriceCents – frozen total in cents.
//  DiscountCents   – frozen coupon discount in cents.
//  CouponCode      – coupon applied at creation, if any.
//  Status          – current state machine position.
//  Notes           – customer-supplied free text, never interpreted.
//  CreatedAt       – creation timestamp; the sweeper's staleness clock.
//  UpdatedAt       – bumped on every status or expert mutation.
type Booking struct {
    ID              uint64        // bookings.id
    CustomerID      uint64        // bookings.customer_id
    ServiceID       uint64        // bookings.service_id
    AddressID       uint64        // bookings.address_id
    ExpertID        *uint64       // bookings.expert_id (nullable)
    ScheduledAt     time.Time     // bookings.scheduled_at
    DurationMinutes int           // bookings.duration_minutes
    TotalPriceCents int64         // bookings.total_price_cents
    DiscountCents   int64         // bookings.discount_cents
    CouponCode      *string       // bookings.coupon_code (nullable)
    Status          BookingStatus // bookings.status
    Notes           *string       // bookings.notes (nullable)
    CreatedAt       time.Time     // bookings.created_at
    UpdatedAt       time.Time     // bookings.updated_at
}
