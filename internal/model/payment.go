package model

import "time"

// PaymentMethod enumerates how a customer settles a booking.
type PaymentMethod string

const (
    PaymentCard       PaymentMethod = "CARD"
    PaymentUpi        PaymentMethod = "UPI"
    PaymentNetBanking PaymentMethod = "NET_BANKING"
    PaymentWallet     PaymentMethod = "WALLET"
    PaymentCash       PaymentMethod = "CASH"
)

// ParsePaymentMethod normalizes a client-supplied method string.  The
// second return value is false for unknown methods.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
    switch PaymentMethod(s) {
    case PaymentCard, PaymentUpi, PaymentNetBanking, PaymentWallet, PaymentCash:
        return PaymentMethod(s), true
    }
    return "", false
}

// PaymentStatus enumerates settlement states.  A payment reaching
// SUCCEEDED is the sole trigger that moves its booking from
// PENDING_PAYMENT to CONFIRMED, and a SUCCEEDED payment can never be
// confirmed again.
type PaymentStatus string

const (
    PaymentPending   PaymentStatus = "PENDING"
    PaymentSucceeded PaymentStatus = "SUCCEEDED"
    PaymentFailed    PaymentStatus = "FAILED"
    PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment is the monetary settlement for exactly one booking, from the
// `payments` table.  booking_id carries a UNIQUE constraint so at most
// one payment can ever exist per booking; the amount is copied from
// the booking's frozen total at creation time.
//
// Fields:
//  ID            – primary key identifier.
//  BookingID     – the settled booking (unique).
//  AmountCents   – amount in cents, copied from the booking total.
//  Method        – payment method.
//  Status        – settlement state.
//  TransactionID – unique opaque token assigned at creation (audit/idempotency).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Payment struct {
    ID            uint64        // payments.id
    BookingID     uint64        // payments.booking_id
    AmountCents   int64         // payments.amount_cents
    Method        PaymentMethod // payments.method
    Status        PaymentStatus // payments.status
    TransactionID string        // payments.transaction_id
    CreatedAt     time.Time     // payments.created_at
    UpdatedAt     time.Time     // payments.updated_at
}
