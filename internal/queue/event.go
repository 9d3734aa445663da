// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking's payment succeeds
// and the booking moves to CONFIRMED.  It carries enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary database.
type BookingConfirmedEvent struct {
    BookingID       uint64 `json:"booking_id"`
    CustomerID      uint64 `json:"customer_id"`
    ServiceID       uint64 `json:"service_id"`
    ServiceName     string `json:"service_name"`
    ScheduledAt     string `json:"scheduled_at"`
    DurationMinutes int    `json:"duration_minutes"`
    TotalPriceCents int64  `json:"total_price_cents"`
    PaymentMethod   string `json:"payment_method"`
    TransactionID   string `json:"transaction_id"`
    ConfirmedAt     string `json:"confirmed_at"`
}
