package model

import "time"

// Rating is a customer's review of a completed booking.  At most one
// rating may exist per booking, and only for a COMPLETED booking with
// a non-null expert.
type Rating struct {
    ID         uint64    // ratings.id
    BookingID  uint64    // ratings.booking_id (unique)
    CustomerID uint64    // ratings.customer_id
    ExpertID   uint64    // ratings.expert_id
    Stars      int       // ratings.stars (1..5)
    Comment    *string   // ratings.comment (nullable)
    CreatedAt  time.Time // ratings.created_at
}
