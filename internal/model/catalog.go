package model

import "time"

// Category groups services in the catalog (e.g. Cleaning, Plumbing).
type Category struct {
    ID          uint64    // categories.id
    Name        string    // categories.name
    Description string    // categories.description
    Active      bool      // categories.active
    CreatedAt   time.Time // categories.created_at
    UpdatedAt   time.Time // categories.updated_at
}

// Service is a bookable catalog entry.  Its rate card (base price for
// the first hour plus a per-extra-hour rate) feeds the pricing quote
// at booking creation; later edits to the rate card never touch
// existing bookings because prices are frozen into the booking row.
// All monetary amounts are integer cents to keep arithmetic exact.
//
// Fields:
//  ID                  – primary key identifier.
//  CategoryID          – owning category.
//  Name                – service name.
//  Description         – free-text description.
//  BasePriceCents      – price of the first hour in cents.
//  ExtraHourlyRateCents – price of each additional (started) hour in cents.
//  Active              – whether the service can be booked.
type Service struct {
    ID                   uint64    // services.id
    CategoryID           uint64    // services.category_id
    Name                 string    // services.name
    Description          string    // services.description
    BasePriceCents       int64     // services.base_price_cents
    ExtraHourlyRateCents int64     // services.extra_hourly_rate_cents
    Active               bool      // services.active
    CreatedAt            time.Time // services.created_at
    UpdatedAt            time.Time // services.updated_at
}
