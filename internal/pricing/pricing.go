// Package pricing computes the price breakdown frozen into a booking at
// creation time.  The computation is deterministic and side-effect free:
// it is invoked exactly once per booking and the result is stored on the
// booking row, so later rate-card edits never reprice existing bookings.
//
// All amounts are integer cents.  Integer arithmetic keeps the math
// exact across repeated computation and serialization.
package pricing

import "strings"

// Promotional coupon codes mapped to flat discounts in cents.  Discounts
// are always flat amounts, never percentages.  Unknown or absent codes
// yield zero discount.
var couponDiscountsCents = map[string]int64{
    "NEW50": 50_00,
}

// Quote is the price breakdown for one booking.
// Total = Base + Extra − Discount and is never negative.
type Quote struct {
    BasePriceCents   int64 `json:"base_price_cents"`
    ExtraChargeCents int64 `json:"extra_charge_cents"`
    DiscountCents    int64 `json:"discount_cents"`
    TotalPriceCents  int64 `json:"total_price_cents"`
}

// Compute builds a Quote from a service's rate card, the requested
// duration and an optional coupon code.
//
// The first 60 minutes are covered by the base price.  Any time beyond
// that is billed in whole extra hours, rounding up: a single extra
// minute costs a full extra hour.  If a configured discount would push
// the total below zero it is clamped so the residual is exactly zero.
func Compute(basePriceCents, extraHourlyRateCents int64, durationMinutes int, couponCode string) Quote {
    var extra int64
    if durationMinutes > 60 {
        extraMinutes := int64(durationMinutes - 60)
        extraHours := (extraMinutes + 59) / 60 // ceiling, never floor
        extra = extraHourlyRateCents * extraHours
    }

    discount := couponDiscountsCents[strings.ToUpper(strings.TrimSpace(couponCode))]
    if subtotal := basePriceCents + extra; discount > subtotal {
        discount = subtotal
    }

    return Quote{
        BasePriceCents:   basePriceCents,
        ExtraChargeCents: extra,
        DiscountCents:    discount,
        TotalPriceCents:  basePriceCents + extra - discount,
    }
}
