package pricing_test

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/homesolutions/marketplace/internal/pricing"
)

func TestCompute_NoExtraChargeUpToOneHour(t *testing.T) {
    for _, mins := range []int{1, 30, 59, 60} {
        q := pricing.Compute(500_00, 200_00, mins, "")
        assert.Zero(t, q.ExtraChargeCents, "duration %d should carry no extra charge", mins)
        assert.Equal(t, int64(500_00), q.TotalPriceCents)
    }
}

func TestCompute_PartialExtraHourBillsFullHour(t *testing.T) {
    // One minute past the first hour is billed as a full extra hour.
    q := pricing.Compute(500_00, 200_00, 61, "")
    assert.Equal(t, int64(200_00), q.ExtraChargeCents)
    assert.Equal(t, int64(700_00), q.TotalPriceCents)

    // 2h31m -> 91 extra minutes -> 2 extra hours.
    q = pricing.Compute(500_00, 200_00, 151, "")
    assert.Equal(t, int64(400_00), q.ExtraChargeCents)

    // Exactly two hours -> 60 extra minutes -> 1 extra hour, no rounding up.
    q = pricing.Compute(500_00, 200_00, 120, "")
    assert.Equal(t, int64(200_00), q.ExtraChargeCents)
}

func TestCompute_CouponDiscount(t *testing.T) {
    q := pricing.Compute(500_00, 200_00, 90, "NEW50")
    assert.Equal(t, int64(50_00), q.DiscountCents)
    assert.Equal(t, int64(650_00), q.TotalPriceCents)

    // Coupon lookup is case-insensitive, matching the original promotion.
    q = pricing.Compute(500_00, 200_00, 90, "new50")
    assert.Equal(t, int64(50_00), q.DiscountCents)

    // Unknown codes yield zero discount, not an error.
    q = pricing.Compute(500_00, 200_00, 90, "NOPE")
    assert.Zero(t, q.DiscountCents)
}

func TestCompute_TotalNeverNegative(t *testing.T) {
    // A discount larger than the subtotal is clamped to a zero residual.
    q := pricing.Compute(20_00, 0, 30, "NEW50")
    assert.Equal(t, int64(20_00), q.DiscountCents)
    assert.Zero(t, q.TotalPriceCents)
}

func TestCompute_BreakdownAlwaysAddsUp(t *testing.T) {
    for _, mins := range []int{15, 60, 61, 120, 121, 600} {
        for _, code := range []string{"", "NEW50", "bogus"} {
            q := pricing.Compute(350_00, 150_00, mins, code)
            assert.Equal(t, q.BasePriceCents+q.ExtraChargeCents-q.DiscountCents, q.TotalPriceCents)
            assert.GreaterOrEqual(t, q.TotalPriceCents, int64(0))
        }
    }
}
