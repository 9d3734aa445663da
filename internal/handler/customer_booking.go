package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/homesolutions/marketplace/internal/lifecycle"
	"github.com/homesolutions/marketplace/internal/model"
	"github.com/homesolutions/marketplace/internal/pricing"
	"github.com/homesolutions/marketplace/internal/repository"
)

// CustomerHandler bundles everything the customer-facing endpoints need.
// All state transitions go through the lifecycle engine; the repositories
// are used directly only for reads and for resources outside the state
// machine (addresses, ratings, tickets).
type CustomerHandler struct {
	Engine    *lifecycle.Engine
	Bookings  *repository.BookingRepo
	Payments  *repository.PaymentRepo
	Catalog   *repository.CatalogRepo
	Addresses *repository.AddressRepo
	Ratings   *repository.RatingRepo
	Tickets   *repository.TicketRepo
}

// NewCustomerHandler constructs a CustomerHandler and panics on nil deps.
func NewCustomerHandler(engine *lifecycle.Engine, bookings *repository.BookingRepo, payments *repository.PaymentRepo, catalog *repository.CatalogRepo, addresses *repository.AddressRepo, ratings *repository.RatingRepo, tickets *repository.TicketRepo) *CustomerHandler {
	if engine == nil || bookings == nil || payments == nil || catalog == nil || addresses == nil || ratings == nil || tickets == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{
		Engine:    engine,
		Bookings:  bookings,
		Payments:  payments,
		Catalog:   catalog,
		Addresses: addresses,
		Ratings:   ratings,
		Tickets:   tickets,
	}
}

// bookingResp is the wire form of a booking shared by customer and
// expert endpoints.
type bookingResp struct {
	ID              uint64  `json:"id"`
	CustomerID      uint64  `json:"customer_id"`
	ServiceID       uint64  `json:"service_id"`
	AddressID       uint64  `json:"address_id"`
	ExpertID        *uint64 `json:"expert_id,omitempty"`
	ScheduledAt     string  `json:"scheduled_at"`
	DurationMinutes int     `json:"duration_minutes"`
	TotalPriceCents int64   `json:"total_price_cents"`
	DiscountCents   int64   `json:"discount_cents"`
	CouponCode      *string `json:"coupon_code,omitempty"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toBookingResp(b *model.Booking) bookingResp {
	return bookingResp{
		ID:              b.ID,
		CustomerID:      b.CustomerID,
		ServiceID:       b.ServiceID,
		AddressID:       b.AddressID,
		ExpertID:        b.ExpertID,
		ScheduledAt:     b.ScheduledAt.UTC().Format(time.RFC3339),
		DurationMinutes: b.DurationMinutes,
		TotalPriceCents: b.TotalPriceCents,
		DiscountCents:   b.DiscountCents,
		CouponCode:      b.CouponCode,
		Status:          string(b.Status),
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type createBookingReq struct {
	ServiceID       uint64 `json:"service_id"`
	AddressID       uint64 `json:"address_id"`
	ScheduledAt     string `json:"scheduled_at"` // RFC3339
	DurationMinutes int    `json:"duration_minutes"`
	CouponCode      string `json:"coupon_code"`
	Notes           string `json:"notes"`
}

// CreateBooking handles POST /v1/bookings.  The booking is created in
// PENDING_PAYMENT with its price frozen by the quote.
func (h *CustomerHandler) CreateBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_at must be RFC3339"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.CreateBooking(ctx, uid, lifecycle.CreateBookingInput{
		ServiceID:       req.ServiceID,
		AddressID:       req.AddressID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
		CouponCode:      strings.TrimSpace(req.CouponCode),
		Notes:           strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// ListBookings handles GET /v1/bookings and returns the customer's
// bookings, newest first.
func (h *CustomerHandler) ListBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Bookings.ListByCustomer(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
	}
	out := make([]bookingResp, 0, len(items))
	for i := range items {
		out = append(out, toBookingResp(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetBooking handles GET /v1/bookings/:id with ownership enforced.
func (h *CustomerHandler) GetBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.GetBooking(ctx, uid, id)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

type quoteReq struct {
	ServiceID       uint64 `json:"service_id"`
	DurationMinutes int    `json:"duration_minutes"`
	CouponCode      string `json:"coupon_code"`
}

// Quote handles POST /v1/quotes: the same price computation a booking
// would freeze, without creating anything.
func (h *CustomerHandler) Quote(c echo.Context) error {
	var req quoteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.DurationMinutes <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_minutes must be positive"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	svc, err := h.Catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if err == lifecycle.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load service failed"})
	}
	q := pricing.Compute(svc.BasePriceCents, svc.ExtraHourlyRateCents, req.DurationMinutes, strings.TrimSpace(req.CouponCode))
	return c.JSON(http.StatusOK, q)
}
