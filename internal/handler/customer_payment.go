package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/homesolutions/marketplace/internal/model"
	"github.com/homesolutions/marketplace/internal/queue"
	queue_publisher "github.com/homesolutions/marketplace/internal/service"
)

type paymentResp struct {
	ID            uint64 `json:"id"`
	BookingID     uint64 `json:"booking_id"`
	AmountCents   int64  `json:"amount_cents"`
	Method        string `json:"method"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	CreatedAt     string `json:"created_at"`
}

func toPaymentResp(p *model.Payment) paymentResp {
	return paymentResp{
		ID:            p.ID,
		BookingID:     p.BookingID,
		AmountCents:   p.AmountCents,
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type createPaymentReq struct {
	Method string `json:"method"` // CARD | UPI | NET_BANKING | WALLET | CASH
}

// CreatePayment handles POST /v1/bookings/:id/payments.  The amount is
// copied from the booking's frozen total; the client never supplies it.
func (h *CustomerHandler) CreatePayment(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req createPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Engine.CreatePayment(ctx, uid, bookingID, model.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.Method))))
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusCreated, toPaymentResp(p))
}

// ConfirmPayment handles POST /v1/payments/:id/confirm.  On success the
// payment is SUCCEEDED, the booking CONFIRMED, and a booking.confirmed
// event goes out to the broker.  Publishing is fire-and-forget: a broker
// outage must not fail a settled payment.
func (h *CustomerHandler) ConfirmPayment(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	paymentID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Engine.ConfirmPayment(ctx, uid, paymentID)
	if err != nil {
		return lifecycleError(c, err)
	}

	go h.publishConfirmed(p)

	return c.JSON(http.StatusOK, toPaymentResp(p))
}

// publishConfirmed assembles and publishes the booking.confirmed event.
// Runs detached from the request; errors are logged by the publisher.
func (h *CustomerHandler) publishConfirmed(p *model.Payment) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		log.Printf("publish booking.confirmed: load booking %d failed: %v", p.BookingID, err)
		return
	}
	serviceName := ""
	if svc, err := h.Catalog.GetService(ctx, b.ServiceID); err == nil {
		serviceName = svc.Name
	}
	_ = queue_publisher.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
		BookingID:       b.ID,
		CustomerID:      b.CustomerID,
		ServiceID:       b.ServiceID,
		ServiceName:     serviceName,
		ScheduledAt:     b.ScheduledAt.UTC().Format(time.RFC3339),
		DurationMinutes: b.DurationMinutes,
		TotalPriceCents: b.TotalPriceCents,
		PaymentMethod:   string(p.Method),
		TransactionID:   p.TransactionID,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	})
}

// GetBookingPayment handles GET /v1/bookings/:id/payments and returns
// the payment attached to the customer's booking, if any.
func (h *CustomerHandler) GetBookingPayment(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Ownership first; reuses the engine's booking lookup rules.
	if _, err := h.Engine.GetBooking(ctx, uid, bookingID); err != nil {
		return lifecycleError(c, err)
	}
	p, err := h.Payments.GetByBooking(ctx, bookingID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no payment for booking"})
	}
	return c.JSON(http.StatusOK, toPaymentResp(p))
}
