package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/homesolutions/marketplace/internal/model"
	"github.com/homesolutions/marketplace/internal/repository"
)

// --- addresses ---

type addressReq struct {
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Landmark  string `json:"landmark"`
	IsDefault bool   `json:"is_default"`
}

type addressResp struct {
	ID        uint64  `json:"id"`
	Street    string  `json:"street"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zip_code"`
	Landmark  *string `json:"landmark,omitempty"`
	IsDefault bool    `json:"is_default"`
}

func toAddressResp(a *model.Address) addressResp {
	return addressResp{
		ID:        a.ID,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		ZipCode:   a.ZipCode,
		Landmark:  a.Landmark,
		IsDefault: a.IsDefault,
	}
}

// CreateAddress handles POST /v1/addresses.
func (h *CustomerHandler) CreateAddress(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addressReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Street = strings.TrimSpace(req.Street)
	req.City = strings.TrimSpace(req.City)
	if req.Street == "" || req.City == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "street and city required"})
	}

	a := &model.Address{
		UserID:    uid,
		Street:    req.Street,
		City:      req.City,
		State:     strings.TrimSpace(req.State),
		ZipCode:   strings.TrimSpace(req.ZipCode),
		IsDefault: req.IsDefault,
	}
	if lm := strings.TrimSpace(req.Landmark); lm != "" {
		a.Landmark = &lm
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Addresses.Create(ctx, a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create address failed"})
	}
	return c.JSON(http.StatusCreated, toAddressResp(a))
}

// ListAddresses handles GET /v1/addresses.
func (h *CustomerHandler) ListAddresses(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Addresses.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list addresses failed"})
	}
	out := make([]addressResp, 0, len(items))
	for i := range items {
		out = append(out, toAddressResp(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteAddress handles DELETE /v1/addresses/:id.
func (h *CustomerHandler) DeleteAddress(c echo.Context) error {
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
	switch err := h.Addresses.Delete(ctx, id, uid); err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case sql.ErrNoRows:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "address not found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "address is referenced by a booking"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete address failed"})
	}
}

// --- ratings ---

type rateBookingReq struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

// RateBooking handles POST /v1/bookings/:id/rating.  Only the booking's
// customer may rate, only once, only after completion.
func (h *CustomerHandler) RateBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req rateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Stars < 1 || req.Stars > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stars must be 1..5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.GetBooking(ctx, uid, bookingID)
	if err != nil {
		return lifecycleError(c, err)
	}
	if b.Status != model.BookingCompleted || b.ExpertID == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only completed bookings can be rated"})
	}

	rt := &model.Rating{
		BookingID:  b.ID,
		CustomerID: uid,
		ExpertID:   *b.ExpertID,
		Stars:      req.Stars,
	}
	if cm := strings.TrimSpace(req.Comment); cm != "" {
		rt.Comment = &cm
	}
	if err := h.Ratings.Create(ctx, rt); err != nil {
		if err == repository.ErrRatingExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking already rated"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create rating failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         rt.ID,
		"booking_id": rt.BookingID,
		"expert_id":  rt.ExpertID,
		"stars":      rt.Stars,
		"comment":    rt.Comment,
	})
}

// --- support tickets ---

type createTicketReq struct {
	BookingID   *uint64 `json:"booking_id"`
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
}

// CreateTicket handles POST /v1/tickets.  Customer tickets are filed at
// MEDIUM priority.
func (h *CustomerHandler) CreateTicket(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// A referenced booking must be the caller's own.
	if req.BookingID != nil {
		if _, err := h.Engine.GetBooking(ctx, uid, *req.BookingID); err != nil {
			return lifecycleError(c, err)
		}
	}

	t := &model.Ticket{
		UserID:      uid,
		BookingID:   req.BookingID,
		Subject:     req.Subject,
		Description: strings.TrimSpace(req.Description),
		Status:      model.TicketOpen,
		Priority:    model.TicketMedium,
	}
	if err := h.Tickets.Create(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ticket failed"})
	}
	return c.JSON(http.StatusCreated, t)
}

// ListTickets handles GET /v1/tickets for the current user.
func (h *CustomerHandler) ListTickets(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Tickets.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tickets failed"})
	}
	return c.JSON(http.StatusOK, items)
}
