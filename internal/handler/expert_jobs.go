package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/homesolutions/marketplace/internal/lifecycle"
	"github.com/homesolutions/marketplace/internal/model"
	"github.com/homesolutions/marketplace/internal/repository"
)

// ExpertHandler bundles dependencies for the expert job surface.  The
// accept/decline/start/complete transitions all go through the
// lifecycle engine; two experts racing for the same job are resolved by
// its compare-and-set, and the loser sees a 409 naming the real state.
type ExpertHandler struct {
	Engine   *lifecycle.Engine
	Bookings *repository.BookingRepo
	Ratings  *repository.RatingRepo
	Tickets  *repository.TicketRepo
}

// NewExpertHandler constructs an ExpertHandler and panics on nil deps.
func NewExpertHandler(engine *lifecycle.Engine, bookings *repository.BookingRepo, ratings *repository.RatingRepo, tickets *repository.TicketRepo) *ExpertHandler {
	if engine == nil || bookings == nil || ratings == nil || tickets == nil {
		panic("nil dependency passed to NewExpertHandler")
	}
	return &ExpertHandler{Engine: engine, Bookings: bookings, Ratings: ratings, Tickets: tickets}
}

// ListOpenJobs handles GET /v1/jobs/open: CONFIRMED bookings no expert
// has claimed yet, soonest first.
func (h *ExpertHandler) ListOpenJobs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Bookings.ListOpen(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list jobs failed"})
	}
	out := make([]bookingResp, 0, len(items))
	for i := range items {
		out = append(out, toBookingResp(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// ListMyJobs handles GET /v1/jobs/mine: bookings this expert holds or
// has held.
func (h *ExpertHandler) ListMyJobs(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Bookings.ListByExpert(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list jobs failed"})
	}
	out := make([]bookingResp, 0, len(items))
	for i := range items {
		out = append(out, toBookingResp(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// transition runs one expert-driven engine operation and writes the
// resulting booking.
func (h *ExpertHandler) transition(c echo.Context, op func(ctx context.Context, expertID, bookingID uint64) (*model.Booking, error)) error {
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

	b, err := op(ctx, uid, id)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// AcceptJob handles POST /v1/jobs/:id/accept.
func (h *ExpertHandler) AcceptJob(c echo.Context) error {
	return h.transition(c, h.Engine.AcceptJob)
}

// DeclineJob handles POST /v1/jobs/:id/decline.
func (h *ExpertHandler) DeclineJob(c echo.Context) error {
	return h.transition(c, h.Engine.DeclineJob)
}

// ArrivedAtJob handles POST /v1/jobs/:id/arrived.  Validation only; the
// booking stays ASSIGNED.
func (h *ExpertHandler) ArrivedAtJob(c echo.Context) error {
	return h.transition(c, h.Engine.ArrivedAtJob)
}

// StartJob handles POST /v1/jobs/:id/start.
func (h *ExpertHandler) StartJob(c echo.Context) error {
	return h.transition(c, h.Engine.StartJob)
}

// CompleteJob handles POST /v1/jobs/:id/complete.
func (h *ExpertHandler) CompleteJob(c echo.Context) error {
	return h.transition(c, h.Engine.CompleteJob)
}

// MyRatings handles GET /v1/jobs/ratings: the expert's received ratings
// plus their average.
func (h *ExpertHandler) MyRatings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Ratings.ListByExpert(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list ratings failed"})
	}
	avg, count, err := h.Ratings.AverageForExpert(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rating summary failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"average": avg,
		"count":   count,
		"ratings": items,
	})
}

type reportIssueReq struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// ReportIssue handles POST /v1/jobs/:id/issues.  Expert-reported issues
// are filed HIGH priority against the booking.
func (h *ExpertHandler) ReportIssue(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req reportIssueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The expert must hold (or have held) the booking.
	b, err := h.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if err == lifecycle.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load booking failed"})
	}
	if b.ExpertID == nil || *b.ExpertID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "booking is not assigned to you"})
	}

	bid := b.ID
	t := &model.Ticket{
		UserID:      uid,
		BookingID:   &bid,
		Subject:     req.Subject,
		Description: strings.TrimSpace(req.Description),
		Status:      model.TicketOpen,
		Priority:    model.TicketHigh,
	}
	if err := h.Tickets.Create(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ticket failed"})
	}
	return c.JSON(http.StatusCreated, t)
}
