package router

import (
	"github.com/labstack/echo/v4"

	"github.com/homesolutions/marketplace/internal/handler"
	"github.com/homesolutions/marketplace/internal/middleware"
	"github.com/homesolutions/marketplace/internal/model"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  Customers can quote
// and create bookings, open and confirm payments, manage addresses,
// rate completed bookings and file support tickets.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer),
	)

	// Quotes and bookings
	g.POST("/quotes", h.Quote)
	g.POST("/bookings", h.CreateBooking)
	g.GET("/bookings", h.ListBookings)
	g.GET("/bookings/:id", h.GetBooking)

	// Payments.  Creation hangs off the booking; confirmation addresses
	// the payment itself.
	g.POST("/bookings/:id/payments", h.CreatePayment)
	g.GET("/bookings/:id/payments", h.GetBookingPayment)
	g.POST("/payments/:id/confirm", h.ConfirmPayment)

	// Addresses
	g.POST("/addresses", h.CreateAddress)
	g.GET("/addresses", h.ListAddresses)
	g.DELETE("/addresses/:id", h.DeleteAddress)

	// Ratings and support
	g.POST("/bookings/:id/rating", h.RateBooking)
	g.POST("/tickets", h.CreateTicket)
	g.GET("/tickets", h.ListTickets)
}
