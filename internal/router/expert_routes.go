package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/homesolutions/marketplace/internal/handler"    // expert handlers
	"github.com/homesolutions/marketplace/internal/middleware" // JWT + role middlewares
	"github.com/homesolutions/marketplace/internal/model"
)

// RegisterExpert registers EXPERT-scoped endpoints under /v1.
// All routes require a valid JWT and EXPERT role.
func RegisterExpert(e *echo.Echo, h *handler.ExpertHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleExpert),
	)

	// ---- Job board ----
	g.GET("/jobs/open", h.ListOpenJobs)
	g.GET("/jobs/mine", h.ListMyJobs)

	// ---- Job lifecycle ----
	g.POST("/jobs/:id/accept", h.AcceptJob)
	g.POST("/jobs/:id/decline", h.DeclineJob)
	g.POST("/jobs/:id/arrived", h.ArrivedAtJob)
	g.POST("/jobs/:id/start", h.StartJob)
	g.POST("/jobs/:id/complete", h.CompleteJob)

	// ---- Ratings and issues ----
	g.GET("/jobs/ratings", h.MyRatings)
	g.POST("/jobs/:id/issues", h.ReportIssue)
}
