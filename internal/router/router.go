package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/homesolutions/marketplace/internal/handler"    // import the handlers that implement business logic
	"github.com/homesolutions/marketplace/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/homesolutions/marketplace/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
    // Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
    g.POST("/refresh", a.Refresh)
    // Register a POST endpoint to issue a new access token without rotating the refresh token.
    g.POST("/refresh-access", a.RefreshAccess)
	// Register a POST endpoint to log out using a refresh token.  The handler
	// accepts a JSON body containing a `refresh_token` and will invalidate
	// that token; with only a bearer token it revokes every session.
	g.POST("/logout", a.Logout)

	// Create another group for routes that require a valid access token.  All
	// handlers registered on this group will execute the JWTAuth middleware
	// before being invoked.  Protected endpoints live under /v1.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Any authenticated role may ask who they are.
	auth.Use(middleware.RequireRole(model.RoleCustomer, model.RoleExpert, model.RoleAdmin))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)
	// Allow the authenticated user to update their profile fields.
	auth.PUT("/me", a.UpdateMe)

	// Additionally map POST /v1/logout to the same handler.  This route lives
	// at the top level (outside of the protected group) so it does not
	// require a JWT.  Clients can therefore call either /v1/auth/logout or
	// /v1/logout with a valid refresh token in the body to terminate a
	// session.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints for the
// service catalog.  These routes apply no JWT or role middleware and are
// intended for guest users shopping for a service.  Extra middleware
// (typically the Redis response cache) applies only here: the cache key
// ignores the caller, so it must never wrap per-user routes.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, mw ...echo.MiddlewareFunc) {
	// Expose the list of active categories
	e.GET("/v1/categories", h.ListCategories, mw...)
	// List active services, optionally filtered with ?category_id=
	e.GET("/v1/services", h.ListServices, mw...)
	// Service detail including its rate card
	e.GET("/v1/services/:id", h.GetService, mw...)
}

// RegisterAdmin registers ADMIN-scoped catalog management endpoints
// under /v1/admin.
func RegisterAdmin(e *echo.Echo, h *handler.CatalogHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Categories ----
	g.POST("/categories", h.CreateCategory)
	g.GET("/categories", h.ListAllCategories) // inactive included
	g.PUT("/categories/:id", h.UpdateCategory)
	g.PATCH("/categories/:id", h.UpdateCategory)

	// ---- Services ----
	g.POST("/services", h.CreateService)
	g.PUT("/services/:id", h.UpdateService)
	g.PATCH("/services/:id", h.UpdateService)
}
