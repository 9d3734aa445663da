package handler

// catalog.go carries both faces of the service catalog: the public
// browse endpoints (unauthenticated, cacheable) and the admin CRUD.
// Rate-card edits never rewrite existing bookings; prices are frozen
// into the booking row at creation.

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/homesolutions/marketplace/internal/lifecycle"
	"github.com/homesolutions/marketplace/internal/model"
	"github.com/homesolutions/marketplace/internal/repository"
)

// CatalogHandler serves the service catalog.
type CatalogHandler struct {
	Catalog *repository.CatalogRepo
}

// NewCatalogHandler constructs a CatalogHandler and panics on nil deps.
func NewCatalogHandler(catalog *repository.CatalogRepo) *CatalogHandler {
	if catalog == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Catalog: catalog}
}

type serviceResp struct {
	ID                   uint64 `json:"id"`
	CategoryID           uint64 `json:"category_id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	BasePriceCents       int64  `json:"base_price_cents"`
	ExtraHourlyRateCents int64  `json:"extra_hourly_rate_cents"`
	Active               bool   `json:"active"`
}

func toServiceResp(s *model.Service) serviceResp {
	return serviceResp{
		ID:                   s.ID,
		CategoryID:           s.CategoryID,
		Name:                 s.Name,
		Description:          s.Description,
		BasePriceCents:       s.BasePriceCents,
		ExtraHourlyRateCents: s.ExtraHourlyRateCents,
		Active:               s.Active,
	}
}

// --- public browse ---

// ListCategories handles GET /v1/categories for unauthenticated users.
// Only active categories are exposed.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Catalog.ListCategories(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list categories failed"})
	}
	return c.JSON(http.StatusOK, items)
}

// ListServices handles GET /v1/services with an optional ?category_id=
// filter.  Only active services are exposed.
func (h *CatalogHandler) ListServices(c echo.Context) error {
	var categoryID uint64
	if raw := strings.TrimSpace(c.QueryParam("category_id")); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category_id"})
		}
		categoryID = n
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Catalog.ListServices(ctx, categoryID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list services failed"})
	}
	out := make([]serviceResp, 0, len(items))
	for i := range items {
		out = append(out, toServiceResp(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetService handles GET /v1/services/:id.
func (h *CatalogHandler) GetService(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	svc, err := h.Catalog.GetService(ctx, id)
	if err != nil {
		if err == lifecycle.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load service failed"})
	}
	return c.JSON(http.StatusOK, toServiceResp(svc))
}

// --- admin CRUD ---

type categoryReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// CreateCategory handles POST /v1/admin/categories.
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	cat := &model.Category{Name: name, Description: strings.TrimSpace(req.Description), Active: active}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Catalog.CreateCategory(ctx, cat); err != nil {
		if err == repository.ErrNameExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create category failed"})
	}
	return c.JSON(http.StatusCreated, cat)
}

// UpdateCategory handles PUT /v1/admin/categories/:id.
func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	cat := &model.Category{ID: id, Name: name, Description: strings.TrimSpace(req.Description), Active: active}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	switch err := h.Catalog.UpdateCategory(ctx, cat); err {
	case nil:
		return c.JSON(http.StatusOK, cat)
	case sql.ErrNoRows:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	case repository.ErrNameExists:
		return c.JSON(http.StatusConflict, echo.Map{"error": "category name already exists"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update category failed"})
	}
}

// ListAllCategories handles GET /v1/admin/categories, inactive included.
func (h *CatalogHandler) ListAllCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Catalog.ListCategories(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list categories failed"})
	}
	return c.JSON(http.StatusOK, items)
}

type serviceReq struct {
	CategoryID           uint64 `json:"category_id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	BasePriceCents       int64  `json:"base_price_cents"`
	ExtraHourlyRateCents int64  `json:"extra_hourly_rate_cents"`
	Active               *bool  `json:"active"`
}

func (r *serviceReq) validate() string {
	if r.CategoryID == 0 {
		return "category_id required"
	}
	if strings.TrimSpace(r.Name) == "" {
		return "name required"
	}
	if r.BasePriceCents < 0 || r.ExtraHourlyRateCents < 0 {
		return "prices must be non-negative"
	}
	return ""
}

// CreateService handles POST /v1/admin/services.
func (h *CatalogHandler) CreateService(c echo.Context) error {
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	svc := &model.Service{
		CategoryID:           req.CategoryID,
		Name:                 strings.TrimSpace(req.Name),
		Description:          strings.TrimSpace(req.Description),
		BasePriceCents:       req.BasePriceCents,
		ExtraHourlyRateCents: req.ExtraHourlyRateCents,
		Active:               active,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Catalog.CreateService(ctx, svc); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create service failed"})
	}
	return c.JSON(http.StatusCreated, toServiceResp(svc))
}

// UpdateService handles PUT /v1/admin/services/:id.
func (h *CatalogHandler) UpdateService(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	svc := &model.Service{
		ID:                   id,
		CategoryID:           req.CategoryID,
		Name:                 strings.TrimSpace(req.Name),
		Description:          strings.TrimSpace(req.Description),
		BasePriceCents:       req.BasePriceCents,
		ExtraHourlyRateCents: req.ExtraHourlyRateCents,
		Active:               active,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	switch err := h.Catalog.UpdateService(ctx, svc); err {
	case nil:
		return c.JSON(http.StatusOK, toServiceResp(svc))
	case sql.ErrNoRows:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update service failed"})
	}
}
