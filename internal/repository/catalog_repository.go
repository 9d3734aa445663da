package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/homesolutions/marketplace/internal/lifecycle"
	"github.com/homesolutions/marketplace/internal/model"
)

// CatalogRepo persists service categories and services.  Its GetService
// method implements lifecycle.ServiceCatalog: it resolves only active
// services, so a deactivated service can no longer be booked while its
// existing bookings keep their frozen prices.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo returns a CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

var ErrNameExists = errors.New("name already exists")

const categoryCols = `id, name, description, active, created_at, updated_at`
const serviceCols = `id, category_id, name, description, base_price_cents, extra_hourly_rate_cents, active, created_at, updated_at`

// --- categories ---

// CreateCategory inserts a category; ErrNameExists on duplicate name.
func (r *CatalogRepo) CreateCategory(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, description, active) VALUES (?,?,?)`,
		c.Name, c.Description, c.Active)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT `+categoryCols+` FROM categories WHERE id = ?`, c.ID).
		Scan(&c.ID, &c.Name, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt)
}

// UpdateCategory rewrites name, description and active flag.
func (r *CatalogRepo) UpdateCategory(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name=?, description=?, active=? WHERE id=?`,
		c.Name, c.Description, c.Active, c.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrNameExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either missing or unchanged; probe for existence.
		var one int
		err = r.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id=?`, c.ID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return err
	}
	return nil
}

// ListCategories returns categories; when activeOnly is set, inactive
// ones are filtered out.
func (r *CatalogRepo) ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	q := `SELECT ` + categoryCols + ` FROM categories`
	if activeOnly {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// --- services ---

// CreateService inserts a service under an existing category.
func (r *CatalogRepo) CreateService(ctx context.Context, s *model.Service) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO services (category_id, name, description, base_price_cents, extra_hourly_rate_cents, active)
		 VALUES (?,?,?,?,?,?)`,
		s.CategoryID, s.Name, s.Description, s.BasePriceCents, s.ExtraHourlyRateCents, s.Active)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	stored, err := r.getServiceAny(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = *stored
	return nil
}

// UpdateService rewrites the mutable service fields, rate card included.
// Existing bookings are unaffected: their prices were frozen at creation.
func (r *CatalogRepo) UpdateService(ctx context.Context, s *model.Service) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE services SET category_id=?, name=?, description=?,
		 base_price_cents=?, extra_hourly_rate_cents=?, active=? WHERE id=?`,
		s.CategoryID, s.Name, s.Description, s.BasePriceCents, s.ExtraHourlyRateCents, s.Active, s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		err = r.db.QueryRowContext(ctx, `SELECT 1 FROM services WHERE id=?`, s.ID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return err
	}
	return nil
}

// GetService resolves an active service for booking creation.  Inactive
// and missing services both come back as lifecycle.ErrNotFound.
func (r *CatalogRepo) GetService(ctx context.Context, id uint64) (*model.Service, error) {
	return scanService(r.db.QueryRowContext(ctx,
		`SELECT `+serviceCols+` FROM services WHERE id = ? AND active = 1`, id))
}

// getServiceAny loads a service regardless of its active flag; used by
// the admin surface.
func (r *CatalogRepo) getServiceAny(ctx context.Context, id uint64) (*model.Service, error) {
	return scanService(r.db.QueryRowContext(ctx,
		`SELECT `+serviceCols+` FROM services WHERE id = ?`, id))
}

// ListServices returns active services, optionally narrowed to one
// category.  Pass categoryID 0 for all categories.
func (r *CatalogRepo) ListServices(ctx context.Context, categoryID uint64) ([]model.Service, error) {
	q := `SELECT ` + serviceCols + ` FROM services WHERE active = 1`
	args := []any{}
	if categoryID != 0 {
		q += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	q += ` ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanService(row rowScanner) (*model.Service, error) {
	var s model.Service
	err := row.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description,
		&s.BasePriceCents, &s.ExtraHourlyRateCents, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lifecycle.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
