package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/homesolutions/marketplace/internal/lifecycle"
	"github.com/homesolutions/marketplace/internal/model"
)

// AddressRepo persists customer addresses and implements
// lifecycle.AddressBook for the booking-creation ownership check.
type AddressRepo struct {
	db *sql.DB
}

// NewAddressRepo returns an AddressRepo bound to the given database.
func NewAddressRepo(db *sql.DB) *AddressRepo { return &AddressRepo{db: db} }

const addressCols = `id, user_id, street, city, state, zip_code, landmark, is_default, created_at, updated_at`

// Create inserts an address.  When IsDefault is set, any previous
// default of the same user is cleared first so at most one default
// exists per user.
func (r *AddressRepo) Create(ctx context.Context, a *model.Address) error {
	if a.IsDefault {
		if _, err := r.db.ExecContext(ctx,
			`UPDATE addresses SET is_default = 0 WHERE user_id = ?`, a.UserID); err != nil {
			return err
		}
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO addresses (user_id, street, city, state, zip_code, landmark, is_default)
		 VALUES (?,?,?,?,?,?,?)`,
		a.UserID, a.Street, a.City, a.State, a.ZipCode, a.Landmark, a.IsDefault)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	stored, err := r.GetAddress(ctx, a.ID)
	if err != nil {
		return err
	}
	*a = *stored
	return nil
}

// GetAddress loads one address, lifecycle.ErrNotFound when absent.
func (r *AddressRepo) GetAddress(ctx context.Context, id uint64) (*model.Address, error) {
	return scanAddress(r.db.QueryRowContext(ctx,
		`SELECT `+addressCols+` FROM addresses WHERE id = ?`, id))
}

// ListByUser returns the user's addresses, default first.
func (r *AddressRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Address, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+addressCols+` FROM addresses WHERE user_id = ? ORDER BY is_default DESC, id ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Delete removes the user's address.  sql.ErrNoRows when the address
// does not exist, ErrForbidden when it belongs to someone else and
// ErrConflict when bookings still reference it (FK error 1451).
func (r *AddressRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM addresses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1451") {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var owner uint64
	err = r.db.QueryRowContext(ctx,
		`SELECT user_id FROM addresses WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.ErrNoRows
	}
	if err != nil {
		return err
	}
	return ErrForbidden
}

func scanAddress(row rowScanner) (*model.Address, error) {
	var a model.Address
	var landmark sql.NullString
	err := row.Scan(&a.ID, &a.UserID, &a.Street, &a.City, &a.State, &a.ZipCode,
		&landmark, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lifecycle.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if landmark.Valid {
		l := landmark.String
		a.Landmark = &l
	}
	return &a, nil
}
