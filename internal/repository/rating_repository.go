package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/homesolutions/marketplace/internal/model"
)

// RatingRepo persists customer ratings.  ratings.booking_id is UNIQUE,
// so a booking can be rated at most once; the duplicate surfaces as
// MySQL error 1062.
type RatingRepo struct {
	db *sql.DB
}

// NewRatingRepo returns a RatingRepo bound to the given database.
func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

var ErrRatingExists = errors.New("booking already rated")

// Create inserts a rating; ErrRatingExists when the booking already has one.
func (r *RatingRepo) Create(ctx context.Context, rt *model.Rating) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ratings (booking_id, customer_id, expert_id, stars, comment)
		 VALUES (?,?,?,?,?)`,
		rt.BookingID, rt.CustomerID, rt.ExpertID, rt.Stars, rt.Comment)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrRatingExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return nil
}

// ListByExpert returns an expert's ratings, newest first.
func (r *RatingRepo) ListByExpert(ctx context.Context, expertID uint64) ([]model.Rating, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, booking_id, customer_id, expert_id, stars, comment, created_at
		 FROM ratings WHERE expert_id = ? ORDER BY created_at DESC`, expertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Rating, 0)
	for rows.Next() {
		var rt model.Rating
		var comment sql.NullString
		if err := rows.Scan(&rt.ID, &rt.BookingID, &rt.CustomerID, &rt.ExpertID,
			&rt.Stars, &comment, &rt.CreatedAt); err != nil {
			return nil, err
		}
		if comment.Valid {
			c := comment.String
			rt.Comment = &c
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// AverageForExpert returns the mean stars and rating count for an
// expert.  An unrated expert comes back as (0, 0).
func (r *RatingRepo) AverageForExpert(ctx context.Context, expertID uint64) (float64, int, error) {
	var avg sql.NullFloat64
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(stars), COUNT(*) FROM ratings WHERE expert_id = ?`, expertID).
		Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	return avg.Float64, count, nil
}
