package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Stats is a point-in-time summary of stored bookings.
type Stats struct {
	Spaces       int64
	Reservations int64
	Upcoming     int64
}

type JobRepository struct {
	DB *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{DB: db}
}

func (r *JobRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// CollectStats counts spaces, reservations, and reservations starting in [now, now+window).
func (r *JobRepository) CollectStats(ctx context.Context, now time.Time, window time.Duration) (Stats, error) {
	var s Stats
	if err := r.DB.GetContext(ctx, &s.Spaces, `SELECT COUNT(*) FROM coworking_spaces`); err != nil {
		return s, fmt.Errorf("error counting coworking spaces: %w", err)
	}
	if err := r.DB.GetContext(ctx, &s.Reservations, `SELECT COUNT(*) FROM reservations`); err != nil {
		return s, fmt.Errorf("error counting reservations: %w", err)
	}
	query := `SELECT COUNT(*) FROM reservations WHERE start_time >= $1 AND start_time < $2`
	if err := r.DB.GetContext(ctx, &s.Upcoming, query, now.UTC(), now.Add(window).UTC()); err != nil {
		return s, fmt.Errorf("error counting upcoming reservations: %w", err)
	}
	return s, nil
}
