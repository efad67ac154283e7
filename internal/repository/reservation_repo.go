package repository

import (
	"context"
	"coworking/internal/db"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const reservationColumns = `id, coworking_space_id, user_id, start_time, end_time, hourly_rate, total_price, created_at, updated_at`

// ReservationFilter narrows ListReservations. Zero values match everything.
type ReservationFilter struct {
	CoworkingSpaceID int64
	UserID           int64
}

type ReservationRepository struct {
	DB *sqlx.DB
}

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{DB: db}
}

func (r *ReservationRepository) ListReservations(ctx context.Context, f ReservationFilter) ([]db.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	var (
		where []string
		args  []interface{}
	)
	if f.CoworkingSpaceID != 0 {
		args = append(args, f.CoworkingSpaceID)
		where = append(where, fmt.Sprintf("coworking_space_id = $%d", len(args)))
	}
	if f.UserID != 0 {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	reservations := []db.Reservation{}
	if err := r.DB.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, fmt.Errorf("error listing reservations: %w", mapError(err))
	}
	return reservations, nil
}

func (r *ReservationRepository) GetReservationByID(ctx context.Context, id int64) (*db.Reservation, error) {
	var res db.Reservation
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := r.DB.GetContext(ctx, &res, query, id); err != nil {
		return nil, fmt.Errorf("reservation %d: %w", id, mapError(err))
	}
	return &res, nil
}

func (r *ReservationRepository) CreateReservation(ctx context.Context, res *db.Reservation) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO reservations
		(coworking_space_id, user_id, start_time, end_time, hourly_rate, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id`
	var id int64
	err := r.DB.GetContext(ctx, &id, query,
		res.CoworkingSpaceID,
		res.UserID,
		res.StartTime,
		res.EndTime,
		res.HourlyRate,
		res.TotalPrice,
		now,
	)
	if err != nil {
		return fmt.Errorf("error creating reservation: %w", mapError(err))
	}
	stored, err := r.GetReservationByID(ctx, id)
	if err != nil {
		return err
	}
	*res = *stored
	return nil
}

// UpdateReservationInterval rewrites the interval and its price in one statement.
func (r *ReservationRepository) UpdateReservationInterval(ctx context.Context, id int64, start, end time.Time, totalPrice float64) (*db.Reservation, error) {
	query := `
		UPDATE reservations
		SET start_time = $1, end_time = $2, total_price = $3, updated_at = $4
		WHERE id = $5`
	res, err := r.DB.ExecContext(ctx, query, start, end, totalPrice, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("error updating reservation %d: %w", id, mapError(err))
	}
	if err := expectRow(res, fmt.Sprintf("reservation %d", id)); err != nil {
		return nil, err
	}
	return r.GetReservationByID(ctx, id)
}

func (r *ReservationRepository) DeleteReservation(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting reservation %d: %w", id, mapError(err))
	}
	return expectRow(res, fmt.Sprintf("reservation %d", id))
}
