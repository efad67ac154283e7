package repository

import (
	"context"
	"coworking/internal/db"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const spaceColumns = `id, name, address, city, country, description, price_per_hour, created_at, updated_at`

// SpaceUpdate carries a partial update. Nil pointers leave the column alone;
// SetDescription with a nil Description clears it.
type SpaceUpdate struct {
	Name           *string
	Address        *string
	City           *string
	Country        *string
	SetDescription bool
	Description    *string
	PricePerHour   *float64
}

func (u SpaceUpdate) Empty() bool {
	return u.Name == nil && u.Address == nil && u.City == nil && u.Country == nil &&
		!u.SetDescription && u.PricePerHour == nil
}

type SpaceRepository struct {
	DB *sqlx.DB
}

func NewSpaceRepository(db *sqlx.DB) *SpaceRepository {
	return &SpaceRepository{DB: db}
}

func (r *SpaceRepository) ListSpaces(ctx context.Context) ([]db.CoworkingSpace, error) {
	spaces := []db.CoworkingSpace{}
	query := `SELECT ` + spaceColumns + ` FROM coworking_spaces ORDER BY id`
	if err := r.DB.SelectContext(ctx, &spaces, query); err != nil {
		return nil, fmt.Errorf("error listing coworking spaces: %w", mapError(err))
	}
	return spaces, nil
}

func (r *SpaceRepository) GetSpaceByID(ctx context.Context, id int64) (*db.CoworkingSpace, error) {
	var space db.CoworkingSpace
	query := `SELECT ` + spaceColumns + ` FROM coworking_spaces WHERE id = $1`
	if err := r.DB.GetContext(ctx, &space, query, id); err != nil {
		return nil, fmt.Errorf("coworking space %d: %w", id, mapError(err))
	}
	return &space, nil
}

func (r *SpaceRepository) CreateSpace(ctx context.Context, space *db.CoworkingSpace) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO coworking_spaces (name, address, city, country, description, price_per_hour, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id`
	var id int64
	err := r.DB.GetContext(ctx, &id, query,
		space.Name,
		space.Address,
		space.City,
		space.Country,
		space.Description,
		space.PricePerHour,
		now,
	)
	if err != nil {
		return fmt.Errorf("error creating coworking space: %w", mapError(err))
	}
	stored, err := r.GetSpaceByID(ctx, id)
	if err != nil {
		return err
	}
	*space = *stored
	return nil
}

// UpdateSpace applies u and returns the stored row. An empty update is a read.
func (r *SpaceRepository) UpdateSpace(ctx context.Context, id int64, u SpaceUpdate) (*db.CoworkingSpace, error) {
	if u.Empty() {
		return r.GetSpaceByID(ctx, id)
	}

	sets := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Address != nil {
		add("address", *u.Address)
	}
	if u.City != nil {
		add("city", *u.City)
	}
	if u.Country != nil {
		add("country", *u.Country)
	}
	if u.SetDescription {
		add("description", u.Description)
	}
	if u.PricePerHour != nil {
		add("price_per_hour", *u.PricePerHour)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE coworking_spaces SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error updating coworking space %d: %w", id, mapError(err))
	}
	if err := expectRow(res, fmt.Sprintf("coworking space %d", id)); err != nil {
		return nil, err
	}
	return r.GetSpaceByID(ctx, id)
}

func (r *SpaceRepository) DeleteSpace(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM coworking_spaces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting coworking space %d: %w", id, mapError(err))
	}
	return expectRow(res, fmt.Sprintf("coworking space %d", id))
}
