package repository

import (
	"context"
	"coworking/internal/db"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, name, email, password_hash, is_admin, created_at, updated_at`

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*db.User, error)
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	CreateUser(ctx context.Context, name, email, password string) (*db.User, error)
	SetAdmin(ctx context.Context, id int64, admin bool) (*db.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*db.User, error) {
	var u db.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", id, mapError(err))
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", email, mapError(err))
	}
	return &u, nil
}

func (r *userRepository) CreateUser(ctx context.Context, name, email, password string) (*db.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO users (name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, name, normalizeEmail(email), string(hashedPassword), now); err != nil {
		return nil, fmt.Errorf("error creating user: %w", mapError(err))
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) SetAdmin(ctx context.Context, id int64, admin bool) (*db.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_admin = $1, updated_at = $2 WHERE id = $3`, admin, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("error updating user %d: %w", id, mapError(err))
	}
	if err := expectRow(res, fmt.Sprintf("user %d", id)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
