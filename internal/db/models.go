package db

import "time"

type CoworkingSpace struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Address      string    `db:"address" json:"address"`
	City         string    `db:"city" json:"city"`
	Country      string    `db:"country" json:"country"`
	Description  *string   `db:"description" json:"description"`
	PricePerHour float64   `db:"price_per_hour" json:"price_per_hour"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Reservation struct {
	ID               int64     `db:"id" json:"id"`
	CoworkingSpaceID int64     `db:"coworking_space_id" json:"coworking_space_id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	StartTime        time.Time `db:"start_time" json:"start_time"`
	EndTime          time.Time `db:"end_time" json:"end_time"`
	HourlyRate       float64   `db:"hourly_rate" json:"hourly_rate"`
	TotalPrice       float64   `db:"total_price" json:"total_price"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// User is only exposed through the registration response; the hash never leaves the process.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
