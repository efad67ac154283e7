package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a lookup or a targeted write matches no rows.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrForeignKey is returned when a referenced row does not exist.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrCheckViolation is returned when a CHECK constraint rejects a row.
	ErrCheckViolation = errors.New("check constraint violation")

	// ErrOutOfRange is returned when a value overflows its column type.
	ErrOutOfRange = errors.New("numeric value out of range")
)

// DBError pairs one of the sentinels above with the driver error.
type DBError struct {
	Sentinel error
	Cause    error
}

func (e *DBError) Error() string        { return e.Sentinel.Error() + ": " + e.Cause.Error() }
func (e *DBError) Is(target error) bool { return target == e.Sentinel }
func (e *DBError) Unwrap() error        { return e.Cause }

// mapError translates lib/pq and SQLite driver errors into sentinels.
// Unknown errors pass through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &DBError{Sentinel: ErrNotFound, Cause: err}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return &DBError{Sentinel: ErrDuplicateKey, Cause: err}
		case "23503": // foreign_key_violation
			return &DBError{Sentinel: ErrForeignKey, Cause: err}
		case "23514": // check_violation
			return &DBError{Sentinel: ErrCheckViolation, Cause: err}
		case "22003": // numeric_value_out_of_range
			return &DBError{Sentinel: ErrOutOfRange, Cause: err}
		}
		return err
	}

	// go-sqlite3 only exposes extended codes through cgo types; matching the
	// message keeps the driver out of production builds.
	s := err.Error()
	switch {
	case strings.Contains(s, "UNIQUE constraint failed"):
		return &DBError{Sentinel: ErrDuplicateKey, Cause: err}
	case strings.Contains(s, "FOREIGN KEY constraint failed"):
		return &DBError{Sentinel: ErrForeignKey, Cause: err}
	case strings.Contains(s, "CHECK constraint failed"):
		return &DBError{Sentinel: ErrCheckViolation, Cause: err}
	}
	return err
}

// expectRow turns a write that touched nothing into ErrNotFound.
func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
