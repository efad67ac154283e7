package service

import (
	"context"
	"coworking/internal/db"
	apperrors "coworking/internal/errors"
	"coworking/internal/repository"
	"errors"
	"log/slog"
	"time"
)

const (
	msgReservationNotFound     = "Reservation not found"
	msgReservationListFailed   = "An error occurred while retrieving the reservations"
	msgReservationGetFailed    = "An error occurred while retrieving the reservation"
	msgReservationCreateFailed = "An error occurred while creating the reservation"
	msgReservationUpdateFailed = "An error occurred while updating the reservation"
	msgReservationDeleteFailed = "An error occurred while deleting the reservation"
	msgInvalidData             = "The given data was invalid."
	msgReservationTooLong      = "The reservation is too long: its total price exceeds the maximum amount."

	notifyTimeout = 15 * time.Second
)

type ReservationStore interface {
	ListReservations(ctx context.Context, f repository.ReservationFilter) ([]db.Reservation, error)
	GetReservationByID(ctx context.Context, id int64) (*db.Reservation, error)
	CreateReservation(ctx context.Context, res *db.Reservation) error
	UpdateReservationInterval(ctx context.Context, id int64, start, end time.Time, totalPrice float64) (*db.Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*db.User, error)
}

// CreateReservationInput is a booking request that already passed schema validation.
type CreateReservationInput struct {
	CoworkingSpaceID int64
	UserID           int64
	StartTime        time.Time
	EndTime          time.Time
}

type ReservationService struct {
	Repo     ReservationStore
	Spaces   SpaceStore
	Users    UserLookup
	notifier Notifier
}

func NewReservationService(repo ReservationStore, spaces SpaceStore, users UserLookup, notifier Notifier) *ReservationService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ReservationService{
		Repo:     repo,
		Spaces:   spaces,
		Users:    users,
		notifier: notifier,
	}
}

func (s *ReservationService) ListReservations(ctx context.Context, f repository.ReservationFilter) ([]db.Reservation, error) {
	reservations, err := s.Repo.ListReservations(ctx, f)
	if err != nil {
		slog.ErrorContext(ctx, "list reservations", "error", err)
		return nil, apperrors.Internal(msgReservationListFailed, err)
	}
	return reservations, nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id int64) (*db.Reservation, error) {
	res, err := s.Repo.GetReservationByID(ctx, id)
	if err != nil {
		return nil, reservationError(ctx, err, msgReservationGetFailed)
	}
	return res, nil
}

// CreateReservation checks the interval and both references, prices the
// booking at the space's current rate and persists it. All field problems
// are reported together.
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*db.Reservation, error) {
	fields := map[string][]string{}

	if !in.EndTime.After(in.StartTime) {
		fields["end_time"] = append(fields["end_time"], "The end time must be a date after the start time.")
	}

	space, err := s.Spaces.GetSpaceByID(ctx, in.CoworkingSpaceID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		fields["coworking_space_id"] = append(fields["coworking_space_id"], "The selected coworking space id is invalid.")
	case err != nil:
		slog.ErrorContext(ctx, "lookup coworking space for reservation", "coworking_space_id", in.CoworkingSpaceID, "error", err)
		return nil, apperrors.Internal(msgReservationCreateFailed, err)
	}

	user, err := s.Users.GetByID(ctx, in.UserID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		fields["user_id"] = append(fields["user_id"], "The selected user id is invalid.")
	case err != nil:
		slog.ErrorContext(ctx, "lookup user for reservation", "user_id", in.UserID, "error", err)
		return nil, apperrors.Internal(msgReservationCreateFailed, err)
	}

	if len(fields) > 0 {
		return nil, apperrors.Validation(msgInvalidData, fields)
	}

	quote, err := QuoteReservation(in.StartTime, in.EndTime, space.PricePerHour)
	switch {
	case errors.Is(err, ErrPriceTooLarge):
		return nil, apperrors.FieldError("end_time", msgReservationTooLong).WithCause(err)
	case err != nil:
		return nil, apperrors.Internal(msgReservationCreateFailed, err)
	}

	res := &db.Reservation{
		CoworkingSpaceID: space.ID,
		UserID:           user.ID,
		StartTime:        quote.StartTime,
		EndTime:          quote.EndTime,
		HourlyRate:       quote.HourlyRate,
		TotalPrice:       quote.TotalPrice,
	}
	if err := s.Repo.CreateReservation(ctx, res); err != nil {
		return nil, reservationError(ctx, err, msgReservationCreateFailed)
	}
	slog.InfoContext(ctx, "reservation created",
		"id", res.ID, "coworking_space_id", res.CoworkingSpaceID, "user_id", res.UserID,
		"hours", quote.Hours(), "total_price", res.TotalPrice)

	s.notifyCreated(ctx, *user, *space, *res)
	return res, nil
}

// UpdateReservation moves either end of the interval. The price follows the
// new duration at the rate captured when the reservation was made.
func (s *ReservationService) UpdateReservation(ctx context.Context, id int64, start, end *time.Time) (*db.Reservation, error) {
	current, err := s.Repo.GetReservationByID(ctx, id)
	if err != nil {
		return nil, reservationError(ctx, err, msgReservationUpdateFailed)
	}
	if start == nil && end == nil {
		return current, nil
	}

	newStart, newEnd := current.StartTime, current.EndTime
	if start != nil {
		newStart = *start
	}
	if end != nil {
		newEnd = *end
	}

	quote, err := QuoteReservation(newStart, newEnd, current.HourlyRate)
	switch {
	case errors.Is(err, ErrInvalidInterval):
		if end != nil {
			return nil, apperrors.FieldError("end_time", "The end time must be a date after the start time.")
		}
		return nil, apperrors.FieldError("start_time", "The start time must be a date before the end time.")
	case errors.Is(err, ErrPriceTooLarge):
		return nil, apperrors.FieldError("end_time", msgReservationTooLong).WithCause(err)
	case err != nil:
		return nil, apperrors.Internal(msgReservationUpdateFailed, err)
	}

	updated, err := s.Repo.UpdateReservationInterval(ctx, id, quote.StartTime, quote.EndTime, quote.TotalPrice)
	if err != nil {
		return nil, reservationError(ctx, err, msgReservationUpdateFailed)
	}
	return updated, nil
}

func (s *ReservationService) DeleteReservation(ctx context.Context, id int64) error {
	if err := s.Repo.DeleteReservation(ctx, id); err != nil {
		return reservationError(ctx, err, msgReservationDeleteFailed)
	}
	slog.InfoContext(ctx, "reservation deleted", "id", id)
	return nil
}

// notifyCreated sends the confirmation off the request path; failures are only logged.
func (s *ReservationService) notifyCreated(ctx context.Context, user db.User, space db.CoworkingSpace, res db.Reservation) {
	go func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.ReservationCreated(nctx, user, space, res); err != nil {
			slog.WarnContext(nctx, "reservation confirmation not sent", "reservation_id", res.ID, "error", err)
		}
	}()
}

func reservationError(ctx context.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrNotFound(msgReservationNotFound).WithCause(err)
	case errors.Is(err, repository.ErrForeignKey):
		return apperrors.Validation(msgInvalidData, map[string][]string{
			"reservation": {"The referenced coworking space or user does not exist."},
		}).WithCause(err)
	case errors.Is(err, repository.ErrCheckViolation):
		return apperrors.FieldError("end_time", "The end time must be a date after the start time.").WithCause(err)
	case errors.Is(err, repository.ErrOutOfRange):
		return apperrors.FieldError("end_time", msgReservationTooLong).WithCause(err)
	}
	slog.ErrorContext(ctx, fallback, "error", err)
	return apperrors.Internal(fallback, err)
}
