package service

import (
	"context"
	"coworking/internal/db"
	apperrors "coworking/internal/errors"
	"coworking/internal/repository"
	"errors"
	"log/slog"
)

const (
	msgSpaceNotFound     = "Coworking space not found"
	msgSpaceListFailed   = "An error occurred while retrieving the coworking spaces"
	msgSpaceGetFailed    = "An error occurred while retrieving the coworking space"
	msgSpaceCreateFailed = "An error occurred while creating the coworking space"
	msgSpaceUpdateFailed = "An error occurred while updating the coworking space"
	msgSpaceDeleteFailed = "An error occurred while deleting the coworking space"

	msgPriceNegative = "The price per hour must be at least 0."
	msgPriceTooLarge = "The price per hour may not be greater than 99999999.99."
)

type SpaceStore interface {
	ListSpaces(ctx context.Context) ([]db.CoworkingSpace, error)
	GetSpaceByID(ctx context.Context, id int64) (*db.CoworkingSpace, error)
	CreateSpace(ctx context.Context, space *db.CoworkingSpace) error
	UpdateSpace(ctx context.Context, id int64, u repository.SpaceUpdate) (*db.CoworkingSpace, error)
	DeleteSpace(ctx context.Context, id int64) error
}

type SpaceService struct {
	Repo SpaceStore
}

func NewSpaceService(repo SpaceStore) *SpaceService {
	return &SpaceService{Repo: repo}
}

func (s *SpaceService) ListSpaces(ctx context.Context) ([]db.CoworkingSpace, error) {
	spaces, err := s.Repo.ListSpaces(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "list coworking spaces", "error", err)
		return nil, apperrors.Internal(msgSpaceListFailed, err)
	}
	return spaces, nil
}

func (s *SpaceService) GetSpace(ctx context.Context, id int64) (*db.CoworkingSpace, error) {
	space, err := s.Repo.GetSpaceByID(ctx, id)
	if err != nil {
		return nil, spaceError(ctx, err, msgSpaceGetFailed)
	}
	return space, nil
}

func (s *SpaceService) CreateSpace(ctx context.Context, space *db.CoworkingSpace) error {
	if err := checkPrice(space.PricePerHour); err != nil {
		return err
	}
	if err := s.Repo.CreateSpace(ctx, space); err != nil {
		return spaceError(ctx, err, msgSpaceCreateFailed)
	}
	slog.InfoContext(ctx, "coworking space created", "id", space.ID, "name", space.Name)
	return nil
}

func (s *SpaceService) UpdateSpace(ctx context.Context, id int64, u repository.SpaceUpdate) (*db.CoworkingSpace, error) {
	if u.PricePerHour != nil {
		if err := checkPrice(*u.PricePerHour); err != nil {
			return nil, err
		}
	}
	space, err := s.Repo.UpdateSpace(ctx, id, u)
	if err != nil {
		return nil, spaceError(ctx, err, msgSpaceUpdateFailed)
	}
	return space, nil
}

func (s *SpaceService) DeleteSpace(ctx context.Context, id int64) error {
	if err := s.Repo.DeleteSpace(ctx, id); err != nil {
		return spaceError(ctx, err, msgSpaceDeleteFailed)
	}
	slog.InfoContext(ctx, "coworking space deleted", "id", id)
	return nil
}

func spaceError(ctx context.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrNotFound(msgSpaceNotFound).WithCause(err)
	case errors.Is(err, repository.ErrCheckViolation):
		return apperrors.FieldError("price_per_hour", msgPriceNegative).WithCause(err)
	case errors.Is(err, repository.ErrOutOfRange):
		return apperrors.FieldError("price_per_hour", msgPriceTooLarge).WithCause(err)
	}
	slog.ErrorContext(ctx, fallback, "error", err)
	return apperrors.Internal(fallback, err)
}

func checkPrice(price float64) error {
	switch {
	case price < 0:
		return apperrors.FieldError("price_per_hour", msgPriceNegative)
	case price > MaxHourlyRate:
		return apperrors.FieldError("price_per_hour", msgPriceTooLarge)
	}
	return nil
}
