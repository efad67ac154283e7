package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"coworking/internal/db"
	"coworking/internal/repository"
	"coworking/internal/testutil"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func seedSpace(t *testing.T, d *sqlx.DB, name string, price float64) *db.CoworkingSpace {
	t.Helper()
	space := &db.CoworkingSpace{
		Name:         name,
		Address:      "123 Main Street",
		City:         "City A",
		Country:      "Country X",
		Description:  strPtr("A vibrant coworking space in City A."),
		PricePerHour: price,
	}
	require.NoError(t, repository.NewSpaceRepository(d).CreateSpace(context.Background(), space))
	return space
}

func seedUser(t *testing.T, d *sqlx.DB, email string) *db.User {
	t.Helper()
	u, err := repository.NewUserRepository(d).CreateUser(context.Background(), "John Doe", email, "password")
	require.NoError(t, err)
	return u
}

func TestSpaceRepository_CRUD(t *testing.T) {
	d := testutil.NewDB(t)
	repo := repository.NewSpaceRepository(d)
	ctx := context.Background()

	spaces, err := repo.ListSpaces(ctx)
	require.NoError(t, err)
	assert.NotNil(t, spaces)
	assert.Empty(t, spaces)

	created := seedSpace(t, d, "Coworking Space 1", 15)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetSpaceByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coworking Space 1", got.Name)
	assert.Equal(t, 15.0, got.PricePerHour)

	spaces, err = repo.ListSpaces(ctx)
	require.NoError(t, err)
	assert.Len(t, spaces, 1)

	require.NoError(t, repo.DeleteSpace(ctx, created.ID))
	_, err = repo.GetSpaceByID(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSpaceRepository_PartialUpdate(t *testing.T) {
	d := testutil.NewDB(t)
	repo := repository.NewSpaceRepository(d)
	ctx := context.Background()
	space := seedSpace(t, d, "Coworking Space 2", 20)

	updated, err := repo.UpdateSpace(ctx, space.ID, repository.SpaceUpdate{
		City:         strPtr("City B"),
		PricePerHour: floatPtr(22.5),
	})
	require.NoError(t, err)
	assert.Equal(t, "City B", updated.City)
	assert.Equal(t, 22.5, updated.PricePerHour)
	assert.Equal(t, space.Name, updated.Name)
	assert.Equal(t, space.Address, updated.Address)
	assert.Equal(t, space.Country, updated.Country)
	require.NotNil(t, updated.Description)
	assert.Equal(t, *space.Description, *updated.Description)

	cleared, err := repo.UpdateSpace(ctx, space.ID, repository.SpaceUpdate{SetDescription: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)
	assert.Equal(t, "City B", cleared.City)

	same, err := repo.UpdateSpace(ctx, space.ID, repository.SpaceUpdate{})
	require.NoError(t, err)
	assert.Equal(t, cleared.UpdatedAt, same.UpdatedAt)
}

func TestSpaceRepository_MissingRows(t *testing.T) {
	d := testutil.NewDB(t)
	repo := repository.NewSpaceRepository(d)
	ctx := context.Background()

	_, err := repo.GetSpaceByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.UpdateSpace(ctx, 42, repository.SpaceUpdate{Name: strPtr("x")})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = repo.DeleteSpace(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReservationRepository_CRUD(t *testing.T) {
	d := testutil.NewDB(t)
	repo := repository.NewReservationRepository(d)
	ctx := context.Background()
	space := seedSpace(t, d, "Coworking Space 1", 15)
	user := seedUser(t, d, "john.doe@example.com")

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	res := &db.Reservation{
		CoworkingSpaceID: space.ID,
		UserID:           user.ID,
		StartTime:        start,
		EndTime:          start.Add(2 * time.Hour),
		HourlyRate:       15,
		TotalPrice:       30,
	}
	require.NoError(t, repo.CreateReservation(ctx, res))
	assert.NotZero(t, res.ID)
	assert.True(t, res.StartTime.Equal(start))
	assert.Equal(t, 30.0, res.TotalPrice)

	updated, err := repo.UpdateReservationInterval(ctx, res.ID, start, start.Add(3*time.Hour), 45)
	require.NoError(t, err)
	assert.True(t, updated.EndTime.Equal(start.Add(3*time.Hour)))
	assert.Equal(t, 45.0, updated.TotalPrice)
	assert.Equal(t, 15.0, updated.HourlyRate)

	require.NoError(t, repo.DeleteReservation(ctx, res.ID))
	assert.ErrorIs(t, repo.DeleteReservation(ctx, res.ID), repository.ErrNotFound)
}

func TestReservationRepository_ListFilters(t *testing.T) {
	d := testutil.NewDB(t)
	repo := repository.NewReservationRepository(d)
	ctx := context.Background()
	s1 := seedSpace(t, d, "Coworking Space 1", 15)
	s2 := seedSpace(t, d, "Coworking Space 2", 20)
	john := seedUser(t, d, "john.doe@example.com")
	jane := seedUser(t, d, "jane.smith@example.com")

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for _, r := range []db.Reservation{
		{CoworkingSpaceID: s1.ID, UserID: john.ID},
		{CoworkingSpaceID: s2.ID, UserID: jane.ID},
		{CoworkingSpaceID: s1.ID, UserID: jane.ID},
	} {
		r.StartTime, r.EndTime = start, start.Add(time.Hour)
		require.NoError(t, repo.CreateReservation(ctx, &r))
	}

	all, err := repo.ListReservations(ctx, repository.ReservationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	bySpace, err := repo.ListReservations(ctx, repository.ReservationFilter{CoworkingSpaceID: s1.ID})
	require.NoError(t, err)
	assert.Len(t, bySpace, 2)

	both, err := repo.ListReservations(ctx, repository.ReservationFilter{CoworkingSpaceID: s1.ID, UserID: jane.ID})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, jane.ID, both[0].UserID)
}

func TestReservationRepository_Constraints(t *testing.T) {
	d := testutil.NewDB(t)
	repo := repository.NewReservationRepository(d)
	ctx := context.Background()
	space := seedSpace(t, d, "Coworking Space 1", 15)
	user := seedUser(t, d, "john.doe@example.com")
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	err := repo.CreateReservation(ctx, &db.Reservation{
		CoworkingSpaceID: 999, UserID: user.ID, StartTime: start, EndTime: start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, repository.ErrForeignKey)

	err = repo.CreateReservation(ctx, &db.Reservation{
		CoworkingSpaceID: space.ID, UserID: user.ID, StartTime: start, EndTime: start,
	})
	assert.ErrorIs(t, err, repository.ErrCheckViolation)

	all, err := repo.ListReservations(ctx, repository.ReservationFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSpaceDeleteCascadesToReservations(t *testing.T) {
	d := testutil.NewDB(t)
	ctx := context.Background()
	space := seedSpace(t, d, "Coworking Space 3", 10)
	user := seedUser(t, d, "john.doe@example.com")
	reservations := repository.NewReservationRepository(d)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	res := &db.Reservation{CoworkingSpaceID: space.ID, UserID: user.ID, StartTime: start, EndTime: start.Add(4 * time.Hour)}
	require.NoError(t, reservations.CreateReservation(ctx, res))

	require.NoError(t, repository.NewSpaceRepository(d).DeleteSpace(ctx, space.ID))
	_, err := reservations.GetReservationByID(ctx, res.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository(t *testing.T) {
	d := testutil.NewDB(t)
	repo := repository.NewUserRepository(d)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, "Jane Smith", " Jane.Smith@Example.com ", "password")
	require.NoError(t, err)
	assert.Equal(t, "jane.smith@example.com", u.Email)
	assert.NotEqual(t, "password", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password")))

	byEmail, err := repo.GetByEmail(ctx, "JANE.SMITH@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.CreateUser(ctx, "Other", "jane.smith@example.com", "password")
	assert.True(t, errors.Is(err, repository.ErrDuplicateKey), "got %v", err)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.False(t, u.IsAdmin)
	promoted, err := repo.SetAdmin(ctx, u.ID, true)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)
	_, err = repo.SetAdmin(ctx, 999, true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestJobRepository_CollectStats(t *testing.T) {
	d := testutil.NewDB(t)
	ctx := context.Background()
	space := seedSpace(t, d, "Coworking Space 1", 15)
	user := seedUser(t, d, "john.doe@example.com")
	reservations := repository.NewReservationRepository(d)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{2 * time.Hour, 30 * time.Hour, -5 * time.Hour} {
		start := now.Add(offset)
		require.NoError(t, reservations.CreateReservation(ctx, &db.Reservation{
			CoworkingSpaceID: space.ID, UserID: user.ID, StartTime: start, EndTime: start.Add(time.Hour),
		}))
	}

	jobs := repository.NewJobRepository(d)
	require.NoError(t, jobs.Ping(ctx))
	stats, err := jobs.CollectStats(ctx, now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, repository.Stats{Spaces: 1, Reservations: 3, Upcoming: 1}, stats)
}
