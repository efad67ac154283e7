package service

import (
	"context"
	"errors"
	"net/http"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"coworking/internal/auth"
	"coworking/internal/db"
	apperrors "coworking/internal/errors"
	"coworking/internal/repository"
	"coworking/internal/testutil"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	sent chan db.Reservation
	err  error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan db.Reservation, 8)}
}

func (n *recordingNotifier) ReservationCreated(_ context.Context, _ db.User, _ db.CoworkingSpace, res db.Reservation) error {
	n.sent <- res
	return n.err
}

type fixture struct {
	db           *sqlx.DB
	spaces       *SpaceService
	reservations *ReservationService
	notifier     *recordingNotifier
	space        *db.CoworkingSpace
	user         *db.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d := testutil.NewDB(t)
	spaceRepo := repository.NewSpaceRepository(d)
	userRepo := repository.NewUserRepository(d)
	notifier := newRecordingNotifier()

	f := &fixture{
		db:           d,
		spaces:       NewSpaceService(spaceRepo),
		reservations: NewReservationService(repository.NewReservationRepository(d), spaceRepo, userRepo, notifier),
		notifier:     notifier,
	}

	desc := "A vibrant coworking space in City A."
	f.space = &db.CoworkingSpace{
		Name: "Coworking Space 1", Address: "123 Main Street", City: "City A", Country: "Country X",
		Description: &desc, PricePerHour: 15,
	}
	require.NoError(t, f.spaces.CreateSpace(context.Background(), f.space))

	user, err := userRepo.CreateUser(context.Background(), "John Doe", "john.doe@example.com", "password")
	require.NoError(t, err)
	f.user = user
	return f
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *apperrors.HTTPError
	require.True(t, errors.As(err, &he), "expected *HTTPError, got %T: %v", err, err)
	return he.Code
}

var hour0 = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestCreateReservation_PricesFromSpaceRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.reservations.CreateReservation(ctx, CreateReservationInput{
		CoworkingSpaceID: f.space.ID,
		UserID:           f.user.ID,
		StartTime:        hour0,
		EndTime:          hour0.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, res.TotalPrice)
	assert.Equal(t, 15.0, res.HourlyRate)

	select {
	case sent := <-f.notifier.sent:
		assert.Equal(t, res.ID, sent.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation was not dispatched")
	}
}

func TestCreateReservation_NotificationFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	res, err := f.reservations.CreateReservation(context.Background(), CreateReservationInput{
		CoworkingSpaceID: f.space.ID, UserID: f.user.ID, StartTime: hour0, EndTime: hour0.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	<-f.notifier.sent
}

func TestCreateReservation_RejectsBadInterval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, end := range []time.Time{hour0, hour0.Add(-time.Hour)} {
		_, err := f.reservations.CreateReservation(ctx, CreateReservationInput{
			CoworkingSpaceID: f.space.ID, UserID: f.user.ID, StartTime: hour0, EndTime: end,
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, httpCode(t, err))

		var he *apperrors.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Contains(t, he.Fields, "end_time")
	}

	all, err := f.reservations.ListReservations(ctx, repository.ReservationFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.notifier.sent)
}

func TestCreateReservation_UnknownReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reservations.CreateReservation(ctx, CreateReservationInput{
		CoworkingSpaceID: 999, UserID: 998, StartTime: hour0, EndTime: hour0,
	})
	require.Error(t, err)
	var he *apperrors.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Code)
	assert.Contains(t, he.Fields, "coworking_space_id")
	assert.Contains(t, he.Fields, "user_id")
	assert.Contains(t, he.Fields, "end_time")

	all, err := f.reservations.ListReservations(ctx, repository.ReservationFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReservationPrice_IgnoresLaterRateChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.reservations.CreateReservation(ctx, CreateReservationInput{
		CoworkingSpaceID: f.space.ID, UserID: f.user.ID, StartTime: hour0, EndTime: hour0.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	newRate := 50.0
	_, err = f.spaces.UpdateSpace(ctx, f.space.ID, repository.SpaceUpdate{PricePerHour: &newRate})
	require.NoError(t, err)

	got, err := f.reservations.GetReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.TotalPrice)

	end := hour0.Add(3 * time.Hour)
	updated, err := f.reservations.UpdateReservation(ctx, res.ID, nil, &end)
	require.NoError(t, err)
	assert.Equal(t, 45.0, updated.TotalPrice, "recomputed at the booked rate, not the new one")
}

func TestUpdateReservation_IntervalRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.reservations.CreateReservation(ctx, CreateReservationInput{
		CoworkingSpaceID: f.space.ID, UserID: f.user.ID, StartTime: hour0, EndTime: hour0.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	lateStart := hour0.Add(5 * time.Hour)
	_, err = f.reservations.UpdateReservation(ctx, res.ID, &lateStart, nil)
	var he *apperrors.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Code)
	assert.Contains(t, he.Fields, "start_time")

	early := hour0.Add(-time.Hour)
	_, err = f.reservations.UpdateReservation(ctx, res.ID, nil, &early)
	require.ErrorAs(t, err, &he)
	assert.Contains(t, he.Fields, "end_time")

	unchanged, err := f.reservations.GetReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, unchanged.StartTime.Equal(hour0))
	assert.True(t, unchanged.EndTime.Equal(hour0.Add(2*time.Hour)))

	newStart, newEnd := hour0.Add(time.Hour), hour0.Add(90*time.Minute)
	moved, err := f.reservations.UpdateReservation(ctx, res.ID, &newStart, &newEnd)
	require.NoError(t, err)
	assert.Equal(t, 7.5, moved.TotalPrice)

	same, err := f.reservations.UpdateReservation(ctx, res.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, moved.TotalPrice, same.TotalPrice)
}

func TestNotFoundIsDistinctFromInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, http.StatusNotFound, httpCode(t, f.spaces.DeleteSpace(ctx, 999)))
	assert.Equal(t, http.StatusNotFound, httpCode(t, f.reservations.DeleteReservation(ctx, 999)))

	_, err := f.spaces.GetSpace(ctx, 999)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = f.reservations.GetReservation(ctx, 999)
	assert.True(t, apperrors.IsNotFound(err))
	end := hour0
	_, err = f.reservations.UpdateReservation(ctx, 999, nil, &end)
	assert.True(t, apperrors.IsNotFound(err))
	name := "x"
	_, err = f.spaces.UpdateSpace(ctx, 999, repository.SpaceUpdate{Name: &name})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestInternalErrorsCarryCause(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Close())

	_, err := f.spaces.ListSpaces(context.Background())
	var he *apperrors.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
	assert.Contains(t, strings.ToLower(he.Detail()), "closed")
}

func TestSpaceService_RejectsNegativePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.spaces.CreateSpace(ctx, &db.CoworkingSpace{Name: "n", Address: "a", City: "c", Country: "k", PricePerHour: -1})
	assert.Equal(t, http.StatusUnprocessableEntity, httpCode(t, err))

	neg := -5.0
	_, err = f.spaces.UpdateSpace(ctx, f.space.ID, repository.SpaceUpdate{PricePerHour: &neg})
	assert.Equal(t, http.StatusUnprocessableEntity, httpCode(t, err))
}

type overflowingSpaceStore struct {
	SpaceStore
}

func (overflowingSpaceStore) CreateSpace(context.Context, *db.CoworkingSpace) error {
	return &repository.DBError{Sentinel: repository.ErrOutOfRange, Cause: errors.New("numeric field overflow")}
}

func TestSpaceService_RejectsUnstorablePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.spaces.CreateSpace(ctx, &db.CoworkingSpace{Name: "n", Address: "a", City: "c", Country: "k", PricePerHour: 1e9})
	assert.Equal(t, http.StatusUnprocessableEntity, httpCode(t, err))

	huge := MaxHourlyRate + 1
	_, err = f.spaces.UpdateSpace(ctx, f.space.ID, repository.SpaceUpdate{PricePerHour: &huge})
	assert.Equal(t, http.StatusUnprocessableEntity, httpCode(t, err))

	err = NewSpaceService(overflowingSpaceStore{}).CreateSpace(ctx, &db.CoworkingSpace{Name: "n", PricePerHour: 10})
	var he *apperrors.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Code)
	assert.Contains(t, he.Fields, "price_per_hour")
	assert.ErrorIs(t, err, repository.ErrOutOfRange)
}

func TestCreateReservation_TotalTooLargeToStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rate := MaxHourlyRate
	_, err := f.spaces.UpdateSpace(ctx, f.space.ID, repository.SpaceUpdate{PricePerHour: &rate})
	require.NoError(t, err)

	_, err = f.reservations.CreateReservation(ctx, CreateReservationInput{
		CoworkingSpaceID: f.space.ID, UserID: f.user.ID, StartTime: hour0, EndTime: hour0.Add(1000 * time.Hour),
	})
	var he *apperrors.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Code)
	assert.Contains(t, he.Fields, "end_time")
	assert.ErrorIs(t, err, ErrPriceTooLarge)
}

func TestAuthService(t *testing.T) {
	d := testutil.NewDB(t)
	svc := NewAuthService(repository.NewUserRepository(d), "secret", time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Jane Smith", "jane.smith@example.com", "password1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	_, err = svc.Register(ctx, "Jane Again", "jane.smith@example.com", "password2")
	assert.Equal(t, http.StatusConflict, httpCode(t, err))

	token, err := svc.Login(ctx, "jane.smith@example.com", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Login(ctx, "jane.smith@example.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))

	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestAuthService_LoginWithoutSecret(t *testing.T) {
	d := testutil.NewDB(t)
	svc := NewAuthService(repository.NewUserRepository(d), "", time.Hour)
	ctx := context.Background()
	_, err := svc.Register(ctx, "Jane Smith", "jane.smith@example.com", "password1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "jane.smith@example.com", "password1")
	assert.Equal(t, http.StatusServiceUnavailable, httpCode(t, err))

	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.Equal(t, http.StatusServiceUnavailable, httpCode(t, err), "no account lookup without a signing key")
}

func TestAuthService_AdminEmails(t *testing.T) {
	d := testutil.NewDB(t)
	svc := NewAuthService(repository.NewUserRepository(d), "secret", time.Hour, " Ops@Example.com ")
	ctx := context.Background()

	admin, err := svc.Register(ctx, "Ops", "ops@example.com", "password1")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	member, err := svc.Register(ctx, "Member", "member@example.com", "password1")
	require.NoError(t, err)
	assert.False(t, member.IsAdmin)

	token, err := svc.Login(ctx, "ops@example.com", "password1")
	require.NoError(t, err)
	claims, err := auth.ParseToken([]byte("secret"), token)
	require.NoError(t, err)
	assert.True(t, claims.Admin)

	token, err = svc.Login(ctx, "member@example.com", "password1")
	require.NoError(t, err)
	claims, err = auth.ParseToken([]byte("secret"), token)
	require.NoError(t, err)
	assert.False(t, claims.Admin)
}

func TestJobService(t *testing.T) {
	f := newFixture(t)
	jobs := NewJobService(repository.NewJobRepository(f.db))
	jobs.now = func() time.Time { return hour0.Add(-time.Hour) }

	_, err := f.reservations.CreateReservation(context.Background(), CreateReservationInput{
		CoworkingSpaceID: f.space.ID, UserID: f.user.ID, StartTime: hour0, EndTime: hour0.Add(time.Hour),
	})
	require.NoError(t, err)

	stats, err := jobs.ReportStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repository.Stats{Spaces: 1, Reservations: 1, Upcoming: 1}, stats)

	c, err := jobs.Schedule("@every 1h")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = jobs.Schedule("not a schedule")
	assert.Error(t, err)
}

func TestRenderReservationEmail(t *testing.T) {
	user := db.User{ID: 1, Name: "John <Doe>", Email: "john.doe@example.com"}
	space := db.CoworkingSpace{ID: 2, Name: "Coworking Space 1", Address: "123 Main Street", City: "City A", Country: "Country X"}
	res := db.Reservation{ID: 3, StartTime: hour0, EndTime: hour0.Add(2 * time.Hour), TotalPrice: 30}

	subject, plain, html, err := RenderReservationEmail(user, space, res)
	require.NoError(t, err)
	assert.Contains(t, subject, "#3")
	assert.Contains(t, plain, "Total: 30.00")
	assert.Contains(t, plain, "01 Jun 2026 00:00 UTC")
	assert.Contains(t, html, "John &lt;Doe&gt;")
	assert.Contains(t, html, "123 Main Street, City A, Country X")
}

func TestSMTPNotifier(t *testing.T) {
	n := NewSMTPNotifier("mail.example.com", "587", "bot@example.com", "secret", "")
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	n.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	user := db.User{ID: 1, Name: "John Doe", Email: "john.doe@example.com"}
	space := db.CoworkingSpace{ID: 2, Name: "Coworking Space 1"}
	res := db.Reservation{ID: 3, StartTime: hour0, EndTime: hour0.Add(time.Hour), TotalPrice: 15}

	require.NoError(t, n.ReservationCreated(context.Background(), user, space, res))
	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"john.doe@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "To: john.doe@example.com\r\n")
	assert.Contains(t, gotMsg, "Total: 15.00\r\n")

	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay refused") }
	assert.ErrorContains(t, n.ReservationCreated(context.Background(), user, space, res), "relay refused")
}

func TestSMTPNotifier_HeaderValuesStayOnOneLine(t *testing.T) {
	n := NewSMTPNotifier("mail.example.com", "25", "", "", "bot@example.com")
	var gotMsg string
	n.sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = string(msg)
		return nil
	}

	user := db.User{ID: 1, Name: "John Doe", Email: "john.doe@example.com"}
	space := db.CoworkingSpace{ID: 2, Name: "Evil\r\nBcc: victim@example.com"}
	res := db.Reservation{ID: 3, StartTime: hour0, EndTime: hour0.Add(time.Hour), TotalPrice: 15}
	require.NoError(t, n.ReservationCreated(context.Background(), user, space, res))

	headers, _, found := strings.Cut(gotMsg, "\r\n\r\n")
	require.True(t, found)
	for _, line := range strings.Split(headers, "\r\n") {
		assert.False(t, strings.HasPrefix(line, "Bcc:"), "injected header line %q", line)
	}
	assert.Contains(t, headers, "Subject: =?utf-8?q?")
}
