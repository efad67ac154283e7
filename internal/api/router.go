package api

import (
	"io"
	"log/slog"
	"net/http"

	"coworking/internal/auth"
	apperrors "coworking/internal/errors"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type Handlers struct {
	Spaces       *SpaceHandler
	Reservations *ReservationHandler
	Auth         *AuthHandler
	Health       *HealthHandler
}

type RouterConfig struct {
	// JWTSecret guards coworking space mutations. Empty leaves them open.
	JWTSecret   string
	CorsOrigins []string
	// AccessLog receives combined-format access lines; nil disables them.
	AccessLog io.Writer
}

func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, apperrors.ErrNotFound("Route not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, apperrors.NewHTTPError(http.StatusMethodNotAllowed, "Method not allowed"))
	})

	admin := func(fn http.HandlerFunc) http.Handler {
		if cfg.JWTSecret == "" {
			return fn
		}
		return auth.BearerMiddleware([]byte(cfg.JWTSecret), denyUnauthorized)(auth.RequireAdmin(denyUnauthorized)(fn))
	}

	r.HandleFunc("/api/health", h.Health.Health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	// Coworking spaces
	v1.HandleFunc("/coworking-spaces", h.Spaces.ListSpaces).Methods(http.MethodGet)
	v1.Handle("/coworking-spaces", admin(h.Spaces.CreateSpace)).Methods(http.MethodPost)
	v1.HandleFunc("/coworking-spaces/{id}", h.Spaces.GetSpace).Methods(http.MethodGet)
	v1.Handle("/coworking-spaces/{id}", admin(h.Spaces.UpdateSpace)).Methods(http.MethodPut)
	v1.Handle("/coworking-spaces/{id}", admin(h.Spaces.DeleteSpace)).Methods(http.MethodDelete)

	// Reservations
	v1.HandleFunc("/reservations", h.Reservations.ListReservations).Methods(http.MethodGet)
	v1.HandleFunc("/reservations", h.Reservations.CreateReservation).Methods(http.MethodPost)
	v1.HandleFunc("/reservations/{id}", h.Reservations.GetReservation).Methods(http.MethodGet)
	v1.HandleFunc("/reservations/{id}", h.Reservations.UpdateReservation).Methods(http.MethodPut)
	v1.HandleFunc("/reservations/{id}", h.Reservations.DeleteReservation).Methods(http.MethodDelete)

	// Users
	v1.HandleFunc("/users", h.Auth.Register).Methods(http.MethodPost)
	v1.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)

	var handler http.Handler = r
	handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError)),
	)(handler)
	if len(cfg.CorsOrigins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(cfg.CorsOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		)(handler)
	}
	if cfg.AccessLog != nil {
		handler = handlers.CombinedLoggingHandler(cfg.AccessLog, handler)
	}
	return handler
}
