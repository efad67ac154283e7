package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coworking/internal/api"
	"coworking/internal/config"
	"coworking/internal/repository"
	"coworking/internal/service"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler).With("env", cfg.Environment))
}

func openDB(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	return db, nil
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	spaceRepo := repository.NewSpaceRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)

	var notifier service.Notifier = service.LogNotifier{}
	switch {
	case cfg.SendGrid.Enabled():
		notifier = service.NewSendGridNotifier(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	case cfg.SMTP.Enabled():
		notifier = service.NewSMTPNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	default:
		slog.Warn("no mail transport configured, confirmation emails are only logged")
	}

	spaceSvc := service.NewSpaceService(spaceRepo)
	reservationSvc := service.NewReservationService(reservationRepo, spaceRepo, userRepo, notifier)
	authSvc := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.AdminEmails...)

	if cfg.Auth.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, coworking space mutations are unauthenticated")
	}

	router := api.NewRouter(api.Handlers{
		Spaces:       api.NewSpaceHandler(spaceSvc),
		Reservations: api.NewReservationHandler(reservationSvc),
		Auth:         api.NewAuthHandler(authSvc, cfg.Auth.TokenTTL),
		Health:       api.NewHealthHandler(jobRepo),
	}, api.RouterConfig{
		JWTSecret:   cfg.Auth.JWTSecret,
		CorsOrigins: cfg.Server.CorsOrigins,
		AccessLog:   os.Stdout,
	})

	if cfg.StatsCron != "" {
		jobs := service.NewJobService(jobRepo)
		scheduler, err := jobs.Schedule(cfg.StatsCron)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		slog.Info("stats job scheduled", "spec", cfg.StatsCron)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
