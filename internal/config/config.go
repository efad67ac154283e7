package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    slog.Level
	LogFormat   string
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	SendGrid    SendGridConfig
	SMTP        SMTPConfig
	StatsCron   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds connection pool configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// AdminEmails are granted the admin role when they register.
	AdminEmails []string
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// Enabled reports whether enough is configured to send mail.
func (c SendGridConfig) Enabled() bool {
	return c.APIKey != "" && c.FromEmail != ""
}

// SMTPConfig is the relay used when SendGrid is not configured.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// Load reads a .env file when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:   os.Getenv("JWT_SECRET"),
			TokenTTL:    getEnvAsDuration("JWT_TTL", time.Hour),
			AdminEmails: getEnvAsSlice("ADMIN_EMAILS", nil),
		},
		SendGrid: SendGridConfig{
			APIKey:    os.Getenv("SENDGRID_API_KEY"),
			FromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),
			FromName:  getEnv("SENDGRID_FROM_NAME", "Coworking"),
		},
		SMTP: SMTPConfig{
			Host: os.Getenv("SMTP_HOST"),
			Port: getEnv("SMTP_PORT", "587"),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			From: os.Getenv("SMTP_FROM"),
		},
		StatsCron: getEnvOrEmpty("STATS_CRON", "@every 1h"),
	}

	return cfg, validate(cfg)
}

func validate(cfg Config) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}
	if cfg.Environment == "production" && cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", cfg.Auth.TokenTTL)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrEmpty distinguishes an explicitly empty variable from an unset one.
func getEnvOrEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(getEnv(key, ""))); err == nil {
		return lvl
	}
	return defaultValue
}
