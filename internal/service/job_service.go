package service

import (
	"context"
	"coworking/internal/repository"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	statsTimeout  = 30 * time.Second
	upcomingRange = 24 * time.Hour
)

type StatsStore interface {
	Ping(ctx context.Context) error
	CollectStats(ctx context.Context, now time.Time, window time.Duration) (repository.Stats, error)
}

type JobService struct {
	Repo StatsStore
	now  func() time.Time
}

func NewJobService(repo StatsStore) *JobService {
	return &JobService{Repo: repo, now: time.Now}
}

// ReportStats checks the database and logs booking volume.
func (s *JobService) ReportStats(ctx context.Context) (repository.Stats, error) {
	if err := s.Repo.Ping(ctx); err != nil {
		return repository.Stats{}, fmt.Errorf("cron job: database unreachable: %w", err)
	}
	stats, err := s.Repo.CollectStats(ctx, s.now(), upcomingRange)
	if err != nil {
		return repository.Stats{}, fmt.Errorf("cron job: collect stats: %w", err)
	}
	slog.InfoContext(ctx, "cron job: booking stats",
		"coworking_spaces", stats.Spaces,
		"reservations", stats.Reservations,
		"upcoming_24h", stats.Upcoming)
	return stats, nil
}

// Schedule registers ReportStats on spec and returns the unstarted scheduler.
func (s *JobService) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
		defer cancel()
		if _, err := s.ReportStats(ctx); err != nil {
			slog.Error("cron job failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_CRON %q: %w", spec, err)
	}
	return c, nil
}
