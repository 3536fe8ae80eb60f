package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"tenderdesk/api/internal/repository"
)

// Scheduler nulls out token columns whose expiry has passed. Expired
// tokens already fail their lookups; the sweeps keep the hash columns
// from accumulating dead values.
type Scheduler struct {
	cron  *cron.Cron
	users *repository.UserRepository
	log   zerolog.Logger
}

func NewScheduler(users *repository.UserRepository, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		users: users,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 * * * *", s.purgeResetTokens); err != nil { // hourly
		return err
	}
	if _, err := s.cron.AddFunc("0 30 0 * * *", s.purgeRefreshTokens); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for in-flight jobs, up to 5 seconds.
func (s *Scheduler) Stop() {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) purgeResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.users.PurgeExpiredResetTokens(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("reset token purge failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("purged", n).Msg("expired reset tokens cleared")
	}
}

func (s *Scheduler) purgeRefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.users.PurgeExpiredRefreshTokens(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("refresh token purge failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("purged", n).Msg("expired refresh tokens cleared")
	}
}
