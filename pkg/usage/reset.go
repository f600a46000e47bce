package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/BDeshi155/pdf-gpt/pkg/observability"
)

// MonthlySchedule resets counters shortly after midnight UTC on the
// first of each month.
const MonthlySchedule = "5 0 1 * *"

// Scheduler runs the monthly usage reset on a cron schedule
type Scheduler struct {
	store  *Store
	logger *observability.Logger
	cron   *cron.Cron
}

// NewScheduler creates the usage reset scheduler
func NewScheduler(store *Store, logger *observability.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		logger: logger,
		cron:   cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start schedules the monthly reset and begins the cron loop
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(MonthlySchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		affected, err := s.store.ResetMonthly(ctx)
		if err != nil {
			s.logger.WithError(err).Error("monthly usage reset failed")
			return
		}
		s.logger.WithField("users_reset", affected).Info("monthly usage counters reset")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule monthly reset: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish
func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
