package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"lab-reservation-backend/config"
	"lab-reservation-backend/internal/booking"
)

// NotificationPruner is the slice of the store the retention job needs.
type NotificationPruner interface {
	DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler runs recurring housekeeping jobs on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	pruner NotificationPruner
	clock  booking.Clock
	cfg    config.RetentionConfig
}

// NewScheduler creates the job scheduler. A nil clock falls back to the
// system clock.
func NewScheduler(pruner NotificationPruner, clock booking.Clock, cfg config.RetentionConfig) *Scheduler {
	if clock == nil {
		clock = booking.RealClock
	}
	return &Scheduler{
		cron:   cron.New(),
		pruner: pruner,
		clock:  clock,
		cfg:    cfg,
	}
}

// Start registers the jobs and launches the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.pruneNotifications); err != nil {
		return fmt.Errorf("failed to schedule notification pruning: %w", err)
	}
	s.cron.Start()
	log.Printf("Retention job scheduled (%q), keeping notifications for %d days", s.cfg.Schedule, s.cfg.NotificationDays)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) pruneNotifications() {
	cutoff := s.clock.Now().AddDate(0, 0, -s.cfg.NotificationDays)
	deleted, err := s.pruner.DeleteNotificationsBefore(context.Background(), cutoff)
	if err != nil {
		log.Printf("Error pruning notifications: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Pruned %d notification(s) older than %d days.", deleted, s.cfg.NotificationDays)
	}
}
