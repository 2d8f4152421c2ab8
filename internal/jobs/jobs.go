// Package jobs runs background maintenance on a gocron scheduler.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

const sessionSweepJob = "session-sweep"

// SessionSweeper deletes expired sessions. auth.PasswordProvider satisfies it.
type SessionSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Scheduler owns the background jobs of the server.
type Scheduler struct {
	s      *gocron.Scheduler
	logger *log.Logger
}

// Start schedules the session sweep every interval and starts the
// scheduler. An interval of zero disables the sweep.
func Start(sweeper SessionSweeper, interval time.Duration, logger *log.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	sched := &Scheduler{s: s, logger: logger}

	if interval <= 0 || sweeper == nil {
		logger.Println("jobs: session sweep interval is 0, sweeping is disabled")
	} else {
		logger.Printf("jobs: scheduling %s every %s", sessionSweepJob, interval)
		_, err := s.Every(interval).Tag(sessionSweepJob).Do(func() {
			sched.sweep(sweeper, interval)
		})
		if err != nil {
			return nil, err
		}
	}

	s.StartAsync()
	return sched, nil
}

// Jobs reports how many jobs are scheduled.
func (s *Scheduler) Jobs() int {
	return len(s.s.Jobs())
}

// Stop halts the scheduler and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.s.Stop()
}

func (s *Scheduler) sweep(sweeper SessionSweeper, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	n, err := sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.Printf("jobs: %s failed: %v", sessionSweepJob, err)
		return
	}
	if n > 0 {
		s.logger.Printf("jobs: %s removed %d expired sessions", sessionSweepJob, n)
	}
}
