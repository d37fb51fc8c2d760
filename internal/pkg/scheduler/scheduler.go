// Package scheduler runs periodic housekeeping tasks on cron specs.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Task is one unit of scheduled work
type Task func(ctx context.Context) error

// Scheduler wraps a cron runner
type Scheduler struct {
	cron    *cron.Cron
	logger  zerolog.Logger
	timeout time.Duration
}

// New creates a scheduler. Each run of a task is bounded by timeout.
func New(logger zerolog.Logger, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		timeout: timeout,
	}
}

// Add registers task under name with a standard cron spec or a descriptor such as "@every 1h"
func (s *Scheduler) Add(name, spec string, task Task) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, task)
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("task", name).Str("spec", spec).Msg("Scheduled task registered")
	return nil
}

func (s *Scheduler) run(name string, task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := task(ctx); err != nil {
		s.logger.Error().Err(err).Str("task", name).Msg("Scheduled task failed")
		return
	}
	s.logger.Debug().Str("task", name).Dur("took", time.Since(start)).Msg("Scheduled task completed")
}

// Start begins running tasks in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running tasks until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("Scheduler stop timed out")
	}
}

// Len returns the number of registered tasks
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}
