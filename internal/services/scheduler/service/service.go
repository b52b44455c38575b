// Package service runs the pipeline on a fixed daily time and on demand
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	perr "reviewpipe/internal/platform/errors"
	"reviewpipe/internal/platform/logger"
	ptime "reviewpipe/internal/platform/time"
	pipedom "reviewpipe/internal/services/pipeline/domain"
	"reviewpipe/internal/services/scheduler/domain"
)

// Config for the scheduler
type Config struct {
	Hour, Minute int
	Poll         time.Duration
	Table        string
	DateColumn   string
	LookbackDays int
}

// Service implements domain.SchedulerPort
type Service struct {
	cfg    Config
	runner pipedom.RunnerPort

	// run lock shared by daily and manual triggers
	running sync.Mutex
	bg      sync.WaitGroup

	lastMu sync.RWMutex
	last   *domain.Run

	now       func() time.Time
	newTicker func(time.Duration) (<-chan time.Time, func())
}

// New constructs the scheduler around a pipeline runner
func New(runner pipedom.RunnerPort, cfg Config) *Service {
	if cfg.Poll <= 0 {
		cfg.Poll = 30 * time.Second
	}
	if cfg.Table == "" {
		cfg.Table = "customer_reviews"
	}
	if cfg.DateColumn == "" {
		cfg.DateColumn = "review_date"
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 7
	}
	return &Service{
		cfg:    cfg,
		runner: runner,
		now:    time.Now,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// DailyQuery selects the last LookbackDays days of reviews relative to now
func (s *Service) DailyQuery(now time.Time) string {
	since := ptime.DaysBefore(now, s.cfg.LookbackDays).Format("2006-01-02")
	return fmt.Sprintf("SELECT * FROM %s WHERE %s >= '%s'", s.cfg.Table, s.cfg.DateColumn, since)
}

// Next returns the next daily trigger strictly after now
func (s *Service) Next(now time.Time) time.Time {
	return ptime.NextDaily(now, s.cfg.Hour, s.cfg.Minute)
}

// Start polls every Poll until ctx is done. A due trigger that finds a run in flight is skipped
func (s *Service) Start(ctx context.Context) error {
	log := logger.Named("scheduler")
	tick, stop := s.newTicker(s.cfg.Poll)
	defer stop()

	next := s.Next(s.now())
	log.Info().
		Str("run_at", fmt.Sprintf("%02d:%02d", s.cfg.Hour, s.cfg.Minute)).
		Dur("poll", s.cfg.Poll).
		Time("next_run", next).
		Msg("scheduler initialized; waiting for the next scheduled run")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return nil
		case <-tick:
			now := s.now()
			if now.Before(next) {
				continue
			}
			s.runDue(ctx, now)
			next = s.Next(s.now())
			log.Info().Time("next_run", next).Msg("next run scheduled")
		}
	}
}

func (s *Service) runDue(ctx context.Context, now time.Time) {
	if !s.running.TryLock() {
		logger.Named("scheduler").Warn().Str("trigger", domain.TriggerDaily).Msg("run in flight; daily trigger skipped")
		return
	}
	defer s.running.Unlock()
	s.run(ctx, domain.TriggerDaily, s.DailyQuery(now))
}

// Trigger starts a manual run in the background; the run outlives ctx cancellation
func (s *Service) Trigger(ctx context.Context, query string) error {
	if query == "" {
		query = s.DailyQuery(s.now())
	}
	if !s.running.TryLock() {
		logger.C(ctx).Warn().Str("trigger", domain.TriggerManual).Msg("run in flight; manual trigger skipped")
		return domain.ErrRunInFlight
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		defer s.running.Unlock()
		s.run(context.WithoutCancel(ctx), domain.TriggerManual, query)
	}()
	return nil
}

// Wait blocks until manual runs started by Trigger return
func (s *Service) Wait() { s.bg.Wait() }

// Last returns the most recent finished run
func (s *Service) Last() (domain.Run, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	if s.last == nil {
		return domain.Run{}, false
	}
	return *s.last, true
}

// run executes one pipeline run; the caller holds the run lock
func (s *Service) run(ctx context.Context, trigger, query string) {
	log := logger.Named("scheduler")
	defer func() {
		if r := recover(); r != nil {
			log.Error().Err(perr.PanicErrf("pipeline: %v", r)).Str("trigger", trigger).Msg("scheduled run panicked")
		}
	}()

	rep, err := s.runner.Run(ctx, query)
	s.lastMu.Lock()
	s.last = &domain.Run{Trigger: trigger, Report: rep}
	s.lastMu.Unlock()

	if err != nil {
		log.Error().Err(err).Str("trigger", trigger).Str("run_id", rep.RunID).Msg("scheduled pipeline run failed")
		return
	}
	log.Info().Str("trigger", trigger).Str("run_id", rep.RunID).Bool("stage_failures", rep.Failed()).Msg("scheduled pipeline run completed")
}
