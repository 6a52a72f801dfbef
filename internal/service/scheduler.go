package service

import (
	"context"
	"sync"
	"time"

	"overwatch-tracker/internal/config"

	"github.com/rs/zerolog"
)

// Sweeper is implemented by TrackerService.
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// Scheduler drives one sweep per fixed interval. Sweeps are single-flight:
// a tick that fires while the previous sweep is still running is skipped,
// never stacked. An overrunning sweep is left to finish on its own.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	logger   zerolog.Logger

	inFlight sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(tracker *TrackerService, cfg *config.Config, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  tracker,
		interval: cfg.SweepInterval,
		logger:   logger,
	}
}

// Start launches the timer loop. Safe to call once.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
	s.logger.Info().Dur("interval", s.interval).Msg("sweep scheduler started")
}

// Stop cancels the timer loop and waits for it (not for an in-flight sweep,
// which is abandoned through context cancellation; every append is a single
// atomic insert, so an interrupted sweep leaves consistent state).
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.logger.Info().Msg("sweep scheduler stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First sweep fires right away rather than one interval in.
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.inFlight.TryLock() {
		s.logger.Warn().Msg("previous sweep still running, skipping tick")
		return
	}
	go func() {
		defer s.inFlight.Unlock()
		if err := s.sweeper.Sweep(ctx); err != nil {
			s.logger.Error().Err(err).Msg("sweep failed")
		}
	}()
}
