// Package simulation runs the periodic consumption decay.
package simulation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/habmon/habmon/internal/metrics"
	"github.com/habmon/habmon/internal/models"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = 30 * time.Second

// ErrRunning is returned by Run when the scheduler is already running.
var ErrRunning = errors.New("scheduler already running")

// Decayer applies one decay tick.
type Decayer interface {
	ApplyConsumptionDecay(ctx context.Context, tickSeconds float64) ([]models.ResourceCard, error)
}

// Stats describes the scheduler's progress.
type Stats struct {
	Ticks       int
	Failures    int
	LastTick    time.Time
	LastChanged int
	LastError   error
}

// Scheduler runs decay ticks on a fixed interval. Ticks never overlap and
// a running tick is never cancelled.
type Scheduler struct {
	decayer  Decayer
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	running bool
	stats   Stats
}

// NewScheduler creates a scheduler ticking every interval.
func NewScheduler(decayer Decayer, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		decayer:  decayer,
		interval: interval,
		logger:   logger.With("component", "scheduler"),
		metrics:  m,
	}
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run ticks until ctx is done. It returns after the in-flight tick, if any,
// has completed.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("decay scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("decay scheduler stopped")
			return nil
		case <-ticker.C:
			// The ticker drops ticks while this runs.
			_, _ = s.Tick(context.WithoutCancel(ctx))
		}
	}
}

// Tick applies one interval of decay now. Failures are logged and counted.
func (s *Scheduler) Tick(ctx context.Context) ([]models.ResourceCard, error) {
	start := time.Now()
	cards, err := s.decayer.ApplyConsumptionDecay(ctx, s.interval.Seconds())
	elapsed := time.Since(start)

	s.metrics.ObserveTick(elapsed, len(cards), err)

	s.mu.Lock()
	s.stats.Ticks++
	s.stats.LastTick = start
	s.stats.LastChanged = len(cards)
	s.stats.LastError = err
	if err != nil {
		s.stats.Failures++
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("decay tick failed", "error", err, "changed", len(cards), "duration", elapsed)
	} else if len(cards) > 0 {
		s.logger.Debug("decay tick complete", "changed", len(cards), "duration", elapsed)
	}
	return cards, err
}

// Stats returns a snapshot of the scheduler's progress.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
