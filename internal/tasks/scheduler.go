package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RunTimeout bounds a single scheduled maintenance run
const RunTimeout = 10 * time.Minute

// Maintainer runs the nightly restore job.
type Maintainer interface {
	RunMaintenance(ctx context.Context) (string, error)
}

// NextRun returns the first time at hour:00 strictly after now, in now's
// location.
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// MaintenanceScheduler triggers maintenance once a day at a fixed hour.
type MaintenanceScheduler struct {
	maintainer Maintainer
	hour       int
	logger     *zap.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewMaintenanceScheduler creates a scheduler that runs at hour:00 local time.
func NewMaintenanceScheduler(maintainer Maintainer, hour int, logger *zap.Logger) *MaintenanceScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceScheduler{
		maintainer: maintainer,
		hour:       hour,
		logger:     logger,
		now:        time.Now,
		after:      time.After,
	}
}

// Start begins the scheduler background loop.
func (s *MaintenanceScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(s.stopCh)

	s.logger.Info("Maintenance scheduler started",
		zap.Int("hour", s.hour),
		zap.Time("next_run", NextRun(s.now(), s.hour)),
	)
}

// Stop stops the scheduler and waits for a run in progress to finish.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("Maintenance scheduler stopped")
}

func (s *MaintenanceScheduler) loop(stopCh <-chan struct{}) {
	defer s.wg.Done()

	for {
		wait := NextRun(s.now(), s.hour).Sub(s.now())
		select {
		case <-stopCh:
			return
		case <-s.after(wait):
			s.runOnce()
		}
	}
}

func (s *MaintenanceScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), RunTimeout)
	defer cancel()

	msg, err := s.maintainer.RunMaintenance(ctx)
	if err != nil {
		s.logger.Error("Scheduled maintenance failed", zap.Error(err))
		return
	}
	s.logger.Info("Scheduled maintenance complete", zap.String("result", msg))
}
