package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMaintainer struct {
	mu    sync.Mutex
	runs  int
	err   error
	ranCh chan struct{}
}

func (m *countingMaintainer) RunMaintenance(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()
	m.ranCh <- struct{}{}
	return "Restored 0 PCs (0 programs removed)", m.err
}

func TestNextRun(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)

	tests := []struct {
		name     string
		now      time.Time
		hour     int
		expected time.Time
	}{
		{name: "Later today", now: time.Date(2026, 3, 1, 1, 30, 0, 0, loc), hour: 3, expected: time.Date(2026, 3, 1, 3, 0, 0, 0, loc)},
		{name: "Already passed", now: time.Date(2026, 3, 1, 4, 0, 0, 0, loc), hour: 3, expected: time.Date(2026, 3, 2, 3, 0, 0, 0, loc)},
		{name: "Exactly on the hour", now: time.Date(2026, 3, 1, 3, 0, 0, 0, loc), hour: 3, expected: time.Date(2026, 3, 2, 3, 0, 0, 0, loc)},
		{name: "Month rollover", now: time.Date(2026, 3, 31, 23, 0, 0, 0, loc), hour: 0, expected: time.Date(2026, 4, 1, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.expected.Equal(NextRun(tt.now, tt.hour)), "got %v", NextRun(tt.now, tt.hour))
		})
	}
}

func TestMaintenanceScheduler_RunsWhenDue(t *testing.T) {
	maintainer := &countingMaintainer{ranCh: make(chan struct{}, 4), err: errors.New("deadlock detected")}
	s := NewMaintenanceScheduler(maintainer, 3, nil)

	now := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	fire := make(chan time.Time)
	waits := make(chan time.Duration, 4)
	s.after = func(d time.Duration) <-chan time.Time {
		waits <- d
		return fire
	}

	s.Start()
	s.Start() // idempotent

	require.Equal(t, time.Hour, <-waits)
	fire <- now
	<-maintainer.ranCh

	// A failed run keeps the scheduler alive for the next night.
	<-waits
	fire <- now
	<-maintainer.ranCh

	s.Stop()
	s.Stop()

	maintainer.mu.Lock()
	defer maintainer.mu.Unlock()
	assert.Equal(t, 2, maintainer.runs)
}
