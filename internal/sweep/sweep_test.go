package sweep

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/shoptrack/internal/store"
	"github.com/kiranshivaraju/shoptrack/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFinder struct {
	mu      sync.Mutex
	queries []workflow.Status
	cutoffs map[workflow.Status]time.Time
	jobs    map[workflow.Status][]*store.OverdueJob
}

func newRecordingFinder() *recordingFinder {
	return &recordingFinder{
		cutoffs: map[workflow.Status]time.Time{},
		jobs:    map[workflow.Status][]*store.OverdueJob{},
	}
}

func (f *recordingFinder) FindOverdueJobs(_ context.Context, status workflow.Status, before time.Time) ([]*store.OverdueJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, status)
	f.cutoffs[status] = before
	return f.jobs[status], nil
}

func TestSweep_ChecksBothMonitoredStatuses(t *testing.T) {
	f := newRecordingFinder()
	s := New(f, Config{
		Interval:          time.Hour,
		AwaitingThreshold: 2 * time.Hour,
		DetainedThreshold: 24 * time.Hour,
	})

	s.sweepOnce(context.Background())

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.queries, 2)
	assert.Contains(t, f.queries, workflow.StatusAwaitingWork)
	assert.Contains(t, f.queries, workflow.StatusDetained)

	now := time.Now().UTC()
	awaitingCutoff := f.cutoffs[workflow.StatusAwaitingWork]
	assert.WithinDuration(t, now.Add(-2*time.Hour), awaitingCutoff, time.Minute)
	detainedCutoff := f.cutoffs[workflow.StatusDetained]
	assert.WithinDuration(t, now.Add(-24*time.Hour), detainedCutoff, time.Minute)
}

func TestSweep_ReportsOverdueJobs(t *testing.T) {
	plate := "KX-4821"
	f := newRecordingFinder()
	f.jobs[workflow.StatusDetained] = []*store.OverdueJob{
		{JobID: uuid.New(), OrderRef: "DBM-1", Plate: &plate,
			Status: "detained", Since: time.Now().Add(-30 * time.Hour)},
	}
	s := New(f, Config{
		Interval:          time.Hour,
		AwaitingThreshold: 2 * time.Hour,
		DetainedThreshold: 24 * time.Hour,
	})

	// Must not panic on populated results; metric side effects are covered
	// in the metrics package.
	s.sweepOnce(context.Background())
}

func TestSweep_RunStopsOnCancel(t *testing.T) {
	f := newRecordingFinder()
	s := New(f, Config{
		Interval:          10 * time.Millisecond,
		AwaitingThreshold: time.Hour,
		DetainedThreshold: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep did not stop after cancel")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.GreaterOrEqual(t, len(f.queries), 2, "immediate first sweep expected")
}
