// Package sweep periodically flags jobs that have been sitting in a waiting
// state for too long. It only reads and reports; nothing is transitioned
// automatically.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/shoptrack/internal/metrics"
	"github.com/kiranshivaraju/shoptrack/internal/store"
	"github.com/kiranshivaraju/shoptrack/internal/workflow"
)

// Finder is the slice of the store the sweep depends on.
type Finder interface {
	FindOverdueJobs(ctx context.Context, status workflow.Status, before time.Time) ([]*store.OverdueJob, error)
}

// Config sets the cadence and the dwell thresholds per monitored status.
type Config struct {
	Interval          time.Duration
	AwaitingThreshold time.Duration
	DetainedThreshold time.Duration
}

// Sweep is the background dwell-time monitor.
type Sweep struct {
	store Finder
	cfg   Config
}

func New(s Finder, cfg Config) *Sweep {
	return &Sweep{store: s, cfg: cfg}
}

// Run blocks until ctx is cancelled, sweeping once per interval. The first
// sweep happens immediately.
func (s *Sweep) Run(ctx context.Context) {
	slog.Info("sweep started",
		"interval", s.cfg.Interval,
		"awaiting_threshold", s.cfg.AwaitingThreshold,
		"detained_threshold", s.cfg.DetainedThreshold,
	)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("sweep stopped")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweep) sweepOnce(ctx context.Context) {
	now := time.Now().UTC()
	s.check(ctx, workflow.StatusAwaitingWork, now.Add(-s.cfg.AwaitingThreshold))
	s.check(ctx, workflow.StatusDetained, now.Add(-s.cfg.DetainedThreshold))
}

func (s *Sweep) check(ctx context.Context, status workflow.Status, cutoff time.Time) {
	jobs, err := s.store.FindOverdueJobs(ctx, status, cutoff)
	if err != nil {
		slog.Error("sweep query failed", "status", status, "error", err)
		return
	}

	for _, job := range jobs {
		metrics.SweepAlerts.WithLabelValues(string(status)).Inc()
		attrs := []any{
			"job_id", job.JobID,
			"order_ref", job.OrderRef,
			"status", job.Status,
			"since", job.Since,
			"dwell", time.Since(job.Since).Round(time.Minute),
		}
		if job.Plate != nil {
			attrs = append(attrs, "plate", *job.Plate)
		}
		slog.Warn("job overdue", attrs...)
	}
}
