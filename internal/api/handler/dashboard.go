package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/kiranshivaraju/shoptrack/internal/api/response"
	"github.com/kiranshivaraju/shoptrack/internal/cache"
)

// StatsStore is the slice of the store the dashboard handler depends on.
type StatsStore interface {
	CountActiveJobsByStatus(ctx context.Context) (map[string]int, error)
}

type dashboardStats struct {
	ByStatus    map[string]int `json:"by_status"`
	TotalActive int            `json:"total_active"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// NewDashboardHandler returns an http.HandlerFunc for GET /api/v1/dashboard/stats.
// Counts are served from Redis for ttl; transitions evict the entry early.
func NewDashboardHandler(s StatsStore, c cache.Cache, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c != nil {
			if raw, found, err := c.Get(r.Context(), cache.DashboardStatsKey()); err == nil && found {
				var stats dashboardStats
				if json.Unmarshal(raw, &stats) == nil {
					response.JSON(w, stats)
					return
				}
			}
		}

		counts, err := s.CountActiveJobsByStatus(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}

		total := 0
		for _, n := range counts {
			total += n
		}
		stats := dashboardStats{
			ByStatus:    counts,
			TotalActive: total,
			GeneratedAt: time.Now().UTC(),
		}

		if c != nil {
			if raw, err := json.Marshal(stats); err == nil {
				if err := c.Set(r.Context(), cache.DashboardStatsKey(), raw, ttl); err != nil {
					slog.Warn("dashboard cache write failed", "error", err)
				}
			}
		}

		response.JSON(w, stats)
	}
}
