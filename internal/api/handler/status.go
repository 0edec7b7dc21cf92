package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/shoptrack/internal/api/response"
	"github.com/kiranshivaraju/shoptrack/internal/cache"
	"github.com/kiranshivaraju/shoptrack/internal/metrics"
	"github.com/kiranshivaraju/shoptrack/internal/store"
	"github.com/kiranshivaraju/shoptrack/internal/workflow"
	"github.com/kiranshivaraju/shoptrack/pkg/models"
)

// StatusChanger is the slice of the store the transition handlers depend on.
type StatusChanger interface {
	ChangeJobStatus(ctx context.Context, id uuid.UUID, newStatus workflow.Status, params store.TransitionParams) (*models.Job, *models.StatusInterval, error)
	GetJobHistory(ctx context.Context, jobID uuid.UUID) ([]*models.StatusInterval, error)
}

// NewChangeStatusHandler returns an http.HandlerFunc for
// PATCH /api/v1/jobs/{jobID}/status. The whole transition commits or rolls
// back as one unit; a stale dashboard entry is evicted on success.
func NewChangeStatusHandler(s StatusChanger, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseJobID(w, r)
		if !ok {
			return
		}

		var req struct {
			Status       string  `json:"status"`
			PauseReason  string  `json:"pause_reason"`
			PauseDetail  string  `json:"pause_detail"`
			ETA          *string `json:"eta"`
			TechnicianID *string `json:"technician_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Status == "" {
			response.Error(w, http.StatusBadRequest, "MISSING_FIELD", "status is required", nil)
			return
		}

		newStatus, err := workflow.ParseStatus(req.Status)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"status is not a known job status", nil)
			return
		}

		params := store.TransitionParams{
			PauseReason: req.PauseReason,
			PauseDetail: req.PauseDetail,
		}
		if req.ETA != nil {
			eta, err := time.Parse(time.RFC3339, *req.ETA)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"eta must be a valid RFC3339 timestamp", nil)
				return
			}
			params.ETA = &eta
		}
		if req.TechnicianID != nil {
			techID, err := uuid.Parse(*req.TechnicianID)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"technician_id must be a UUID", nil)
				return
			}
			params.TechnicianID = &techID
		}

		job, interval, err := s.ChangeJobStatus(r.Context(), id, newStatus, params)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		metrics.StatusTransitions.WithLabelValues(string(newStatus)).Inc()
		if c != nil {
			if err := c.Delete(r.Context(), cache.DashboardStatsKey()); err != nil {
				slog.Warn("dashboard cache eviction failed", "error", err)
			}
		}

		response.JSON(w, statusChangeResponse{Job: job, Interval: interval})
	}
}

// NewJobHistoryHandler returns an http.HandlerFunc for
// GET /api/v1/jobs/{jobID}/history. Intervals come back oldest first.
func NewJobHistoryHandler(s StatusChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseJobID(w, r)
		if !ok {
			return
		}

		history, err := s.GetJobHistory(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		response.JSON(w, history)
	}
}

type statusChangeResponse struct {
	Job      *models.Job            `json:"job"`
	Interval *models.StatusInterval `json:"interval"`
}
