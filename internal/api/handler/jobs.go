package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/shoptrack/internal/api/response"
	"github.com/kiranshivaraju/shoptrack/internal/store"
	"github.com/kiranshivaraju/shoptrack/internal/workflow"
	"github.com/kiranshivaraju/shoptrack/pkg/models"
)

const dateLayout = "2006-01-02"

// JobStore is the slice of the store the job handlers depend on.
type JobStore interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateJobDetails(ctx context.Context, id uuid.UUID, upd store.JobUpdate) (*models.Job, error)
	ListJobs(ctx context.Context, filter store.JobFilter) ([]*models.Job, int, error)
	GetJobHistory(ctx context.Context, jobID uuid.UUID) ([]*models.StatusInterval, error)
}

// NewCreateJobHandler returns an http.HandlerFunc for POST /api/v1/jobs.
// New jobs always start in scheduled with an open history interval.
func NewCreateJobHandler(s JobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OrderRef     string   `json:"order_ref"`
			OrderType    *string  `json:"order_type"`
			CustomerName *string  `json:"customer_name"`
			Plate        *string  `json:"plate"`
			Make         *string  `json:"make"`
			VehicleModel *string  `json:"vehicle_model"`
			VIN          *string  `json:"vin"`
			Advisor      *string  `json:"advisor"`
			Description  *string  `json:"description"`
			TotalAmount  *float64 `json:"total_amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.OrderRef == "" {
			response.Error(w, http.StatusBadRequest, "MISSING_FIELD", "order_ref is required", nil)
			return
		}

		now := time.Now().UTC()
		job := &models.Job{
			ID:           uuid.New(),
			OrderRef:     req.OrderRef,
			OrderType:    req.OrderType,
			CustomerName: req.CustomerName,
			Plate:        req.Plate,
			Make:         req.Make,
			VehicleModel: req.VehicleModel,
			VIN:          req.VIN,
			Advisor:      req.Advisor,
			Description:  req.Description,
			TotalAmount:  req.TotalAmount,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.CreateJob(r.Context(), job); err != nil {
			writeStoreError(w, err)
			return
		}

		response.Created(w, job)
	}
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/jobs/{jobID}.
func NewGetJobHandler(s JobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseJobID(w, r)
		if !ok {
			return
		}

		job, err := s.GetJob(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		history, err := s.GetJobHistory(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		job.ActiveDays = activeDaysOrSentinel(job, history, time.Now())

		response.JSON(w, job)
	}
}

// NewUpdateJobHandler returns an http.HandlerFunc for PATCH /api/v1/jobs/{jobID}.
// Only descriptive fields can change here; status moves through the
// transition endpoint.
func NewUpdateJobHandler(s JobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseJobID(w, r)
		if !ok {
			return
		}

		var req struct {
			Description *string  `json:"description"`
			Advisor     *string  `json:"advisor"`
			TotalAmount *float64 `json:"total_amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Description == nil && req.Advisor == nil && req.TotalAmount == nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "No updatable fields provided", nil)
			return
		}

		job, err := s.UpdateJobDetails(r.Context(), id, store.JobUpdate{
			Description: req.Description,
			Advisor:     req.Advisor,
			TotalAmount: req.TotalAmount,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}

		response.JSON(w, job)
	}
}

// NewListJobsHandler returns an http.HandlerFunc for GET /api/v1/jobs.
// A plate parameter switches to full-history mode: every visit of that
// vehicle regardless of status, unpaginated.
func NewListJobsHandler(s JobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := store.JobFilter{
			Plate:     q.Get("plate"),
			Search:    q.Get("search"),
			Advisor:   q.Get("advisor"),
			Status:    q.Get("status"),
			SortBy:    q.Get("sort_by"),
			SortOrder: q.Get("sort_order"),
			Active:    q.Get("active") != "false",
		}

		if filter.Status != "" {
			if _, err := workflow.ParseStatus(filter.Status); err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"status is not a known job status", nil)
				return
			}
		}

		var err error
		if filter.CreatedFrom, err = parseDateParam(q.Get("from")); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"from must be a YYYY-MM-DD date", nil)
			return
		}
		if filter.CreatedTo, err = parseDateParam(q.Get("to")); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"to must be a YYYY-MM-DD date", nil)
			return
		}

		filter.Page = intParam(q.Get("page"), 1)
		filter.Limit = intParam(q.Get("limit"), store.DefaultPageSize)
		if filter.Limit > store.MaxPageSize {
			filter.Limit = store.MaxPageSize
		}

		jobs, total, err := s.ListJobs(r.Context(), filter)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		now := time.Now()
		for _, job := range jobs {
			ref := workflow.ReferenceStart(job.ArrivedAt, job.CreatedAt)
			days, derr := workflow.ActiveDays(ref, time.Duration(job.DetainedSeconds)*time.Second, now)
			if derr != nil {
				job.ActiveDays = workflow.StaySentinel
				continue
			}
			job.ActiveDays = days
		}

		meta := response.PaginationMeta{
			Page:    filter.Page,
			Limit:   filter.Limit,
			Total:   total,
			HasNext: filter.Page*filter.Limit < total,
		}
		if filter.Plate != "" {
			// Plate mode serves the whole vehicle history in one response.
			meta.Page = 1
			meta.Limit = total
			meta.HasNext = false
		}
		response.Collection(w, jobs, meta)
	}
}

func parseJobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func parseDateParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, v)
}

func intParam(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// activeDaysOrSentinel derives a single job's active days from its full
// history, falling back to the sentinel when the ledger is inconsistent.
func activeDaysOrSentinel(job *models.Job, history []*models.StatusInterval, now time.Time) int {
	detained, err := workflow.DetainedTime(history, now)
	if err != nil {
		return workflow.StaySentinel
	}
	ref := workflow.ReferenceStart(job.ArrivedAt, job.CreatedAt)
	days, err := workflow.ActiveDays(ref, detained, now)
	if err != nil {
		return workflow.StaySentinel
	}
	return days
}
