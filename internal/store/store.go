package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/shoptrack/internal/workflow"
	"github.com/kiranshivaraju/shoptrack/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrConflict = errors.New("conflicting reference")

// Listing page bounds, shared with the HTTP boundary so pagination metadata
// always reflects the page that was actually served.
const (
	DefaultPageSize = 15
	MaxPageSize     = 100
)

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateJobDetails(ctx context.Context, id uuid.UUID, upd JobUpdate) (*models.Job, error)
	ChangeJobStatus(ctx context.Context, id uuid.UUID, newStatus workflow.Status, params TransitionParams) (*models.Job, *models.StatusInterval, error)
	GetJobHistory(ctx context.Context, jobID uuid.UUID) ([]*models.StatusInterval, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, int, error)
	UpsertOrders(ctx context.Context, orders []BulkOrder) (created, updated int, err error)
	CountActiveJobsByStatus(ctx context.Context) (map[string]int, error)
	FindOverdueJobs(ctx context.Context, status workflow.Status, before time.Time) ([]*OverdueJob, error)

	CreateTechnician(ctx context.Context, tech *models.Technician) error
	ListTechnicians(ctx context.Context) ([]*models.Technician, error)
	DeleteTechnician(ctx context.Context, id uuid.UUID) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}

// TransitionParams carries the optional metadata of a status-change request.
// Pause fields are persisted only when the target status is detained.
type TransitionParams struct {
	PauseReason  string
	PauseDetail  string
	ETA          *time.Time
	TechnicianID *uuid.UUID

	// Now overrides the transition timestamp; zero means the wall clock.
	Now time.Time
}

// JobUpdate holds the mutable descriptive fields a PATCH may touch. Nil
// fields are left unchanged; status and history are never updated this way.
type JobUpdate struct {
	Description *string
	Advisor     *string
	TotalAmount *float64
}

// JobFilter selects and orders a job listing. Plate switches to full-history
// mode: every job matching the plate, any status, unpaginated; the remaining
// filters are ignored.
type JobFilter struct {
	Plate string

	Search      string
	Advisor     string
	Status      string
	CreatedFrom time.Time
	CreatedTo   time.Time
	// Active selects jobs not yet delivered; false selects delivered ones.
	Active bool

	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// BulkOrder is one validated record from the external bulk feed, matched to
// jobs by OrderRef. Nil fields are absent from the feed row.
type BulkOrder struct {
	OrderRef     string
	OrderType    *string
	CustomerName *string
	Plate        *string
	Make         *string
	VehicleModel *string
	VIN          *string
	Advisor      *string
	Description  *string
	TotalAmount  *float64
	CreatedAt    *time.Time
}

// OverdueJob is a read-only row for the dwell-time sweep: a job whose open
// interval has been in a monitored status since Since.
type OverdueJob struct {
	JobID    uuid.UUID
	OrderRef string
	Plate    *string
	Status   string
	Since    time.Time
}
