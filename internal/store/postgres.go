package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/shoptrack/internal/workflow"
	"github.com/kiranshivaraju/shoptrack/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const jobColumns = `id, order_ref, order_type, customer_name, plate, make, vehicle_model, vin,
	advisor, description, total_amount, current_status, arrived_at, technician_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.OrderRef, &j.OrderType, &j.CustomerName, &j.Plate, &j.Make,
		&j.VehicleModel, &j.VIN, &j.Advisor, &j.Description, &j.TotalAmount,
		&j.CurrentStatus, &j.ArrivedAt, &j.TechnicianID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// --- Jobs ---

// CreateJob inserts a job in status scheduled together with its initial open
// interval, in one transaction.
func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create job: %w", err)
	}
	defer tx.Rollback(ctx)

	job.CurrentStatus = string(workflow.StatusScheduled)
	_, err = tx.Exec(ctx,
		`INSERT INTO jobs (id, order_ref, order_type, customer_name, plate, make, vehicle_model, vin,
		                   advisor, description, total_amount, current_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		job.ID, job.OrderRef, job.OrderType, job.CustomerName, job.Plate, job.Make,
		job.VehicleModel, job.VIN, job.Advisor, job.Description, job.TotalAmount,
		job.CurrentStatus, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create job: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO status_intervals (id, job_id, status, started_at) VALUES ($1, $2, $3, $4)`,
		uuid.New(), job.ID, job.CurrentStatus, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("create initial interval: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// UpdateJobDetails patches descriptive fields only. Status and history are
// owned by ChangeJobStatus.
func (s *PostgresStore) UpdateJobDetails(ctx context.Context, id uuid.UUID, upd JobUpdate) (*models.Job, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	argIdx := 2

	if upd.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *upd.Description)
		argIdx++
	}
	if upd.Advisor != nil {
		sets = append(sets, fmt.Sprintf("advisor = $%d", argIdx))
		args = append(args, *upd.Advisor)
		argIdx++
	}
	if upd.TotalAmount != nil {
		sets = append(sets, fmt.Sprintf("total_amount = $%d", argIdx))
		args = append(args, *upd.TotalAmount)
		argIdx++
	}

	query := fmt.Sprintf(`UPDATE jobs SET %s WHERE id = $1 RETURNING `+jobColumns,
		strings.Join(sets, ", "))
	j, err := scanJob(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update job details: %w", err)
	}
	return j, nil
}

// ChangeJobStatus runs one status transition end to end inside a single
// transaction: row lock, optional technician assignment, validation, close
// the open interval, open the next one, first-arrival detection, and the
// current-status update. Any failure rolls the whole unit back, including
// the technician assignment.
func (s *PostgresStore) ChangeJobStatus(ctx context.Context, id uuid.UUID, newStatus workflow.Status, params TransitionParams) (*models.Job, *models.StatusInterval, error) {
	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin status change: %w", err)
	}
	defer tx.Rollback(ctx)

	// The row lock serializes concurrent transitions on the same job.
	job, err := scanJob(tx.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lock job: %w", err)
	}

	if params.TechnicianID != nil {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM technicians WHERE id = $1)`, *params.TechnicianID).Scan(&exists)
		if err != nil {
			return nil, nil, fmt.Errorf("check technician: %w", err)
		}
		if !exists {
			return nil, nil, fmt.Errorf("technician: %w", ErrNotFound)
		}
		job.TechnicianID = params.TechnicianID
	}

	meta := workflow.TransitionMeta{
		PauseReason:   params.PauseReason,
		HasTechnician: job.TechnicianID != nil,
	}
	if err := workflow.ValidateTransition(workflow.Status(job.CurrentStatus), newStatus, meta); err != nil {
		return nil, nil, err
	}

	var closedStatus *string
	var cs string
	err = tx.QueryRow(ctx,
		`UPDATE status_intervals SET ended_at = $2
		 WHERE job_id = $1 AND ended_at IS NULL RETURNING status`, id, now).Scan(&cs)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// No open interval: tolerated for rows written before the ledger
		// existed; the new interval re-establishes the invariant.
	case err != nil:
		return nil, nil, fmt.Errorf("close open interval: %w", err)
	default:
		closedStatus = &cs
	}

	if closedStatus != nil && *closedStatus == string(workflow.StatusScheduled) && job.ArrivedAt == nil {
		job.ArrivedAt = &now
	}

	interval := &models.StatusInterval{
		ID:        uuid.New(),
		JobID:     id,
		Status:    string(newStatus),
		StartedAt: now,
	}
	if newStatus == workflow.StatusDetained {
		interval.PauseReason = &params.PauseReason
		if params.PauseDetail != "" {
			d := params.PauseDetail
			interval.PauseDetail = &d
		}
		interval.ETA = params.ETA
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO status_intervals (id, job_id, status, started_at, pause_reason, pause_detail, eta)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		interval.ID, interval.JobID, interval.Status, interval.StartedAt,
		interval.PauseReason, interval.PauseDetail, interval.ETA)
	if err != nil {
		return nil, nil, fmt.Errorf("open interval: %w", err)
	}

	job.CurrentStatus = string(newStatus)
	job.UpdatedAt = now
	_, err = tx.Exec(ctx,
		`UPDATE jobs SET current_status = $2, technician_id = $3, arrived_at = $4, updated_at = $5
		 WHERE id = $1`,
		id, job.CurrentStatus, job.TechnicianID, job.ArrivedAt, job.UpdatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("update job status: %w", err)
	}

	// current status must mirror the open interval
	if job.CurrentStatus != interval.Status {
		return nil, nil, fmt.Errorf("status invariant violated: job %q vs interval %q",
			job.CurrentStatus, interval.Status)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit status change: %w", err)
	}
	return job, interval, nil
}

func (s *PostgresStore) GetJobHistory(ctx context.Context, jobID uuid.UUID) ([]*models.StatusInterval, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, jobID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check job: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, job_id, status, started_at, ended_at, pause_reason, pause_detail, eta
		 FROM status_intervals WHERE job_id = $1 ORDER BY started_at ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job history: %w", err)
	}
	defer rows.Close()

	var intervals []*models.StatusInterval
	for rows.Next() {
		var iv models.StatusInterval
		if err := rows.Scan(&iv.ID, &iv.JobID, &iv.Status, &iv.StartedAt, &iv.EndedAt,
			&iv.PauseReason, &iv.PauseDetail, &iv.ETA); err != nil {
			return nil, fmt.Errorf("scan interval: %w", err)
		}
		intervals = append(intervals, &iv)
	}
	return intervals, rows.Err()
}

// sortColumns whitelists the attributes a listing may be ordered by.
var sortColumns = map[string]bool{
	"id": true, "order_ref": true, "customer_name": true, "plate": true,
	"advisor": true, "current_status": true, "total_amount": true,
	"arrived_at": true, "created_at": true, "updated_at": true,
}

// ListJobs returns one page of jobs plus the unpaginated total. Every row
// carries the summed detained seconds of its history so callers can derive
// active days without loading full histories.
func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, int, error) {
	var conditions []string
	var args []any
	argIdx := 1

	orderBy := "j.id DESC"
	paginate := true

	if filter.Plate != "" {
		// Full-history mode: everything ever seen for this plate.
		conditions = append(conditions, fmt.Sprintf("j.plate ILIKE $%d", argIdx))
		args = append(args, "%"+filter.Plate+"%")
		argIdx++
		orderBy = "j.created_at DESC"
		paginate = false
	} else {
		if filter.Active {
			conditions = append(conditions, fmt.Sprintf("j.current_status <> $%d", argIdx))
		} else {
			conditions = append(conditions, fmt.Sprintf("j.current_status = $%d", argIdx))
		}
		args = append(args, string(workflow.StatusDelivered))
		argIdx++

		if filter.Search != "" {
			conditions = append(conditions, fmt.Sprintf(
				"(j.customer_name ILIKE $%d OR j.plate ILIKE $%d OR j.order_ref ILIKE $%d)",
				argIdx, argIdx, argIdx))
			args = append(args, "%"+filter.Search+"%")
			argIdx++
		}
		if filter.Advisor != "" {
			conditions = append(conditions, fmt.Sprintf("j.advisor ILIKE $%d", argIdx))
			args = append(args, "%"+filter.Advisor+"%")
			argIdx++
		}
		if filter.Status != "" {
			conditions = append(conditions, fmt.Sprintf("j.current_status = $%d", argIdx))
			args = append(args, filter.Status)
			argIdx++
		}
		if !filter.CreatedFrom.IsZero() {
			conditions = append(conditions, fmt.Sprintf("j.created_at >= $%d", argIdx))
			args = append(args, filter.CreatedFrom)
			argIdx++
		}
		if !filter.CreatedTo.IsZero() {
			// Inclusive end date: anything before the following midnight.
			conditions = append(conditions, fmt.Sprintf("j.created_at < $%d", argIdx))
			args = append(args, filter.CreatedTo.AddDate(0, 0, 1))
			argIdx++
		}

		if sortColumns[filter.SortBy] {
			dir := "ASC"
			if strings.EqualFold(filter.SortOrder, "desc") {
				dir = "DESC"
			}
			orderBy = "j." + filter.SortBy + " " + dir
		}
	}

	where := "TRUE"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM jobs j WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	limitClause := ""
	if paginate {
		limit := filter.Limit
		if limit <= 0 {
			limit = DefaultPageSize
		}
		if limit > MaxPageSize {
			limit = MaxPageSize
		}
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		limitClause = fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, limit, (page-1)*limit)
	}

	dataQuery := fmt.Sprintf(
		`SELECT j.id, j.order_ref, j.order_type, j.customer_name, j.plate, j.make, j.vehicle_model, j.vin,
		        j.advisor, j.description, j.total_amount, j.current_status, j.arrived_at, j.technician_id,
		        j.created_at, j.updated_at,
		        COALESCE(d.detained_seconds, 0)
		 FROM jobs j
		 LEFT JOIN (
		     SELECT job_id,
		            SUM(EXTRACT(EPOCH FROM (COALESCE(ended_at, NOW()) - started_at))) AS detained_seconds
		     FROM status_intervals
		     WHERE status = '%s'
		     GROUP BY job_id
		 ) d ON d.job_id = j.id
		 WHERE %s ORDER BY %s%s`,
		workflow.StatusDetained, where, orderBy, limitClause)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var j models.Job
		var detained float64
		if err := rows.Scan(&j.ID, &j.OrderRef, &j.OrderType, &j.CustomerName, &j.Plate, &j.Make,
			&j.VehicleModel, &j.VIN, &j.Advisor, &j.Description, &j.TotalAmount,
			&j.CurrentStatus, &j.ArrivedAt, &j.TechnicianID, &j.CreatedAt, &j.UpdatedAt,
			&detained); err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		j.DetainedSeconds = int64(detained)
		jobs = append(jobs, &j)
	}
	return jobs, total, rows.Err()
}

// UpsertOrders applies one bulk-feed batch in a single transaction. Matched
// rows update descriptive attributes only; new rows start in scheduled with
// an open interval. A failure anywhere rolls back the whole batch.
func (s *PostgresStore) UpsertOrders(ctx context.Context, orders []BulkOrder) (int, int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin bulk upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	var created, updated int
	for _, o := range orders {
		var jobID uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT id FROM jobs WHERE order_ref = $1 FOR UPDATE`, o.OrderRef).Scan(&jobID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			jobID = uuid.New()
			now := time.Now().UTC()
			createdAt := now
			if o.CreatedAt != nil {
				createdAt = o.CreatedAt.UTC()
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO jobs (id, order_ref, order_type, customer_name, plate, make, vehicle_model, vin,
				                   advisor, description, total_amount, current_status, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
				jobID, o.OrderRef, o.OrderType, o.CustomerName, o.Plate, o.Make, o.VehicleModel, o.VIN,
				o.Advisor, o.Description, o.TotalAmount, string(workflow.StatusScheduled), createdAt, now)
			if err != nil {
				return 0, 0, fmt.Errorf("bulk insert %q: %w", o.OrderRef, err)
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO status_intervals (id, job_id, status, started_at) VALUES ($1, $2, $3, $4)`,
				uuid.New(), jobID, string(workflow.StatusScheduled), createdAt)
			if err != nil {
				return 0, 0, fmt.Errorf("bulk insert interval %q: %w", o.OrderRef, err)
			}
			created++

		case err != nil:
			return 0, 0, fmt.Errorf("bulk lookup %q: %w", o.OrderRef, err)

		default:
			sets := []string{"updated_at = NOW()"}
			args := []any{jobID}
			argIdx := 2
			add := func(col string, val any) {
				sets = append(sets, fmt.Sprintf("%s = $%d", col, argIdx))
				args = append(args, val)
				argIdx++
			}
			if o.OrderType != nil {
				add("order_type", *o.OrderType)
			}
			if o.CustomerName != nil {
				add("customer_name", *o.CustomerName)
			}
			if o.Plate != nil {
				add("plate", *o.Plate)
			}
			if o.Make != nil {
				add("make", *o.Make)
			}
			if o.VehicleModel != nil {
				add("vehicle_model", *o.VehicleModel)
			}
			if o.VIN != nil {
				add("vin", *o.VIN)
			}
			if o.Advisor != nil {
				add("advisor", *o.Advisor)
			}
			if o.Description != nil {
				add("description", *o.Description)
			}
			if o.TotalAmount != nil {
				add("total_amount", *o.TotalAmount)
			}
			query := fmt.Sprintf(`UPDATE jobs SET %s WHERE id = $1`, strings.Join(sets, ", "))
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return 0, 0, fmt.Errorf("bulk update %q: %w", o.OrderRef, err)
			}
			updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit bulk upsert: %w", err)
	}
	return created, updated, nil
}

// CountActiveJobsByStatus returns how many undelivered jobs sit in each status.
func (s *PostgresStore) CountActiveJobsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT current_status, COUNT(*) FROM jobs
		 WHERE current_status <> $1 GROUP BY current_status`,
		string(workflow.StatusDelivered))
	if err != nil {
		return nil, fmt.Errorf("count jobs by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// FindOverdueJobs lists jobs whose open interval entered the given status at
// or before the cutoff. Read-only; the sweep never mutates the ledger.
func (s *PostgresStore) FindOverdueJobs(ctx context.Context, status workflow.Status, before time.Time) ([]*OverdueJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT j.id, j.order_ref, j.plate, si.status, si.started_at
		 FROM status_intervals si
		 JOIN jobs j ON j.id = si.job_id
		 WHERE si.ended_at IS NULL AND si.status = $1 AND si.started_at <= $2
		 ORDER BY si.started_at ASC`,
		string(status), before)
	if err != nil {
		return nil, fmt.Errorf("find overdue jobs: %w", err)
	}
	defer rows.Close()

	var overdue []*OverdueJob
	for rows.Next() {
		var o OverdueJob
		if err := rows.Scan(&o.JobID, &o.OrderRef, &o.Plate, &o.Status, &o.Since); err != nil {
			return nil, fmt.Errorf("scan overdue job: %w", err)
		}
		overdue = append(overdue, &o)
	}
	return overdue, rows.Err()
}

// --- Technicians ---

func (s *PostgresStore) CreateTechnician(ctx context.Context, tech *models.Technician) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO technicians (id, code, name, created_at) VALUES ($1, $2, $3, $4)`,
		tech.ID, tech.Code, tech.Name, tech.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create technician: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTechnicians(ctx context.Context) ([]*models.Technician, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, code, name, created_at FROM technicians ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}
	defer rows.Close()

	var techs []*models.Technician
	for rows.Next() {
		var t models.Technician
		if err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan technician: %w", err)
		}
		techs = append(techs, &t)
	}
	return techs, rows.Err()
}

// DeleteTechnician removes a technician unless a job still references them;
// the FK RESTRICT turns that case into ErrConflict without a racy pre-check.
func (s *PostgresStore) DeleteTechnician(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM technicians WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("delete technician: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// isForeignKeyViolation checks if a pgx error is a foreign key violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}
