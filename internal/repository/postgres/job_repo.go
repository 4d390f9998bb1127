package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bookingflow/internal/domain"
	"bookingflow/internal/port"
)

type jobRepo struct {
	db *sqlx.DB
}

// NewJobRepo creates a new PostgreSQL-backed JobRepository.
func NewJobRepo(db *sqlx.DB) port.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.UploadJob) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `INSERT INTO upload_jobs (
		id, tenant_id, uploaded_by, uploader_email,
		original_name, file_size, document_id, source_bucket, source_key,
		status, stage, pages_total, pages_done,
		result_summary, failure_reason, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8, $9,
		$10, $11, $12, $13,
		$14, $15, $16, $17
	)`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.TenantID, job.UploadedBy, job.UploaderEmail,
		job.OriginalName, job.FileSize, job.DocumentID, job.SourceBucket, job.SourceKey,
		job.Status, job.Stage, job.PagesTotal, job.PagesDone,
		job.ResultSummary, job.FailureReason, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("jobRepo.Create: %w", err)
	}
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.UploadJob, error) {
	var job domain.UploadJob
	err := r.db.GetContext(ctx, &job,
		"SELECT * FROM upload_jobs WHERE id = $1 AND tenant_id = $2", jobID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("jobRepo.GetByID: %w", err)
	}
	return &job, nil
}

func (r *jobRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.UploadJob, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM upload_jobs WHERE tenant_id = $1", tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("jobRepo.ListByTenant count: %w", err)
	}

	var jobs []domain.UploadJob
	err = r.db.SelectContext(ctx, &jobs,
		`SELECT * FROM upload_jobs WHERE tenant_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("jobRepo.ListByTenant: %w", err)
	}
	return jobs, total, nil
}

// ClaimQueued flips up to limit queued jobs to processing in a single
// statement. SKIP LOCKED keeps concurrent workers from claiming the same row.
func (r *jobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.UploadJob, error) {
	var jobs []domain.UploadJob
	err := r.db.SelectContext(ctx, &jobs,
		`UPDATE upload_jobs SET status = $1, stage = 'claimed', updated_at = $2
		 WHERE id IN (
			SELECT id FROM upload_jobs WHERE status = $3
			ORDER BY created_at ASC LIMIT $4
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.JobStatusProcessing, time.Now().UTC(), domain.JobStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("jobRepo.ClaimQueued: %w", err)
	}
	return jobs, nil
}

// UpdateProgress writes the job's stage and page counters. It never writes
// back onto job: the orchestrator calls this from concurrent page goroutines.
func (r *jobRepo) UpdateProgress(ctx context.Context, job *domain.UploadJob) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE upload_jobs SET
			stage = $1, pages_total = $2, pages_done = $3, updated_at = $4
		 WHERE id = $5 AND tenant_id = $6`,
		job.Stage, job.PagesTotal, job.PagesDone, time.Now().UTC(),
		job.ID, job.TenantID)
	if err != nil {
		return fmt.Errorf("jobRepo.UpdateProgress: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *jobRepo) Complete(ctx context.Context, tenantID, jobID uuid.UUID, summary json.RawMessage) error {
	return r.finalize(ctx, tenantID, jobID, domain.JobStatusCompleted,
		`UPDATE upload_jobs SET status = $1, stage = 'done', result_summary = $2, updated_at = $3
		 WHERE id = $4 AND tenant_id = $5 AND status IN ($6, $7)`,
		domain.JobStatusCompleted, summary, time.Now().UTC(),
		jobID, tenantID, domain.JobStatusQueued, domain.JobStatusProcessing)
}

func (r *jobRepo) Fail(ctx context.Context, tenantID, jobID uuid.UUID, reason string) error {
	return r.finalize(ctx, tenantID, jobID, domain.JobStatusFailed,
		`UPDATE upload_jobs SET status = $1, stage = 'done', failure_reason = $2, updated_at = $3
		 WHERE id = $4 AND tenant_id = $5 AND status IN ($6, $7)`,
		domain.JobStatusFailed, reason, time.Now().UTC(),
		jobID, tenantID, domain.JobStatusQueued, domain.JobStatusProcessing)
}

// finalize runs a conditional terminal update. Zero rows affected means the
// job either does not exist or is already terminal; the follow-up read tells
// the two apart.
func (r *jobRepo) finalize(ctx context.Context, tenantID, jobID uuid.UUID, target domain.JobStatus, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("jobRepo.finalize(%s): %w", target, err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	var status domain.JobStatus
	err = r.db.GetContext(ctx, &status,
		"SELECT status FROM upload_jobs WHERE id = $1 AND tenant_id = $2", jobID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrJobNotFound
		}
		return fmt.Errorf("jobRepo.finalize(%s) status check: %w", target, err)
	}
	return domain.ErrJobAlreadyFinal
}
