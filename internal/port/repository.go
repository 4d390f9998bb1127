package port

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"bookingflow/internal/domain"
)

// JobRepository defines the contract for upload job persistence.
// Every read and mutation is scoped by tenantID; a job ID alone is never
// sufficient to touch a row. ClaimQueued is the one exception: it is called
// by the ingest worker, which operates across tenants.
type JobRepository interface {
	Create(ctx context.Context, job *domain.UploadJob) error
	GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.UploadJob, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.UploadJob, int, error)

	// ClaimQueued atomically moves up to limit queued jobs to processing and
	// returns them. Safe to call from multiple workers.
	ClaimQueued(ctx context.Context, limit int) ([]domain.UploadJob, error)

	// UpdateProgress persists stage and page counters for an in-flight job.
	UpdateProgress(ctx context.Context, job *domain.UploadJob) error

	// Complete and Fail are mutually exclusive terminal writes. A second
	// terminal write on the same job returns domain.ErrJobAlreadyFinal.
	Complete(ctx context.Context, tenantID, jobID uuid.UUID, summary json.RawMessage) error
	Fail(ctx context.Context, tenantID, jobID uuid.UUID, reason string) error
}

// BookingFilter narrows a tenant-scoped booking list query.
type BookingFilter struct {
	Status            *domain.RecordStatus
	PageSize          int
	ContinuationToken string
}

// BookingRepository defines the contract for booking record persistence.
// All methods take tenantID as the partition key, sourced from the
// authenticated caller, never inferred from a record ID.
type BookingRepository interface {
	Create(ctx context.Context, rec *domain.BookingRecord) error
	GetByID(ctx context.Context, tenantID, recordID uuid.UUID) (*domain.BookingRecord, error)

	// List returns one page of records plus an opaque continuation token;
	// the token is empty when no further pages exist.
	List(ctx context.Context, tenantID uuid.UUID, filter BookingFilter) ([]domain.BookingRecord, string, error)

	ListByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]domain.BookingRecord, error)
	ListAllByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.BookingRecord, error)

	// UpdateValidation persists status, shipment payload, extraction metadata
	// and validation history after a reviewer action.
	UpdateValidation(ctx context.Context, rec *domain.BookingRecord) error
}
