package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UploadJob tracks the lifecycle of one upload request, independent of the
// booking records it produces.
type UploadJob struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	TenantID      uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	UploadedBy    uuid.UUID       `db:"uploaded_by" json:"uploaded_by"`
	UploaderEmail string          `db:"uploader_email" json:"uploader_email"`
	OriginalName  string          `db:"original_name" json:"original_name"`
	FileSize      int64           `db:"file_size" json:"file_size"`
	DocumentID    uuid.UUID       `db:"document_id" json:"document_id"`
	SourceBucket  string          `db:"source_bucket" json:"-"`
	SourceKey     string          `db:"source_key" json:"-"`
	Status        JobStatus       `db:"status" json:"status"`
	Stage         string          `db:"stage" json:"stage"`
	PagesTotal    int             `db:"pages_total" json:"pages_total"`
	PagesDone     int             `db:"pages_done" json:"pages_done"`
	ResultSummary json.RawMessage `db:"result_summary" json:"result_summary,omitempty"`
	FailureReason string          `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// JobSummary is the terminal result written into UploadJob.ResultSummary.
// PageErrors is ordered by page number, not completion order.
type JobSummary struct {
	DocumentID     uuid.UUID   `json:"document_id"`
	PagesTotal     int         `json:"pages_total"`
	PagesSucceeded int         `json:"pages_succeeded"`
	PagesFailed    int         `json:"pages_failed"`
	PageErrors     []PageError `json:"page_errors,omitempty"`
}

// PageError records a single page's extraction failure inside a JobSummary.
type PageError struct {
	Page    int    `json:"page"`
	Message string `json:"message"`
}

// BookingRecord is one extracted page of a booking document. TenantID is the
// storage partition key and is immutable after creation.
type BookingRecord struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	TenantID          uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	DocumentID        uuid.UUID       `db:"document_id" json:"document_id"`
	PageNumber        int             `db:"page_number" json:"page_number"`
	PageCount         int             `db:"page_count" json:"page_count"`
	SourceBucket      string          `db:"source_bucket" json:"-"`
	SourceKey         string          `db:"source_key" json:"-"`
	UploadedBy        uuid.UUID       `db:"uploaded_by" json:"uploaded_by"`
	UploaderEmail     string          `db:"uploader_email" json:"uploader_email"`
	Status            RecordStatus    `db:"status" json:"status"`
	Confidence        float64         `db:"confidence" json:"confidence"`
	Shipment          json.RawMessage `db:"shipment" json:"shipment"`
	Extraction        json.RawMessage `db:"extraction" json:"extraction"`
	ValidationHistory json.RawMessage `db:"validation_history" json:"validation_history"`
	ExtractionError   string          `db:"extraction_error" json:"extraction_error,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`

	// SourceURL is a presigned download URL for the page PDF, populated at
	// read time and never persisted.
	SourceURL string `db:"-" json:"source_url,omitempty"`
}

// ExtractionMeta describes how a BookingRecord's shipment payload was
// produced. Stored in BookingRecord.Extraction as JSONB.
type ExtractionMeta struct {
	ModelID              string             `json:"model_id"`
	ModelVersion         string             `json:"model_version"`
	FieldConfidences     map[string]float64 `json:"field_confidences"`
	LowConfidenceFields  []string           `json:"low_confidence_fields,omitempty"`
	ProcessingDurationMs int64              `json:"processing_duration_ms"`
}

// ValidationRecord is an immutable audit entry appended to a BookingRecord's
// validation history. Entries are never edited or removed.
type ValidationRecord struct {
	Timestamp      time.Time         `json:"timestamp"`
	ReviewerID     uuid.UUID         `json:"reviewer_id"`
	ReviewerEmail  string            `json:"reviewer_email"`
	Action         ValidationAction  `json:"action"`
	Corrections    map[string]string `json:"corrections,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	PreviousStatus RecordStatus      `json:"previous_status"`
}
