package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"bookingflow/internal/assembler"
	"bookingflow/internal/config"
	"bookingflow/internal/domain"
	"bookingflow/internal/export"
	"bookingflow/internal/port"
)

// ValidateInput is the DTO for a reviewer action on a booking record.
type ValidateInput struct {
	TenantID      uuid.UUID
	RecordID      uuid.UUID
	ReviewerID    uuid.UUID
	ReviewerEmail string
	Action        string
	Corrections   map[string]string
	Notes         string
}

// BookingService defines the booking record read and validation contract.
type BookingService interface {
	GetByID(ctx context.Context, tenantID, recordID uuid.UUID) (*domain.BookingRecord, error)
	List(ctx context.Context, tenantID uuid.UUID, filter port.BookingFilter) ([]domain.BookingRecord, string, error)
	ListByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]domain.BookingRecord, error)
	Validate(ctx context.Context, input ValidateInput) (*domain.BookingRecord, error)
	ExportXLSX(ctx context.Context, tenantID uuid.UUID) ([]byte, error)

	GetJob(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.UploadJob, error)
	ListJobs(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.UploadJob, int, error)
}

type bookingService struct {
	bookingRepo port.BookingRepository
	jobRepo     port.JobRepository
	storage     port.ObjectStorage
	s3cfg       *config.S3Config
}

// NewBookingService creates a new BookingService implementation.
func NewBookingService(
	bookingRepo port.BookingRepository,
	jobRepo port.JobRepository,
	storage port.ObjectStorage,
	s3cfg *config.S3Config,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		jobRepo:     jobRepo,
		storage:     storage,
		s3cfg:       s3cfg,
	}
}

func (s *bookingService) GetByID(ctx context.Context, tenantID, recordID uuid.UUID) (*domain.BookingRecord, error) {
	rec, err := s.bookingRepo.GetByID(ctx, tenantID, recordID)
	if err != nil {
		return nil, err
	}

	// Presigned at read time; never persisted.
	if rec.SourceKey != "" {
		url, err := s.storage.GetPresignedURL(ctx, rec.SourceBucket, rec.SourceKey, s.s3cfg.PresignExpiry)
		if err != nil {
			log.Printf("bookingService.GetByID: presigning page URL for record %s failed: %v", rec.ID, err)
		} else {
			rec.SourceURL = url
		}
	}
	return rec, nil
}

func (s *bookingService) List(ctx context.Context, tenantID uuid.UUID, filter port.BookingFilter) ([]domain.BookingRecord, string, error) {
	return s.bookingRepo.List(ctx, tenantID, filter)
}

func (s *bookingService) ListByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]domain.BookingRecord, error) {
	return s.bookingRepo.ListByDocument(ctx, tenantID, documentID)
}

func (s *bookingService) Validate(ctx context.Context, input ValidateInput) (*domain.BookingRecord, error) {
	var action domain.ValidationAction
	var newStatus domain.RecordStatus
	switch input.Action {
	case "approve":
		action, newStatus = domain.ActionApproved, domain.RecordStatusValidated
	case "correct":
		action, newStatus = domain.ActionCorrected, domain.RecordStatusCorrected
		if len(input.Corrections) == 0 {
			return nil, fmt.Errorf("%w: correct requires at least one correction", domain.ErrInvalidAction)
		}
	case "reject":
		action, newStatus = domain.ActionRejected, domain.RecordStatusRejected
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAction, input.Action)
	}

	rec, err := s.bookingRepo.GetByID(ctx, input.TenantID, input.RecordID)
	if err != nil {
		return nil, err
	}
	if rec.Status != domain.RecordStatusPending {
		return nil, domain.ErrRecordNotPending
	}
	previousStatus := rec.Status

	if action == domain.ActionCorrected {
		if err := s.applyCorrections(rec, input.Corrections); err != nil {
			return nil, err
		}
	}

	entry := domain.ValidationRecord{
		Timestamp:      time.Now().UTC(),
		ReviewerID:     input.ReviewerID,
		ReviewerEmail:  input.ReviewerEmail,
		Action:         action,
		Corrections:    input.Corrections,
		Notes:          input.Notes,
		PreviousStatus: previousStatus,
	}
	history, err := appendHistory(rec.ValidationHistory, entry)
	if err != nil {
		return nil, err
	}

	rec.Status = newStatus
	rec.ValidationHistory = history

	log.Printf("bookingService.Validate: record %s %s by %s (tenant %s)",
		rec.ID, newStatus, input.ReviewerEmail, input.TenantID)

	if err := s.bookingRepo.UpdateValidation(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// applyCorrections merges reviewer corrections into the shipment payload and
// marks the corrected fields fully confident.
func (s *bookingService) applyCorrections(rec *domain.BookingRecord, corrections map[string]string) error {
	var shipment domain.Shipment
	if err := json.Unmarshal(rec.Shipment, &shipment); err != nil {
		return fmt.Errorf("decoding shipment payload: %w", err)
	}
	if err := assembler.ApplyCorrections(&shipment, corrections); err != nil {
		return err
	}

	var meta domain.ExtractionMeta
	if err := json.Unmarshal(rec.Extraction, &meta); err != nil {
		return fmt.Errorf("decoding extraction metadata: %w", err)
	}
	if meta.FieldConfidences == nil {
		meta.FieldConfidences = make(map[string]float64)
	}
	for name := range corrections {
		meta.FieldConfidences[name] = 1.0
	}
	meta.LowConfidenceFields = filterLowConfidence(meta.FieldConfidences)

	// Aggregate confidence reflects the reviewed payload.
	rec.Confidence = meanOf(meta.FieldConfidences)

	shipmentRaw, err := json.Marshal(shipment)
	if err != nil {
		return fmt.Errorf("encoding shipment payload: %w", err)
	}
	metaRaw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding extraction metadata: %w", err)
	}
	rec.Shipment = shipmentRaw
	rec.Extraction = metaRaw
	return nil
}

func filterLowConfidence(confidences map[string]float64) []string {
	var low []string
	for _, name := range assembler.CanonicalFields() {
		if c, ok := confidences[name]; ok && c < assembler.ConfidenceThreshold {
			low = append(low, name)
		}
	}
	return low
}

func meanOf(confidences map[string]float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	var sum float64
	for _, c := range confidences {
		sum += c
	}
	return sum / float64(len(confidences))
}

func appendHistory(history json.RawMessage, entry domain.ValidationRecord) (json.RawMessage, error) {
	var entries []domain.ValidationRecord
	if len(history) > 0 {
		if err := json.Unmarshal(history, &entries); err != nil {
			return nil, fmt.Errorf("decoding validation history: %w", err)
		}
	}
	entries = append(entries, entry)
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encoding validation history: %w", err)
	}
	return raw, nil
}

func (s *bookingService) ExportXLSX(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	records, err := s.bookingRepo.ListAllByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return export.BookingWorkbook(records)
}

func (s *bookingService) GetJob(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.UploadJob, error) {
	return s.jobRepo.GetByID(ctx, tenantID, jobID)
}

func (s *bookingService) ListJobs(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.UploadJob, int, error) {
	return s.jobRepo.ListByTenant(ctx, tenantID, offset, limit)
}
