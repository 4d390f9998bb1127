package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bookingflow/internal/assembler"
	"bookingflow/internal/config"
	"bookingflow/internal/domain"
	"bookingflow/internal/port"
)

// SubmitInput is the DTO for upload requests.
type SubmitInput struct {
	TenantID      uuid.UUID
	UploadedBy    uuid.UUID
	UploaderEmail string
	File          multipart.File
	Header        *multipart.FileHeader
}

// IngestService accepts uploads and processes queued jobs into booking
// records.
type IngestService interface {
	// Submit validates the upload, stores the original document, and enqueues
	// a job. It returns once the job row exists; extraction happens in the
	// background.
	Submit(ctx context.Context, input SubmitInput) (*domain.UploadJob, error)

	// ProcessJob runs the full extraction pipeline for one claimed job. It
	// never returns an error: every failure ends in a terminal job state.
	ProcessJob(ctx context.Context, job *domain.UploadJob)
}

type ingestService struct {
	jobRepo     port.JobRepository
	bookingRepo port.BookingRepository
	storage     port.ObjectStorage
	splitter    port.PageSplitter
	analyzer    port.PageAnalyzer
	email       port.EmailSender
	s3cfg       *config.S3Config
	cfg         *config.IngestConfig
}

// NewIngestService creates a new IngestService implementation.
func NewIngestService(
	jobRepo port.JobRepository,
	bookingRepo port.BookingRepository,
	storage port.ObjectStorage,
	splitter port.PageSplitter,
	analyzer port.PageAnalyzer,
	email port.EmailSender,
	s3cfg *config.S3Config,
	cfg *config.IngestConfig,
) IngestService {
	return &ingestService{
		jobRepo:     jobRepo,
		bookingRepo: bookingRepo,
		storage:     storage,
		splitter:    splitter,
		analyzer:    analyzer,
		email:       email,
		s3cfg:       s3cfg,
		cfg:         cfg,
	}
}

func (s *ingestService) Submit(ctx context.Context, input SubmitInput) (*domain.UploadJob, error) {
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(input.File)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Structural validation happens before any row or object exists, so a
	// corrupt upload is rejected outright instead of producing a failed job.
	if err := s.splitter.Validate(data); err != nil {
		return nil, err
	}

	jobID := uuid.New()
	documentID := uuid.New()
	s3Key := fmt.Sprintf("tenants/%s/jobs/%s/original/%s", input.TenantID, jobID, input.Header.Filename)

	log.Printf("ingestService.Submit: uploading %s (%d bytes) for tenant %s by user %s",
		input.Header.Filename, len(data), input.TenantID, input.UploadedBy)

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         s3Key,
		Body:        bytes.NewReader(data),
		ContentType: "application/pdf",
		Size:        int64(len(data)),
	})
	if err != nil {
		log.Printf("ingestService.Submit: S3 upload failed: %v", err)
		return nil, domain.ErrUploadFailed
	}

	job := &domain.UploadJob{
		ID:            jobID,
		TenantID:      input.TenantID,
		UploadedBy:    input.UploadedBy,
		UploaderEmail: input.UploaderEmail,
		OriginalName:  input.Header.Filename,
		FileSize:      int64(len(data)),
		DocumentID:    documentID,
		SourceBucket:  s.s3cfg.Bucket,
		SourceKey:     s3Key,
		Status:        domain.JobStatusQueued,
		Stage:         "queued",
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		log.Printf("ingestService.Submit: failed to create job: %v", err)
		return nil, fmt.Errorf("creating upload job: %w", err)
	}
	return job, nil
}

// pageOutcome is the result of processing one page; index i holds page i+1.
type pageOutcome struct {
	err error
}

func (s *ingestService) ProcessJob(ctx context.Context, job *domain.UploadJob) {
	log.Printf("ingestService.ProcessJob: processing job %s (document %s)", job.ID, job.DocumentID)

	data, err := s.storage.Download(ctx, job.SourceBucket, job.SourceKey)
	if err != nil {
		s.failJob(ctx, job, fmt.Sprintf("downloading original document: %v", err))
		return
	}

	pages, err := s.splitter.Split(data)
	if err != nil {
		s.failJob(ctx, job, fmt.Sprintf("segmenting document: %v", err))
		return
	}

	job.Stage = "extracting"
	job.PagesTotal = len(pages)
	initial := *job
	if err := s.jobRepo.UpdateProgress(ctx, &initial); err != nil {
		log.Printf("ingestService.ProcessJob: progress update failed for job %s: %v", job.ID, err)
	}

	// Pages fan out with bounded concurrency. A failing page persists an
	// error record and never aborts its siblings.
	outcomes := make([]pageOutcome, len(pages))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.PageConcurrency)
	for i := range pages {
		i := i
		g.Go(func() error {
			outcomes[i].err = s.processPage(gctx, job, i+1, len(pages), pages[i])

			// Snapshot under the lock: sibling goroutines keep mutating
			// PagesDone, so the repo only ever sees a private copy.
			mu.Lock()
			job.PagesDone++
			snapshot := *job
			mu.Unlock()
			if err := s.jobRepo.UpdateProgress(ctx, &snapshot); err != nil {
				log.Printf("ingestService.ProcessJob: progress update failed for job %s (page %d/%d): %v",
					job.ID, snapshot.PagesDone, len(pages), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := domain.JobSummary{
		DocumentID: job.DocumentID,
		PagesTotal: len(pages),
	}
	for i, out := range outcomes {
		if out.err == nil {
			summary.PagesSucceeded++
			continue
		}
		summary.PagesFailed++
		summary.PageErrors = append(summary.PageErrors, domain.PageError{
			Page:    i + 1,
			Message: out.err.Error(),
		})
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		s.failJob(ctx, job, fmt.Sprintf("encoding result summary: %v", err))
		return
	}
	if err := s.jobRepo.Complete(ctx, job.TenantID, job.ID, raw); err != nil {
		log.Printf("ingestService.ProcessJob: completing job %s failed: %v", job.ID, err)
		return
	}
	job.Status = domain.JobStatusCompleted

	log.Printf("ingestService.ProcessJob: job %s completed (%d/%d pages succeeded)",
		job.ID, summary.PagesSucceeded, summary.PagesTotal)

	if err := s.email.SendJobCompleted(ctx, job.UploaderEmail, job, &summary); err != nil {
		log.Printf("ingestService.ProcessJob: completion email for job %s failed: %v", job.ID, err)
	}
}

// processPage uploads the page blob, runs extraction, and persists one
// booking record. An extraction failure persists an error record so the page
// stays visible to reviewers.
func (s *ingestService) processPage(ctx context.Context, job *domain.UploadJob, pageNum, pageCount int, pageBytes []byte) error {
	recordID := uuid.New()
	pageKey := fmt.Sprintf("tenants/%s/jobs/%s/pages/page-%d.pdf", job.TenantID, job.ID, pageNum)

	rec := &domain.BookingRecord{
		ID:                recordID,
		TenantID:          job.TenantID,
		DocumentID:        job.DocumentID,
		PageNumber:        pageNum,
		PageCount:         pageCount,
		SourceBucket:      s.s3cfg.Bucket,
		SourceKey:         pageKey,
		UploadedBy:        job.UploadedBy,
		UploaderEmail:     job.UploaderEmail,
		Shipment:          json.RawMessage("{}"),
		Extraction:        json.RawMessage("{}"),
		ValidationHistory: json.RawMessage("[]"),
	}

	pageErr := s.extractPage(ctx, rec, pageKey, pageBytes)
	if pageErr != nil {
		log.Printf("ingestService.processPage: page %d of job %s failed: %v", pageNum, job.ID, pageErr)
		rec.Status = domain.RecordStatusError
		rec.ExtractionError = pageErr.Error()
	}

	if err := s.bookingRepo.Create(ctx, rec); err != nil {
		log.Printf("ingestService.processPage: persisting record for page %d of job %s failed: %v",
			pageNum, job.ID, err)
		if pageErr != nil {
			return pageErr
		}
		return fmt.Errorf("persisting booking record: %w", err)
	}
	return pageErr
}

// extractPage fills rec with the extracted shipment payload, or returns the
// page-level failure.
func (s *ingestService) extractPage(ctx context.Context, rec *domain.BookingRecord, pageKey string, pageBytes []byte) error {
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         pageKey,
		Body:        bytes.NewReader(pageBytes),
		ContentType: "application/pdf",
		Size:        int64(len(pageBytes)),
	})
	if err != nil {
		return fmt.Errorf("uploading page blob: %w", err)
	}

	out, err := s.analyzer.Analyze(ctx, port.AnalyzeInput{
		PageBytes:   pageBytes,
		ContentType: "application/pdf",
	})
	if err != nil {
		return fmt.Errorf("extracting page: %w", err)
	}

	res := assembler.Assemble(out.Fields)

	shipmentRaw, err := json.Marshal(res.Shipment)
	if err != nil {
		return fmt.Errorf("encoding shipment payload: %w", err)
	}
	meta := domain.ExtractionMeta{
		ModelID:              out.ModelID,
		ModelVersion:         out.ModelVersion,
		FieldConfidences:     res.FieldConfidences,
		LowConfidenceFields:  res.LowConfidenceFields,
		ProcessingDurationMs: out.ProcessingDurationMs,
	}
	metaRaw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding extraction metadata: %w", err)
	}

	rec.Status = domain.RecordStatusPending
	rec.Confidence = res.Confidence
	rec.Shipment = shipmentRaw
	rec.Extraction = metaRaw
	return nil
}

func (s *ingestService) failJob(ctx context.Context, job *domain.UploadJob, reason string) {
	log.Printf("ingestService.ProcessJob: job %s failed: %s", job.ID, reason)
	if err := s.jobRepo.Fail(ctx, job.TenantID, job.ID, reason); err != nil {
		log.Printf("ingestService.ProcessJob: marking job %s failed errored: %v", job.ID, err)
		return
	}
	job.Status = domain.JobStatusFailed
	job.FailureReason = reason

	if err := s.email.SendJobFailed(ctx, job.UploaderEmail, job, reason); err != nil {
		log.Printf("ingestService.ProcessJob: failure email for job %s failed: %v", job.ID, err)
	}
}

// jobTimeout bounds one job's background processing, independent of the
// worker's poll context.
const jobTimeout = 15 * time.Minute
