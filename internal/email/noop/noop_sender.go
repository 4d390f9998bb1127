package noop

import (
	"context"
	"log"

	"bookingflow/internal/domain"
	"bookingflow/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs instead of sending.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendJobCompleted(_ context.Context, toEmail string, job *domain.UploadJob, summary *domain.JobSummary) error {
	log.Printf("[NOOP EMAIL] Job %s completed for %s: %d/%d pages extracted",
		job.ID, toEmail, summary.PagesSucceeded, summary.PagesTotal)
	return nil
}

func (s *noopSender) SendJobFailed(_ context.Context, toEmail string, job *domain.UploadJob, reason string) error {
	log.Printf("[NOOP EMAIL] Job %s failed for %s: %s", job.ID, toEmail, reason)
	return nil
}
