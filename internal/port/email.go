package port

import (
	"context"

	"bookingflow/internal/domain"
)

// EmailSender notifies an uploader about the outcome of their upload job.
// Delivery failures are logged by callers and never affect job state.
type EmailSender interface {
	SendJobCompleted(ctx context.Context, toEmail string, job *domain.UploadJob, summary *domain.JobSummary) error
	SendJobFailed(ctx context.Context, toEmail string, job *domain.UploadJob, reason string) error
}
