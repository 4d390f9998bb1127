package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bookingflow/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendJobCompleted(ctx context.Context, toEmail string, job *domain.UploadJob, summary *domain.JobSummary) error {
	args := m.Called(ctx, toEmail, job, summary)
	return args.Error(0)
}

func (m *MockEmailSender) SendJobFailed(ctx context.Context, toEmail string, job *domain.UploadJob, reason string) error {
	args := m.Called(ctx, toEmail, job, reason)
	return args.Error(0)
}
