package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bookingflow/internal/domain"
	"bookingflow/internal/service"
)

// MockIngestService is a mock implementation of service.IngestService.
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Submit(ctx context.Context, input service.SubmitInput) (*domain.UploadJob, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadJob), args.Error(1)
}

func (m *MockIngestService) ProcessJob(ctx context.Context, job *domain.UploadJob) {
	m.Called(ctx, job)
}
