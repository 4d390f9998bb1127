package mocks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"bookingflow/internal/domain"
)

// MockJobRepo is a mock implementation of port.JobRepository.
type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Create(ctx context.Context, job *domain.UploadJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepo) GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.UploadJob, error) {
	args := m.Called(ctx, tenantID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadJob), args.Error(1)
}

func (m *MockJobRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.UploadJob, int, error) {
	args := m.Called(ctx, tenantID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.UploadJob), args.Int(1), args.Error(2)
}

func (m *MockJobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.UploadJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UploadJob), args.Error(1)
}

func (m *MockJobRepo) UpdateProgress(ctx context.Context, job *domain.UploadJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepo) Complete(ctx context.Context, tenantID, jobID uuid.UUID, summary json.RawMessage) error {
	args := m.Called(ctx, tenantID, jobID, summary)
	return args.Error(0)
}

func (m *MockJobRepo) Fail(ctx context.Context, tenantID, jobID uuid.UUID, reason string) error {
	args := m.Called(ctx, tenantID, jobID, reason)
	return args.Error(0)
}
