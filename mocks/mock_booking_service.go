package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"bookingflow/internal/domain"
	"bookingflow/internal/port"
	"bookingflow/internal/service"
)

// MockBookingService is a mock implementation of service.BookingService.
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) GetByID(ctx context.Context, tenantID, recordID uuid.UUID) (*domain.BookingRecord, error) {
	args := m.Called(ctx, tenantID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRecord), args.Error(1)
}

func (m *MockBookingService) List(ctx context.Context, tenantID uuid.UUID, filter port.BookingFilter) ([]domain.BookingRecord, string, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]domain.BookingRecord), args.String(1), args.Error(2)
}

func (m *MockBookingService) ListByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]domain.BookingRecord, error) {
	args := m.Called(ctx, tenantID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingRecord), args.Error(1)
}

func (m *MockBookingService) Validate(ctx context.Context, input service.ValidateInput) (*domain.BookingRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRecord), args.Error(1)
}

func (m *MockBookingService) ExportXLSX(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBookingService) GetJob(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.UploadJob, error) {
	args := m.Called(ctx, tenantID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadJob), args.Error(1)
}

func (m *MockBookingService) ListJobs(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.UploadJob, int, error) {
	args := m.Called(ctx, tenantID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.UploadJob), args.Int(1), args.Error(2)
}
