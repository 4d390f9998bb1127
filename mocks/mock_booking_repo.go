package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"bookingflow/internal/domain"
	"bookingflow/internal/port"
)

// MockBookingRepo is a mock implementation of port.BookingRepository.
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, rec *domain.BookingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, tenantID, recordID uuid.UUID) (*domain.BookingRecord, error) {
	args := m.Called(ctx, tenantID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRecord), args.Error(1)
}

func (m *MockBookingRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.BookingFilter) ([]domain.BookingRecord, string, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]domain.BookingRecord), args.String(1), args.Error(2)
}

func (m *MockBookingRepo) ListByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]domain.BookingRecord, error) {
	args := m.Called(ctx, tenantID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingRecord), args.Error(1)
}

func (m *MockBookingRepo) ListAllByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.BookingRecord, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingRecord), args.Error(1)
}

func (m *MockBookingRepo) UpdateValidation(ctx context.Context, rec *domain.BookingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
