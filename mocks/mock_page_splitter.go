package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockPageSplitter is a mock implementation of port.PageSplitter.
type MockPageSplitter struct {
	mock.Mock
}

func (m *MockPageSplitter) Validate(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockPageSplitter) Split(data []byte) ([][]byte, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]byte), args.Error(1)
}
