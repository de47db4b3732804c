package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"theka/internal/port"
)

// MockMasterBrandRepo is a mock implementation of port.MasterBrandRepository.
type MockMasterBrandRepo struct {
	mock.Mock
}

func (m *MockMasterBrandRepo) LoadAll(ctx context.Context) ([]port.MasterBrandEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.MasterBrandEntry), args.Error(1)
}

func (m *MockMasterBrandRepo) UpsertBatch(ctx context.Context, entries []port.MasterBrandEntry) (int, int, error) {
	args := m.Called(ctx, entries)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockMasterBrandRepo) Search(ctx context.Context, query string, offset, limit int) ([]port.MasterBrandEntry, int, error) {
	args := m.Called(ctx, query, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]port.MasterBrandEntry), args.Int(1), args.Error(2)
}
