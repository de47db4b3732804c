package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"theka/internal/icdc"
	"theka/internal/port"
	"theka/internal/service"
)

// MockCatalogService is a mock implementation of service.CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ImportCSV(ctx context.Context, r io.Reader) (*service.ImportStats, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportStats), args.Error(1)
}

func (m *MockCatalogService) Snapshot(ctx context.Context) (*icdc.BrandCatalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*icdc.BrandCatalog), args.Error(1)
}

func (m *MockCatalogService) Search(ctx context.Context, query string, offset, limit int) ([]port.MasterBrandEntry, int, error) {
	args := m.Called(ctx, query, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]port.MasterBrandEntry), args.Int(1), args.Error(2)
}
