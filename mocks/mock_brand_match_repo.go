package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"theka/internal/domain"
)

// MockBrandMatchRepo is a mock implementation of port.BrandMatchRepository.
type MockBrandMatchRepo struct {
	mock.Mock
}

func (m *MockBrandMatchRepo) CreateBatch(ctx context.Context, matches []domain.BrandMatchRow) error {
	args := m.Called(ctx, matches)
	return args.Error(0)
}

func (m *MockBrandMatchRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.BrandMatchRow, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BrandMatchRow), args.Error(1)
}

func (m *MockBrandMatchRepo) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	args := m.Called(ctx, invoiceID)
	return args.Error(0)
}
