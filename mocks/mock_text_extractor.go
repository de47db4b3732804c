package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"theka/internal/port"
)

// MockTextExtractor is a mock implementation of port.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, pdfBytes []byte) (*port.ExtractedText, error) {
	args := m.Called(ctx, pdfBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ExtractedText), args.Error(1)
}
