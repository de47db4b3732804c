package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"theka/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendReviewAlert(ctx context.Context, alert port.ReviewAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}
