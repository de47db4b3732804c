package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"theka/internal/domain"
	"theka/internal/service"
	"theka/mocks"
)

func TestParseQueueWorker_DispatchesQueuedInvoice(t *testing.T) {
	invoiceRepo := new(mocks.MockInvoiceRepo)
	invoiceSvc := new(mocks.MockInvoiceService)

	inv := domain.Invoice{ID: uuid.New(), ParseStatus: domain.ParseStatusQueued}

	// First poll returns one invoice, subsequent polls return empty.
	invoiceRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Invoice{inv}, nil).Once()
	invoiceRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Invoice{}, nil).Maybe()

	invoiceSvc.On("ProcessInvoice", mock.Anything, mock.AnythingOfType("*domain.Invoice"), 5).
		Return().Maybe()

	worker := service.NewParseQueueWorker(invoiceRepo, invoiceSvc, service.ParseQueueConfig{
		PollInterval: 50 * time.Millisecond,
		MaxRetries:   5,
		Concurrency:  2,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()
	wg.Wait()

	invoiceSvc.AssertCalled(t, "ProcessInvoice", mock.Anything, mock.MatchedBy(func(got *domain.Invoice) bool {
		// The worker bumps the attempt counter before dispatching.
		return got.ID == inv.ID && got.ParseAttempts == 1
	}), 5)
	invoiceRepo.AssertExpectations(t)
}

func TestParseQueueWorker_RespectsConcurrencyLimit(t *testing.T) {
	invoiceRepo := new(mocks.MockInvoiceRepo)
	invoiceSvc := new(mocks.MockInvoiceService)

	invoiceRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Invoice{}, nil).Maybe()
	invoiceSvc.On("ProcessInvoice", mock.Anything, mock.Anything, mock.Anything).
		Return().Maybe()

	concurrency := 3
	worker := service.NewParseQueueWorker(invoiceRepo, invoiceSvc, service.ParseQueueConfig{
		PollInterval: 20 * time.Millisecond,
		MaxRetries:   5,
		Concurrency:  concurrency,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()
	wg.Wait()

	// Every poll asks for at most the free slots under the concurrency cap.
	for _, call := range invoiceRepo.Calls {
		if call.Method != "ClaimQueued" {
			continue
		}
		limit := call.Arguments.Int(1)
		assert.LessOrEqual(t, limit, concurrency)
		assert.Greater(t, limit, 0)
	}
}

func TestParseQueueWorker_ContinuesAfterClaimError(t *testing.T) {
	invoiceRepo := new(mocks.MockInvoiceRepo)
	invoiceSvc := new(mocks.MockInvoiceService)

	inv := domain.Invoice{ID: uuid.New(), ParseStatus: domain.ParseStatusQueued}

	invoiceRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return(nil, assert.AnError).Once()
	invoiceRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Invoice{inv}, nil).Once()
	invoiceRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Invoice{}, nil).Maybe()

	invoiceSvc.On("ProcessInvoice", mock.Anything, mock.AnythingOfType("*domain.Invoice"), 5).
		Return().Maybe()

	worker := service.NewParseQueueWorker(invoiceRepo, invoiceSvc, service.ParseQueueConfig{
		PollInterval: 30 * time.Millisecond,
		MaxRetries:   5,
		Concurrency:  2,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()
	wg.Wait()

	invoiceSvc.AssertCalled(t, "ProcessInvoice", mock.Anything, mock.AnythingOfType("*domain.Invoice"), 5)
}
