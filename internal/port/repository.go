package port

import (
	"context"

	"github.com/google/uuid"

	"theka/internal/domain"
)

// InvoiceRepository defines the contract for invoice persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetByICDCNumber(ctx context.Context, icdcNumber string) (*domain.Invoice, error)
	List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error)
	// ClaimQueued atomically flips up to limit queued invoices to processing
	// and returns them, so concurrent workers never claim the same row.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Invoice, error)
	UpdateParseResult(ctx context.Context, inv *domain.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceItemRepository defines the contract for invoice line item persistence.
type InvoiceItemRepository interface {
	CreateBatch(ctx context.Context, items []domain.InvoiceItem) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceItem, error)
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

// BrandMatchRepository defines the contract for brand match persistence.
// Matches are written once per item at persist time and never retried
// automatically; re-linking is a manual operation.
type BrandMatchRepository interface {
	CreateBatch(ctx context.Context, matches []domain.BrandMatchRow) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.BrandMatchRow, error)
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

// FileMetaRepository defines the contract for file metadata persistence.
type FileMetaRepository interface {
	Create(ctx context.Context, meta *domain.FileMeta) error
	GetByID(ctx context.Context, fileID uuid.UUID) (*domain.FileMeta, error)
	UpdateStatus(ctx context.Context, fileID uuid.UUID, status domain.FileStatus) error
	Delete(ctx context.Context, fileID uuid.UUID) error
}
