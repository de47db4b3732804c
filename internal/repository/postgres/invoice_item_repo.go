package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"theka/internal/domain"
	"theka/internal/port"
)

type invoiceItemRepo struct {
	db *sqlx.DB
}

// NewInvoiceItemRepo creates a new PostgreSQL-backed InvoiceItemRepository.
func NewInvoiceItemRepo(db *sqlx.DB) port.InvoiceItemRepository {
	return &invoiceItemRepo{db: db}
}

func (r *invoiceItemRepo) CreateBatch(ctx context.Context, items []domain.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range items {
		items[i].CreatedAt = now
	}

	query := `INSERT INTO invoice_items
		(id, invoice_id, serial, brand_number, product_name, product_category,
		 pack_type, pack_quantity, size_ml, quantity_token, cases, bottles,
		 total_units, resolution_method, resolution_confidence, source_line,
		 created_at)
		VALUES (:id, :invoice_id, :serial, :brand_number, :product_name,
		 :product_category, :pack_type, :pack_quantity, :size_ml,
		 :quantity_token, :cases, :bottles, :total_units, :resolution_method,
		 :resolution_confidence, :source_line, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, items); err != nil {
		return fmt.Errorf("invoiceItemRepo.CreateBatch: %w", err)
	}
	return nil
}

func (r *invoiceItemRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := r.db.SelectContext(ctx, &items,
		`SELECT * FROM invoice_items WHERE invoice_id = $1 ORDER BY serial, source_line`,
		invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoiceItemRepo.ListByInvoice: %w", err)
	}
	return items, nil
}

func (r *invoiceItemRepo) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM invoice_items WHERE invoice_id = $1", invoiceID); err != nil {
		return fmt.Errorf("invoiceItemRepo.DeleteByInvoice: %w", err)
	}
	return nil
}
