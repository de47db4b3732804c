package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"theka/internal/domain"
	"theka/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	query := `INSERT INTO invoices
		(id, file_id, icdc_number, invoice_number, invoice_date, parse_status,
		 parse_error, parse_attempts, page_count, warnings, needs_review,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.FileID, inv.ICDCNumber, inv.InvoiceNumber, inv.InvoiceDate,
		inv.ParseStatus, inv.ParseError, inv.ParseAttempts, inv.PageCount,
		inv.Warnings, inv.NeedsReview, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, "SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByICDCNumber(ctx context.Context, icdcNumber string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv,
		"SELECT * FROM invoices WHERE icdc_number = $1", icdcNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByICDCNumber: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices"); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	var invoices []domain.Invoice
	err := r.db.SelectContext(ctx, &invoices,
		`SELECT * FROM invoices
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

// ClaimQueued flips up to limit queued invoices to processing inside one
// statement. FOR UPDATE SKIP LOCKED keeps concurrent workers from claiming
// the same row.
func (r *invoiceRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.SelectContext(ctx, &invoices,
		`UPDATE invoices SET parse_status = $1, updated_at = NOW()
		 WHERE id IN (
		     SELECT id FROM invoices
		     WHERE parse_status = $2
		     ORDER BY created_at
		     LIMIT $3
		     FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.ParseStatusProcessing, domain.ParseStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ClaimQueued: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepo) UpdateParseResult(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()

	query := `UPDATE invoices SET
		icdc_number = $1, invoice_number = $2, invoice_date = $3,
		parse_status = $4, parse_error = $5, parse_attempts = $6,
		page_count = $7, invoice_value = $8, mrp_rounding_off = $9,
		retail_excise_turnover_tax = $10, special_excise_cess = $11,
		tcs = $12, total_amount = $13, summary_matched = $14,
		warnings = $15, needs_review = $16, parsed_at = $17, updated_at = $18
		WHERE id = $19`

	result, err := r.db.ExecContext(ctx, query,
		inv.ICDCNumber, inv.InvoiceNumber, inv.InvoiceDate,
		inv.ParseStatus, inv.ParseError, inv.ParseAttempts,
		inv.PageCount, inv.InvoiceValue, inv.MRPRoundingOff,
		inv.RetailExciseTurnoverTax, inv.SpecialExciseCess,
		inv.TCS, inv.TotalAmount, inv.SummaryMatched,
		inv.Warnings, inv.NeedsReview, inv.ParsedAt, inv.UpdatedAt, inv.ID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateParseResult: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
