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

type brandMatchRepo struct {
	db *sqlx.DB
}

// NewBrandMatchRepo creates a new PostgreSQL-backed BrandMatchRepository.
func NewBrandMatchRepo(db *sqlx.DB) port.BrandMatchRepository {
	return &brandMatchRepo{db: db}
}

func (r *brandMatchRepo) CreateBatch(ctx context.Context, matches []domain.BrandMatchRow) error {
	if len(matches) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range matches {
		matches[i].CreatedAt = now
	}

	query := `INSERT INTO brand_matches
		(id, invoice_id, invoice_item_id, master_brand_id, confidence, method, created_at)
		VALUES (:id, :invoice_id, :invoice_item_id, :master_brand_id, :confidence, :method, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, matches); err != nil {
		return fmt.Errorf("brandMatchRepo.CreateBatch: %w", err)
	}
	return nil
}

func (r *brandMatchRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.BrandMatchRow, error) {
	var matches []domain.BrandMatchRow
	err := r.db.SelectContext(ctx, &matches,
		"SELECT * FROM brand_matches WHERE invoice_id = $1 ORDER BY created_at", invoiceID)
	if err != nil {
		return nil, fmt.Errorf("brandMatchRepo.ListByInvoice: %w", err)
	}
	return matches, nil
}

func (r *brandMatchRepo) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM brand_matches WHERE invoice_id = $1", invoiceID); err != nil {
		return fmt.Errorf("brandMatchRepo.DeleteByInvoice: %w", err)
	}
	return nil
}
