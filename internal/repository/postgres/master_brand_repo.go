package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"theka/internal/port"
)

type masterBrandRepo struct {
	db *sqlx.DB
}

// NewMasterBrandRepo creates a new PostgreSQL-backed MasterBrandRepository.
func NewMasterBrandRepo(db *sqlx.DB) port.MasterBrandRepository {
	return &masterBrandRepo{db: db}
}

func (r *masterBrandRepo) LoadAll(ctx context.Context) ([]port.MasterBrandEntry, error) {
	var entries []port.MasterBrandEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT id, brand_number, product_name, size_ml, pack_quantity,
		        pack_type, product_type, standard_mrp, invoice_price
		 FROM master_brands
		 ORDER BY brand_number, size_ml, pack_quantity, pack_type`)
	if err != nil {
		return nil, fmt.Errorf("masterBrandRepo.LoadAll: %w", err)
	}
	return entries, nil
}

// UpsertBatch inserts catalog rows, updating price and name fields when the
// natural key (brand_number, size_ml, pack_quantity, pack_type) already
// exists. xmax = 0 distinguishes fresh inserts from updates.
func (r *masterBrandRepo) UpsertBatch(ctx context.Context, entries []port.MasterBrandEntry) (int, int, error) {
	if len(entries) == 0 {
		return 0, 0, nil
	}

	query := `INSERT INTO master_brands
		(id, brand_number, product_name, size_ml, pack_quantity, pack_type,
		 product_type, standard_mrp, invoice_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (brand_number, size_ml, pack_quantity, pack_type)
		DO UPDATE SET
			product_name = EXCLUDED.product_name,
			product_type = EXCLUDED.product_type,
			standard_mrp = EXCLUDED.standard_mrp,
			invoice_price = EXCLUDED.invoice_price,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("masterBrandRepo.UpsertBatch begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, updated := 0, 0
	for i := range entries {
		e := &entries[i]
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		var isInsert bool
		err := tx.GetContext(ctx, &isInsert, query,
			e.ID, e.BrandNumber, e.ProductName, e.SizeML, e.PackQuantity,
			e.PackType, e.ProductType, e.StandardMRP, e.InvoicePrice)
		if err != nil {
			return 0, 0, fmt.Errorf("masterBrandRepo.UpsertBatch row %d: %w", i, err)
		}
		if isInsert {
			inserted++
		} else {
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("masterBrandRepo.UpsertBatch commit: %w", err)
	}
	return inserted, updated, nil
}

func (r *masterBrandRepo) Search(ctx context.Context, query string, offset, limit int) ([]port.MasterBrandEntry, int, error) {
	pattern := "%" + query + "%"

	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM master_brands
		 WHERE brand_number ILIKE $1 OR product_name ILIKE $1`, pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("masterBrandRepo.Search count: %w", err)
	}

	var entries []port.MasterBrandEntry
	err = r.db.SelectContext(ctx, &entries,
		`SELECT id, brand_number, product_name, size_ml, pack_quantity,
		        pack_type, product_type, standard_mrp, invoice_price
		 FROM master_brands
		 WHERE brand_number ILIKE $1 OR product_name ILIKE $1
		 ORDER BY brand_number, size_ml
		 LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("masterBrandRepo.Search: %w", err)
	}
	return entries, total, nil
}
