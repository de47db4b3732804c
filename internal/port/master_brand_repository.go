package port

import (
	"context"

	"github.com/google/uuid"
)

// MasterBrandEntry represents a single master-brand catalog row as the
// extraction core consumes it. The catalog is uniquely keyed by
// (brand_number, size_ml, pack_quantity, pack_type).
type MasterBrandEntry struct {
	ID           uuid.UUID `db:"id" json:"id"`
	BrandNumber  string    `db:"brand_number" json:"brand_number"`
	ProductName  string    `db:"product_name" json:"product_name"`
	SizeML       int       `db:"size_ml" json:"size_ml"`
	PackQuantity int       `db:"pack_quantity" json:"pack_quantity"`
	PackType     string    `db:"pack_type" json:"pack_type"`
	ProductType  string    `db:"product_type" json:"product_type"`
	StandardMRP  float64   `db:"standard_mrp" json:"standard_mrp"`
	InvoicePrice float64   `db:"invoice_price" json:"invoice_price"`
}

// MasterBrandRepository defines the contract for master-brand catalog access.
type MasterBrandRepository interface {
	LoadAll(ctx context.Context) ([]MasterBrandEntry, error)
	UpsertBatch(ctx context.Context, entries []MasterBrandEntry) (inserted, updated int, err error)
	Search(ctx context.Context, query string, offset, limit int) ([]MasterBrandEntry, int, error)
}
