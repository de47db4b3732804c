package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Invoice represents one ingested ICDC document and its parse outcome.
// Financial columns are nullable because absence on the printed document
// is legal and distinct from zero.
type Invoice struct {
	ID                      uuid.UUID       `db:"id" json:"id"`
	FileID                  uuid.UUID       `db:"file_id" json:"file_id"`
	ICDCNumber              string          `db:"icdc_number" json:"icdc_number"`
	InvoiceNumber           string          `db:"invoice_number" json:"invoice_number"`
	InvoiceDate             *time.Time      `db:"invoice_date" json:"invoice_date"`
	ParseStatus             ParseStatus     `db:"parse_status" json:"parse_status"`
	ParseError              string          `db:"parse_error" json:"parse_error"`
	ParseAttempts           int             `db:"parse_attempts" json:"parse_attempts"`
	PageCount               int             `db:"page_count" json:"page_count"`
	InvoiceValue            *float64        `db:"invoice_value" json:"invoice_value"`
	MRPRoundingOff          *float64        `db:"mrp_rounding_off" json:"mrp_rounding_off"`
	RetailExciseTurnoverTax *float64        `db:"retail_excise_turnover_tax" json:"retail_excise_turnover_tax"`
	SpecialExciseCess       *float64        `db:"special_excise_cess" json:"special_excise_cess"`
	TCS                     *float64        `db:"tcs" json:"tcs"`
	TotalAmount             *float64        `db:"total_amount" json:"total_amount"`
	SummaryMatched          *bool           `db:"summary_matched" json:"summary_matched"`
	Warnings                json.RawMessage `db:"warnings" json:"warnings"`
	NeedsReview             bool            `db:"needs_review" json:"needs_review"`
	ParsedAt                *time.Time      `db:"parsed_at" json:"parsed_at"`
	CreatedAt               time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time       `db:"updated_at" json:"updated_at"`
}

// InvoiceItem represents one resolved product line of an invoice.
type InvoiceItem struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	InvoiceID            uuid.UUID `db:"invoice_id" json:"invoice_id"`
	Serial               int       `db:"serial" json:"serial"`
	BrandNumber          string    `db:"brand_number" json:"brand_number"`
	ProductName          string    `db:"product_name" json:"product_name"`
	ProductCategory      string    `db:"product_category" json:"product_category"`
	PackType             string    `db:"pack_type" json:"pack_type"`
	PackQuantity         int       `db:"pack_quantity" json:"pack_quantity"`
	SizeML               int       `db:"size_ml" json:"size_ml"`
	QuantityToken        string    `db:"quantity_token" json:"quantity_token"`
	Cases                int       `db:"cases" json:"cases"`
	Bottles              int       `db:"bottles" json:"bottles"`
	TotalUnits           int       `db:"total_units" json:"total_units"`
	ResolutionMethod     string    `db:"resolution_method" json:"resolution_method"`
	ResolutionConfidence float64   `db:"resolution_confidence" json:"resolution_confidence"`
	SourceLine           int       `db:"source_line" json:"source_line"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// BrandMatchRow links an invoice item to a master brand catalog row.
// Written once at persist time; a later catalog update never rewrites
// past rows, re-linking is always an explicit manual step.
type BrandMatchRow struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	InvoiceID     uuid.UUID  `db:"invoice_id" json:"invoice_id"`
	InvoiceItemID uuid.UUID  `db:"invoice_item_id" json:"invoice_item_id"`
	MasterBrandID *uuid.UUID `db:"master_brand_id" json:"master_brand_id"`
	Confidence    int        `db:"confidence" json:"confidence"`
	Method        string     `db:"method" json:"method"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// MasterBrand is a catalog row for one sellable pack configuration.
type MasterBrand struct {
	ID           uuid.UUID `db:"id" json:"id"`
	BrandNumber  string    `db:"brand_number" json:"brand_number"`
	ProductName  string    `db:"product_name" json:"product_name"`
	SizeML       int       `db:"size_ml" json:"size_ml"`
	PackQuantity int       `db:"pack_quantity" json:"pack_quantity"`
	PackType     string    `db:"pack_type" json:"pack_type"`
	ProductType  string    `db:"product_type" json:"product_type"`
	StandardMRP  float64   `db:"standard_mrp" json:"standard_mrp"`
	InvoicePrice float64   `db:"invoice_price" json:"invoice_price"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FileMeta stores metadata about an uploaded file.
type FileMeta struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	FileName     string     `db:"file_name" json:"file_name"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	S3Bucket     string     `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string     `db:"s3_key" json:"s3_key"`
	ContentType  string     `db:"content_type" json:"content_type"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
