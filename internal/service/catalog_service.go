package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"theka/internal/domain"
	"theka/internal/icdc"
	"theka/internal/port"
)

// ImportStats summarizes one master-brand CSV import.
type ImportStats struct {
	Rows     int `json:"rows"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// CatalogService defines the master-brand catalog contract.
type CatalogService interface {
	// ImportCSV upserts catalog rows from a master-brand CSV stream.
	ImportCSV(ctx context.Context, r io.Reader) (*ImportStats, error)
	// Snapshot loads the full catalog into an immutable lookup for one
	// parse call. The core never caches snapshots between invocations.
	Snapshot(ctx context.Context) (*icdc.BrandCatalog, error)
	Search(ctx context.Context, query string, offset, limit int) ([]port.MasterBrandEntry, int, error)
}

type catalogService struct {
	brandRepo port.MasterBrandRepository
}

// NewCatalogService creates a new CatalogService implementation.
func NewCatalogService(brandRepo port.MasterBrandRepository) CatalogService {
	return &catalogService{brandRepo: brandRepo}
}

// normalizeHeader squashes a CSV header cell to bare lowercase
// alphanumerics, so "Size (ml)", "size_ml" and "Size-ML" all key the
// same csvColumns entry.
func normalizeHeader(h string) string {
	return strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			return c
		default:
			return -1
		}
	}, strings.ToLower(h))
}

// csvColumns maps normalized header names to field positions. The TGBCL
// export renames columns between releases, so each field accepts the
// spellings seen so far.
var csvColumns = map[string]string{
	"brandnumber":  "brand_number",
	"brandno":      "brand_number",
	"brandcode":    "brand_number",
	"productname":  "product_name",
	"brandname":    "product_name",
	"sizeml":       "size_ml",
	"size":         "size_ml",
	"packquantity": "pack_quantity",
	"packqty":      "pack_quantity",
	"unitspercase": "pack_quantity",
	"packtype":     "pack_type",
	"producttype":  "product_type",
	"category":     "product_type",
	"standardmrp":  "standard_mrp",
	"mrp":          "standard_mrp",
	"invoiceprice": "invoice_price",
	"issueprice":   "invoice_price",
}

func (s *catalogService) ImportCSV(ctx context.Context, r io.Reader) (*ImportStats, error) {
	entries, stats, err := ParseCatalogCSV(r)
	if err != nil {
		return nil, err
	}

	inserted, updated, err := s.brandRepo.UpsertBatch(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("upserting catalog rows: %w", err)
	}
	stats.Inserted = inserted
	stats.Updated = updated

	log.Printf("catalogService.ImportCSV: %d rows (%d inserted, %d updated, %d skipped)",
		stats.Rows, stats.Inserted, stats.Updated, stats.Skipped)
	return stats, nil
}

// ParseCatalogCSV reads master-brand rows from a CSV stream. Rows missing
// a usable natural key are counted as skipped, not fatal.
func ParseCatalogCSV(r io.Reader) ([]port.MasterBrandEntry, *ImportStats, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading header: %v", domain.ErrInvalidCSV, err)
	}
	// Strip a UTF-8 BOM the way Excel exports carry one.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	fields := make(map[string]int)
	for i, h := range header {
		if name, ok := csvColumns[normalizeHeader(h)]; ok {
			fields[name] = i
		}
	}
	for _, required := range []string{"brand_number", "size_ml", "pack_quantity", "pack_type"} {
		if _, ok := fields[required]; !ok {
			return nil, nil, fmt.Errorf("%w: missing column %q", domain.ErrInvalidCSV, required)
		}
	}

	stats := &ImportStats{}
	var entries []port.MasterBrandEntry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: row %d: %v", domain.ErrInvalidCSV, stats.Rows+2, err)
		}
		stats.Rows++

		cell := func(name string) string {
			idx, ok := fields[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		sizeML, sErr := strconv.Atoi(cell("size_ml"))
		packQty, pErr := strconv.Atoi(cell("pack_quantity"))
		brandNumber := cell("brand_number")
		packType := strings.ToUpper(cell("pack_type"))
		if brandNumber == "" || sErr != nil || pErr != nil || packQty <= 0 || packType == "" {
			stats.Skipped++
			continue
		}

		mrp, _ := strconv.ParseFloat(cell("standard_mrp"), 64)
		price, _ := strconv.ParseFloat(cell("invoice_price"), 64)

		entries = append(entries, port.MasterBrandEntry{
			BrandNumber:  brandNumber,
			ProductName:  strings.ToUpper(cell("product_name")),
			SizeML:       sizeML,
			PackQuantity: packQty,
			PackType:     packType,
			ProductType:  cell("product_type"),
			StandardMRP:  mrp,
			InvoicePrice: price,
		})
	}

	return entries, stats, nil
}

func (s *catalogService) Snapshot(ctx context.Context) (*icdc.BrandCatalog, error) {
	entries, err := s.brandRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, domain.ErrCatalogEmpty
	}
	return icdc.NewBrandCatalog(entries), nil
}

func (s *catalogService) Search(ctx context.Context, query string, offset, limit int) ([]port.MasterBrandEntry, int, error) {
	return s.brandRepo.Search(ctx, query, offset, limit)
}
