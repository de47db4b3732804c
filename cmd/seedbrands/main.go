// Command seedbrands converts the TGBCL master brand Excel file into a SQL
// seed file. Reads the first sheet; one row per sellable pack configuration.
// Usage: go run ./cmd/seedbrands [path/to/brands.xlsx]
// Output: db/seeds/master_brands.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const batchSize = 500

type brandEntry struct {
	brandNumber  string
	productName  string
	sizeML       int
	packQuantity int
	packType     string
	productType  string
	standardMRP  float64
	invoicePrice float64
}

// headerAliases maps normalized column headers to entry fields. TGBCL
// renames columns between releases, so each field accepts the spellings
// seen so far.
var headerAliases = map[string]string{
	"brandnumber":  "brand_number",
	"brandno":      "brand_number",
	"brandcode":    "brand_number",
	"brandname":    "product_name",
	"productname":  "product_name",
	"size":         "size_ml",
	"sizeml":       "size_ml",
	"packqty":      "pack_quantity",
	"packquantity": "pack_quantity",
	"unitspercase": "pack_quantity",
	"packtype":     "pack_type",
	"producttype":  "product_type",
	"category":     "product_type",
	"mrp":          "standard_mrp",
	"standardmrp":  "standard_mrp",
	"issueprice":   "invoice_price",
	"invoiceprice": "invoice_price",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := "TGBCL_Brand_Master.xlsx"
	if len(os.Args) > 1 {
		xlsxPath = os.Args[1]
	}
	outPath := "db/seeds/master_brands.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, skipped, err := parseBrandSheet(f)
	if err != nil {
		return fmt.Errorf("parse brand sheet: %w", err)
	}
	log.Printf("brand sheet: %d entries, %d rows skipped", len(entries), skipped)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Master brand seed data generated from the TGBCL Excel export.",
		fmt.Sprintf("-- %d entries in batches of %d.", len(entries), batchSize),
		"-- Run: make seed-brands",
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(out, entries[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	for _, line := range []string{"", "COMMIT;"} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write footer: %w", werr)
		}
	}

	log.Printf("Generated %d total entries (%d batches) in %s",
		len(entries), (len(entries)+batchSize-1)/batchSize, outPath)
	return nil
}

// parseBrandSheet reads the first sheet. The header row is located by
// scanning for a row that yields the four required columns; data rows
// follow it.
func parseBrandSheet(f *excelize.File) ([]brandEntry, int, error) {
	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, err
	}

	fields, dataStart := locateHeader(rows)
	if fields == nil {
		return nil, 0, fmt.Errorf("no header row with brand number, size, pack quantity and pack type columns")
	}

	seen := make(map[string]bool)
	var entries []brandEntry
	skipped := 0
	for i := dataStart; i < len(rows); i++ {
		row := rows[i]

		cell := func(name string) string {
			idx, ok := fields[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		brandNumber := cell("brand_number")
		sizeML, sErr := strconv.Atoi(cell("size_ml"))
		packQty, pErr := strconv.Atoi(cell("pack_quantity"))
		packType := strings.ToUpper(cell("pack_type"))
		if brandNumber == "" || sErr != nil || pErr != nil || packQty <= 0 || packType == "" {
			skipped++
			continue
		}

		key := fmt.Sprintf("%s|%d|%d|%s", brandNumber, sizeML, packQty, packType)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		mrp, _ := strconv.ParseFloat(cell("standard_mrp"), 64)
		price, _ := strconv.ParseFloat(cell("invoice_price"), 64)

		entries = append(entries, brandEntry{
			brandNumber:  brandNumber,
			productName:  strings.ToUpper(cell("product_name")),
			sizeML:       sizeML,
			packQuantity: packQty,
			packType:     packType,
			productType:  cell("product_type"),
			standardMRP:  mrp,
			invoicePrice: price,
		})
	}
	return entries, skipped, nil
}

// locateHeader scans the first ten rows for one that resolves all four
// required columns and returns the field index map plus the first data row.
func locateHeader(rows [][]string) (map[string]int, int) {
	limit := 10
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		fields := make(map[string]int)
		for j, h := range rows[i] {
			key := normalizeHeader(h)
			if name, ok := headerAliases[key]; ok {
				if _, dup := fields[name]; !dup {
					fields[name] = j
				}
			}
		}
		required := []string{"brand_number", "size_ml", "pack_quantity", "pack_type"}
		ok := true
		for _, name := range required {
			if _, found := fields[name]; !found {
				ok = false
				break
			}
		}
		if ok {
			return fields, i + 1
		}
	}
	return nil, 0
}

func normalizeHeader(h string) string {
	return strings.Map(func(c rune) rune {
		if c == ' ' || c == '_' || c == '-' || c == '(' || c == ')' || c == '.' {
			return -1
		}
		return c
	}, strings.ToLower(strings.TrimSpace(h)))
}

func writeBatch(out *os.File, batch []brandEntry) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO master_brands (brand_number, product_name, size_ml, pack_quantity, pack_type, product_type, standard_mrp, invoice_price) VALUES\n")

	for i := range batch {
		e := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  ('%s', '%s', %d, %d, '%s', '%s', %.2f, %.2f)",
			escapeSQL(e.brandNumber), escapeSQL(e.productName),
			e.sizeML, e.packQuantity,
			escapeSQL(e.packType), escapeSQL(e.productType),
			e.standardMRP, e.invoicePrice)
	}

	b.WriteString("\nON CONFLICT (brand_number, size_ml, pack_quantity, pack_type) DO NOTHING;\n")

	_, err := out.WriteString(b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
