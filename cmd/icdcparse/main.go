// Command icdcparse runs the ICDC extraction core over a local document
// without the server, database, or S3. Useful for checking a problem PDF
// or tuning the brand catalog before an import.
//
// Usage:
//
//	go run ./cmd/icdcparse [-catalog brands.csv] [-tolerance 10] [-trace] invoice.pdf
//
// A .txt input skips PDF text extraction and is parsed as-is. The result
// is printed as JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"theka/internal/config"
	"theka/internal/icdc"
	"theka/internal/pdftext"
	"theka/internal/port"
	"theka/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	catalogPath := flag.String("catalog", "", "master brand CSV; empty parses without brand matching")
	tolerance := flag.Int("tolerance", icdc.DefaultSizeToleranceML, "fuzzy size match window in ml")
	trace := flag.Bool("trace", false, "attach the per-line classification trace")
	ocr := flag.Bool("ocr", true, "enable the OCR fallback for scanned PDFs")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: icdcparse [-catalog brands.csv] [-tolerance N] [-trace] <invoice.pdf|invoice.txt>")
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	doc, err := loadDocument(inputPath, *ocr)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(*catalogPath)
	if err != nil {
		return err
	}

	opts := []icdc.Option{icdc.WithSizeTolerance(*tolerance)}
	if *trace {
		opts = append(opts, icdc.WithTrace())
	}

	res := icdc.ParseInvoice(doc, catalog, opts...)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if !res.Success {
		os.Exit(1)
	}
	return nil
}

func loadDocument(path string, ocr bool) (*icdc.RawDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return icdc.NewRawDocument(raw, string(raw), 1), nil
	}

	extractor := pdftext.NewExtractor(&config.ExtractConfig{
		OCREnabled:   ocr,
		MinTextChars: 64,
	})
	extracted, err := extractor.Extract(context.Background(), raw)
	if err != nil {
		return nil, fmt.Errorf("extracting text from %s: %w", path, err)
	}
	if extracted.OCRUsed {
		log.Printf("icdcparse: no text layer in %s, used OCR", path)
	}
	return icdc.NewRawDocument(raw, extracted.Text, extracted.Pages), nil
}

func loadCatalog(path string) (*icdc.BrandCatalog, error) {
	var entries []port.MasterBrandEntry
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening catalog %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()

		parsed, stats, err := service.ParseCatalogCSV(f)
		if err != nil {
			return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
		}
		log.Printf("icdcparse: catalog loaded (%d rows, %d skipped)", stats.Rows, stats.Skipped)
		entries = parsed
	}
	return icdc.NewBrandCatalog(entries), nil
}
