// Package pdftext extracts the raw text and page count of an ICDC PDF.
// Text-layer PDFs are read directly; scanned PDFs with no usable text
// layer fall back to page-image OCR when enabled. The parsing core only
// ever sees the resulting text blob and page count.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"

	"theka/internal/config"
	"theka/internal/domain"
	"theka/internal/port"
)

type extractor struct {
	cfg *config.ExtractConfig
	ocr *ocrFallback
}

// NewExtractor creates a TextExtractor reading the PDF text layer, with an
// optional Tesseract OCR fallback for scanned documents.
func NewExtractor(cfg *config.ExtractConfig) port.TextExtractor {
	e := &extractor{cfg: cfg}
	if cfg.OCREnabled {
		e.ocr = newOCRFallback(cfg.TessdataPath)
	}
	return e
}

func (e *extractor) Extract(ctx context.Context, pdfBytes []byte) (*port.ExtractedText, error) {
	text, pages, err := textLayer(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTextExtraction, err)
	}

	if len(strings.TrimSpace(text)) >= e.cfg.MinTextChars {
		return &port.ExtractedText{Text: text, Pages: pages}, nil
	}

	if e.ocr == nil {
		return nil, fmt.Errorf("%w: no text layer and OCR fallback disabled", domain.ErrTextExtraction)
	}

	log.Printf("pdftext.Extract: text layer has %d chars across %d pages, falling back to OCR",
		len(strings.TrimSpace(text)), pages)

	ocrText, err := e.ocr.extract(ctx, pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTextExtraction, err)
	}
	return &port.ExtractedText{Text: ocrText, Pages: pages, OCRUsed: true}, nil
}

// textLayer pulls the embedded text of every page, one extracted row per
// output line so the line classifier sees the same rows the printer laid
// out.
func textLayer(pdfBytes []byte) (string, int, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return "", 0, fmt.Errorf("opening pdf: %w", err)
	}

	var b strings.Builder
	pages := r.NumPage()
	for pageIndex := 1; pageIndex <= pages; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					b.WriteString(" ")
				}
				b.WriteString(word.S)
			}
			b.WriteString("\n")
		}
	}
	return b.String(), pages, nil
}
