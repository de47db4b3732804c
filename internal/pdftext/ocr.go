package pdftext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ocrFallback renders the page images of a scanned PDF with pdfcpu and
// runs Tesseract over each one.
type ocrFallback struct {
	tessdataPath string
}

func newOCRFallback(tessdataPath string) *ocrFallback {
	return &ocrFallback{tessdataPath: tessdataPath}
}

func (o *ocrFallback) extract(ctx context.Context, pdfBytes []byte) (string, error) {
	tempDir, err := os.MkdirTemp("", "icdc_pages")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	tempFile, err := os.CreateTemp("", "icdc-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tempFile.Name()) }()

	if _, err := tempFile.Write(pdfBytes); err != nil {
		_ = tempFile.Close()
		return "", fmt.Errorf("writing temp pdf: %w", err)
	}
	_ = tempFile.Close()

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, nil, conf); err != nil {
		return "", fmt.Errorf("extracting page images: %w", err)
	}

	files, err := os.ReadDir(tempDir)
	if err != nil {
		return "", fmt.Errorf("reading temp dir: %w", err)
	}
	// Image file names carry the page number; order decides line order.
	names := make([]string, 0, len(files))
	for _, f := range files {
		if !f.IsDir() {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()
	if o.tessdataPath != "" {
		if err := client.SetTessdataPrefix(o.tessdataPath); err != nil {
			return "", fmt.Errorf("setting tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage("eng"); err != nil {
		return "", fmt.Errorf("setting OCR language: %w", err)
	}

	var b strings.Builder
	for _, name := range names {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err := client.SetImage(filepath.Join(tempDir, name)); err != nil {
			continue
		}
		pageText, err := client.Text()
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("OCR produced no text from %d page images", len(names))
	}
	return b.String(), nil
}
