package port

import "context"

// ExtractedText is the raw output of PDF text extraction: a text blob and
// a page count, the only two facts the parsing core needs from the file.
type ExtractedText struct {
	Text    string
	Pages   int
	OCRUsed bool
}

// TextExtractor abstracts PDF-to-text extraction, including any OCR
// fallback for scanned documents with no embedded text layer.
type TextExtractor interface {
	Extract(ctx context.Context, pdfBytes []byte) (*ExtractedText, error)
}
