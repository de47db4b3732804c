package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrDuplicateICDC       = errors.New("invoice with this ICDC number already exists")
	ErrDocumentUnparsed    = errors.New("no product lines recognized in document")
	ErrTextExtraction      = errors.New("text extraction from PDF failed")
	ErrCatalogEmpty        = errors.New("master brand catalog is empty")
	ErrInvalidCSV          = errors.New("master brand CSV is malformed")
)
