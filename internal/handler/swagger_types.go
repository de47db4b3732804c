package handler

import (
	"github.com/google/uuid"

	"theka/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Service string `json:"service" example:"theka"`
	Error   string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// ImportStatsResponse summarizes a master brand CSV import.
type ImportStatsResponse struct {
	Rows     int `json:"rows" example:"4821"`
	Inserted int `json:"inserted" example:"310"`
	Updated  int `json:"updated" example:"4500"`
	Skipped  int `json:"skipped" example:"11"`
}

// InvoiceItemWithMatch pairs a line item with its brand catalog match.
type InvoiceItemWithMatch struct {
	Item  domain.InvoiceItem    `json:"item"`
	Match *domain.BrandMatchRow `json:"match,omitempty"`
}

// InvoiceDiagnostics is the per-line parse trace for one invoice.
type InvoiceDiagnostics struct {
	Success    bool        `json:"success" example:"true"`
	ICDCNumber string      `json:"icdc_number" example:"ICDC000123456789"`
	Warnings   []string    `json:"warnings"`
	Trace      []LineTrace `json:"trace"`
}

// LineTrace describes how one input line was classified.
type LineTrace struct {
	Line       int    `json:"line" example:"14"`
	Text       string `json:"text" example:"1 5016 MCDOWELLS NO1 WHISKY (48) 180 G 105485"`
	Class      string `json:"class" example:"product"`
	Resolution string `json:"resolution" example:"summary-exact"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// --- Parsed Invoice Schema (for documentation) ---

// InvoiceSummaryDoc documents the invoice row as returned by list/get.
type InvoiceSummaryDoc struct {
	ID            uuid.UUID `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ICDCNumber    string    `json:"icdc_number" example:"ICDC000123456789"`
	InvoiceNumber string    `json:"invoice_number" example:"1000012345"`
	ParseStatus   string    `json:"parse_status" example:"parsed"`
	NeedsReview   bool      `json:"needs_review" example:"false"`
	TotalAmount   float64   `json:"total_amount" example:"118195.79"`
}
