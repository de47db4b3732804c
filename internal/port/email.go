package port

import "context"

// ReviewAlert describes a processed invoice that needs a human look:
// either the document failed to parse at all, or some of its lines were
// resolved with fallback quantities or missed the brand catalog.
type ReviewAlert struct {
	ICDCNumber     string
	InvoiceID      string
	Reason         string
	FlaggedSerials []string
	Warnings       []string
}

// EmailSender defines the contract for sending review notifications.
type EmailSender interface {
	SendReviewAlert(ctx context.Context, alert ReviewAlert) error
}
