package noop

import (
	"context"
	"log"
	"strings"

	"theka/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs review alerts to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendReviewAlert(_ context.Context, alert port.ReviewAlert) error {
	log.Printf("[NOOP EMAIL] Review alert for invoice %s (ICDC %s): %s; flagged serials: %s",
		alert.InvoiceID, alert.ICDCNumber, alert.Reason, strings.Join(alert.FlaggedSerials, ", "))
	return nil
}
