package ses

import (
	"context"
	"fmt"
	"html"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"theka/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	toAddress   string
}

// NewSESSender creates a new SES-backed EmailSender for review alerts.
func NewSESSender(region, fromAddress, fromName, toAddress string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddress:   toAddress,
	}, nil
}

func (s *sesSender) SendReviewAlert(ctx context.Context, alert port.ReviewAlert) error {
	subject := fmt.Sprintf("ICDC %s needs review", alertLabel(alert))
	htmlBody := buildReviewHTML(alert)
	textBody := buildReviewText(alert)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func alertLabel(alert port.ReviewAlert) string {
	if alert.ICDCNumber != "" {
		return alert.ICDCNumber
	}
	return alert.InvoiceID
}

func buildReviewText(alert port.ReviewAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invoice %s needs a manual look.\n\nReason: %s\n", alertLabel(alert), alert.Reason)
	if len(alert.FlaggedSerials) > 0 {
		fmt.Fprintf(&b, "\nFlagged line serials: %s\n", strings.Join(alert.FlaggedSerials, ", "))
	}
	if len(alert.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range alert.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	b.WriteString("\nTHEKA")
	return b.String()
}

func buildReviewHTML(alert port.ReviewAlert) string {
	var rows strings.Builder
	for _, w := range alert.Warnings {
		fmt.Fprintf(&rows, "<li>%s</li>\n", html.EscapeString(w))
	}
	serials := ""
	if len(alert.FlaggedSerials) > 0 {
		serials = fmt.Sprintf("<p>Flagged line serials: <strong>%s</strong></p>",
			html.EscapeString(strings.Join(alert.FlaggedSerials, ", ")))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Invoice %s needs review</h2>
  <p>Reason: %s</p>
  %s
  <ul style="color: #666;">%s</ul>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">THEKA - ICDC Stock Receipt Processing</p>
</body>
</html>`, html.EscapeString(alertLabel(alert)), html.EscapeString(alert.Reason), serials, rows.String())
}
