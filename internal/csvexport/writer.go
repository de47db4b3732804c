package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"theka/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row: one row per invoice line item with
// its parent invoice's identity and financials repeated.
var columns = []string{
	"ICDC Number",
	"Invoice Number",
	"Invoice Date",
	"Parse Status",
	"Serial",
	"Brand Number",
	"Product Name",
	"Category",
	"Pack Type",
	"Pack Quantity",
	"Size (ml)",
	"Cases",
	"Bottles",
	"Total Units",
	"Resolution Method",
	"Resolution Confidence",
	"Invoice Value",
	"MRP Rounding Off",
	"Retail Excise Turnover Tax",
	"Special Excise Cess",
	"TCS",
	"Total Amount",
	"Summary Matched",
	"Needs Review",
	"Parsed At",
}

// Writer wraps csv.Writer for exporting parsed invoices as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoice writes one row per line item of a parsed invoice. An
// invoice with no items (failed parse) still gets one metadata-only row
// so the export accounts for every document.
func (w *Writer) WriteInvoice(inv *domain.Invoice, items []domain.InvoiceItem) error {
	if len(items) == 0 {
		return w.csv.Write(invoiceRow(inv, nil))
	}
	for i := range items {
		if err := w.csv.Write(invoiceRow(inv, &items[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func invoiceRow(inv *domain.Invoice, item *domain.InvoiceItem) []string {
	row := make([]string, len(columns))

	// Invoice columns (always filled)
	row[0] = inv.ICDCNumber
	row[1] = inv.InvoiceNumber
	row[2] = formatDate(inv.InvoiceDate)
	row[3] = string(inv.ParseStatus)
	row[16] = formatOptMoney(inv.InvoiceValue)
	row[17] = formatOptMoney(inv.MRPRoundingOff)
	row[18] = formatOptMoney(inv.RetailExciseTurnoverTax)
	row[19] = formatOptMoney(inv.SpecialExciseCess)
	row[20] = formatOptMoney(inv.TCS)
	row[21] = formatOptMoney(inv.TotalAmount)
	row[22] = formatOptBool(inv.SummaryMatched)
	row[23] = formatBool(inv.NeedsReview)
	row[24] = formatTime(inv.ParsedAt)

	if item == nil {
		return row
	}

	row[4] = strconv.Itoa(item.Serial)
	row[5] = item.BrandNumber
	row[6] = item.ProductName
	row[7] = item.ProductCategory
	row[8] = item.PackType
	row[9] = strconv.Itoa(item.PackQuantity)
	row[10] = strconv.Itoa(item.SizeML)
	row[11] = strconv.Itoa(item.Cases)
	row[12] = strconv.Itoa(item.Bottles)
	row[13] = strconv.Itoa(item.TotalUnits)
	row[14] = item.ResolutionMethod
	row[15] = strconv.FormatFloat(item.ResolutionConfidence, 'f', 2, 64)

	return row
}

func formatOptMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatOptBool(v *bool) string {
	if v == nil {
		return ""
	}
	return formatBool(*v)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.csv
func BuildFilename(name string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
