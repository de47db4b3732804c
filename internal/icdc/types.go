package icdc

import (
	"strings"

	"theka/internal/port"
)

// ProductCategory is the excise category printed on a product line.
type ProductCategory string

const (
	CategoryBeer     ProductCategory = "Beer"
	CategoryIML      ProductCategory = "IML"
	CategoryDutyPaid ProductCategory = "DutyPaid"
	CategoryDutyFree ProductCategory = "DutyFree"
)

// PackType is the container classification code printed per brand line.
type PackType string

const (
	PackTypeGlass   PackType = "G"
	PackTypeCan     PackType = "C"
	PackTypePlastic PackType = "P"
	PackTypeBox     PackType = "B"
)

// ResolutionMethod tags how a quantity token was resolved.
type ResolutionMethod string

const (
	MethodSummaryExact ResolutionMethod = "summary-exact"
	MethodDefaultSplit ResolutionMethod = "default-split"
	MethodFallback     ResolutionMethod = "fallback"
)

// MatchMethod tags how a brand match against the catalog was made.
type MatchMethod string

const (
	MatchExact MatchMethod = "exact"
	MatchFuzzy MatchMethod = "fuzzy"
	MatchNone  MatchMethod = "none"
)

// LineRole is the structural role the classifier assigns to a line.
type LineRole string

const (
	RoleHeader       LineRole = "header"
	RoleProduct      LineRole = "product"
	RoleSummary      LineRole = "summary"
	RoleFinancial    LineRole = "financial"
	RoleFooter       LineRole = "footer"
	RoleUnclassified LineRole = "unclassified"
)

// Line is one trimmed, non-empty line of the document, keeping its
// original 1-based line number for diagnostics.
type Line struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// RawDocument is the immutable input to the parsing pipeline: the original
// file bytes, the extracted text blob, the page count, and the ordered
// non-empty lines.
type RawDocument struct {
	Raw   []byte `json:"-"`
	Text  string `json:"-"`
	Pages int    `json:"pages"`
	Lines []Line `json:"lines"`
}

// NewRawDocument splits extracted text into trimmed, non-empty lines.
func NewRawDocument(raw []byte, text string, pages int) *RawDocument {
	doc := &RawDocument{Raw: raw, Text: text, Pages: pages}
	for i, part := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		doc.Lines = append(doc.Lines, Line{Number: i + 1, Text: trimmed})
	}
	return doc
}

// ProductLineRaw holds the fields captured from one matched product line,
// before quantity disambiguation. BrandNumber stays a string because
// zero-padding is catalog-significant.
type ProductLineRaw struct {
	Serial          int             `json:"serial"`
	BrandNumber     string          `json:"brand_number"`
	ProductName     string          `json:"product_name"`
	ProductCategory ProductCategory `json:"product_category"`
	PackType        PackType        `json:"pack_type"`
	PackQuantity    int             `json:"pack_quantity"`
	SizeML          int             `json:"size_ml"`
	QuantityToken   string          `json:"quantity_token"`
	SourceLine      int             `json:"source_line"`
}

// ResolvedLineItem is a product line with its quantity token resolved into
// cases and bottles, plus the brand match attached after resolution.
// Invariant: 0 <= Bottles < PackQuantity; a full case is always folded
// into Cases.
type ResolvedLineItem struct {
	ProductLineRaw
	Cases                int              `json:"cases"`
	Bottles              int              `json:"bottles"`
	TotalUnits           int              `json:"total_units"`
	ResolutionMethod     ResolutionMethod `json:"resolution_method"`
	ResolutionConfidence float64          `json:"resolution_confidence"`
	NeedsReview          bool             `json:"needs_review"`
	Brand                BrandMatch       `json:"brand"`
}

// CategoryCount is a cases/bottles pair.
type CategoryCount struct {
	Cases   int `json:"cases"`
	Bottles int `json:"bottles"`
}

// SummaryTotals holds the per-category and grand cases/bottles totals
// printed on the document's summary line.
type SummaryTotals struct {
	IML        CategoryCount `json:"iml"`
	Beer       CategoryCount `json:"beer"`
	Grand      CategoryCount `json:"grand"`
	SourceLine int           `json:"source_line,omitempty"`
}

// FinancialFields holds the labeled monetary fields found on the document.
// Each is optional: absence on the printed page is legal and distinct
// from zero, hence pointers.
type FinancialFields struct {
	InvoiceValue            *float64 `json:"invoice_value"`
	MRPRoundingOff          *float64 `json:"mrp_rounding_off"`
	RetailExciseTurnoverTax *float64 `json:"retail_excise_turnover_tax"`
	SpecialExciseCess       *float64 `json:"special_excise_cess"`
	TCS                     *float64 `json:"tcs"`
	TotalAmount             *float64 `json:"total_amount"`
}

// BrandMatch links a resolved line item to a master-brand catalog row.
// Method "none" always carries a nil MasterBrand.
type BrandMatch struct {
	MasterBrand *port.MasterBrandEntry `json:"master_brand"`
	Confidence  int                    `json:"confidence"`
	Method      MatchMethod            `json:"method"`
}

// SummaryValidation reports the cross-check of resolved quantities against
// the document's printed summary line.
type SummaryValidation struct {
	Matched  bool          `json:"matched"`
	Expected SummaryTotals `json:"expected"`
	Actual   SummaryTotals `json:"actual"`
}

// LineTrace is one entry of the optional per-line diagnostic trace.
type LineTrace struct {
	Line    int      `json:"line"`
	Text    string   `json:"text"`
	Role    LineRole `json:"role"`
	Grammar string   `json:"grammar,omitempty"`
}

// ParseResult is the complete outcome of parsing one ICDC document.
// Success is false only when no product lines classified at all; every
// other problem surfaces as a warning on an otherwise successful result.
type ParseResult struct {
	Success           bool               `json:"success"`
	ICDCNumber        string             `json:"icdc_number,omitempty"`
	InvoiceNumber     string             `json:"invoice_number,omitempty"`
	InvoiceDate       string             `json:"invoice_date,omitempty"`
	Financial         FinancialFields    `json:"financial"`
	Items             []ResolvedLineItem `json:"items"`
	SummaryValidation *SummaryValidation `json:"summary_validation"`
	Warnings          []string           `json:"warnings"`
	Trace             []LineTrace        `json:"trace,omitempty"`
}
