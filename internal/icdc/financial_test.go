package icdc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classifyAll builds classified lines for financial extraction tests.
func classifyAll(t *testing.T, texts ...string) []classifiedLine {
	t.Helper()
	lines := make([]classifiedLine, 0, len(texts))
	for i, text := range texts {
		lines = append(lines, mustClassify(t, i+1, text))
	}
	return lines
}

func TestExtractFinancial_AllFields(t *testing.T) {
	lines := classifyAll(t,
		"INVOICE VALUE : 4,56,789.00",
		"MRP ROUNDING OFF : -12.40",
		"RETAIL EXCISE TURNOVER TAX : 45,678.90",
		"SPECIAL EXCISE CESS : 91,357.80",
		"TCS @ 1% : 4,567.89",
		"TOTAL AMOUNT : 5,98,381.19",
	)

	f := extractFinancial(lines)

	require.NotNil(t, f.InvoiceValue)
	assert.InDelta(t, 456789.00, *f.InvoiceValue, 1e-9)
	require.NotNil(t, f.MRPRoundingOff)
	assert.InDelta(t, -12.40, *f.MRPRoundingOff, 1e-9)
	require.NotNil(t, f.RetailExciseTurnoverTax)
	assert.InDelta(t, 45678.90, *f.RetailExciseTurnoverTax, 1e-9)
	require.NotNil(t, f.SpecialExciseCess)
	assert.InDelta(t, 91357.80, *f.SpecialExciseCess, 1e-9)
	require.NotNil(t, f.TCS)
	assert.InDelta(t, 4567.89, *f.TCS, 1e-9, "the 1%% rate must not be read as the amount")
	require.NotNil(t, f.TotalAmount)
	assert.InDelta(t, 598381.19, *f.TotalAmount, 1e-9)
}

func TestExtractFinancial_AbsenceIsNotZero(t *testing.T) {
	lines := classifyAll(t, "TOTAL : 1,000.00")

	f := extractFinancial(lines)

	require.NotNil(t, f.TotalAmount)
	assert.InDelta(t, 1000.00, *f.TotalAmount, 1e-9)
	assert.Nil(t, f.InvoiceValue)
	assert.Nil(t, f.MRPRoundingOff)
	assert.Nil(t, f.RetailExciseTurnoverTax)
	assert.Nil(t, f.SpecialExciseCess)
	assert.Nil(t, f.TCS)
}

func TestExtractFinancial_FirstOccurrenceWins(t *testing.T) {
	lines := classifyAll(t,
		"INVOICE VALUE : 100.00",
		"INVOICE VALUE : 200.00",
	)

	f := extractFinancial(lines)

	require.NotNil(t, f.InvoiceValue)
	assert.InDelta(t, 100.00, *f.InvoiceValue, 1e-9)
}

func TestExtractFinancial_AlternateLabels(t *testing.T) {
	lines := classifyAll(t,
		"TURNOVER TAX 1234.50",
		"TOTAL PAYABLE : 9,999.99",
	)

	f := extractFinancial(lines)

	require.NotNil(t, f.RetailExciseTurnoverTax)
	assert.InDelta(t, 1234.50, *f.RetailExciseTurnoverTax, 1e-9)
	require.NotNil(t, f.TotalAmount)
	assert.InDelta(t, 9999.99, *f.TotalAmount, 1e-9)
}

func TestAmountAfterLabel(t *testing.T) {
	tests := []struct {
		name string
		rest string
		want float64
		ok   bool
	}{
		{"plain", " : 123.45", 123.45, true},
		{"indian grouping", " : 4,56,789.00", 456789.00, true},
		{"negative", " : -12.40", -12.40, true},
		{"accounting parens", " (12.40)", -12.40, true},
		{"percent skipped", " @ 1% : 99.00", 99.00, true},
		{"no number", " : pending", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := amountAfterLabel(tt.rest)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestCheckDerivedTotal_WithinTolerance(t *testing.T) {
	invoiceValue, tcs, total := 1000.00, 10.00, 1011.00
	f := FinancialFields{InvoiceValue: &invoiceValue, TCS: &tcs, TotalAmount: &total}
	pc := &parseContext{}

	// Derived 1010.00 vs printed 1011.00: exactly at the ±1.00 boundary.
	checkDerivedTotal(&f, pc)

	assert.Empty(t, pc.warnings)
}

func TestCheckDerivedTotal_BeyondTolerance(t *testing.T) {
	invoiceValue, tcs, total := 1000.00, 10.00, 1011.01
	f := FinancialFields{InvoiceValue: &invoiceValue, TCS: &tcs, TotalAmount: &total}
	pc := &parseContext{}

	checkDerivedTotal(&f, pc)

	require.Len(t, pc.warnings, 1)
	assert.Contains(t, pc.warnings[0], "printed total")
	// The printed value stays untouched; the mismatch is a warning only.
	assert.InDelta(t, 1011.01, *f.TotalAmount, 1e-9)
}

func TestCheckDerivedTotal_NothingToCompare(t *testing.T) {
	total := 500.00

	pc := &parseContext{}
	checkDerivedTotal(&FinancialFields{}, pc)
	assert.Empty(t, pc.warnings)

	// A printed total with no components is accepted as-is.
	pc = &parseContext{}
	checkDerivedTotal(&FinancialFields{TotalAmount: &total}, pc)
	assert.Empty(t, pc.warnings)
}
