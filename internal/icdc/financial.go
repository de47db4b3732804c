package icdc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// financialTolerance is the allowed gap, in currency units, between the
// printed total and the total re-derived from its components.
const financialTolerance = 1.00

// reAmount finds a candidate amount: optional accounting parenthesis or
// sign, digits with optional comma grouping, optional paise. Column
// spacing varies wildly between print runs, so amounts are located
// relative to their label rather than by position.
var reAmount = regexp.MustCompile(`(\()?\s*([-+]?\d[\d,]*(?:\.\d{1,2})?)`)

// financialPattern anchors one money label at line start; the amount is
// the nearest number after it.
type financialPattern struct {
	name   string
	label  *regexp.Regexp
	assign func(f *FinancialFields, v float64)
}

// financialPatterns covers the labeled fields of every known ICDC print
// run. Assignment is first-wins: a label printed twice keeps its first
// amount.
var financialPatterns = []financialPattern{
	{
		name:  "invoice value",
		label: regexp.MustCompile(`(?i)^INVOICE\s+VALUE\b`),
		assign: func(f *FinancialFields, v float64) {
			if f.InvoiceValue == nil {
				f.InvoiceValue = &v
			}
		},
	},
	{
		name:  "mrp rounding off",
		label: regexp.MustCompile(`(?i)^MRP\s+ROUNDING\s+OFF\b`),
		assign: func(f *FinancialFields, v float64) {
			if f.MRPRoundingOff == nil {
				f.MRPRoundingOff = &v
			}
		},
	},
	{
		name:  "retail excise turnover tax",
		label: regexp.MustCompile(`(?i)^(?:RETAIL\s+EXCISE\s+TURNOVER\s+TAX|TURNOVER\s+TAX)\b`),
		assign: func(f *FinancialFields, v float64) {
			if f.RetailExciseTurnoverTax == nil {
				f.RetailExciseTurnoverTax = &v
			}
		},
	},
	{
		name:  "special excise cess",
		label: regexp.MustCompile(`(?i)^SPECIAL\s+EXCISE\s+CESS\b`),
		assign: func(f *FinancialFields, v float64) {
			if f.SpecialExciseCess == nil {
				f.SpecialExciseCess = &v
			}
		},
	},
	{
		name:  "tcs",
		label: regexp.MustCompile(`(?i)^TCS\b`),
		assign: func(f *FinancialFields, v float64) {
			if f.TCS == nil {
				f.TCS = &v
			}
		},
	},
	{
		name:  "total",
		label: regexp.MustCompile(`(?i)^TOTAL(?:\s+AMOUNT)?(?:\s+PAYABLE)?\b`),
		assign: func(f *FinancialFields, v float64) {
			if f.TotalAmount == nil {
				f.TotalAmount = &v
			}
		},
	},
}

// amountAfterLabel scans the remainder of a line for the first usable
// amount, skipping percentages like the "1%" in "TCS @ 1% : 1,234.56".
func amountAfterLabel(rest string) (float64, bool) {
	for _, loc := range reAmount.FindAllStringSubmatchIndex(rest, -1) {
		end := loc[1]
		if end < len(rest) && rest[end] == '%' {
			continue
		}
		raw := rest[loc[4]:loc[5]]
		value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			continue
		}
		if loc[2] >= 0 { // accounting parenthesis means negative
			value = -value
		}
		return value, true
	}
	return 0, false
}

// extractFinancial scans the financially classified lines for each
// labeled field.
func extractFinancial(lines []classifiedLine) FinancialFields {
	var fields FinancialFields
	for i := range lines {
		cl := &lines[i]
		if cl.role != RoleFinancial {
			continue
		}
		for j := range financialPatterns {
			p := &financialPatterns[j]
			loc := p.label.FindStringIndex(cl.line.Text)
			if loc == nil {
				continue
			}
			if value, ok := amountAfterLabel(cl.line.Text[loc[1]:]); ok {
				p.assign(&fields, value)
			}
			break
		}
	}
	return fields
}

// checkDerivedTotal re-derives the total from the five component fields
// and records a warning when the printed total disagrees beyond the
// rounding tolerance. The printed value stays authoritative either way.
func checkDerivedTotal(fields *FinancialFields, pc *parseContext) {
	if fields.TotalAmount == nil {
		return
	}
	components := []*float64{
		fields.InvoiceValue,
		fields.MRPRoundingOff,
		fields.RetailExciseTurnoverTax,
		fields.SpecialExciseCess,
		fields.TCS,
	}
	var derived float64
	anyPresent := false
	for _, c := range components {
		if c != nil {
			derived += *c
			anyPresent = true
		}
	}
	if !anyPresent {
		return
	}
	if math.Abs(*fields.TotalAmount-derived) > financialTolerance {
		pc.warnf("financial: printed total %.2f disagrees with derived sum %.2f", *fields.TotalAmount, derived)
	}
}
