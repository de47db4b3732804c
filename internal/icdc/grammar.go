package icdc

import "regexp"

// Grammar names, used in traces and header field routing.
const (
	grammarProductCompact  = "product-compact"
	grammarProductTabular  = "product-tabular"
	grammarSummary         = "summary-cases-bottles"
	grammarFinancial       = "financial-label"
	grammarHeaderICDC      = "header-icdc-number"
	grammarHeaderInvoiceNo = "header-invoice-number"
	grammarHeaderDate      = "header-invoice-date"
	grammarHeaderMasthead  = "header-masthead"
	grammarHeaderParty     = "header-party"
	grammarFooterPage      = "footer-page"
	grammarFooterSign      = "footer-signature"
	grammarFooterRule      = "footer-rule"
)

// categoryToken is the set of category spellings seen across ICDC print
// runs. Normalization to the canonical enum happens in extract.go.
const categoryToken = `BEER|IML|FL|DUTY\s*PAID|DUTY\s*FREE|DP|DF`

var (
	// Compact single-line product format:
	//   1 5016 KINGFISHER PREMIUM LAGER BEER G 12 650 ML 1800
	reProductCompact = regexp.MustCompile(`(?i)^(?P<serial>\d{1,3})\s+(?P<brand>\d{3,5})\s+(?P<name>\S.*?)\s+(?P<category>` + categoryToken + `)\s+(?P<packtype>[A-Z])\s*(?P<packqty>\d{1,3})\s+(?P<size>\d{2,4})\s*ML\s+(?P<qty>\d{1,10})$`)

	// Tabular product format with a slash-separated pack run:
	//   2 0134 MCDOWELLS NO.1 WHISKY IML 12 / 750 ML / G 240
	reProductTabular = regexp.MustCompile(`(?i)^(?P<serial>\d{1,3})\s+(?P<brand>\d{3,5})\s+(?P<name>\S.*?)\s+(?P<category>` + categoryToken + `)\s+(?P<packqty>\d{1,3})\s*/\s*(?P<size>\d{2,4})\s*ML\s*/\s*(?P<packtype>[A-Z])\s+(?P<qty>\d{1,10})$`)

	// Document-level cases/bottles summary line:
	//   TOTAL (CASES/BOTTLES) : IML : 240/0 BEER : 180/0 TOTAL : 420/0
	reSummary = regexp.MustCompile(`(?i)^TOTAL\s*\(\s*CASES\s*/\s*BOTTLES\s*\)\s*:?\s*IML\s*:\s*(?P<imlcases>\d+)\s*/\s*(?P<imlbottles>\d+)\s*,?\s+BEER\s*:\s*(?P<beercases>\d+)\s*/\s*(?P<beerbottles>\d+)\s*,?\s+TOTAL\s*:\s*(?P<grandcases>\d+)\s*/\s*(?P<grandbottles>\d+)$`)

	// A financial line starts with a known money label and ends with an
	// amount. Slashes never appear in these lines, which keeps the grammar
	// disjoint from the summary line and the tabular pack run.
	reFinancial = regexp.MustCompile(`(?i)^(?:INVOICE\s+VALUE|MRP\s+ROUNDING\s+OFF|RETAIL\s+EXCISE\s+TURNOVER\s+TAX|TURNOVER\s+TAX|SPECIAL\s+EXCISE\s+CESS|TCS|TOTAL(?:\s+AMOUNT)?(?:\s+PAYABLE)?)\b[^/]*?\(?\s*-?\s*[\d,]+(?:\.\d{1,2})?\s*\)?\s*$`)

	reHeaderICDC      = regexp.MustCompile(`(?i)^ICDC\s*(?:NO|NUMBER)\.?\s*:?\s*(?P<icdc>[A-Z0-9][A-Z0-9/-]*)$`)
	reHeaderInvoiceNo = regexp.MustCompile(`(?i)^INVOICE\s*(?:NO|NUMBER)\.?\s*:?\s*(?P<invoiceno>[A-Z0-9][A-Z0-9/-]*)$`)
	reHeaderDate      = regexp.MustCompile(`(?i)^(?:INVOICE\s+)?DATE\s*:?\s*(?P<date>\d{1,2}[-/.][A-Z0-9]{2,9}[-/.]\d{2,4})$`)
	reHeaderMasthead  = regexp.MustCompile(`(?i)^(?:TELANGANA|ANDHRA\s+PRADESH)\s+STATE\s+BEVERAGES\s+CORPORATION\s+LIMITED\b.*$`)
	reHeaderParty     = regexp.MustCompile(`(?i)^(?:DEPOT|LICENSEE|RETAILER|SHOP|DESTINATION)(?:\s+(?:NAME|CODE|ADDRESS))?\s*:.*$`)

	reFooterPage = regexp.MustCompile(`(?i)^PAGE\s+\d+\s+OF\s+\d+$`)
	reFooterSign = regexp.MustCompile(`(?i)^(?:AUTHORI[SZ]ED\s+SIGNATORY|FOR\s+[A-Z][A-Z &.()]*)$`)
	reFooterRule = regexp.MustCompile(`^[-*=_]{3,}$`)
)

// grammar is one anchored line pattern and the structural role it assigns.
type grammar struct {
	name string
	role LineRole
	re   *regexp.Regexp
}

// grammars is the fixed classification order; the first match wins. The
// patterns are mutually exclusive by construction: product lines start
// with a serial digit run and end in the pack/quantity tail, the summary
// line starts with its TOTAL (CASES/BOTTLES) marker, financial lines
// start with a money label and contain no slash, header and footer lines
// start with fixed tokens.
var grammars = []grammar{
	{name: grammarProductCompact, role: RoleProduct, re: reProductCompact},
	{name: grammarProductTabular, role: RoleProduct, re: reProductTabular},
	{name: grammarSummary, role: RoleSummary, re: reSummary},
	{name: grammarFinancial, role: RoleFinancial, re: reFinancial},
	{name: grammarHeaderICDC, role: RoleHeader, re: reHeaderICDC},
	{name: grammarHeaderInvoiceNo, role: RoleHeader, re: reHeaderInvoiceNo},
	{name: grammarHeaderDate, role: RoleHeader, re: reHeaderDate},
	{name: grammarHeaderMasthead, role: RoleHeader, re: reHeaderMasthead},
	{name: grammarHeaderParty, role: RoleHeader, re: reHeaderParty},
	{name: grammarFooterPage, role: RoleFooter, re: reFooterPage},
	{name: grammarFooterSign, role: RoleFooter, re: reFooterSign},
	{name: grammarFooterRule, role: RoleFooter, re: reFooterRule},
}

// classifiedLine is a document line with its assigned role and, when a
// grammar matched, the submatch slice for capture extraction.
type classifiedLine struct {
	line    Line
	role    LineRole
	grammar *grammar
	match   []string
}

// classifyLine tests a line against the grammar list in order and returns
// the first match.
func classifyLine(text string) (*grammar, []string) {
	for i := range grammars {
		g := &grammars[i]
		if m := g.re.FindStringSubmatch(text); m != nil {
			return g, m
		}
	}
	return nil, nil
}

// group returns the named capture from a submatch slice, or "".
func (g *grammar) group(match []string, name string) string {
	for i, n := range g.re.SubexpNames() {
		if n == name && i < len(match) {
			return match[i]
		}
	}
	return ""
}
