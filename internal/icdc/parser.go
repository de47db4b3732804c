// Package icdc turns the raw text of government excise invoices (ICDC
// documents) into validated, structured line items and financial totals.
// The pipeline runs strictly forward — classify lines, extract product
// fields, disambiguate concatenated cases/bottles tokens, extract and
// cross-validate financials, resolve brands against a catalog snapshot —
// with no I/O and no state shared between invocations.
package icdc

import "fmt"

// parserOptions collects per-call tuning.
type parserOptions struct {
	sizeToleranceML int
	trace           bool
}

// Option customizes a single parse call.
type Option func(*parserOptions)

// WithSizeTolerance overrides the fuzzy brand-match size window, in ml.
func WithSizeTolerance(ml int) Option {
	return func(o *parserOptions) { o.sizeToleranceML = ml }
}

// WithTrace attaches the per-line classification trace to the result, for
// the diagnostics endpoint and the offline CLI.
func WithTrace() Option {
	return func(o *parserOptions) { o.trace = true }
}

// parseContext threads per-document scan state through the pipeline
// stages: the classified lines, accumulated warnings, and the optional
// diagnostic trace.
type parseContext struct {
	doc      *RawDocument
	opts     parserOptions
	lines    []classifiedLine
	warnings []string
	trace    []LineTrace
}

func (pc *parseContext) warnf(format string, args ...any) {
	pc.warnings = append(pc.warnings, fmt.Sprintf(format, args...))
}

// classify tags every document line with its structural role. Unmatched
// lines stay in the trace as unclassified but are dropped from structured
// output.
func (pc *parseContext) classify() {
	pc.lines = make([]classifiedLine, 0, len(pc.doc.Lines))
	for _, ln := range pc.doc.Lines {
		cl := classifiedLine{line: ln, role: RoleUnclassified}
		if g, m := classifyLine(ln.Text); g != nil {
			cl.role, cl.grammar, cl.match = g.role, g, m
		}
		pc.lines = append(pc.lines, cl)
		if pc.opts.trace {
			t := LineTrace{Line: ln.Number, Text: ln.Text, Role: cl.role}
			if cl.grammar != nil {
				t.Grammar = cl.grammar.name
			}
			pc.trace = append(pc.trace, t)
		}
	}
}

// header pulls the document identity fields out of the classified header
// lines. First occurrence wins.
func (pc *parseContext) header(res *ParseResult) {
	for i := range pc.lines {
		cl := &pc.lines[i]
		if cl.role != RoleHeader {
			continue
		}
		switch cl.grammar.name {
		case grammarHeaderICDC:
			if res.ICDCNumber == "" {
				res.ICDCNumber = cl.grammar.group(cl.match, "icdc")
			}
		case grammarHeaderInvoiceNo:
			if res.InvoiceNumber == "" {
				res.InvoiceNumber = cl.grammar.group(cl.match, "invoiceno")
			}
		case grammarHeaderDate:
			if res.InvoiceDate == "" {
				res.InvoiceDate = cl.grammar.group(cl.match, "date")
			}
		}
	}
}

// summary returns the totals from the first summary-classified line, or
// nil when the template carries none.
func (pc *parseContext) summary() *SummaryTotals {
	for i := range pc.lines {
		cl := &pc.lines[i]
		if cl.role != RoleSummary {
			continue
		}
		s := parseSummary(cl)
		if s.IML.Cases+s.Beer.Cases != s.Grand.Cases || s.IML.Bottles+s.Beer.Bottles != s.Grand.Bottles {
			pc.warnf("line %d: summary grand total disagrees with its category totals", cl.line.Number)
		}
		return s
	}
	return nil
}

// resolveQuantities turns the raw product lines into resolved items. When
// the document prints a summary, each category bucket is first solved as
// a cross-line constraint: if exactly one choice of splits reproduces the
// printed sums, that assignment wins at full confidence. Otherwise every
// line falls back to its own best local split.
func resolveQuantities(raws []ProductLineRaw, summary *SummaryTotals, pc *parseContext) []ResolvedLineItem {
	items := make([]ResolvedLineItem, len(raws))
	for i := range raws {
		items[i].ProductLineRaw = raws[i]
	}

	for _, bucket := range []summaryBucket{bucketIML, bucketBeer} {
		var idx []int
		for i := range items {
			if categoryBucket(items[i].ProductCategory) == bucket {
				idx = append(idx, i)
			}
		}
		if len(idx) == 0 {
			continue
		}

		candidates := make([][]splitCandidate, len(idx))
		everyLineHasCandidates := true
		for j, i := range idx {
			candidates[j] = enumerateSplits(items[i].QuantityToken, items[i].PackQuantity)
			if len(candidates[j]) == 0 {
				everyLineHasCandidates = false
			}
		}

		if summary != nil && everyLineHasCandidates {
			assignment, n := solveBucket(candidates, summary.bucketTarget(bucket))
			if n == 1 {
				for j, i := range idx {
					it := &items[i]
					it.Cases, it.Bottles = assignment[j].cases, assignment[j].bottles
					it.TotalUnits = it.Cases*it.PackQuantity + it.Bottles
					it.ResolutionMethod = MethodSummaryExact
					it.ResolutionConfidence = summaryExactConfidence
				}
				continue
			}
			pc.warnf("quantity: %s summary cross-check inconclusive (%d consistent assignments), using per-line splits",
				bucketName(bucket), n)
		}

		for j, i := range idx {
			it := &items[i]
			if len(candidates[j]) == 0 {
				it.Cases, it.Bottles = 0, 0
				it.ResolutionMethod = MethodFallback
				it.ResolutionConfidence = fallbackConfidence
				it.NeedsReview = true
				pc.warnf("line %d: no physical split of quantity token %q for pack quantity %d, flagged for review",
					it.SourceLine, it.QuantityToken, it.PackQuantity)
			} else {
				best := candidates[j][0]
				it.Cases, it.Bottles = best.cases, best.bottles
				it.ResolutionMethod = MethodDefaultSplit
				it.ResolutionConfidence = defaultSplitConfidence
			}
			it.TotalUnits = it.Cases*it.PackQuantity + it.Bottles
		}
	}
	return items
}

func bucketName(b summaryBucket) string {
	if b == bucketBeer {
		return "beer"
	}
	return "iml"
}

// ParseInvoice runs the full extraction pipeline over one document
// against a catalog snapshot. It is synchronous and deterministic:
// identical text and snapshot always produce an identical result. The
// only fatal condition is a document with no recognizable product lines;
// everything else degrades to warnings on a successful result.
func ParseInvoice(doc *RawDocument, catalog *BrandCatalog, opts ...Option) *ParseResult {
	o := parserOptions{sizeToleranceML: DefaultSizeToleranceML}
	for _, opt := range opts {
		opt(&o)
	}
	pc := &parseContext{doc: doc, opts: o}
	res := &ParseResult{}

	pc.classify()
	pc.header(res)
	res.Financial = extractFinancial(pc.lines)
	checkDerivedTotal(&res.Financial, pc)

	var raws []ProductLineRaw
	for i := range pc.lines {
		if pc.lines[i].role == RoleProduct {
			raws = append(raws, extractProduct(&pc.lines[i], pc))
		}
	}
	if len(raws) == 0 {
		pc.warnf("document: no product lines recognized across %d lines", len(pc.doc.Lines))
		res.Warnings = pc.warnings
		res.Trace = pc.trace
		return res
	}

	summary := pc.summary()
	items := resolveQuantities(raws, summary, pc)
	res.SummaryValidation = validateSummary(summary, items)
	if res.SummaryValidation != nil && !res.SummaryValidation.Matched {
		pc.warnf("summary: resolved quantities do not reproduce the printed totals")
	}

	for i := range items {
		items[i].Brand = catalog.Resolve(&items[i].ProductLineRaw, o.sizeToleranceML)
	}

	res.Items = items
	res.Success = true
	res.Warnings = pc.warnings
	res.Trace = pc.trace
	return res
}
