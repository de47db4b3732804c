package icdc

import "strconv"

// Category buckets used by the summary line. Duty-paid and duty-free
// lines are IML sub-categories and count against the IML totals.
type summaryBucket int

const (
	bucketIML summaryBucket = iota
	bucketBeer
)

func categoryBucket(c ProductCategory) summaryBucket {
	if c == CategoryBeer {
		return bucketBeer
	}
	return bucketIML
}

// parseSummary reads the captured cases/bottles pairs off a matched
// summary line.
func parseSummary(cl *classifiedLine) *SummaryTotals {
	g := cl.grammar
	num := func(name string) int {
		v, _ := strconv.Atoi(g.group(cl.match, name))
		return v
	}
	return &SummaryTotals{
		IML:        CategoryCount{Cases: num("imlcases"), Bottles: num("imlbottles")},
		Beer:       CategoryCount{Cases: num("beercases"), Bottles: num("beerbottles")},
		Grand:      CategoryCount{Cases: num("grandcases"), Bottles: num("grandbottles")},
		SourceLine: cl.line.Number,
	}
}

// bucketTarget returns the summary pair for one bucket.
func (s *SummaryTotals) bucketTarget(b summaryBucket) CategoryCount {
	if b == bucketBeer {
		return s.Beer
	}
	return s.IML
}

// solveBucket searches for an assignment of one split candidate per line
// whose cases and bottles sums hit target exactly. Candidate lists arrive
// sorted by score, so the first assignment found is also the
// best-scoring one. The count of sum-exact assignments is returned
// alongside; counting stops at 2 because only uniqueness matters.
func solveBucket(candidates [][]splitCandidate, target CategoryCount) ([]splitCandidate, int) {
	chosen := make([]splitCandidate, len(candidates))
	found := make([]splitCandidate, len(candidates))
	count := 0

	var walk func(i, sumCases, sumBottles int)
	walk = func(i, sumCases, sumBottles int) {
		if count >= 2 || sumCases > target.Cases || sumBottles > target.Bottles {
			return
		}
		if i == len(candidates) {
			if sumCases == target.Cases && sumBottles == target.Bottles {
				if count == 0 {
					copy(found, chosen)
				}
				count++
			}
			return
		}
		for _, cand := range candidates[i] {
			chosen[i] = cand
			walk(i+1, sumCases+cand.cases, sumBottles+cand.bottles)
			if count >= 2 {
				return
			}
		}
	}
	walk(0, 0, 0)

	if count != 1 {
		return nil, count
	}
	return found, 1
}

// validateSummary compares the resolved items' category sums against the
// printed summary. Returns nil when the document carries no summary line.
func validateSummary(expected *SummaryTotals, items []ResolvedLineItem) *SummaryValidation {
	if expected == nil {
		return nil
	}
	var actual SummaryTotals
	for i := range items {
		it := &items[i]
		if categoryBucket(it.ProductCategory) == bucketBeer {
			actual.Beer.Cases += it.Cases
			actual.Beer.Bottles += it.Bottles
		} else {
			actual.IML.Cases += it.Cases
			actual.IML.Bottles += it.Bottles
		}
		actual.Grand.Cases += it.Cases
		actual.Grand.Bottles += it.Bottles
	}
	matched := actual.IML == expected.IML &&
		actual.Beer == expected.Beer &&
		actual.Grand == expected.Grand
	return &SummaryValidation{Matched: matched, Expected: *expected, Actual: actual}
}
