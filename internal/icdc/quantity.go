package icdc

import (
	"sort"
	"strconv"
	"strings"
)

// Confidence attached to each resolution method. A confidence of 1.0 is
// only ever assigned after the category sum was cross-checked against the
// document's printed summary.
const (
	summaryExactConfidence = 1.0
	defaultSplitConfidence = 0.6
	fallbackConfidence     = 0.0
)

// Split scoring weights. The dominant historical encoding prints bottles
// as a 2-digit suffix, so k = L-2 carries the baseline preference; a
// 1-digit suffix is conventional only on 3-digit tokens; a trailing "00"
// almost always means "00 bottles" tacked onto a longer cases run, which
// pulls the split to k = L-1. These weights are policy, tuned against
// real invoice fixtures, not structural constants.
const (
	scoreTwoDigitSuffix   = 3.0
	scoreShortSuffix      = 3.5
	scoreOneDigitSuffix   = 2.0
	scoreDistanceBase     = 1.0
	scoreDistanceStep     = 0.1
	scoreTrailingZeroBias = 5.0
)

// splitCandidate is one physically possible reading of a quantity token.
type splitCandidate struct {
	cases   int
	bottles int
	score   float64
	split   int
}

// splitScore rates the split at digit index k of token by how close it
// sits to the conventional encodings.
func splitScore(token string, k int) float64 {
	length := len(token)
	var score float64
	switch {
	case k == length-2:
		score = scoreTwoDigitSuffix
	case k == length-1 && length == 3:
		score = scoreShortSuffix
	case k == length-1:
		score = scoreOneDigitSuffix
	default:
		score = scoreDistanceBase - scoreDistanceStep*float64(length-2-k)
	}
	if k == length-1 && strings.HasSuffix(token, "00") {
		score += scoreTrailingZeroBias
	}
	return score
}

// enumerateSplits lists every reading of the token that survives the
// physical filter (bottles must fit inside one case), highest score
// first. Duplicate (cases, bottles) pairs produced by distinct split
// points collapse to the best-scoring one. A single-digit token has no
// split point: it is read as loose bottles when it fits in a case, as
// whole cases otherwise.
func enumerateSplits(token string, packQuantity int) []splitCandidate {
	length := len(token)
	if length == 0 || packQuantity <= 0 {
		return nil
	}
	if length == 1 {
		value, _ := strconv.Atoi(token)
		if value < packQuantity {
			return []splitCandidate{{cases: 0, bottles: value, score: scoreDistanceBase, split: 0}}
		}
		return []splitCandidate{{cases: value, bottles: 0, score: scoreDistanceBase, split: length}}
	}

	candidates := make([]splitCandidate, 0, length-1)
	for k := 1; k < length; k++ {
		cases, _ := strconv.Atoi(token[:k])
		bottles, _ := strconv.Atoi(token[k:])
		if bottles >= packQuantity {
			continue
		}
		cand := splitCandidate{cases: cases, bottles: bottles, score: splitScore(token, k), split: k}

		dup := -1
		for i := range candidates {
			if candidates[i].cases == cand.cases && candidates[i].bottles == cand.bottles {
				dup = i
				break
			}
		}
		if dup >= 0 {
			if cand.score > candidates[dup].score {
				candidates[dup] = cand
			}
			continue
		}
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].split < candidates[j].split
	})
	return candidates
}

// resolveLocal picks the best reading of one token in isolation, with no
// summary to cross-check against.
func resolveLocal(token string, packQuantity int) (cases, bottles int, method ResolutionMethod, confidence float64) {
	candidates := enumerateSplits(token, packQuantity)
	if len(candidates) == 0 {
		return 0, 0, MethodFallback, fallbackConfidence
	}
	best := candidates[0]
	return best.cases, best.bottles, MethodDefaultSplit, defaultSplitConfidence
}
