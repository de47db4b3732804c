package icdc

import (
	"math"

	"theka/internal/port"
)

// Fuzzy-match policy: a catalog row whose size is within the tolerance
// window of the printed size may still match, with confidence decaying
// linearly from 100 at zero difference to the floor at the boundary.
const (
	DefaultSizeToleranceML = 10
	exactConfidence        = 100
	fuzzyConfidenceFloor   = 60
)

// brandKey is the natural key of a catalog row.
type brandKey struct {
	brandNumber  string
	sizeML       int
	packQuantity int
	packType     string
}

// BrandCatalog is an immutable in-memory snapshot of the master-brand
// catalog. It is safe for concurrent use once built; a later catalog
// update produces a new snapshot and never alters matches already made
// against an old one.
type BrandCatalog struct {
	entries []port.MasterBrandEntry
	byKey   map[brandKey]*port.MasterBrandEntry
	byBrand map[string][]*port.MasterBrandEntry
}

// NewBrandCatalog builds a catalog snapshot from loaded entries.
func NewBrandCatalog(entries []port.MasterBrandEntry) *BrandCatalog {
	c := &BrandCatalog{
		entries: make([]port.MasterBrandEntry, len(entries)),
		byKey:   make(map[brandKey]*port.MasterBrandEntry, len(entries)),
		byBrand: make(map[string][]*port.MasterBrandEntry),
	}
	copy(c.entries, entries)
	for i := range c.entries {
		e := &c.entries[i]
		key := brandKey{e.BrandNumber, e.SizeML, e.PackQuantity, e.PackType}
		c.byKey[key] = e
		c.byBrand[e.BrandNumber] = append(c.byBrand[e.BrandNumber], e)
	}
	return c
}

// Len reports the number of catalog rows in the snapshot.
func (c *BrandCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Resolve matches one extracted product line against the snapshot. It is
// a pure function of its inputs: re-resolving against an unchanged
// snapshot always yields the same match.
//
// Exact: the full natural key matches one row. Fuzzy: rows sharing the
// brand number whose size sits within toleranceML of the printed size;
// the nearest size wins, ties go to the highest standard MRP. Neither:
// method none with no catalog row, so the line still persists and can be
// linked manually later.
func (c *BrandCatalog) Resolve(item *ProductLineRaw, toleranceML int) BrandMatch {
	if c.Len() == 0 || item.BrandNumber == "" {
		return BrandMatch{Method: MatchNone}
	}

	key := brandKey{item.BrandNumber, item.SizeML, item.PackQuantity, string(item.PackType)}
	if e, ok := c.byKey[key]; ok {
		return BrandMatch{MasterBrand: e, Confidence: exactConfidence, Method: MatchExact}
	}

	var best *port.MasterBrandEntry
	bestDiff := 0
	for _, e := range c.byBrand[item.BrandNumber] {
		diff := e.SizeML - item.SizeML
		if diff < 0 {
			diff = -diff
		}
		if diff > toleranceML {
			continue
		}
		switch {
		case best == nil, diff < bestDiff:
			best, bestDiff = e, diff
		case diff == bestDiff && e.StandardMRP > best.StandardMRP:
			best = e
		}
	}
	if best == nil {
		return BrandMatch{Method: MatchNone}
	}
	return BrandMatch{MasterBrand: best, Confidence: fuzzyConfidence(bestDiff, toleranceML), Method: MatchFuzzy}
}

// fuzzyConfidence maps a size difference to the 100→floor linear decay.
func fuzzyConfidence(diffML, toleranceML int) int {
	if toleranceML <= 0 {
		return fuzzyConfidenceFloor
	}
	span := float64(exactConfidence - fuzzyConfidenceFloor)
	return int(math.Round(float64(exactConfidence) - float64(diffML)/float64(toleranceML)*span))
}
