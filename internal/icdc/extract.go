package icdc

import (
	"strconv"
	"strings"
)

// categorySynonyms maps printed category tokens, squashed to bare
// uppercase letters, to the canonical enum. FL ("foreign liquor") is the
// pre-2016 spelling of IML.
var categorySynonyms = map[string]ProductCategory{
	"BEER":     CategoryBeer,
	"IML":      CategoryIML,
	"FL":       CategoryIML,
	"DUTYPAID": CategoryDutyPaid,
	"DP":       CategoryDutyPaid,
	"DUTYFREE": CategoryDutyFree,
	"DF":       CategoryDutyFree,
}

// normalizeCategory resolves a printed category token to the canonical
// enum. Unrecognized tokens report ok=false; the caller defaults to IML.
func normalizeCategory(token string) (ProductCategory, bool) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '_':
			return -1
		}
		return r
	}, strings.ToUpper(token))
	cat, ok := categorySynonyms[key]
	return cat, ok
}

// normalizePackType resolves a printed pack-type letter. Unrecognized
// letters report ok=false; the caller defaults to glass.
func normalizePackType(token string) (PackType, bool) {
	switch pt := PackType(strings.ToUpper(token)); pt {
	case PackTypeGlass, PackTypeCan, PackTypePlastic, PackTypeBox:
		return pt, true
	}
	return PackTypeGlass, false
}

// extractProduct pulls the named captures of a matched product grammar
// into a ProductLineRaw. No interpretation happens here beyond enum
// normalization; the quantity token stays raw.
func extractProduct(cl *classifiedLine, pc *parseContext) ProductLineRaw {
	g := cl.grammar
	serial, _ := strconv.Atoi(g.group(cl.match, "serial"))
	packQty, _ := strconv.Atoi(g.group(cl.match, "packqty"))
	size, _ := strconv.Atoi(g.group(cl.match, "size"))

	catToken := g.group(cl.match, "category")
	category, ok := normalizeCategory(catToken)
	if !ok {
		pc.warnf("line %d: unrecognized category %q, defaulting to IML", cl.line.Number, catToken)
		category = CategoryIML
	}

	ptToken := g.group(cl.match, "packtype")
	packType, ok := normalizePackType(ptToken)
	if !ok {
		pc.warnf("line %d: unrecognized pack type %q, defaulting to G", cl.line.Number, ptToken)
	}

	if packQty == 0 {
		pc.warnf("line %d: pack quantity is zero, quantity resolution will fall back", cl.line.Number)
	}

	return ProductLineRaw{
		Serial:          serial,
		BrandNumber:     g.group(cl.match, "brand"),
		ProductName:     strings.ToUpper(g.group(cl.match, "name")),
		ProductCategory: category,
		PackType:        packType,
		PackQuantity:    packQty,
		SizeML:          size,
		QuantityToken:   g.group(cl.match, "qty"),
		SourceLine:      cl.line.Number,
	}
}
