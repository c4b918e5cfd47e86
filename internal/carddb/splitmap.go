package carddb

import (
	"strconv"
	"strings"
)

// splitSeparator joins the two face names of a split or dual-faced card in
// the catalog's combined entry, e.g. "Fire /// Ice".
const splitSeparator = " /// "

// SplitMap maps the grpId of a split-card half (or a duplicate printing of
// the combined card) to the canonical grpId of the combined card. Ids with
// no split relationship are absent; Normalize treats absence as identity.
type SplitMap map[int]int

// BuildSplitMap derives the split-card normalization table from the catalog.
// It is pure and runs once per catalog load. Malformed names are ignored.
func BuildSplitMap(catalog Catalog) SplitMap {
	// First pass: one canonical grpId per distinct combined name. Duplicate
	// printings of the same combined card fold into the first id seen;
	// map iteration order is not stable, so pick the smallest id to keep
	// the result deterministic across runs.
	fullCards := make(map[string]int)
	for key, card := range catalog {
		if !strings.Contains(card.Name, splitSeparator) {
			continue
		}
		grpID, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if canonical, ok := fullCards[card.Name]; !ok || grpID < canonical {
			fullCards[card.Name] = grpID
		}
	}

	splitMap := make(SplitMap)

	// Fold the non-canonical printings of each combined card.
	for key, card := range catalog {
		canonical, ok := fullCards[card.Name]
		if !ok {
			continue
		}
		grpID, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if grpID != canonical {
			splitMap[grpID] = canonical
		}
	}

	// Index the face names of every combined card.
	halfNames := make(map[string]int)
	for fullName, canonical := range fullCards {
		for _, part := range strings.Split(fullName, splitSeparator) {
			halfNames[strings.TrimSpace(part)] = canonical
		}
	}

	// Second pass: map each half entry to its combined card.
	for key, card := range catalog {
		canonical, ok := halfNames[card.Name]
		if !ok {
			continue
		}
		grpID, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if grpID != canonical {
			splitMap[grpID] = canonical
		}
	}

	return splitMap
}

// Normalize resolves a grpId to its countable identity: the combined card's
// canonical id for split halves, the id itself for everything else.
func (m SplitMap) Normalize(grpID int) int {
	if canonical, ok := m[grpID]; ok {
		return canonical
	}
	return grpID
}

// IsHalf reports whether the grpId is a non-canonical split-card key. The
// aggregator drops such ids from final tallies as a guard against halves
// slipping past upstream normalization.
func (m SplitMap) IsHalf(grpID int) bool {
	_, ok := m[grpID]
	return ok
}
