// Package carddb loads and queries the Arena card catalog used to resolve
// grpIds observed in the Player.log into printable card information.
package carddb

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Card holds the catalog record for a single Arena grpId.
type Card struct {
	Name            string   `json:"name"`
	Expansion       string   `json:"expansion"`
	CollectorNumber string   `json:"collector_number"`
	Types           []string `json:"types"`
}

// Catalog maps the decimal string form of a grpId to its card record.
// The string keying mirrors the on-disk JSON cache; lookups by integer id
// go through Lookup.
type Catalog map[string]Card

// Load reads a previously extracted catalog from its JSON cache file.
// A missing or empty catalog is an error: parsing without one silently
// drops every card, which is worse than failing up front.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card database: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse card database: %w", err)
	}

	if len(catalog) == 0 {
		return nil, fmt.Errorf("card database at %s is empty", path)
	}

	return catalog, nil
}

// Lookup returns the card record for an integer grpId.
func (c Catalog) Lookup(grpID int) (Card, bool) {
	card, ok := c[strconv.Itoa(grpID)]
	return card, ok
}

// Has reports whether the grpId exists in the catalog. Tokens and other
// non-card game objects are absent from the catalog by construction.
func (c Catalog) Has(grpID int) bool {
	_, ok := c[strconv.Itoa(grpID)]
	return ok
}

// Name returns the card name for a grpId, or a placeholder when unknown.
func (c Catalog) Name(grpID int) string {
	if card, ok := c.Lookup(grpID); ok {
		return card.Name
	}
	return fmt.Sprintf("Unknown Card (ID: %d)", grpID)
}

// PrimaryType returns the first type tag of the card, or "Other".
func (c Catalog) PrimaryType(grpID int) string {
	card, ok := c.Lookup(grpID)
	if !ok || len(card.Types) == 0 {
		return "Other"
	}
	return card.Types[0]
}

// Save writes the catalog to its JSON cache file.
func (c Catalog) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal card database: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write card database: %w", err)
	}

	return nil
}
