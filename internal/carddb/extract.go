package carddb

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// cardTypeNames decodes the numeric type ids stored in the Arena card
// database. Ids not present here are skipped.
var cardTypeNames = map[int]string{
	1:  "Artifact",
	2:  "Creature",
	3:  "Enchantment",
	4:  "Instant",
	5:  "Land",
	8:  "Planeswalker",
	10: "Sorcery",
}

// FindDatabase locates the Raw_CardDatabase file inside the Arena data
// directory. Arena rotates the file name with each data patch, so the
// directory is globbed rather than addressed directly.
func FindDatabase(dir string) (string, error) {
	pattern := filepath.Join(dir, "Raw_CardDatabase_*.mtga")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("glob card database: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no card database found matching %s", pattern)
	}
	return matches[0], nil
}

// Extract reads every non-token card from the Arena SQLite database and
// builds a Catalog from it.
func Extract(dbPath string) (Catalog, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open card database: %w", err)
	}
	defer conn.Close()

	rows, err := conn.Query(`
		SELECT c.GrpId, l.Loc, c.ExpansionCode, c.CollectorNumber, c.Types
		FROM Cards c
		JOIN Localizations_enUS l ON c.TitleId = l.LocId
		WHERE c.IsToken = 0
		ORDER BY c.GrpId`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	catalog := make(Catalog)

	for rows.Next() {
		var (
			grpID           int
			name            string
			expansion       sql.NullString
			collectorNumber sql.NullString
			types           sql.NullString
		)
		if err := rows.Scan(&grpID, &name, &expansion, &collectorNumber, &types); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}

		catalog[strconv.Itoa(grpID)] = Card{
			Name:            name,
			Expansion:       expansion.String,
			CollectorNumber: collectorNumber.String,
			Types:           decodeTypes(types.String),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card rows: %w", err)
	}

	return catalog, nil
}

// decodeTypes converts the comma-separated numeric type column into type
// tag strings, preserving order.
func decodeTypes(raw string) []string {
	if raw == "" {
		return nil
	}

	var types []string
	for _, field := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			continue
		}
		if name, ok := cardTypeNames[id]; ok {
			types = append(types, name)
		}
	}
	return types
}
