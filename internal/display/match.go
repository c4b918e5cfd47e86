// Package display renders parsed match results in a readable format.
package display

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ramonehamilton/mtga-match-parser/internal/carddb"
	"github.com/ramonehamilton/mtga-match-parser/internal/matchparser"
)

// Type display order with plural headings.
var typeOrder = []struct {
	name   string
	plural string
}{
	{"Creature", "Creatures"},
	{"Planeswalker", "Planeswalkers"},
	{"Instant", "Instants"},
	{"Sorcery", "Sorceries"},
	{"Artifact", "Artifacts"},
	{"Enchantment", "Enchantments"},
	{"Land", "Lands"},
	{"Other", "Other"},
}

// cardEntry is a named card with its revealed count.
type cardEntry struct {
	Name  string
	Count int
}

// MatchDisplayer formats match results for terminal output.
type MatchDisplayer struct {
	catalog carddb.Catalog
	out     io.Writer
}

// NewMatchDisplayer creates a displayer writing to out.
func NewMatchDisplayer(catalog carddb.Catalog, out io.Writer) *MatchDisplayer {
	return &MatchDisplayer{
		catalog: catalog,
		out:     out,
	}
}

// DisplayResult prints both sides of a parsed match.
func (d *MatchDisplayer) DisplayResult(result *matchparser.Result) {
	d.displayPlayerDeck(result)
	d.displayOpponentDeck(result)
}

// displayPlayerDeck prints the player's deck section.
func (d *MatchDisplayer) displayPlayerDeck(result *matchparser.Result) {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, strings.Repeat("=", 60))
	fmt.Fprintln(d.out, "YOUR DECK")
	fmt.Fprintln(d.out, strings.Repeat("=", 60))
	fmt.Fprintln(d.out)

	switch {
	case len(result.PlayerDeck) > 0:
		totalCards := sumCounts(result.PlayerDeck)
		if result.PlayerCommander != 0 {
			// Commander sits outside the main deck list
			totalCards++
		}
		revealedCount := sumCounts(result.PlayerCards)

		fmt.Fprintln(d.out, "REVEALED CARDS:")
		if len(result.PlayerCards) > 0 {
			d.printGrouped(result.PlayerCards)
		} else {
			fmt.Fprintln(d.out, "  (None)")
		}

		fmt.Fprintln(d.out)
		fmt.Fprintf(d.out, "Deck: %d cards total | %d revealed | %d unrevealed\n",
			totalCards, revealedCount, totalCards-revealedCount)

		if result.PlayerCommander != 0 {
			fmt.Fprintf(d.out, "Commander: %s\n", d.catalog.Name(result.PlayerCommander))
		}

	case len(result.PlayerCards) > 0:
		d.printFlat(result.PlayerCards)
		fmt.Fprintln(d.out)
		fmt.Fprintf(d.out, "Total: %d unique cards revealed\n", len(result.PlayerCards))

	default:
		fmt.Fprintln(d.out, "No cards found")
	}
}

// displayOpponentDeck prints the opponent's deck section.
func (d *MatchDisplayer) displayOpponentDeck(result *matchparser.Result) {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, strings.Repeat("=", 60))
	if result.OpponentName != "" {
		fmt.Fprintf(d.out, "OPPONENT'S DECK (%s)\n", result.OpponentName)
	} else {
		fmt.Fprintln(d.out, "OPPONENT'S DECK")
	}
	fmt.Fprintln(d.out, strings.Repeat("=", 60))
	fmt.Fprintln(d.out)

	if len(result.OpponentCards) > 0 {
		fmt.Fprintln(d.out, "REVEALED CARDS:")
		d.printGrouped(result.OpponentCards)

		fmt.Fprintln(d.out)
		fmt.Fprintf(d.out, "Revealed: %d unique cards | %d total cards\n",
			len(result.OpponentCards), sumCounts(result.OpponentCards))

		if result.OpponentCommander != 0 {
			fmt.Fprintf(d.out, "Commander detected: %s\n", d.catalog.Name(result.OpponentCommander))
		}
	} else {
		if result.OpponentDeckSize > 0 {
			fmt.Fprintf(d.out, "No cards revealed (opponent has %d cards in deck)\n", result.OpponentDeckSize)
		} else {
			fmt.Fprintln(d.out, "No opponent cards found")
		}
	}

	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, strings.Repeat("=", 60))
}

// printGrouped prints cards grouped by primary type, alphabetical inside
// each group.
func (d *MatchDisplayer) printGrouped(cards map[int]int) {
	groups := d.groupByType(cards)

	for _, entry := range typeOrder {
		group := groups[entry.name]
		if len(group) == 0 {
			continue
		}

		totalInGroup := 0
		for _, c := range group {
			totalInGroup += c.Count
		}

		fmt.Fprintf(d.out, "\n  %s (%d):\n", entry.plural, totalInGroup)
		for _, c := range group {
			if c.Count > 1 {
				fmt.Fprintf(d.out, "    - %s (x%d)\n", c.Name, c.Count)
			} else {
				fmt.Fprintf(d.out, "    - %s\n", c.Name)
			}
		}
	}
}

// printFlat prints a numbered alphabetical card list.
func (d *MatchDisplayer) printFlat(cards map[int]int) {
	list := d.sortedEntries(cards)
	for i, c := range list {
		if c.Count > 1 {
			fmt.Fprintf(d.out, "  %2d. %s (x%d)\n", i+1, c.Name, c.Count)
		} else {
			fmt.Fprintf(d.out, "  %2d. %s\n", i+1, c.Name)
		}
	}
}

// groupByType buckets cards by their primary type. Cards with an
// unrecognized primary type land in Other.
func (d *MatchDisplayer) groupByType(cards map[int]int) map[string][]cardEntry {
	known := make(map[string]bool, len(typeOrder))
	for _, entry := range typeOrder {
		known[entry.name] = true
	}

	groups := make(map[string][]cardEntry)
	for grpID, count := range cards {
		card, ok := d.catalog.Lookup(grpID)
		if !ok {
			continue
		}
		primary := d.catalog.PrimaryType(grpID)
		if !known[primary] {
			primary = "Other"
		}
		groups[primary] = append(groups[primary], cardEntry{Name: card.Name, Count: count})
	}

	for name := range groups {
		sort.Slice(groups[name], func(i, j int) bool {
			return groups[name][i].Name < groups[name][j].Name
		})
	}

	return groups
}

// sortedEntries resolves names and sorts alphabetically.
func (d *MatchDisplayer) sortedEntries(cards map[int]int) []cardEntry {
	list := make([]cardEntry, 0, len(cards))
	for grpID, count := range cards {
		card, ok := d.catalog.Lookup(grpID)
		if !ok {
			continue
		}
		list = append(list, cardEntry{Name: card.Name, Count: count})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// sumCounts totals the values of a card count map.
func sumCounts(cards map[int]int) int {
	total := 0
	for _, count := range cards {
		total += count
	}
	return total
}
