package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ramonehamilton/mtga-match-parser/internal/config"
	"github.com/ramonehamilton/mtga-match-parser/internal/logreader"
)

// runInteractive shows a numbered match picker and parses the selection.
// Loops until the user quits.
func runInteractive(cfg *config.Config) error {
	logPath, err := resolveLogPath(cfg)
	if err != nil {
		return err
	}

	ok, err := checkDetailedLogging(logPath)
	if err != nil || !ok {
		return err
	}

	matches, err := logreader.ListMatches(logPath)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return errors.New("no matches found in the log")
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	for {
		printMatchMenu(matches)

		fmt.Printf("Select match [1-%d, Enter for latest, q to quit]: ", len(matches))
		input, err := reader.ReadString('\n')
		if err != nil {
			// Stdin closed; behave like quit
			fmt.Println()
			return nil
		}
		input = strings.TrimSpace(input)

		if input == "q" || input == "quit" {
			return nil
		}

		// Default to the most recent match
		index := len(matches)
		if input != "" {
			index, err = strconv.Atoi(input)
			if err != nil || index < 1 || index > len(matches) {
				fmt.Printf("Invalid selection: %s\n\n", input)
				continue
			}
		}

		selected := matches[index-1]
		fmt.Println()
		if selected.OpponentName != "" {
			fmt.Printf("Selected match vs %s\n", selected.OpponentName)
		}
		fmt.Printf("Match ID: %s\n", selected.MatchID)

		result, err := parseMatch(catalog, logPath, selected.MatchID)
		if err != nil {
			fmt.Printf("Failed to parse match: %v\n\n", err)
			continue
		}
		if err := displayAndArchive(cfg, catalog, result); err != nil {
			return err
		}

		fmt.Println()
		fmt.Print("Press Enter to return to match selection...")
		if _, err := reader.ReadString('\n'); err != nil {
			fmt.Println()
			return nil
		}
		fmt.Println()
	}
}

// printMatchMenu prints the numbered match table, oldest first so the
// latest match sits next to the prompt.
func printMatchMenu(matches []logreader.MatchSummary) {
	fmt.Println("MTG Arena Match Log Parser")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("  %-4s %-20s %-20s %-20s\n", "#", "Start Time", "End Time", "Opponent")
	fmt.Println(strings.Repeat("=", 70))

	for i, match := range matches {
		start := match.StartTime
		if start == "" {
			start = "Unknown"
		}
		end := match.EndTime
		if end == "" {
			end = "In Progress"
		}
		opponent := match.OpponentName
		if opponent == "" {
			opponent = "Unknown"
		}
		fmt.Printf("  %-4d %-20s %-20s %-20s\n", i+1, start, end, opponent)
	}
	fmt.Println(strings.Repeat("=", 70))
}
