package logreader

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// MatchSummary describes one match found in the log, with enough metadata
// for an interactive picker to present it.
type MatchSummary struct {
	MatchID      string
	StartTime    string // raw log timestamp of the first match-scoped line
	EndTime      string // raw log timestamp of completion, empty if in progress
	OpponentName string
}

// matchIDPattern matches the 36-character hyphenated match identifier.
var matchIDPattern = regexp.MustCompile(`"matchId"\s*:\s*"([0-9a-f-]{36})"`)

// playerNamePattern pulls reserved-player names without a full JSON parse;
// listing scans the whole file and most lines are irrelevant.
var playerNamePattern = regexp.MustCompile(`"playerName"\s*:\s*"([^"]+)"`)

// ListMatches scans the whole log and returns each distinct match in the
// order first encountered. Opponent naming is a heuristic: the second
// reserved player of the match's room state, when present.
func ListMatches(path string) ([]MatchSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var matches []MatchSummary
	index := make(map[string]int)

	scanner := NewLineScanner(file)
	for scanner.Scan() {
		line := strings.ToValidUTF8(scanner.Text(), "")

		m := matchIDPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		matchID := m[1]

		i, seen := index[matchID]
		if !seen {
			matches = append(matches, MatchSummary{
				MatchID:   matchID,
				StartTime: lineTimestamp(line),
			})
			i = len(matches) - 1
			index[matchID] = i
		}

		if matches[i].OpponentName == "" && strings.Contains(line, `"reservedPlayers"`) {
			names := playerNamePattern.FindAllStringSubmatch(line, -1)
			if len(names) >= 2 {
				matches[i].OpponentName = names[1][1]
			}
		}

		if strings.Contains(line, "MatchCompleted") {
			matches[i].EndTime = lineTimestamp(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}

	return matches, nil
}

// lineTimestamp extracts the plain-text prefix before the JSON payload.
func lineTimestamp(line string) string {
	jsonStart := strings.Index(line, "{")
	if jsonStart <= 0 {
		return ""
	}
	ts := strings.TrimSpace(line[:jsonStart])
	// Strip the logger tag the client prefixes every line with.
	ts = strings.TrimPrefix(ts, "[UnityCrossThreadLogger]")
	return strings.TrimSpace(ts)
}
