// Package monitor follows Player.log and reports match activity live.
package monitor

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/mtga-match-parser/internal/carddb"
	"github.com/ramonehamilton/mtga-match-parser/internal/logreader"
)

var (
	matchIDPattern   = regexp.MustCompile(`matchId ([a-f0-9-]{36})`)
	grpIDPattern     = regexp.MustCompile(`"grpId"\s*:\s*(\d+)`)
	ownerSeatPattern = regexp.MustCompile(`"ownerSeatId"\s*:\s*(\d+)`)
	cdcPattern       = regexp.MustCompile(`Card "CDC #(\d+)"`)
	statePattern     = regexp.MustCompile(`"old":"([^"]+)","new":"([^"]+)"`)
)

// Reported state transitions. Other states are noise.
var reportedStates = map[string]bool{
	"Playing":        true,
	"MatchCompleted": true,
	"Disconnected":   true,
}

// Config holds monitor settings.
type Config struct {
	// LogPath is the Player.log to follow.
	LogPath string

	// Catalog resolves grpIds to card names. May be empty; reveals are
	// then reported by id.
	Catalog carddb.Catalog

	// Out receives the monitor output. Defaults to io.Discard when nil.
	Out io.Writer

	// Interval is the polling fallback cadence for the follower.
	Interval time.Duration

	// FromStart replays the existing log before waiting for new lines.
	FromStart bool
}

// Monitor watches a Player.log and announces card reveals as they happen.
type Monitor struct {
	catalog carddb.Catalog
	out     io.Writer

	follower *logreader.Follower

	currentMatch string
	seenCards    map[string]bool

	// CDC instance references arrive in bursts with basic logging; keep
	// them from flooding the terminal.
	cdcLimiter *rate.Limiter
}

// New creates a monitor for the given configuration.
func New(config Config) (*Monitor, error) {
	if config.LogPath == "" {
		return nil, fmt.Errorf("log path cannot be empty")
	}

	out := config.Out
	if out == nil {
		out = io.Discard
	}

	follower, err := logreader.NewFollower(logreader.FollowerConfig{
		Path:      config.LogPath,
		Interval:  config.Interval,
		FromStart: config.FromStart,
	})
	if err != nil {
		return nil, fmt.Errorf("create log follower: %w", err)
	}

	return &Monitor{
		catalog:    config.Catalog,
		out:        out,
		follower:   follower,
		seenCards:  make(map[string]bool),
		cdcLimiter: rate.NewLimiter(rate.Limit(5), 10),
	}, nil
}

// Run follows the log until the context is canceled.
func (m *Monitor) Run(ctx context.Context) error {
	fmt.Fprintln(m.out, "MTG Arena Real-Time Match Monitor")
	fmt.Fprintln(m.out, strings.Repeat("=", 60))

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.follower.Run(ctx)
	}()

	for line := range m.follower.Lines() {
		m.processLine(line)
	}

	err := <-errCh
	if err != nil && ctx.Err() != nil {
		// Cancellation is the normal way to stop
		return nil
	}
	return err
}

// processLine inspects one log line for match activity.
func (m *Monitor) processLine(line string) {
	if match := matchIDPattern.FindStringSubmatch(line); match != nil {
		m.handleNewMatch(match[1])
	}

	if m.currentMatch == "" {
		return
	}

	switch {
	case strings.Contains(line, "grpId"):
		grpMatches := grpIDPattern.FindAllStringSubmatch(line, -1)
		ownerMatches := ownerSeatPattern.FindAllStringSubmatch(line, -1)
		for i := 0; i < len(grpMatches) && i < len(ownerMatches); i++ {
			grpID, err := strconv.Atoi(grpMatches[i][1])
			if err != nil {
				continue
			}
			owner, err := strconv.Atoi(ownerMatches[i][1])
			if err != nil {
				continue
			}
			m.handleCardReveal(grpID, owner)
		}

	case strings.Contains(line, "CDC #"):
		if match := cdcPattern.FindStringSubmatch(line); match != nil {
			m.handleCDCReference(match[1])
		}
	}

	if strings.Contains(line, "STATE CHANGED") {
		if match := statePattern.FindStringSubmatch(line); match != nil {
			m.handleStateChange(match[1], match[2])
		}
	}
}

// handleNewMatch resets per-match state when a different match appears.
func (m *Monitor) handleNewMatch(matchID string) {
	if m.currentMatch == matchID {
		return
	}
	m.currentMatch = matchID
	m.seenCards = make(map[string]bool)

	fmt.Fprintf(m.out, "\nNew Match Started: %s...\n", matchID[:8])
	fmt.Fprintln(m.out, strings.Repeat("-", 60))
}

// handleCardReveal announces a card the first time it is seen this match.
func (m *Monitor) handleCardReveal(grpID, owner int) {
	key := fmt.Sprintf("%d_%d", owner, grpID)
	if m.seenCards[key] {
		return
	}
	m.seenCards[key] = true

	ownerName := "You"
	if owner == 2 {
		ownerName = "Opponent"
	}

	fmt.Fprintf(m.out, "  %s: %s\n", ownerName, m.catalog.Name(grpID))
}

// handleCDCReference reports an instance-id-only reveal from basic logs.
func (m *Monitor) handleCDCReference(cdcID string) {
	if !m.cdcLimiter.Allow() {
		return
	}
	fmt.Fprintf(m.out, "  CDC #%s (instance ID)\n", cdcID)
}

// handleStateChange reports significant match state transitions.
func (m *Monitor) handleStateChange(oldState, newState string) {
	if !reportedStates[newState] {
		return
	}

	fmt.Fprintf(m.out, "  Match state: %s -> %s\n", oldState, newState)

	if newState == "MatchCompleted" {
		fmt.Fprintln(m.out, "\nMatch Completed")
		fmt.Fprintf(m.out, "   Total cards tracked: %d\n", len(m.seenCards))
		fmt.Fprintln(m.out, strings.Repeat("-", 60))
	}
}
