// Package matchparser reconstructs the cards revealed to each player during
// one Arena match by scanning the Player.log diagnostic file.
//
// The log is line oriented but not a clean event stream: lines are nominally
// JSON yet frequently truncated, object instance ids are retired and reminted
// mid-match, and dual-faced cards are reported under per-face grpIds. The
// parser performs one bounded forward scan over the lines belonging to the
// requested match, feeding each line through cheap substring classification
// and then only the extraction routines worth attempting, and reduces the
// accumulated state to per-side revealed-card counts at the end.
package matchparser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ramonehamilton/mtga-match-parser/internal/carddb"
)

// Arena zone ids. Zones 28-30 are shared; the rest are seat-scoped.
const (
	ZoneBattlefield    = 28
	ZoneExile          = 29
	ZoneLibrary        = 30
	ZoneSeat1Hand      = 31
	ZoneSeat1Command   = 32
	ZoneSeat1Graveyard = 33
	ZoneSeat2Command   = 34
	ZoneSeat2Hand      = 35
	ZoneSeat2Graveyard = 37
)

// instanceLocation is the most recently observed position of one object
// instance. Later observations overwrite earlier ones; log order is
// temporal order.
type instanceLocation struct {
	CardID     int
	Zone       int
	Owner      int
	Visibility string
}

// Parser interprets the portion of a Player.log belonging to one match.
// A Parser is good for a single Parse call; the catalog and split map it is
// constructed with are shared read-only across parsers.
type Parser struct {
	logPath  string
	matchID  string
	catalog  carddb.Catalog
	splitMap carddb.SplitMap

	playerSeat     int
	opponentSeat   int
	seatConfidence SeatConfidence
	opponentName   string

	instanceToCard map[int]int
	idChanges      map[int]int
	locations      map[int]instanceLocation
	playerHand     []int
	opponentHand   []int
	playerDeck     map[int]int

	opponentDeckSize  int
	playerCommander   int
	opponentCommander int
}

// Result is the outcome of one parse: the two deduplicated revealed-card
// mappings plus the auxiliary match facts. Card ids are Arena grpIds,
// normalized so a split card's two halves count as one identity.
type Result struct {
	MatchID        string
	PlayerSeat     int
	OpponentSeat   int
	SeatConfidence SeatConfidence
	OpponentName   string // empty if never observed

	PlayerCards   map[int]int // grpId -> copies revealed, player side
	OpponentCards map[int]int // grpId -> copies revealed, opponent side

	PlayerDeck        map[int]int // full known starting deck, may be empty
	OpponentDeckSize  int         // 0 if never observed
	PlayerCommander   int         // 0 if none
	OpponentCommander int         // 0 if none
}

// New creates a parser for one match. The catalog must be fully loaded;
// parsing with an empty catalog would silently drop every card, so that is
// rejected here rather than discovered as an empty result. splitMap may be
// nil, in which case it is derived from the catalog.
func New(logPath, matchID string, catalog carddb.Catalog, splitMap carddb.SplitMap) (*Parser, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("card catalog is empty; load it before parsing")
	}
	if matchID == "" {
		return nil, fmt.Errorf("match id cannot be empty")
	}
	if splitMap == nil {
		splitMap = carddb.BuildSplitMap(catalog)
	}

	return &Parser{
		logPath:        logPath,
		matchID:        matchID,
		catalog:        catalog,
		splitMap:       splitMap,
		instanceToCard: make(map[int]int),
		idChanges:      make(map[int]int),
		locations:      make(map[int]instanceLocation),
		playerDeck:     make(map[int]int),
	}, nil
}

// Parse runs the full interpretation: a seat-resolution pre-pass over the
// match-scoped lines, then the single forward scan, then the final
// reduction. The scan stops early once a line carrying a different matchId
// is seen after the target match has started.
func (p *Parser) Parse() (*Result, error) {
	file, err := os.Open(p.logPath)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	// Seat resolution must complete before any tracking: every extractor
	// needs the owner-seat to role mapping.
	if err := p.resolveSeats(file); err != nil {
		return nil, err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind log file: %w", err)
	}

	scanner := newLogScanner(file)
	inMatch := false

	for scanner.Scan() {
		line := sanitizeLine(scanner.Bytes())

		if strings.Contains(line, p.matchID) {
			inMatch = true
		}
		if !inMatch {
			continue
		}

		// A later match has started; nothing past this line is ours.
		if strings.Contains(line, "matchId") && !strings.Contains(line, p.matchID) {
			break
		}

		p.processLine(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}

	playerCards, opponentCards := p.aggregate()

	return &Result{
		MatchID:           p.matchID,
		PlayerSeat:        p.playerSeat,
		OpponentSeat:      p.opponentSeat,
		SeatConfidence:    p.seatConfidence,
		OpponentName:      p.opponentName,
		PlayerCards:       playerCards,
		OpponentCards:     opponentCards,
		PlayerDeck:        p.playerDeck,
		OpponentDeckSize:  p.opponentDeckSize,
		PlayerCommander:   p.playerCommander,
		OpponentCommander: p.opponentCommander,
	}, nil
}

// processLine offers one match-scoped line to the extractors the classifier
// selects. Extraction is best-effort per line: malformed fragments are
// skipped by the extractor concerned, never aborting the scan.
func (p *Parser) processLine(line string) {
	hints := classifyLine(line)
	if !hints.any() {
		return
	}

	frags := extractFragments(line)
	if len(frags) == 0 {
		return
	}

	if hints.instanceMapping {
		p.recordInstanceMappings(frags)
	}
	if hints.idChange {
		p.recordIDChanges(frags)
	}
	if hints.deckMessage {
		p.recordDeckMessage(frags)
	}
	if hints.libraryZone {
		p.recordLibrarySizes(frags)
	}
	if hints.commandZone {
		p.recordCommandZones(frags)
	}
	if hints.handZone {
		p.recordHandZones(frags)
	}
	if hints.gameObjects {
		p.recordGameObjects(frags)
	}
}

// setCommander records a seat's commander. First write wins: the command
// zone is transient and later occupants are not commanders.
func (p *Parser) setCommander(owner, cardID int) {
	switch owner {
	case p.playerSeat:
		if p.playerCommander == 0 {
			p.playerCommander = cardID
		}
	case p.opponentSeat:
		if p.opponentCommander == 0 {
			p.opponentCommander = cardID
		}
	}
}

// newLogScanner wraps a reader in a line scanner sized for Player.log.
// Game state lines routinely exceed bufio's default token limit.
func newLogScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return scanner
}

// sanitizeLine drops bytes that do not decode as UTF-8. The log is read
// leniently: undecodable bytes are discarded, not fatal.
func sanitizeLine(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "")
}
