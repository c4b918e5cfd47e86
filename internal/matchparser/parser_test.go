package matchparser

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ramonehamilton/mtga-match-parser/internal/carddb"
)

const (
	testMatchID  = "abcdef12-3456-7890-abcd-ef1234567890"
	otherMatchID = "ffffffff-ffff-ffff-ffff-ffffffffffff"
)

func testCatalog() carddb.Catalog {
	return carddb.Catalog{
		"101": {Name: "Forest", Types: []string{"Land"}},
		"205": {Name: "Grizzly Bears", Types: []string{"Creature"}},
		"900": {Name: "Fire /// Ice", Types: []string{"Instant"}},
		"901": {Name: "Fire", Types: []string{"Instant"}},
		"902": {Name: "Ice", Types: []string{"Instant"}},
		"700": {Name: "Atraxa, Praetors' Voice", Types: []string{"Creature"}},
		"710": {Name: "Counterspell", Types: []string{"Instant"}},
	}
}

func writeLog(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Player.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func parseLines(t *testing.T, lines []string) *Result {
	t.Helper()
	parser, err := New(writeLog(t, lines), testMatchID, testCatalog(), nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := parser.Parse()
	if err != nil {
		t.Fatal(err)
	}
	return result
}

// Log line builders. Every line carries the match token so the scan keeps
// it in scope, mirroring how the client stamps match-scoped events.

func connectRespLine(seat int) string {
	return fmt.Sprintf(`[UnityCrossThreadLogger]{"matchId":"%s","greToClientEvent":{"greToClientMessages":[{"type":"GREMessageType_ConnectResp","systemSeatIds":[%d]}]}}`,
		testMatchID, seat)
}

func reservedPlayersLine(matchID string) string {
	return fmt.Sprintf(`{"matchGameRoomStateChangedEvent":{"gameRoomInfo":{"gameRoomConfig":{"matchId":"%s","reservedPlayers":[{"systemSeatId":1,"playerName":"Hero"},{"systemSeatId":2,"playerName":"Villain"}]}}}}`,
		matchID)
}

func gameObjectLine(instanceID, grpID, zoneID, owner int, visibility string) string {
	return fmt.Sprintf(`{"matchId":"%s","gameStateMessage":{"gameObjects":[{"instanceId":%d,"grpId":%d,"zoneId":%d,"ownerSeatId":%d,"visibility":"%s"}]}}`,
		testMatchID, instanceID, grpID, zoneID, owner, visibility)
}

func idChangeLine(origID, newID int) string {
	return fmt.Sprintf(`{"matchId":"%s","annotations":[{"type":["AnnotationType_ObjectIdChanged"],"details":[{"key":"orig_id","valueInt32":[%d]},{"key":"new_id","valueInt32":[%d]}]}]}`,
		testMatchID, origID, newID)
}

func deckMessageLine(cards ...int) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return fmt.Sprintf(`{"matchId":"%s","deckMessage":{"deckCards":[%s]}}`,
		testMatchID, strings.Join(parts, ","))
}

func libraryZoneLine(owner int, instanceIDs ...int) string {
	parts := make([]string, len(instanceIDs))
	for i, id := range instanceIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf(`{"matchId":"%s","zones":[{"zoneId":30,"type":"ZoneType_Library","ownerSeatId":%d,"objectInstanceIds":[%s]}]}`,
		testMatchID, owner, strings.Join(parts, ","))
}

func handZoneLine(zoneID, owner int, instanceIDs ...int) string {
	parts := make([]string, len(instanceIDs))
	for i, id := range instanceIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf(`{"matchId":"%s","zones":[{"zoneId":%d,"type":"ZoneType_Hand","ownerSeatId":%d,"objectInstanceIds":[%s]}]}`,
		testMatchID, zoneID, owner, strings.Join(parts, ","))
}

func TestParseDeckMessageOnly(t *testing.T) {
	result := parseLines(t, []string{
		connectRespLine(1),
		deckMessageLine(101, 101, 205),
	})

	want := map[int]int{101: 2, 205: 1}
	if !reflect.DeepEqual(result.PlayerDeck, want) {
		t.Errorf("PlayerDeck = %v, want %v", result.PlayerDeck, want)
	}
	if len(result.PlayerCards) != 0 || len(result.OpponentCards) != 0 {
		t.Errorf("expected empty card mappings, got player=%v opponent=%v",
			result.PlayerCards, result.OpponentCards)
	}
}

func TestParseDeckMessageNotDoubled(t *testing.T) {
	result := parseLines(t, []string{
		connectRespLine(1),
		deckMessageLine(101, 101, 205),
		deckMessageLine(101, 101, 205),
	})

	want := map[int]int{101: 2, 205: 1}
	if !reflect.DeepEqual(result.PlayerDeck, want) {
		t.Errorf("PlayerDeck = %v, want %v", result.PlayerDeck, want)
	}
}

func TestParseIdentityChain(t *testing.T) {
	// Instance 499 is never located; 500 replaces it and lands on the
	// battlefield. The card must count exactly once, under the final id.
	result := parseLines(t, []string{
		connectRespLine(1),
		idChangeLine(499, 500),
		gameObjectLine(500, 205, ZoneBattlefield, 1, "Visibility_Public"),
	})

	want := map[int]int{205: 1}
	if !reflect.DeepEqual(result.PlayerCards, want) {
		t.Errorf("PlayerCards = %v, want %v", result.PlayerCards, want)
	}
}

func TestParseObsoleteInstanceNotCounted(t *testing.T) {
	// Instance 499 was located, then replaced by 500. Only 500's location
	// may contribute; counting 499 too would double the physical card.
	result := parseLines(t, []string{
		connectRespLine(1),
		gameObjectLine(499, 205, ZoneSeat1Hand, 1, "Visibility_Private"),
		idChangeLine(499, 500),
		gameObjectLine(500, 205, ZoneBattlefield, 1, "Visibility_Public"),
	})

	want := map[int]int{205: 1}
	if !reflect.DeepEqual(result.PlayerCards, want) {
		t.Errorf("PlayerCards = %v, want %v", result.PlayerCards, want)
	}
}

func TestParseMultiHopIdentityChain(t *testing.T) {
	result := parseLines(t, []string{
		connectRespLine(1),
		gameObjectLine(400, 710, ZoneSeat1Hand, 1, "Visibility_Private"),
		idChangeLine(400, 401),
		idChangeLine(401, 402),
		gameObjectLine(402, 710, ZoneSeat1Graveyard, 1, "Visibility_Public"),
	})

	want := map[int]int{710: 1}
	if !reflect.DeepEqual(result.PlayerCards, want) {
		t.Errorf("PlayerCards = %v, want %v", result.PlayerCards, want)
	}
}

func TestParseSplitCardCollapse(t *testing.T) {
	// Both halves of Fire /// Ice revealed as separate instances in the
	// same zone: two copies, both attributed to the combined card.
	result := parseLines(t, []string{
		connectRespLine(1),
		idChangeLine(409, 510),
		idChangeLine(410, 511),
		gameObjectLine(510, 901, ZoneBattlefield, 1, "Visibility_Public"),
		gameObjectLine(511, 902, ZoneBattlefield, 1, "Visibility_Public"),
	})

	want := map[int]int{900: 2}
	if !reflect.DeepEqual(result.PlayerCards, want) {
		t.Errorf("PlayerCards = %v, want %v", result.PlayerCards, want)
	}
	if _, ok := result.PlayerCards[901]; ok {
		t.Error("half id 901 leaked into the final tally")
	}
}

func TestParseLibraryZoneExcluded(t *testing.T) {
	result := parseLines(t, []string{
		connectRespLine(1),
		idChangeLine(598, 599),
		gameObjectLine(599, 205, ZoneLibrary, 1, "Visibility_Public"),
	})

	if len(result.PlayerCards) != 0 {
		t.Errorf("library-only instance leaked into counts: %v", result.PlayerCards)
	}
}

func TestParseVisibilityBoundary(t *testing.T) {
	// An opponent card seen only with private visibility must never be
	// tracked, even if an identity chain would validate it.
	result := parseLines(t, []string{
		connectRespLine(1),
		idChangeLine(600, 601),
		gameObjectLine(601, 710, ZoneSeat2Hand, 2, "Visibility_Private"),
	})

	if len(result.OpponentCards) != 0 {
		t.Errorf("hidden opponent card leaked into counts: %v", result.OpponentCards)
	}
}

func TestParseUnknownGrpIDNeverTracked(t *testing.T) {
	result := parseLines(t, []string{
		connectRespLine(1),
		idChangeLine(700, 701),
		gameObjectLine(701, 99999, ZoneBattlefield, 1, "Visibility_Public"),
	})

	if len(result.PlayerCards) != 0 {
		t.Errorf("catalog-unknown grpId was tracked: %v", result.PlayerCards)
	}
}

func TestParseOpponentDeckSizeMaximum(t *testing.T) {
	ids := func(n, base int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = base + i
		}
		return out
	}

	result := parseLines(t, []string{
		connectRespLine(1),
		libraryZoneLine(2, ids(60, 1000)...),
		libraryZoneLine(2, ids(58, 1000)...),
		libraryZoneLine(2, ids(60, 1000)...),
		// Player's own library must not influence the opponent figure.
		libraryZoneLine(1, ids(99, 5000)...),
	})

	if result.OpponentDeckSize != 60 {
		t.Errorf("OpponentDeckSize = %d, want 60", result.OpponentDeckSize)
	}
}

func TestParseHandSnapshotValidatesInstances(t *testing.T) {
	// A card that never went through an identity change still counts when
	// it sits in the final hand snapshot.
	result := parseLines(t, []string{
		connectRespLine(1),
		gameObjectLine(800, 710, ZoneSeat1Hand, 1, "Visibility_Private"),
		handZoneLine(ZoneSeat1Hand, 1, 800),
	})

	want := map[int]int{710: 1}
	if !reflect.DeepEqual(result.PlayerCards, want) {
		t.Errorf("PlayerCards = %v, want %v", result.PlayerCards, want)
	}
}

func TestParseLaterHandSnapshotWins(t *testing.T) {
	result := parseLines(t, []string{
		connectRespLine(1),
		gameObjectLine(800, 710, ZoneSeat1Hand, 1, "Visibility_Private"),
		gameObjectLine(801, 205, ZoneSeat1Hand, 1, "Visibility_Private"),
		handZoneLine(ZoneSeat1Hand, 1, 800, 801),
		handZoneLine(ZoneSeat1Hand, 1, 801),
	})

	// 800 left the hand and went nowhere the aggregator validates, so only
	// the final snapshot's occupant counts.
	want := map[int]int{205: 1}
	if !reflect.DeepEqual(result.PlayerCards, want) {
		t.Errorf("PlayerCards = %v, want %v", result.PlayerCards, want)
	}
}

func TestParseCommanderDetection(t *testing.T) {
	result := parseLines(t, []string{
		connectRespLine(1),
		gameObjectLine(900, 700, ZoneSeat1Command, 1, "Visibility_Public"),
		gameObjectLine(901, 710, ZoneSeat2Command, 2, "Visibility_Public"),
	})

	if result.PlayerCommander != 700 {
		t.Errorf("PlayerCommander = %d, want 700", result.PlayerCommander)
	}
	if result.OpponentCommander != 710 {
		t.Errorf("OpponentCommander = %d, want 710", result.OpponentCommander)
	}
}

func TestParseCommanderFirstWriteWins(t *testing.T) {
	result := parseLines(t, []string{
		connectRespLine(1),
		gameObjectLine(900, 700, ZoneSeat1Command, 1, "Visibility_Public"),
		gameObjectLine(902, 205, ZoneSeat1Command, 1, "Visibility_Public"),
	})

	if result.PlayerCommander != 700 {
		t.Errorf("PlayerCommander = %d, want 700 (first write)", result.PlayerCommander)
	}
}

func TestParseSeatResolution(t *testing.T) {
	t.Run("connect resp", func(t *testing.T) {
		result := parseLines(t, []string{connectRespLine(2)})
		if result.PlayerSeat != 2 || result.OpponentSeat != 1 {
			t.Errorf("seats = %d/%d, want 2/1", result.PlayerSeat, result.OpponentSeat)
		}
		if result.SeatConfidence != SeatFromConnectResp {
			t.Errorf("confidence = %v, want connect-resp", result.SeatConfidence)
		}
	})

	t.Run("reserved players fallback", func(t *testing.T) {
		result := parseLines(t, []string{reservedPlayersLine(testMatchID)})
		if result.PlayerSeat != 1 || result.OpponentSeat != 2 {
			t.Errorf("seats = %d/%d, want 1/2", result.PlayerSeat, result.OpponentSeat)
		}
		if result.SeatConfidence != SeatFromReservedPlayers {
			t.Errorf("confidence = %v, want reserved-players", result.SeatConfidence)
		}
		if result.OpponentName != "Villain" {
			t.Errorf("OpponentName = %q, want Villain", result.OpponentName)
		}
	})

	t.Run("default", func(t *testing.T) {
		result := parseLines(t, []string{
			fmt.Sprintf(`{"matchId":"%s"}`, testMatchID),
		})
		if result.PlayerSeat != 1 {
			t.Errorf("PlayerSeat = %d, want 1", result.PlayerSeat)
		}
		if result.SeatConfidence != SeatDefaulted {
			t.Errorf("confidence = %v, want defaulted", result.SeatConfidence)
		}
	})
}

func TestParseOpponentNameWithConnectResp(t *testing.T) {
	result := parseLines(t, []string{
		connectRespLine(1),
		reservedPlayersLine(testMatchID),
	})

	if result.OpponentName != "Villain" {
		t.Errorf("OpponentName = %q, want Villain", result.OpponentName)
	}
}

func TestParseStopsAtNextMatch(t *testing.T) {
	result := parseLines(t, []string{
		connectRespLine(1),
		idChangeLine(499, 500),
		gameObjectLine(500, 205, ZoneBattlefield, 1, "Visibility_Public"),
		// A different match starts; everything after must be ignored.
		fmt.Sprintf(`{"matchId":"%s"}`, otherMatchID),
		idChangeLine(600, 601),
		gameObjectLine(601, 710, ZoneBattlefield, 1, "Visibility_Public"),
	})

	want := map[int]int{205: 1}
	if !reflect.DeepEqual(result.PlayerCards, want) {
		t.Errorf("PlayerCards = %v, want %v", result.PlayerCards, want)
	}
}

func TestParseMalformedLinesSkipped(t *testing.T) {
	result := parseLines(t, []string{
		connectRespLine(1),
		`{"matchId":"` + testMatchID + `","gameObjects", not valid json`,
		"complete garbage \x80\xff bytes",
		idChangeLine(499, 500),
		gameObjectLine(500, 205, ZoneBattlefield, 1, "Visibility_Public"),
	})

	want := map[int]int{205: 1}
	if !reflect.DeepEqual(result.PlayerCards, want) {
		t.Errorf("PlayerCards = %v, want %v", result.PlayerCards, want)
	}
}

func TestParseDeterminism(t *testing.T) {
	lines := []string{
		connectRespLine(1),
		reservedPlayersLine(testMatchID),
		deckMessageLine(101, 101, 205),
		idChangeLine(409, 510),
		idChangeLine(410, 511),
		gameObjectLine(510, 901, ZoneBattlefield, 1, "Visibility_Public"),
		gameObjectLine(511, 902, ZoneExile, 2, "Visibility_Public"),
		libraryZoneLine(2, 1, 2, 3, 4, 5),
		handZoneLine(ZoneSeat1Hand, 1, 510),
	}
	path := writeLog(t, lines)
	catalog := testCatalog()
	splitMap := carddb.BuildSplitMap(catalog)

	var results []*Result
	for i := 0; i < 2; i++ {
		parser, err := New(path, testMatchID, catalog, splitMap)
		if err != nil {
			t.Fatal(err)
		}
		result, err := parser.Parse()
		if err != nil {
			t.Fatal(err)
		}
		results = append(results, result)
	}

	if !reflect.DeepEqual(results[0], results[1]) {
		t.Errorf("parse is not deterministic:\nfirst:  %+v\nsecond: %+v", results[0], results[1])
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New("log", testMatchID, carddb.Catalog{}, nil); err == nil {
		t.Error("expected error for empty catalog")
	}
	if _, err := New("log", "", testCatalog(), nil); err == nil {
		t.Error("expected error for empty match id")
	}
}

func TestParseMissingLogFile(t *testing.T) {
	parser, err := New(filepath.Join(t.TempDir(), "absent.log"), testMatchID, testCatalog(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse(); err == nil {
		t.Error("expected error for missing log file")
	}
}
