package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtga-match-parser/internal/matchparser"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(DefaultConfig(":memory:"))
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleRecord(matchID string) *MatchRecord {
	return RecordFromResult(&matchparser.Result{
		MatchID:          matchID,
		PlayerSeat:       1,
		OpponentSeat:     2,
		OpponentName:     "Sparky",
		PlayerCards:      map[int]int{101: 3, 205: 1},
		OpponentCards:    map[int]int{310: 2},
		PlayerDeck:       map[int]int{101: 24, 205: 4},
		OpponentDeckSize: 60,
	})
}

func TestSaveAndGetMatch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	record := sampleRecord("abcdef12-3456-7890-abcd-ef1234567890")
	require.NoError(t, db.SaveMatch(ctx, record))

	got, err := db.GetMatch(ctx, record.MatchID)
	require.NoError(t, err)

	assert.Equal(t, "Sparky", got.OpponentName)
	assert.Equal(t, record.PlayerCards, got.PlayerCards)
	assert.Equal(t, record.OpponentCards, got.OpponentCards)
	assert.Equal(t, record.PlayerDeck, got.PlayerDeck)
	assert.Equal(t, 60, got.OpponentDeckSize)
	assert.Equal(t, 1, got.PlayerSeat)
	assert.Equal(t, 2, got.OpponentSeat)
}

func TestSaveMatchReplacesExisting(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	matchID := "abcdef12-3456-7890-abcd-ef1234567890"
	require.NoError(t, db.SaveMatch(ctx, sampleRecord(matchID)))

	updated := sampleRecord(matchID)
	updated.OpponentCards = map[int]int{310: 2, 999: 1}
	require.NoError(t, db.SaveMatch(ctx, updated))

	records, err := db.ListMatches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1, "re-parsing a match must replace its row")
	assert.Equal(t, updated.OpponentCards, records[0].OpponentCards)
}

func TestGetMatchNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetMatch(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestListMatchesLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ids := []string{
		"11111111-1111-1111-1111-111111111111",
		"22222222-2222-2222-2222-222222222222",
		"33333333-3333-3333-3333-333333333333",
	}
	for _, id := range ids {
		require.NoError(t, db.SaveMatch(ctx, sampleRecord(id)))
	}

	records, err := db.ListMatches(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDeleteMatch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	record := sampleRecord("abcdef12-3456-7890-abcd-ef1234567890")
	require.NoError(t, db.SaveMatch(ctx, record))

	require.NoError(t, db.DeleteMatch(ctx, record.MatchID))
	assert.ErrorIs(t, db.DeleteMatch(ctx, record.MatchID), ErrMatchNotFound)
}

func TestOpenFileDatabaseMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	db, err := Open(DefaultConfig(path))
	require.NoError(t, err, "open file database")
	defer db.Close()

	err = db.SaveMatch(context.Background(), sampleRecord("abcdef12-3456-7890-abcd-ef1234567890"))
	assert.NoError(t, err, "save into migrated file database")
}
