package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/mtga-match-parser/internal/matchparser"
)

// ErrMatchNotFound is returned when a match id has no archived row.
var ErrMatchNotFound = errors.New("match not found in archive")

// MatchRecord is one archived parse result.
type MatchRecord struct {
	ID                int64
	MatchID           string
	OpponentName      string
	PlayerSeat        int
	OpponentSeat      int
	SeatConfidence    string
	PlayerCards       map[int]int
	OpponentCards     map[int]int
	PlayerDeck        map[int]int
	OpponentDeckSize  int
	PlayerCommander   int
	OpponentCommander int
	ParsedAt          time.Time
	CreatedAt         time.Time
}

// RecordFromResult converts a parse result into an archivable record.
func RecordFromResult(result *matchparser.Result) *MatchRecord {
	return &MatchRecord{
		MatchID:           result.MatchID,
		OpponentName:      result.OpponentName,
		PlayerSeat:        result.PlayerSeat,
		OpponentSeat:      result.OpponentSeat,
		SeatConfidence:    result.SeatConfidence.String(),
		PlayerCards:       result.PlayerCards,
		OpponentCards:     result.OpponentCards,
		PlayerDeck:        result.PlayerDeck,
		OpponentDeckSize:  result.OpponentDeckSize,
		PlayerCommander:   result.PlayerCommander,
		OpponentCommander: result.OpponentCommander,
		ParsedAt:          time.Now(),
	}
}

// SaveMatch archives a match record. Re-parsing the same match replaces
// the stored row.
func (db *DB) SaveMatch(ctx context.Context, record *MatchRecord) error {
	playerCards, err := marshalCounts(record.PlayerCards)
	if err != nil {
		return fmt.Errorf("failed to marshal player cards: %w", err)
	}
	opponentCards, err := marshalCounts(record.OpponentCards)
	if err != nil {
		return fmt.Errorf("failed to marshal opponent cards: %w", err)
	}
	playerDeck, err := marshalCounts(record.PlayerDeck)
	if err != nil {
		return fmt.Errorf("failed to marshal player deck: %w", err)
	}

	query := `
		INSERT INTO matches (match_id, opponent_name, player_seat, opponent_seat, seat_confidence,
			player_cards, opponent_cards, player_deck, opponent_deck_size,
			player_commander, opponent_commander, parsed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id) DO UPDATE SET
			opponent_name = excluded.opponent_name,
			player_seat = excluded.player_seat,
			opponent_seat = excluded.opponent_seat,
			seat_confidence = excluded.seat_confidence,
			player_cards = excluded.player_cards,
			opponent_cards = excluded.opponent_cards,
			player_deck = excluded.player_deck,
			opponent_deck_size = excluded.opponent_deck_size,
			player_commander = excluded.player_commander,
			opponent_commander = excluded.opponent_commander,
			parsed_at = excluded.parsed_at
	`

	_, err = db.conn.ExecContext(ctx, query,
		record.MatchID,
		record.OpponentName,
		record.PlayerSeat,
		record.OpponentSeat,
		record.SeatConfidence,
		playerCards,
		opponentCards,
		playerDeck,
		record.OpponentDeckSize,
		record.PlayerCommander,
		record.OpponentCommander,
		record.ParsedAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}

	return nil
}

// GetMatch retrieves one archived match by its Arena match id.
func (db *DB) GetMatch(ctx context.Context, matchID string) (*MatchRecord, error) {
	query := `
		SELECT id, match_id, opponent_name, player_seat, opponent_seat, seat_confidence,
			player_cards, opponent_cards, player_deck, opponent_deck_size,
			player_commander, opponent_commander, parsed_at, created_at
		FROM matches
		WHERE match_id = ?
	`

	record, err := scanMatch(db.conn.QueryRowContext(ctx, query, matchID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to query match: %w", err)
	}
	return record, nil
}

// ListMatches returns archived matches, newest first. limit <= 0 returns all.
func (db *DB) ListMatches(ctx context.Context, limit int) ([]*MatchRecord, error) {
	query := `
		SELECT id, match_id, opponent_name, player_seat, opponent_seat, seat_confidence,
			player_cards, opponent_cards, player_deck, opponent_deck_size,
			player_commander, opponent_commander, parsed_at, created_at
		FROM matches
		ORDER BY parsed_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var records []*MatchRecord
	for rows.Next() {
		record, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}

	return records, nil
}

// DeleteMatch removes one archived match.
func (db *DB) DeleteMatch(ctx context.Context, matchID string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM matches WHERE match_id = ?`, matchID)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return ErrMatchNotFound
	}

	return nil
}

// scanner covers sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row scanner) (*MatchRecord, error) {
	var record MatchRecord
	var playerCards, opponentCards, playerDeck string

	err := row.Scan(
		&record.ID,
		&record.MatchID,
		&record.OpponentName,
		&record.PlayerSeat,
		&record.OpponentSeat,
		&record.SeatConfidence,
		&playerCards,
		&opponentCards,
		&playerDeck,
		&record.OpponentDeckSize,
		&record.PlayerCommander,
		&record.OpponentCommander,
		&record.ParsedAt,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if record.PlayerCards, err = unmarshalCounts(playerCards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player cards: %w", err)
	}
	if record.OpponentCards, err = unmarshalCounts(opponentCards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal opponent cards: %w", err)
	}
	if record.PlayerDeck, err = unmarshalCounts(playerDeck); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player deck: %w", err)
	}

	return &record, nil
}

// marshalCounts stores a grpId count map as a JSON object.
func marshalCounts(counts map[int]int) (string, error) {
	if counts == nil {
		counts = map[int]int{}
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalCounts(data string) (map[int]int, error) {
	counts := make(map[int]int)
	if data == "" {
		return counts, nil
	}
	if err := json.Unmarshal([]byte(data), &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
