package matchparser

import (
	"fmt"
	"io"
	"log"
	"strings"

	simplejson "github.com/bitly/go-simplejson"
)

// SeatConfidence describes which detection strategy resolved the local
// player's seat. Anything below SeatFromConnectResp means the player and
// opponent card lists may be swapped.
type SeatConfidence int

const (
	// SeatFromConnectResp: the seat came from a ConnectResp message, which
	// is only ever delivered to the player it concerns.
	SeatFromConnectResp SeatConfidence = iota
	// SeatFromReservedPlayers: the seat was guessed from the first entry of
	// the room's reserved-players list.
	SeatFromReservedPlayers
	// SeatDefaulted: no detection succeeded; seat 1 was assumed.
	SeatDefaulted
)

func (c SeatConfidence) String() string {
	switch c {
	case SeatFromConnectResp:
		return "connect-resp"
	case SeatFromReservedPlayers:
		return "reserved-players"
	case SeatDefaulted:
		return "defaulted"
	}
	return fmt.Sprintf("SeatConfidence(%d)", int(c))
}

type reservedPlayer struct {
	Seat int
	Name string
}

// resolveSeats determines the local player's seat id with a pre-pass over
// the match-scoped lines. Strategy order: ConnectResp private seat list,
// then the reserved-players heuristic, then seat 1 as a last resort. The
// reserved-players capture doubles as the source of the opponent's display
// name once both seats are known.
func (p *Parser) resolveSeats(r io.Reader) error {
	scanner := newLogScanner(r)

	connectSeat := 0
	var reserved []reservedPlayer

	for scanner.Scan() {
		line := sanitizeLine(scanner.Bytes())
		if !strings.Contains(line, p.matchID) {
			continue
		}

		if connectSeat == 0 &&
			strings.Contains(line, `"GREMessageType_ConnectResp"`) &&
			strings.Contains(line, `"systemSeatIds"`) {
			connectSeat = connectRespSeat(extractFragments(line))
		}

		if len(reserved) == 0 && strings.Contains(line, `"reservedPlayers"`) {
			reserved = reservedPlayersIn(extractFragments(line))
		}

		if connectSeat != 0 && len(reserved) > 0 {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan log file for seats: %w", err)
	}

	switch {
	case connectSeat != 0:
		p.playerSeat = connectSeat
		p.seatConfidence = SeatFromConnectResp
	case len(reserved) > 0:
		p.playerSeat = reserved[0].Seat
		p.seatConfidence = SeatFromReservedPlayers
		log.Printf("Warning: seat %d auto-detected from reserved players (%s); card lists may be swapped",
			reserved[0].Seat, reserved[0].Name)
	default:
		p.playerSeat = 1
		p.seatConfidence = SeatDefaulted
		log.Printf("Warning: could not determine player seat, assuming seat 1")
	}

	if p.playerSeat == 1 {
		p.opponentSeat = 2
	} else {
		p.opponentSeat = 1
	}

	for _, player := range reserved {
		if player.Seat == p.opponentSeat && player.Name != "" {
			p.opponentName = player.Name
			break
		}
	}

	return nil
}

// connectRespSeat extracts the local seat id from a ConnectResp message.
// The message privately enumerates the seat ids visible to the receiving
// client; exactly one entry identifies the local player.
func connectRespSeat(frags []*simplejson.Json) int {
	for _, frag := range frags {
		messages := frag.Get("greToClientEvent").Get("greToClientMessages")
		arr, err := messages.Array()
		if err != nil {
			continue
		}

		for i := range arr {
			msg := messages.GetIndex(i)
			if msg.Get("type").MustString() != "GREMessageType_ConnectResp" {
				continue
			}

			seatIDs, err := msg.Get("systemSeatIds").Array()
			if err != nil || len(seatIDs) != 1 {
				continue
			}
			if seat, ok := toInt(seatIDs[0]); ok && seat != 0 {
				return seat
			}
		}
	}
	return 0
}

// reservedPlayersIn extracts the room's reserved-players list.
func reservedPlayersIn(frags []*simplejson.Json) []reservedPlayer {
	for _, frag := range frags {
		players := frag.Get("matchGameRoomStateChangedEvent").
			Get("gameRoomInfo").
			Get("gameRoomConfig").
			Get("reservedPlayers")

		arr, err := players.Array()
		if err != nil || len(arr) == 0 {
			continue
		}

		result := make([]reservedPlayer, 0, len(arr))
		for i := range arr {
			entry := players.GetIndex(i)
			seat, ok := toInt(entry.Get("systemSeatId").Interface())
			if !ok {
				continue
			}
			result = append(result, reservedPlayer{
				Seat: seat,
				Name: entry.Get("playerName").MustString(),
			})
		}

		if len(result) > 0 {
			return result
		}
	}
	return nil
}
