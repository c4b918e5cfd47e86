package matchparser

import (
	simplejson "github.com/bitly/go-simplejson"
)

// recordDeckMessage extracts the player's starting deck from the one-time
// deck message. The first complete list wins; repeats of the same message
// later in the match must not double the counts.
func (p *Parser) recordDeckMessage(frags []*simplejson.Json) {
	if len(p.playerDeck) > 0 {
		return
	}

	for _, frag := range frags {
		walkMaps(frag.Interface(), func(obj map[string]interface{}) {
			if len(p.playerDeck) > 0 {
				return
			}
			cards := intList(obj["deckCards"])
			if len(cards) == 0 {
				return
			}
			for _, grpID := range cards {
				p.playerDeck[grpID]++
			}
		})
		if len(p.playerDeck) > 0 {
			return
		}
	}
}

// recordLibrarySizes tracks the opponent's library size, keeping the
// maximum observed. The library only shrinks as the game progresses, so the
// largest snapshot approximates the starting deck size even across
// shuffle-backs.
func (p *Parser) recordLibrarySizes(frags []*simplejson.Json) {
	for _, frag := range frags {
		walkMaps(frag.Interface(), func(obj map[string]interface{}) {
			if t, _ := obj["type"].(string); t != "ZoneType_Library" {
				return
			}
			owner, ok := intField(obj, "ownerSeatId")
			if !ok || owner != p.opponentSeat {
				return
			}
			size := len(intList(obj["objectInstanceIds"]))
			if size > p.opponentDeckSize {
				p.opponentDeckSize = size
			}
		})
	}
}

// recordHandZones captures hand-zone snapshots. The log emits the complete
// hand per observation, so each snapshot replaces the previous one and only
// the latest matters.
func (p *Parser) recordHandZones(frags []*simplejson.Json) {
	for _, frag := range frags {
		walkMaps(frag.Interface(), func(obj map[string]interface{}) {
			if t, _ := obj["type"].(string); t != "ZoneType_Hand" {
				return
			}
			owner, ok := intField(obj, "ownerSeatId")
			if !ok {
				return
			}
			ids := intList(obj["objectInstanceIds"])
			if len(ids) == 0 {
				return
			}
			switch owner {
			case p.playerSeat:
				p.playerHand = ids
			case p.opponentSeat:
				p.opponentHand = ids
			}
		})
	}
}
