package matchparser

// countedZones are the zones that contribute to revealed-card counts.
// Library is excluded because seen and unseen cards are indistinguishable
// there; the command zones are transient pass-throughs.
var countedZones = map[int]bool{
	ZoneBattlefield:    true,
	ZoneExile:          true,
	ZoneSeat1Hand:      true,
	ZoneSeat1Graveyard: true,
	ZoneSeat2Hand:      true,
	ZoneSeat2Graveyard: true,
}

// aggregate performs the final reduction over tracked state, producing the
// per-side grpId -> copy-count mappings.
func (p *Parser) aggregate() (playerCards, opponentCards map[int]int) {
	playerCards = make(map[int]int)
	opponentCards = make(map[int]int)

	// Every key in the identity chain has been replaced by a newer id and
	// must not contribute.
	obsolete := make(map[int]bool, len(p.idChanges))
	for oldID := range p.idChanges {
		obsolete[oldID] = true
	}

	// Ids reached through at least one identity change, plus the final hand
	// snapshots. This filters out orphaned intermediates such as temporary
	// revealed instances and pre-mulligan objects.
	valid := make(map[int]bool, len(p.idChanges))
	for _, newID := range p.idChanges {
		valid[newID] = true
	}
	for _, instanceID := range p.playerHand {
		valid[instanceID] = true
	}
	for _, instanceID := range p.opponentHand {
		valid[instanceID] = true
	}

	// Group surviving instances by (card, owner, zone); the distinct
	// instance count per group is the physical copy count. Instance ids are
	// unique keys of the location table, so incrementing counts distinct
	// instances by construction.
	type groupKey struct {
		cardID int
		owner  int
		zone   int
	}
	groups := make(map[groupKey]int)

	for instanceID, loc := range p.locations {
		if obsolete[instanceID] || !valid[instanceID] {
			continue
		}
		if !countedZones[loc.Zone] {
			continue
		}
		// A half id that slipped past upstream normalization is already
		// represented under its canonical id; dropping it here avoids
		// double-counting one physical card.
		if p.splitMap.IsHalf(loc.CardID) {
			continue
		}
		groups[groupKey{loc.CardID, loc.Owner, loc.Zone}]++
	}

	for key, copies := range groups {
		switch key.owner {
		case p.playerSeat:
			playerCards[key.cardID] += copies
		case p.opponentSeat:
			opponentCards[key.cardID] += copies
		}
	}

	return playerCards, opponentCards
}
