package matchparser

import (
	simplejson "github.com/bitly/go-simplejson"
)

// recordGameObjects locates every gameObjects list embedded in the
// fragments and upserts the location of each object the observer is allowed
// to know about. Objects that are neither publicly visible nor owned by the
// local player are never tracked: the tracker must not retain state for
// zones hidden from the observer.
func (p *Parser) recordGameObjects(frags []*simplejson.Json) {
	for _, frag := range frags {
		walkMaps(frag.Interface(), func(obj map[string]interface{}) {
			objects, ok := obj["gameObjects"].([]interface{})
			if !ok {
				return
			}
			for _, entry := range objects {
				gameObject, ok := entry.(map[string]interface{})
				if !ok {
					continue
				}
				p.trackGameObject(gameObject)
			}
		})
	}
}

func (p *Parser) trackGameObject(obj map[string]interface{}) {
	instanceID, ok := intField(obj, "instanceId")
	if !ok {
		return
	}
	grpID, ok := intField(obj, "grpId")
	if !ok {
		return
	}
	if !p.catalog.Has(grpID) {
		return
	}

	cardID := p.splitMap.Normalize(grpID)
	owner, _ := intField(obj, "ownerSeatId")
	zone, _ := intField(obj, "zoneId")
	visibility, _ := obj["visibility"].(string)

	if zone == ZoneSeat1Command || zone == ZoneSeat2Command {
		p.setCommander(owner, cardID)
	}

	if visibility != "Visibility_Public" && owner != p.playerSeat {
		return
	}

	p.locations[instanceID] = instanceLocation{
		CardID:     cardID,
		Zone:       zone,
		Owner:      owner,
		Visibility: visibility,
	}
}

// recordCommandZones captures commanders from command-zone listings. The
// first occupant whose card identity is already known becomes the seat's
// commander; whichever detection path fires first wins and the result is
// never overwritten.
func (p *Parser) recordCommandZones(frags []*simplejson.Json) {
	for _, frag := range frags {
		walkMaps(frag.Interface(), func(obj map[string]interface{}) {
			if t, _ := obj["type"].(string); t != "ZoneType_Command" {
				return
			}
			owner, ok := intField(obj, "ownerSeatId")
			if !ok {
				return
			}
			for _, instanceID := range intList(obj["objectInstanceIds"]) {
				if cardID, known := p.instanceToCard[instanceID]; known {
					p.setCommander(owner, cardID)
				}
			}
		})
	}
}
