package matchparser

import (
	simplejson "github.com/bitly/go-simplejson"
)

// recordInstanceMappings records instanceId -> card mappings for every
// object in the fragments carrying both ids. grpIds absent from the catalog
// (tokens, abilities, emblems) are not cards and are skipped; the stored
// card id is always the split-normalized one.
func (p *Parser) recordInstanceMappings(frags []*simplejson.Json) {
	for _, frag := range frags {
		walkMaps(frag.Interface(), func(obj map[string]interface{}) {
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
			p.instanceToCard[instanceID] = p.splitMap.Normalize(grpID)
		})
	}
}

// recordIDChanges processes ObjectIdChanged annotations. The old instance
// id becomes obsolete and must not be counted again; any card identity
// already known for it is carried forward to the replacement id.
func (p *Parser) recordIDChanges(frags []*simplejson.Json) {
	for _, frag := range frags {
		walkMaps(frag.Interface(), func(obj map[string]interface{}) {
			if !hasAnnotationType(obj, "AnnotationType_ObjectIdChanged") {
				return
			}

			details, ok := obj["details"].([]interface{})
			if !ok {
				return
			}

			origID, newID := 0, 0
			haveOrig, haveNew := false, false

			for _, d := range details {
				detail, ok := d.(map[string]interface{})
				if !ok {
					continue
				}
				key, _ := detail["key"].(string)
				values := intList(detail["valueInt32"])
				if len(values) == 0 {
					continue
				}
				switch key {
				case "orig_id":
					origID, haveOrig = values[0], true
				case "new_id":
					newID, haveNew = values[0], true
				}
			}

			if haveOrig && haveNew {
				p.recordIDChange(origID, newID)
			}
		})
	}
}

func (p *Parser) recordIDChange(oldID, newID int) {
	p.idChanges[oldID] = newID
	if cardID, ok := p.instanceToCard[oldID]; ok {
		p.instanceToCard[newID] = cardID
	}
}

// hasAnnotationType reports whether the object is an annotation of the
// given type. The GRE encodes annotation types as a list, but single-type
// annotations occasionally appear as a bare string.
func hasAnnotationType(obj map[string]interface{}, want string) bool {
	switch t := obj["type"].(type) {
	case string:
		return t == want
	case []interface{}:
		for _, entry := range t {
			if s, ok := entry.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}
