package matchparser

import "strings"

// lineHints records which extraction routines are worth attempting for one
// log line. The substring gates are far cheaper than JSON parsing and the
// overwhelming majority of lines carry nothing the interpreter wants.
type lineHints struct {
	instanceMapping bool
	idChange        bool
	deckMessage     bool
	libraryZone     bool
	commandZone     bool
	handZone        bool
	gameObjects     bool
}

func classifyLine(line string) lineHints {
	return lineHints{
		instanceMapping: strings.Contains(line, `"grpId"`) && strings.Contains(line, `"instanceId"`),
		idChange:        strings.Contains(line, `"AnnotationType_ObjectIdChanged"`),
		deckMessage:     strings.Contains(line, `"deckMessage"`) && strings.Contains(line, `"deckCards"`),
		libraryZone:     strings.Contains(line, `"ZoneType_Library"`) && strings.Contains(line, `"ownerSeatId"`),
		commandZone:     strings.Contains(line, `"ZoneType_Command"`),
		handZone:        strings.Contains(line, `"ZoneType_Hand"`) && strings.Contains(line, `"objectInstanceIds"`),
		gameObjects:     strings.Contains(line, `"gameObjects"`) && strings.Contains(line, `"instanceId"`),
	}
}

func (h lineHints) any() bool {
	return h.instanceMapping || h.idChange || h.deckMessage ||
		h.libraryZone || h.commandZone || h.handZone || h.gameObjects
}
