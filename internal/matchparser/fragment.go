package matchparser

import (
	"encoding/json"

	simplejson "github.com/bitly/go-simplejson"
)

// extractFragments scans a raw log line for balanced JSON objects and
// returns the ones that parse. Lines are nominally one JSON document but
// often carry a plain-text prefix, and long game state lines are sometimes
// truncated mid-object; when the outer object is unbalanced the scanner
// steps inside it to salvage whatever nested fragments still parse.
func extractFragments(line string) []*simplejson.Json {
	var fragments []*simplejson.Json

	for i := 0; i < len(line); {
		if line[i] != '{' {
			i++
			continue
		}

		end, ok := balancedEnd(line, i)
		if !ok {
			i++
			continue
		}

		js, err := simplejson.NewJson([]byte(line[i : end+1]))
		if err != nil {
			i++
			continue
		}

		fragments = append(fragments, js)
		i = end + 1
	}

	return fragments
}

// balancedEnd returns the index of the brace closing the object opened at
// start, honoring JSON string and escape rules, or false if the line ends
// before the object closes.
func balancedEnd(line string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(line); i++ {
		c := line[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return 0, false
}

// walkMaps performs an iterative depth-first traversal of a decoded JSON
// tree, invoking visit for every object encountered. The log nests object
// lists arbitrarily deep, so every extractor that hunts for a structural
// shape goes through here rather than hard-coding a path.
func walkMaps(root interface{}, visit func(map[string]interface{})) {
	stack := []interface{}{root}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := node.(type) {
		case map[string]interface{}:
			visit(v)
			for _, child := range v {
				stack = append(stack, child)
			}
		case []interface{}:
			for _, child := range v {
				stack = append(stack, child)
			}
		}
	}
}

// toInt coerces a decoded JSON value to an int.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case int:
		return n, true
	}
	return 0, false
}

// intField reads an integer field from a decoded JSON object.
func intField(obj map[string]interface{}, key string) (int, bool) {
	v, ok := obj[key]
	if !ok {
		return 0, false
	}
	return toInt(v)
}

// intList coerces a decoded JSON array to a slice of ints, skipping
// non-numeric entries.
func intList(v interface{}) []int {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}

	ids := make([]int, 0, len(arr))
	for _, item := range arr {
		if id, ok := toInt(item); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
