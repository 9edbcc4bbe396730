package llm

import (
	"encoding/json"
	"strings"
)

// ExtractObject returns the first well-formed JSON object embedded in text.
// Prose and markdown fences around the object are ignored.
func ExtractObject(text string) (string, bool) {
	return extractJSON(text, '{', '}')
}

// ExtractArray returns the first well-formed JSON array embedded in text.
func ExtractArray(text string) (string, bool) {
	return extractJSON(text, '[', ']')
}

func extractJSON(text string, open, closing byte) (string, bool) {
	for start := strings.IndexByte(text, open); start >= 0; {
		if end := matchingClose(text, start, open, closing); end > 0 {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}

		next := strings.IndexByte(text[start+1:], open)
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchingClose finds the index of the bracket closing the one at start,
// skipping brackets inside string literals. It returns -1 when unbalanced.
func matchingClose(text string, start int, open, closing byte) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
