package constants

import (
	"strings"
)

// Direction selects where a keyword rule looks for its value, relative to the matched line.
type Direction string

const (
	Right Direction = "right" // after the keyword on the same line
	Left  Direction = "left"  // before the keyword on the same line
	Below Direction = "below" // the whole next line
	Above Direction = "above" // the whole previous line
)

var allDirections = []Direction{
	Right,
	Left,
	Below,
	Above,
}

func DirectionsAsStringSlice() []string {
	result := make([]string, len(allDirections))
	for i, d := range allDirections {
		result[i] = string(d)
	}
	return result
}

// CanonicalizeDirection maps user-facing labels, including Portuguese ones such as
// "lado direito" and "baixo", to a Direction.
func CanonicalizeDirection(input string) (Direction, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]Direction{
		"lado direito":  Right,
		"direita":       Right,
		"right-of":      Right,
		"lado esquerdo": Left,
		"esquerda":      Left,
		"left-of":       Left,
		"baixo":         Below,
		"line-below":    Below,
		"down":          Below,
		"cima":          Above,
		"line-above":    Above,
		"up":            Above,
	}

	if d, ok := synonyms[normalized]; ok {
		return d, true
	}

	for _, d := range allDirections {
		if normalized == string(d) {
			return d, true
		}
	}

	return "", false
}
