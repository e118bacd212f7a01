package service

import (
	"math"
	"regexp"
	"strconv"
)

var scorePattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ExtractScore pulls the first numeric token out of a free-text model reply
// and clamps it into [0, maxScore]. The second return is false when the reply
// carries no parseable number at all.
func ExtractScore(reply string, maxScore int) (int, bool) {
	match := scorePattern.FindString(reply)
	if match == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}

	score := int(math.Round(value))
	if score < 0 {
		score = 0
	}
	if score > maxScore {
		score = maxScore
	}

	return score, true
}
