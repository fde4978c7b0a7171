package highlights

import (
	"regexp"
	"strconv"

	"github.com/forPelevin/highcut/internal/types"
)

var reDigits = regexp.MustCompile(`\d+`)

// ExtractScore returns the first run of digits in a classifier reply, or 0
// when there is none. Replies like "Score: 8/10" yield 8.
func ExtractScore(reply string) int {
	m := reDigits.FindString(reply)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// Filter keeps segments scoring at least threshold and drops score and text.
func Filter(scored []types.ScoredSegment, threshold int) []types.Segment {
	out := make([]types.Segment, 0, len(scored))
	for _, s := range scored {
		if s.Score >= threshold {
			out = append(out, s.Segment())
		}
	}
	return out
}
