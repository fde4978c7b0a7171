package transcript

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

// rangeRE must stay byte-compatible with the transcription service output.
var (
	rangeRE     = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3})\s-->\s(\d{2}):(\d{2}):(\d{2}),(\d{3})`)
	timestampRE = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3})$`)
	cueIndexRE  = regexp.MustCompile(`^\d+$`)
)

var thousand = decimal.NewFromInt(1000)

// ParseTimestamp converts "HH:MM:SS,mmm" into fractional seconds.
func ParseTimestamp(value string) (float64, error) {
	m := timestampRE.FindStringSubmatch(value)
	if m == nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return secondsFromParts(m[1], m[2], m[3], m[4]), nil
}

// FormatTimestamp renders seconds as "HH:MM:SS,mmm", rounding to the
// nearest millisecond. Negative values clamp to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := decimal.NewFromFloat(seconds).Mul(thousand).Round(0).IntPart()
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// secondsFromParts expects digit-only groups already validated by a regexp.
// The sum is built in integer milliseconds and converted once so the result
// is the double nearest to the decimal literal.
func secondsFromParts(h, m, s, ms string) float64 {
	hours, _ := strconv.ParseInt(h, 10, 64)
	minutes, _ := strconv.ParseInt(m, 10, 64)
	secs, _ := strconv.ParseInt(s, 10, 64)
	millis, _ := strconv.ParseInt(ms, 10, 64)
	total := ((hours*60+minutes)*60+secs)*1000 + millis
	f, _ := decimal.New(total, -3).Float64()
	return f
}

func parseRange(line string) (start, end float64, ok bool) {
	m := rangeRE.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, false
	}
	return secondsFromParts(m[1], m[2], m[3], m[4]), secondsFromParts(m[5], m[6], m[7], m[8]), true
}
