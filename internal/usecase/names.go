package usecase

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ClipStem derives the clip file stem from a video path: diacritics folded,
// lower-cased, runs of anything but letters and digits collapsed to "-".
func ClipStem(video string) string {
	name := strings.TrimSuffix(filepath.Base(video), filepath.Ext(video))
	if stem := normalizePathSegment(name); stem != "" {
		return stem
	}
	return "video"
}

func normalizePathSegment(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
