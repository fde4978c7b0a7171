package subtitles

import (
	"fmt"
	"math"
	"strings"

	"github.com/forPelevin/highcut/internal/types"
)

// RenderClipASS renders the transcript overlapping [start, end) as an ASS
// script whose times are relative to the clip start. Blocks carry no word
// timing, so each block's duration is split evenly across its words. ok is
// false when the window holds no text.
func RenderClipASS(blocks []types.TranscriptBlock, start, end float64) (script string, ok bool) {
	words := clipWords(blocks, start, end)
	if len(words) == 0 {
		return "", false
	}
	return renderKaraoke(packLines(words)), true
}

type word struct {
	Start float64
	End   float64
	Text  string
}

type line struct {
	Start float64
	End   float64
	Words []word
}

func clipWords(blocks []types.TranscriptBlock, start, end float64) []word {
	var out []word
	for _, b := range blocks {
		if b.End <= start || b.Start >= end {
			continue
		}
		fields := strings.Fields(b.Text)
		if len(fields) == 0 {
			continue
		}
		step := (b.End - b.Start) / float64(len(fields))
		for i, f := range fields {
			ws := b.Start + step*float64(i)
			we := ws + step
			if we <= start || ws >= end {
				continue
			}
			ws = math.Max(ws, start)
			we = math.Min(we, end)
			out = append(out, word{Start: ws - start, End: we - start, Text: sanitizeASS(f)})
		}
	}
	return out
}

// packLines keeps lines short enough for a single row on screen.
func packLines(words []word) []line {
	const (
		charBudget = 42
		wordBudget = 9
	)
	var out []line
	cur := line{Start: words[0].Start}
	width := 0
	for _, w := range words {
		wl := len([]rune(w.Text))
		next := wl
		if width > 0 {
			next += width + 1
		}
		if len(cur.Words) > 0 && (len(cur.Words) >= wordBudget || next > charBudget) {
			cur.End = cur.Words[len(cur.Words)-1].End
			out = append(out, cur)
			cur = line{Start: w.Start}
			next = wl
		}
		cur.Words = append(cur.Words, w)
		width = next
	}
	cur.End = cur.Words[len(cur.Words)-1].End
	return append(out, cur)
}

func renderKaraoke(lines []line) string {
	var b strings.Builder
	b.WriteString(assHeader)
	b.WriteString("\n\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, ln := range lines {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Clip,,0,0,0,,", assTime(ln.Start), assTime(ln.End))
		for i, w := range ln.Words {
			cs := int(math.Round((w.End - w.Start) * 100))
			if cs < 1 {
				cs = 1
			}
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "{\\k%d}%s", cs, w.Text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

const assHeader = `[Script Info]
ScriptType: v4.00+
PlayResX: 1920
PlayResY: 1080
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Clip, Inter, 72, &H00FFFFFF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,5,2,2, 80,80,80,1`

// assTime formats seconds as H:MM:SS.cc.
func assTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	cs := int64(math.Floor(sec*100 + 1e-6))
	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}
