package transcript

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/forPelevin/highcut/internal/types"
)

// SkippedLine is a non-blank line that was neither a cue index, a time
// range, nor cue text. Parsing continues past it.
type SkippedLine struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Result is the outcome of a permissive parse.
type Result struct {
	Blocks  []types.TranscriptBlock
	Skipped []SkippedLine
}

// Parse reads subtitle-style "index / time-range / text / blank" blocks.
// No line is fatal: stray or malformed lines are reported in Skipped and
// scanning resumes at the next time range. Only read errors are returned.
func Parse(r io.Reader) (Result, error) {
	lines, err := readLines(r)
	if err != nil {
		return Result{}, err
	}

	var res Result
	idx, n := 0, len(lines)
	for idx < n {
		for idx < n && !rangeRE.MatchString(lines[idx]) {
			if trimmed := strings.TrimSpace(lines[idx]); trimmed != "" && !cueIndexRE.MatchString(trimmed) {
				res.Skipped = append(res.Skipped, SkippedLine{Line: idx + 1, Text: trimmed, Reason: "expected cue index or time range"})
			}
			idx++
		}
		if idx >= n {
			break
		}

		start, end, _ := parseRange(lines[idx])
		rangeLine := idx
		idx++

		var text []string
		for idx < n && strings.TrimSpace(lines[idx]) != "" && !rangeRE.MatchString(lines[idx]) {
			text = append(text, strings.TrimSpace(lines[idx]))
			idx++
		}

		if end < start {
			res.Skipped = append(res.Skipped, SkippedLine{Line: rangeLine + 1, Text: strings.TrimSpace(lines[rangeLine]), Reason: "range ends before it starts"})
		} else {
			res.Blocks = append(res.Blocks, types.TranscriptBlock{Start: start, End: end, Text: strings.Join(text, " ")})
		}

		for idx < n && strings.TrimSpace(lines[idx]) == "" {
			idx++
		}
	}
	return res, nil
}

// ParseFile opens path and parses it.
func ParseFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()
	res, err := Parse(f)
	if err != nil {
		return Result{}, fmt.Errorf("read transcript %s: %w", path, err)
	}
	return res, nil
}

func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lines []string
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if len(lines) == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// TextInRange joins the text of every block overlapping [t0, t1).
func TextInRange(blocks []types.TranscriptBlock, t0, t1 float64) string {
	var parts []string
	for _, b := range blocks {
		if b.End > t0 && b.Start < t1 {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, " ")
}

// MaxEnd returns the latest block end, used as the estimated duration when
// the media itself has not been probed.
func MaxEnd(blocks []types.TranscriptBlock) float64 {
	var last float64
	for _, b := range blocks {
		if b.End > last {
			last = b.End
		}
	}
	return last
}

// PlainText joins all cue text with single spaces.
func PlainText(blocks []types.TranscriptBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if t := strings.TrimSpace(b.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// TimedText renders one "[start-end] text" line per block.
func TimedText(blocks []types.TranscriptBlock) string {
	var b strings.Builder
	for _, blk := range blocks {
		t := strings.TrimSpace(blk.Text)
		if t == "" {
			continue
		}
		fmt.Fprintf(&b, "[%.2f-%.2f] %s\n", blk.Start, blk.End, t)
	}
	return strings.TrimRight(b.String(), "\n")
}

// WriteSRT serializes blocks in the layout Parse reads.
func WriteSRT(w io.Writer, blocks []types.TranscriptBlock) error {
	bw := bufio.NewWriter(w)
	for i, b := range blocks {
		text := strings.Join(strings.Fields(b.Text), " ")
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", i+1, FormatTimestamp(b.Start), FormatTimestamp(b.End), text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSRTFile writes blocks to path.
func WriteSRTFile(path string, blocks []types.TranscriptBlock) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create srt: %w", err)
	}
	if err := WriteSRT(f, blocks); err != nil {
		_ = f.Close()
		return fmt.Errorf("write srt: %w", err)
	}
	return f.Close()
}
