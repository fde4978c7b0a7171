package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/forPelevin/highcut/internal/jobs"
	"github.com/forPelevin/highcut/internal/types"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// shouldColorize reports whether w is a terminal that accepts ANSI colors.
func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func stageColor(stage types.Stage) string {
	switch stage {
	case types.StageDone:
		return ansiGreen
	case types.StageFailed:
		return ansiRed
	case "", types.StageQueued:
		return ansiYellow
	default:
		return ansiBlue
	}
}

func progressBar(progress, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filled := progress * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func renderStatus(rep jobs.Report, colorize bool) string {
	var b strings.Builder
	stage := string(rep.Stage)
	if stage == "" {
		stage = "waiting"
	}
	line := fmt.Sprintf("%-12s %s %3d%%  %s", stage, progressBar(rep.Progress, 20), rep.Progress, rep.Step)
	if colorize {
		line = stageColor(rep.Stage) + line + ansiReset
	}
	b.WriteString(line)
	b.WriteByte('\n')
	if rep.Error != "" {
		fmt.Fprintf(&b, "error: %s\n", rep.Error)
	}
	if !rep.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "updated: %s\n", rep.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	if len(rep.Clips) > 0 {
		rows := make([][]string, 0, len(rep.Clips))
		for i, c := range rep.Clips {
			rows = append(rows, []string{fmt.Sprint(i + 1), c})
		}
		b.WriteString(renderTable([]string{"#", "Highlight"}, rows, []columnAlignment{alignRight, alignLeft}))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderClips(clips []types.Clip, discards []types.Discard) string {
	if len(clips) == 0 && len(discards) == 0 {
		return "no segments to cut\n"
	}
	rows := make([][]string, 0, len(clips)+len(discards))
	for _, c := range clips {
		rows = append(rows, []string{fmt.Sprint(c.Index), fmt.Sprintf("%.2f", c.Start), fmt.Sprintf("%.2f", c.End), c.File})
	}
	for _, d := range discards {
		rows = append(rows, []string{fmt.Sprint(d.Index), fmt.Sprintf("%.2f", d.Start), fmt.Sprintf("%.2f", d.End), "skipped: " + d.Reason})
	}
	return renderTable([]string{"#", "Start", "End", "Result"}, rows, []columnAlignment{alignRight, alignRight, alignRight, alignLeft}) + "\n"
}

func renderSegments(segs []types.Segment) string {
	rows := make([][]string, 0, len(segs))
	for i, s := range segs {
		rows = append(rows, []string{fmt.Sprint(i + 1), fmt.Sprintf("%.2f", s.Start), fmt.Sprintf("%.2f", s.End), fmt.Sprintf("%.2f", s.Duration())})
	}
	return renderTable([]string{"#", "Start", "End", "Length"}, rows, []columnAlignment{alignRight, alignRight, alignRight, alignRight}) + "\n"
}
