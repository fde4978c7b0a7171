package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/forPelevin/highcut/internal/faults"
	"github.com/forPelevin/highcut/internal/ports"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// ExtractAudio writes a mono 16 kHz WAV track, the format both transcription
// backends accept.
func (a *Adapter) ExtractAudio(ctx context.Context, inVideo, outAudio string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outAudio,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return faults.Wrap(faults.ErrExternalTool, "extracting", "ffmpeg extract audio", tail(b), err)
	}
	return nil
}

// Open probes the container duration once and returns a handle bound to it.
func (a *Adapter) Open(ctx context.Context, path string) (ports.MediaHandle, error) {
	dur, err := a.ProbeDuration(ctx, path)
	if err != nil {
		return nil, err
	}
	return &media{adapter: a, path: path, duration: dur}, nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, faults.Wrap(faults.ErrExternalTool, "cutting", "ffprobe duration", tail(b), err)
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, faults.Wrap(faults.ErrExternalTool, "cutting", "ffprobe duration", fmt.Sprintf("parse %q", s), err)
	}
	return sec, nil
}

type media struct {
	adapter  *Adapter
	path     string
	duration float64
}

func (m *media) Duration() float64 { return m.duration }

func (m *media) Extract(ctx context.Context, start, end float64, out, subtitles string) error {
	args := []string{
		"-y",
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", m.path,
	}
	if subtitles != "" {
		// Input seeking resets timestamps, so clip-local subtitles line up.
		args = append(args, "-vf", "subtitles="+escapeFilterPath(subtitles))
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		out,
	)
	cmd := exec.CommandContext(ctx, m.adapter.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return faults.Wrap(faults.ErrExternalTool, "cutting", "ffmpeg render clip", tail(b), err)
	}
	return nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	return p
}

// tail keeps the last lines of tool output; ffmpeg puts the reason at the end.
func tail(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) > 6 {
		lines = lines[len(lines)-6:]
	}
	return strings.Join(lines, "\n")
}
