//go:build integration

package itest

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

// probeClip reports the container duration of a clip and whether it carries
// an audio stream.
func probeClip(path string) (float64, bool, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration:stream=codec_type",
		"-of", "json",
		path,
	)
	b, err := cmd.Output()
	if err != nil {
		return 0, false, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	var pf probeFormat
	if err := json.Unmarshal(b, &pf); err != nil {
		return 0, false, fmt.Errorf("decode ffprobe output: %w", err)
	}
	sec, err := strconv.ParseFloat(pf.Format.Duration, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse duration %q: %w", pf.Format.Duration, err)
	}
	hasAudio := false
	for _, s := range pf.Streams {
		if s.CodecType == "audio" {
			hasAudio = true
		}
	}
	return sec, hasAudio, nil
}
