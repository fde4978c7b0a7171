package whispercpp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/forPelevin/highcut/internal/faults"
)

// Adapter runs a local whisper.cpp binary and keeps its SRT output.
type Adapter struct {
	bin      string
	model    string
	language string
}

func New(binPath, modelPath, language string) *Adapter {
	if binPath == "" {
		binPath = "whisper-cli"
	}
	return &Adapter{bin: binPath, model: modelPath, language: strings.TrimSpace(language)}
}

func (a *Adapter) Transcribe(ctx context.Context, audioPath, outSRT string) error {
	if a.model == "" {
		return faults.Wrap(faults.ErrConfiguration, "transcribing", "whisper.cpp", "model path is not set", nil)
	}
	outPrefix := strings.TrimSuffix(outSRT, ".srt")
	args := []string{
		"-m", a.model,
		"-f", audioPath,
		"-osrt",
		"-of", outPrefix,
	}
	if a.language != "" {
		args = append(args, "-l", a.language)
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return faults.Wrap(faults.ErrExternalTool, "transcribing", "whisper.cpp", strings.TrimSpace(string(b)), err)
	}

	produced := outPrefix + ".srt"
	if produced != outSRT {
		if err := os.Rename(produced, outSRT); err != nil {
			return fmt.Errorf("move whisper output: %w", err)
		}
	}
	if _, err := os.Stat(outSRT); err != nil {
		return faults.Wrap(faults.ErrMissingPrerequisite, "transcribing", "whisper.cpp", "no srt produced", err)
	}
	return nil
}
