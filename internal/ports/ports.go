package ports

import (
	"context"

	"github.com/forPelevin/highcut/internal/types"
)

// GenerateOptions tune a single generation call.
type GenerateOptions struct {
	// System replaces the backend's default system instruction when set.
	System string
	// JSON asks the backend to constrain output to JSON.
	JSON bool
}

// Generator turns a prompt into raw model text.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// ReadinessChecker is implemented by backends that must make a model
// available before the first call.
type ReadinessChecker interface {
	EnsureReady(ctx context.Context) error
}

// MediaHandle is an opened video.
type MediaHandle interface {
	Duration() float64
	// Extract writes [start, end) to out. When subtitles is non-empty the
	// ASS file at that path is burned in.
	Extract(ctx context.Context, start, end float64, out, subtitles string) error
}

type MediaOpener interface {
	Open(ctx context.Context, path string) (MediaHandle, error)
}

type AudioExtractor interface {
	ExtractAudio(ctx context.Context, inVideo, outAudio string) error
}

// Transcriber writes an SRT transcript of audioPath to outSRT.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outSRT string) error
}

// ProgressTracker publishes job progress.
type ProgressTracker interface {
	Enter(stage types.Stage, step string, progress int) error
	Update(step string, progress int) error
	Fail(err error) error
}
