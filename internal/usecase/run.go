package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forPelevin/highcut/internal/domain/highlights"
	"github.com/forPelevin/highcut/internal/domain/transcript"
	"github.com/forPelevin/highcut/internal/faults"
	"github.com/forPelevin/highcut/internal/jobs"
	"github.com/forPelevin/highcut/internal/types"
)

// Artifact names inside a job work dir.
const (
	HighlightFile  = "highlight.json"
	ClassifiedFile = "classified.json"
	FilteredFile   = "filtered.json"
)

type Input struct {
	Video     string
	WorkDir   string
	OutputDir string
	// Name overrides the clip stem derived from Video.
	Name string

	// Rules selects block grouping instead of model detection.
	Rules          bool
	MinLen, MaxLen float64
	DetectTemplate string
	Timed          bool

	Classify         bool
	ClassifyTemplate string
	Threshold        int

	BurnSubtitles     bool
	KeepIntermediates bool
	RemoveInput       bool
}

type Result struct {
	Transcript string
	Blocks     int
	Skipped    []transcript.SkippedLine
	Detected   []types.Segment
	Classified ClassifyResult
	Selected   []types.Segment
	Cut        CutResult
}

// Run executes a whole job: audio extraction, transcription, detection,
// optional classification and filtering, cutting and cleanup. Any stage
// error is published as the terminal status before being returned.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	res, err := u.run(ctx, in)
	if err != nil && u.d.Progress != nil {
		if ferr := u.d.Progress.Fail(err); ferr != nil {
			u.log(ctx).Error("publish failure", "error", ferr)
		}
	}
	return res, err
}

func (u Usecase) run(ctx context.Context, in Input) (Result, error) {
	var res Result
	if u.d.Audio == nil || u.d.Transcriber == nil {
		return res, faults.Wrap(faults.ErrConfiguration, "", "run", "audio extractor and transcriber are required", nil)
	}
	if err := os.MkdirAll(in.WorkDir, 0o755); err != nil {
		return res, fmt.Errorf("ensure work dir: %w", err)
	}
	name := in.Name
	if name == "" {
		name = ClipStem(in.Video)
	}
	audio := filepath.Join(in.WorkDir, name+".wav")
	srt := filepath.Join(in.WorkDir, name+".srt")
	res.Transcript = srt

	if err := u.stage(ctx, types.StageExtracting, "Extracting audio...", jobs.ProgressExtracting); err != nil {
		return res, err
	}
	if err := u.d.Audio.ExtractAudio(ctx, in.Video, audio); err != nil {
		return res, err
	}

	if err := u.stage(ctx, types.StageTranscribing, "Transcribing audio...", jobs.ProgressTranscribing); err != nil {
		return res, err
	}
	if err := u.d.Transcriber.Transcribe(ctx, audio, srt); err != nil {
		return res, err
	}
	parsed, err := transcript.ParseFile(srt)
	if err != nil {
		return res, faults.Wrap(faults.ErrMissingPrerequisite, "transcribing", "read transcript", srt, err)
	}
	res.Blocks = len(parsed.Blocks)
	res.Skipped = parsed.Skipped
	for _, s := range parsed.Skipped {
		u.log(ctx).Debug("transcript line skipped", "line", s.Line, "reason", s.Reason)
	}
	if len(parsed.Blocks) == 0 {
		return res, faults.Wrap(faults.ErrMissingPrerequisite, "transcribing", "read transcript", "no transcript blocks in "+srt, nil)
	}

	if err := u.stage(ctx, types.StageDetecting, "Detecting highlights...", jobs.ProgressDetecting); err != nil {
		return res, err
	}
	if in.Rules {
		res.Detected = u.Segment(ctx, parsed.Blocks, in.MinLen, in.MaxLen)
	} else {
		if res.Detected, err = u.Detect(ctx, parsed.Blocks, in.DetectTemplate, DetectOptions{Timed: in.Timed}); err != nil {
			return res, err
		}
	}
	if err := WriteJSON(filepath.Join(in.WorkDir, HighlightFile), res.Detected); err != nil {
		return res, err
	}
	res.Selected = res.Detected

	if in.Classify {
		if err := u.stage(ctx, types.StageClassifying, "Classifying highlights...", jobs.ProgressClassifying); err != nil {
			return res, err
		}
		if res.Classified, err = u.Classify(ctx, parsed.Blocks, res.Detected, in.ClassifyTemplate); err != nil {
			return res, err
		}
		if err := WriteJSON(filepath.Join(in.WorkDir, ClassifiedFile), res.Classified.Scored); err != nil {
			return res, err
		}
		res.Selected = highlights.Filter(res.Classified.Scored, in.Threshold)
		u.log(ctx).Info("highlights filtered", "kept", len(res.Selected), "scored", len(res.Classified.Scored), "threshold", in.Threshold)
		if err := WriteJSON(filepath.Join(in.WorkDir, FilteredFile), res.Selected); err != nil {
			return res, err
		}
	}

	if err := u.stage(ctx, types.StageCutting, "Cutting video...", jobs.ProgressCutting); err != nil {
		return res, err
	}
	if res.Cut, err = u.Cut(ctx, CutInput{
		Video:         in.Video,
		Segments:      res.Selected,
		WorkDir:       in.WorkDir,
		DestDir:       in.OutputDir,
		Name:          name,
		Blocks:        parsed.Blocks,
		BurnSubtitles: in.BurnSubtitles,
	}); err != nil {
		return res, err
	}

	if err := u.stage(ctx, types.StageCleaning, "Finishing and cleaning up...", jobs.ProgressCleaning); err != nil {
		return res, err
	}
	if !in.KeepIntermediates {
		for _, p := range []string{
			audio, srt,
			filepath.Join(in.WorkDir, HighlightFile),
			filepath.Join(in.WorkDir, ClassifiedFile),
			filepath.Join(in.WorkDir, FilteredFile),
		} {
			u.remove(ctx, p)
		}
	}
	if in.RemoveInput {
		u.remove(ctx, in.Video)
	}

	if err := u.stage(ctx, types.StageDone, "Done!", jobs.ProgressDone); err != nil {
		return res, err
	}
	return res, nil
}

// stage checks for cancellation before publishing the next stage.
func (u Usecase) stage(ctx context.Context, stage types.Stage, step string, progress int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return u.enter(stage, step, progress)
}

func (u Usecase) remove(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		u.log(ctx).Warn("cleanup failed", "path", path, "error", err)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadSegments loads a [{start,end}] or [{start,end,score,text}] artifact.
func ReadSegments(path string) ([]types.Segment, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return highlights.ParseSegments(string(b))
}

// ReadScored loads a classified.json artifact.
func ReadScored(path string) ([]types.ScoredSegment, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []types.ScoredSegment
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}
