package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/forPelevin/highcut/internal/config"
	"github.com/forPelevin/highcut/internal/faults"
	"github.com/forPelevin/highcut/internal/jobs"
	"github.com/forPelevin/highcut/internal/llm"
	"github.com/forPelevin/highcut/internal/logging"
	"github.com/forPelevin/highcut/internal/ports"
	"github.com/forPelevin/highcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/highcut/internal/usecase"
)

// ErrJobRunning is returned when another process holds the job lock.
var ErrJobRunning = errors.New("job is already running")

var jobIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Options struct {
	Input string
	// JobID is generated when empty.
	JobID string
	// DetectPrompt overrides the configured detection prompt name.
	DetectPrompt string
	Logger       *slog.Logger
}

type Outcome struct {
	JobID      string
	WorkDir    string
	StatusPath string
	Result     usecase.Result
}

// NewJobID returns a random hex job identifier.
func NewJobID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidJobID reports whether id is safe to embed in file names.
func ValidJobID(id string) bool { return jobIDRE.MatchString(id) }

// ClipName is the clip file stem for a job: the job id keeps clips of
// different jobs apart in a shared output directory.
func ClipName(jobID, video string) string {
	return jobID + "_" + usecase.ClipStem(video)
}

func checkInput(path string) (string, error) {
	input, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(input)
	if err != nil {
		return "", faults.Wrap(faults.ErrMissingPrerequisite, "", "run", "input video", err)
	}
	if info.IsDir() {
		return "", faults.Wrap(faults.ErrMissingPrerequisite, "", "run", input+" is a directory", nil)
	}
	return input, nil
}

// Run executes one job end to end under an exclusive per-job lock.
func Run(ctx context.Context, cfg *config.Config, opts Options) (Outcome, error) {
	jobID := opts.JobID
	if jobID == "" {
		jobID = NewJobID()
	}
	out := Outcome{JobID: jobID}
	if !ValidJobID(jobID) {
		return out, faults.Wrap(faults.ErrConfiguration, "", "run", fmt.Sprintf("invalid job id %q", jobID), nil)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return out, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.FieldJobID, jobID)
	ctx = logging.WithJobID(ctx, jobID)

	lock := flock.New(filepath.Join(cfg.Paths.WorkDir, jobID+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return out, fmt.Errorf("acquire job lock: %w", err)
	}
	if !locked {
		return out, fmt.Errorf("%w: %s", ErrJobRunning, jobID)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	out.WorkDir = filepath.Join(cfg.Paths.WorkDir, jobID)
	tracker, err := jobs.NewTracker(cfg.Paths.OutputDir, jobID, logger)
	if err != nil {
		return out, err
	}
	out.StatusPath = tracker.Path()

	input, err := checkInput(opts.Input)
	if err != nil {
		_ = tracker.Fail(err)
		return out, err
	}

	deps, tpl, err := buildDeps(cfg, opts, logger)
	if err != nil {
		_ = tracker.Fail(err)
		return out, err
	}
	deps.Progress = tracker

	logger.Info("job started", "input", input, "work_dir", out.WorkDir, "output_dir", cfg.Paths.OutputDir)
	uc := usecase.New(deps)
	out.Result, err = uc.Run(ctx, usecase.Input{
		Video:             input,
		WorkDir:           out.WorkDir,
		Name:              ClipName(jobID, input),
		OutputDir:         cfg.Paths.OutputDir,
		Rules:             cfg.Detection.Mode == config.ModeRules,
		MinLen:            cfg.Segmentation.MinLen,
		MaxLen:            cfg.Segmentation.MaxLen,
		DetectTemplate:    tpl.Detect.Text,
		Timed:             cfg.Detection.TimedTranscript,
		Classify:          cfg.Classification.Enabled,
		ClassifyTemplate:  tpl.Classify.Text,
		Threshold:         cfg.Classification.Threshold,
		BurnSubtitles:     cfg.Media.BurnSubtitles,
		KeepIntermediates: cfg.Cleanup.KeepIntermediates,
		RemoveInput:       cfg.Cleanup.RemoveInput,
	})
	if !cfg.Cleanup.KeepIntermediates {
		// Only succeeds when the work dir is empty.
		_ = os.Remove(out.WorkDir)
	}
	if err != nil {
		logger.Error("job failed", "error", err)
		return out, err
	}
	logger.Info("job finished", "clips", len(out.Result.Cut.Clips), "discarded", len(out.Result.Cut.Discards))
	return out, nil
}

func buildDeps(cfg *config.Config, opts Options, logger *slog.Logger) (usecase.Deps, Templates, error) {
	deps := usecase.Deps{Logger: logger}
	media := NewMedia(cfg)
	deps.Media = media
	deps.Audio = media

	tr, err := NewTranscriber(cfg, logger)
	if err != nil {
		return deps, Templates{}, err
	}
	deps.Transcriber = tr

	if cfg.NeedsLLM() {
		if deps.Generator, err = llm.New(cfg.LLM, logger); err != nil {
			return deps, Templates{}, err
		}
	}
	tpl, err := LoadTemplates(cfg, opts.DetectPrompt, logger)
	if err != nil {
		return deps, Templates{}, err
	}
	return deps, tpl, nil
}

// ensure adapters implement ports
var (
	_ ports.MediaOpener    = (*ffmpeg.Adapter)(nil)
	_ ports.AudioExtractor = (*ffmpeg.Adapter)(nil)
)
