package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/forPelevin/highcut/internal/logging"
	"github.com/forPelevin/highcut/internal/types"
)

// Progress checkpoints published on stage entry.
const (
	ProgressExtracting   = 5
	ProgressTranscribing = 20
	ProgressDetecting    = 40
	ProgressClassifying  = 60
	ProgressCutting      = 80
	ProgressCleaning     = 95
	ProgressDone         = 100
)

// ErrInvalidTransition is returned for edges the state machine forbids.
var ErrInvalidTransition = errors.New("invalid job transition")

// Status is the persisted progress record of one job.
type Status struct {
	JobID     string      `json:"job_id"`
	Step      string      `json:"step"`
	Progress  int         `json:"progress"`
	Stage     types.Stage `json:"stage"`
	Error     string      `json:"error,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Tracker owns the status file of a single job. Every change rewrites the
// whole file through a temp file and rename, so readers never see a partial
// record.
type Tracker struct {
	mu     sync.Mutex
	dir    string
	cur    Status
	logger *slog.Logger
	now    func() time.Time
}

// StatusPath is where the record of job id lives inside dir.
func StatusPath(dir, id string) string {
	return filepath.Join(dir, "status_"+id+".json")
}

// NewTracker creates dir if needed and publishes the queued state.
func NewTracker(dir, id string, logger *slog.Logger) (*Tracker, error) {
	if id == "" {
		return nil, errors.New("job id is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure status dir: %w", err)
	}
	t := &Tracker{
		dir:    dir,
		logger: logging.Component(logger, "jobs").With(logging.FieldJobID, id),
		now:    time.Now,
	}
	t.cur = Status{JobID: id, Step: "Queued", Stage: types.StageQueued}
	if err := t.publishLocked(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tracker) Path() string { return StatusPath(t.dir, t.cur.JobID) }

// Current returns a snapshot of the last published record.
func (t *Tracker) Current() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cur
}

// Enter moves the job into stage and publishes step at progress.
func (t *Tracker) Enter(stage types.Stage, step string, progress int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if stage == types.StageFailed {
		return fmt.Errorf("%w: use Fail to enter %s", ErrInvalidTransition, stage)
	}
	if stage != t.cur.Stage && !isValidTransition(t.cur.Stage, stage) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.cur.Stage, stage)
	}
	t.cur.Stage = stage
	t.cur.Step = step
	t.cur.Progress = clampProgress(progress)
	t.logger.Info("stage", logging.FieldStage, string(stage), "step", step, "progress", t.cur.Progress)
	return t.publishLocked()
}

// Update publishes a new step within the current stage.
func (t *Tracker) Update(step string, progress int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur.Stage.Terminal() {
		return fmt.Errorf("%w: job already %s", ErrInvalidTransition, t.cur.Stage)
	}
	t.cur.Step = step
	t.cur.Progress = clampProgress(progress)
	t.logger.Debug("progress", "step", step, "progress", t.cur.Progress)
	return t.publishLocked()
}

// Done publishes the terminal success record.
func (t *Tracker) Done() error {
	return t.Enter(types.StageDone, "Done", ProgressDone)
}

// Fail publishes a terminal failure at 100%. Cancellation is reported as
// "Cancelled" rather than as an error.
func (t *Tracker) Fail(cause error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur.Stage.Terminal() {
		return nil
	}
	step := fmt.Sprintf("Failed while %s", t.cur.Stage)
	msg := ""
	switch {
	case cause == nil:
	case errors.Is(cause, context.Canceled):
		step = "Cancelled"
		msg = "cancelled"
	default:
		msg = cause.Error()
		step = step + ": " + msg
	}
	t.cur.Stage = types.StageFailed
	t.cur.Step = step
	t.cur.Error = msg
	t.cur.Progress = ProgressDone
	t.logger.Error("job failed", "error", msg)
	return t.publishLocked()
}

func (t *Tracker) publishLocked() error {
	t.cur.UpdatedAt = t.now().UTC()
	b, err := json.MarshalIndent(t.cur, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(StatusPath(t.dir, t.cur.JobID), b)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write status: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write status: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}

func clampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// isValidTransition enforces the forward-only pipeline order. A queued job may
// start at any stage so single-stage commands can report progress.
// Classification and cleanup may be skipped; any live stage may fail.
func isValidTransition(from, to types.Stage) bool {
	if to == types.StageFailed {
		return !from.Terminal()
	}
	switch from {
	case types.StageQueued:
		return !to.Terminal()
	case types.StageExtracting:
		return to == types.StageTranscribing
	case types.StageTranscribing:
		return to == types.StageDetecting
	case types.StageDetecting:
		return to == types.StageClassifying || to == types.StageCutting || to == types.StageCleaning || to == types.StageDone
	case types.StageClassifying:
		return to == types.StageCutting || to == types.StageCleaning || to == types.StageDone
	case types.StageCutting:
		return to == types.StageCleaning || to == types.StageDone
	case types.StageCleaning:
		return to == types.StageDone
	default:
		return false
	}
}
