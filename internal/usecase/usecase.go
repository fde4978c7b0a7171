package usecase

import (
	"context"
	"log/slog"

	"github.com/forPelevin/highcut/internal/logging"
	"github.com/forPelevin/highcut/internal/ports"
	"github.com/forPelevin/highcut/internal/types"
)

// Deps are the collaborators a job talks to. Only the ports a given stage
// needs must be set; Progress and Logger may be nil.
type Deps struct {
	Generator   ports.Generator
	Media       ports.MediaOpener
	Audio       ports.AudioExtractor
	Transcriber ports.Transcriber
	Progress    ports.ProgressTracker
	Logger      *slog.Logger
}

type Usecase struct {
	d      Deps
	logger *slog.Logger
}

func New(d Deps) Usecase {
	return Usecase{d: d, logger: logging.Component(d.Logger, "usecase")}
}

func (u Usecase) enter(stage types.Stage, step string, progress int) error {
	if u.d.Progress == nil {
		return nil
	}
	return u.d.Progress.Enter(stage, step, progress)
}

func (u Usecase) update(step string, progress int) error {
	if u.d.Progress == nil {
		return nil
	}
	return u.d.Progress.Update(step, progress)
}

func (u Usecase) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, u.logger)
}
