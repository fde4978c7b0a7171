package usecase

import (
	"context"
	"errors"

	"github.com/forPelevin/highcut/internal/domain/highlights"
	"github.com/forPelevin/highcut/internal/domain/transcript"
	"github.com/forPelevin/highcut/internal/faults"
	"github.com/forPelevin/highcut/internal/ports"
	"github.com/forPelevin/highcut/internal/prompts"
	"github.com/forPelevin/highcut/internal/types"
)

type DetectOptions struct {
	// Timed feeds the model "[start-end] text" lines instead of plain text.
	Timed bool
	// System overrides the backend's default system instruction.
	System string
}

// Detect asks the model for highlight ranges over the whole transcript.
func (u Usecase) Detect(ctx context.Context, blocks []types.TranscriptBlock, template string, opts DetectOptions) ([]types.Segment, error) {
	if u.d.Generator == nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "detecting", "detect", "no generator configured", nil)
	}
	if len(blocks) == 0 {
		return nil, faults.Wrap(faults.ErrMissingPrerequisite, "detecting", "detect", "transcript has no blocks", nil)
	}
	text := transcript.PlainText(blocks)
	if opts.Timed {
		text = transcript.TimedText(blocks)
	}
	pc := types.PromptContext{TranscriptText: text, Duration: transcript.MaxEnd(blocks)}
	prompt := prompts.RenderDetection(template, pc)

	if rc, ok := u.d.Generator.(ports.ReadinessChecker); ok {
		if err := rc.EnsureReady(ctx); err != nil {
			return nil, err
		}
	}

	log := u.log(ctx)
	log.Info("requesting highlights", "blocks", len(blocks), "duration", pc.Duration, "prompt_chars", len(prompt))
	raw, err := u.d.Generator.Generate(ctx, prompt, ports.GenerateOptions{System: opts.System, JSON: true})
	if err != nil {
		return nil, err
	}
	segs, err := highlights.ParseSegments(raw)
	if err != nil {
		var ue *faults.UnparseableResponseError
		if errors.As(err, &ue) {
			log.Warn("model output not parseable", "raw", faults.Snippet(ue.Raw, 300))
		}
		return nil, err
	}
	log.Info("highlights detected", "count", len(segs))
	return segs, nil
}

// Segment groups transcript blocks into highlight windows without a model.
func (u Usecase) Segment(ctx context.Context, blocks []types.TranscriptBlock, minLen, maxLen float64) []types.Segment {
	segs := highlights.GroupBlocks(blocks, minLen, maxLen)
	u.log(ctx).Info("rule-based windows", "blocks", len(blocks), "windows", len(segs), "min_len", minLen, "max_len", maxLen)
	if segs == nil {
		return []types.Segment{}
	}
	return segs
}
