package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/forPelevin/highcut/internal/domain/highlights"
	"github.com/forPelevin/highcut/internal/domain/transcript"
	"github.com/forPelevin/highcut/internal/faults"
	"github.com/forPelevin/highcut/internal/jobs"
	"github.com/forPelevin/highcut/internal/ports"
	"github.com/forPelevin/highcut/internal/prompts"
	"github.com/forPelevin/highcut/internal/types"
)

// ClassifySystem keeps chat backends from wrapping the score in prose.
const ClassifySystem = "You rate video excerpts. Reply with a single integer score from 0 to 10."

// Ignored is a segment the classifier skipped, with the reason.
type Ignored struct {
	Segment types.Segment
	Reason  error
}

type ClassifyResult struct {
	Scored  []types.ScoredSegment
	Ignored []Ignored
}

// Classify scores every segment that has transcript text. Segments without
// text are recorded in Ignored; a generator failure aborts the stage.
func (u Usecase) Classify(ctx context.Context, blocks []types.TranscriptBlock, segments []types.Segment, template string) (ClassifyResult, error) {
	res := ClassifyResult{Scored: []types.ScoredSegment{}}
	if u.d.Generator == nil {
		return res, faults.Wrap(faults.ErrConfiguration, "classifying", "classify", "no generator configured", nil)
	}
	log := u.log(ctx)
	total := len(segments)
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		text := transcript.TextInRange(blocks, seg.Start, seg.End)
		if strings.TrimSpace(text) == "" {
			log.Warn("segment ignored", "start", seg.Start, "end", seg.End, "reason", faults.ErrEmptyTextSegment)
			res.Ignored = append(res.Ignored, Ignored{
				Segment: seg,
				Reason:  fmt.Errorf("%w: %.2f-%.2fs", faults.ErrEmptyTextSegment, seg.Start, seg.End),
			})
			continue
		}

		progress := jobs.ProgressClassifying + i*(jobs.ProgressCutting-jobs.ProgressClassifying)/total
		if err := u.update(fmt.Sprintf("Classifying segment (%d/%d)...", i+1, total), progress); err != nil {
			return res, err
		}

		reply, err := u.d.Generator.Generate(ctx, prompts.RenderClassification(template, text), ports.GenerateOptions{System: ClassifySystem})
		if err != nil {
			return res, err
		}
		score := highlights.ExtractScore(reply)
		log.Info("segment scored", "start", seg.Start, "end", seg.End, "score", score)
		res.Scored = append(res.Scored, types.ScoredSegment{
			Start: seg.Start,
			End:   seg.End,
			Score: score,
			Text:  text,
		})
	}
	return res, nil
}
