package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/forPelevin/highcut/internal/domain/subtitles"
	"github.com/forPelevin/highcut/internal/faults"
	"github.com/forPelevin/highcut/internal/jobs"
	"github.com/forPelevin/highcut/internal/types"
)

type CutInput struct {
	Video    string
	Segments []types.Segment
	// WorkDir receives the freshly cut clips.
	WorkDir string
	// DestDir, when set and different from WorkDir, is where clips are moved.
	DestDir string
	// Name is the clip file stem; clips are named <Name>_highlight<idx>.mp4.
	Name string
	// Blocks feed the burned-in subtitles when BurnSubtitles is set.
	Blocks        []types.TranscriptBlock
	BurnSubtitles bool
}

type CutResult struct {
	Duration float64
	Clips    []types.Clip
	Discards []types.Discard
	// MoveErrors holds relocation failures; those clips stay in WorkDir.
	MoveErrors []error
}

// Cut materializes segments from the video in order. Segments that start at
// or past the end of the media, or that are empty after clamping the end to
// the media duration, are discarded. An extraction failure aborts the stage.
func (u Usecase) Cut(ctx context.Context, in CutInput) (CutResult, error) {
	var res CutResult
	if u.d.Media == nil {
		return res, faults.Wrap(faults.ErrConfiguration, "cutting", "cut", "no media opener configured", nil)
	}
	if err := os.MkdirAll(in.WorkDir, 0o755); err != nil {
		return res, fmt.Errorf("ensure work dir: %w", err)
	}
	name := in.Name
	if name == "" {
		name = ClipStem(in.Video)
	}

	media, err := u.d.Media.Open(ctx, in.Video)
	if err != nil {
		return res, err
	}
	duration := media.Duration()
	res.Duration = duration
	log := u.log(ctx)
	log.Info("cutting", "video", in.Video, "duration", duration, "segments", len(in.Segments))

	total := len(in.Segments)
	for i, seg := range in.Segments {
		idx := i + 1
		if err := ctx.Err(); err != nil {
			return res, err
		}
		start, end := seg.Start, seg.End
		if start < 0 {
			start = 0
		}
		if start >= duration {
			res.Discards = append(res.Discards, discard(idx, seg, fmt.Sprintf("%v: starts at %.2fs, media ends at %.2fs", faults.ErrBoundaryViolation, start, duration)))
			log.Warn("segment skipped", "index", idx, "start", start, "reason", "outside media")
			continue
		}
		if end > duration {
			log.Warn("segment end clamped", "index", idx, "from", end, "to", duration)
			end = duration
		}
		if start >= end {
			res.Discards = append(res.Discards, discard(idx, seg, fmt.Sprintf("%v: start %.2fs >= end %.2fs", faults.ErrBoundaryViolation, start, end)))
			log.Warn("segment skipped", "index", idx, "start", start, "end", end, "reason", "empty range")
			continue
		}

		progress := jobs.ProgressCutting + (idx-1)*(jobs.ProgressCleaning-jobs.ProgressCutting)/total
		if err := u.update(fmt.Sprintf("Cutting video (%d/%d)...", idx, total), progress); err != nil {
			return res, err
		}

		out := filepath.Join(in.WorkDir, fmt.Sprintf("%s_highlight%d.mp4", name, idx))
		subs := ""
		if in.BurnSubtitles {
			if script, ok := subtitles.RenderClipASS(in.Blocks, start, end); ok {
				subs = filepath.Join(in.WorkDir, fmt.Sprintf("%s_clip%d.ass", name, idx))
				if err := os.WriteFile(subs, []byte(script), 0o644); err != nil {
					return res, fmt.Errorf("write subtitles: %w", err)
				}
			}
		}
		if err := media.Extract(ctx, start, end, out, subs); err != nil {
			return res, err
		}
		if subs != "" {
			_ = os.Remove(subs)
		}
		log.Info("clip written", "index", idx, "start", start, "end", end, "file", out)

		final := out
		if in.DestDir != "" {
			moved, err := relocate(out, in.DestDir)
			if err != nil {
				res.MoveErrors = append(res.MoveErrors, err)
				log.Error("clip relocation failed", "index", idx, "error", err)
			} else {
				final = moved
			}
		}
		res.Clips = append(res.Clips, types.Clip{Index: idx, Start: start, End: end, File: final})
	}
	log.Info("cutting finished", "clips", len(res.Clips), "discarded", len(res.Discards))
	return res, nil
}

func discard(idx int, seg types.Segment, reason string) types.Discard {
	return types.Discard{Index: idx, Start: seg.Start, End: seg.End, Reason: reason}
}

// relocate moves path into dir, falling back to copy and remove when a
// rename is not possible (another filesystem). The source is left in place
// on failure.
func relocate(path, dir string) (string, error) {
	dest := filepath.Join(dir, filepath.Base(path))
	absSrc, err1 := filepath.Abs(path)
	absDst, err2 := filepath.Abs(dest)
	if err1 == nil && err2 == nil && absSrc == absDst {
		return path, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, faults.Wrap(faults.ErrRelocation, "cutting", "move clip", path, err)
	}
	renameErr := os.Rename(path, dest)
	if renameErr == nil {
		return dest, nil
	}
	if err := copyFile(path, dest); err != nil {
		_ = os.Remove(dest)
		return path, faults.Wrap(faults.ErrRelocation, "cutting", "move clip", path, errors.Join(renameErr, err))
	}
	_ = os.Remove(path)
	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
