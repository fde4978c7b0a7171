package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/forPelevin/highcut/internal/config"
	"github.com/forPelevin/highcut/internal/domain/highlights"
	"github.com/forPelevin/highcut/internal/domain/transcript"
	"github.com/forPelevin/highcut/internal/jobs"
	"github.com/forPelevin/highcut/internal/llm"
	"github.com/forPelevin/highcut/internal/pipeline"
	"github.com/forPelevin/highcut/internal/types"
	"github.com/forPelevin/highcut/internal/usecase"
)

// emit writes v to path as JSON, or to w when path is empty.
func emit(w io.Writer, path string, v any) error {
	if path != "" {
		return usecase.WriteJSON(path, v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadBlocks(path string) ([]types.TranscriptBlock, error) {
	parsed, err := transcript.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if len(parsed.Blocks) == 0 {
		return nil, fmt.Errorf("%s: no transcript blocks", path)
	}
	return parsed.Blocks, nil
}

func newSegmentCommand(cc *commandContext) *cobra.Command {
	var (
		minLen, maxLen float64
		out            string
	)
	cmd := &cobra.Command{
		Use:   "segment <transcript.srt>",
		Short: "Group transcript blocks into fixed-length windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min") {
				minLen = cfg.Segmentation.MinLen
			}
			if !cmd.Flags().Changed("max") {
				maxLen = cfg.Segmentation.MaxLen
			}
			if minLen < 0 || maxLen <= 0 || maxLen < minLen {
				return fmt.Errorf("invalid window bounds min=%.2f max=%.2f", minLen, maxLen)
			}
			logger, err := cc.ensureLogger()
			if err != nil {
				return err
			}
			blocks, err := loadBlocks(args[0])
			if err != nil {
				return err
			}
			segs := usecase.New(usecase.Deps{Logger: logger}).Segment(cmd.Context(), blocks, minLen, maxLen)
			if err := emit(cmd.OutOrStdout(), out, segs); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprint(cmd.OutOrStdout(), renderSegments(segs))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&minLen, "min", 0, "Minimum window length in seconds")
	cmd.Flags().Float64Var(&maxLen, "max", 0, "Maximum window length in seconds")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write segments JSON to this file")
	return cmd
}

func newDetectCommand(cc *commandContext) *cobra.Command {
	var (
		prompt string
		timed  bool
		out    string
	)
	cmd := &cobra.Command{
		Use:   "detect <transcript.srt>",
		Short: "Ask the language model for highlight ranges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cc.ensureLogger()
			if err != nil {
				return err
			}
			gen, err := llm.New(cfg.LLM, logger)
			if err != nil {
				return err
			}
			tpl, err := pipeline.LoadTemplates(cfg, prompt, logger)
			if err != nil {
				return err
			}
			blocks, err := loadBlocks(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("timed") {
				timed = cfg.Detection.TimedTranscript
			}
			uc := usecase.New(usecase.Deps{Generator: gen, Logger: logger})
			segs, err := uc.Detect(cmd.Context(), blocks, tpl.Detect.Text, usecase.DetectOptions{Timed: timed})
			if err != nil {
				return err
			}
			if err := emit(cmd.OutOrStdout(), out, segs); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprint(cmd.OutOrStdout(), renderSegments(segs))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "Detection prompt name")
	cmd.Flags().BoolVar(&timed, "timed", false, "Send the transcript with timestamps")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write segments JSON to this file")
	return cmd
}

func newClassifyCommand(cc *commandContext) *cobra.Command {
	var (
		prompt string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "classify <transcript.srt> <highlight.json>",
		Short: "Score each highlight with the language model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			if prompt != "" {
				cfg.Classification.Prompt = prompt
			}
			logger, err := cc.ensureLogger()
			if err != nil {
				return err
			}
			gen, err := llm.New(cfg.LLM, logger)
			if err != nil {
				return err
			}
			tpl, err := pipeline.LoadTemplates(&cfg, "", logger)
			if err != nil {
				return err
			}
			blocks, err := loadBlocks(args[0])
			if err != nil {
				return err
			}
			segs, err := usecase.ReadSegments(args[1])
			if err != nil {
				return err
			}
			res, err := usecase.New(usecase.Deps{Generator: gen, Logger: logger}).Classify(cmd.Context(), blocks, segs, tpl.Classify.Text)
			if err != nil {
				return err
			}
			for _, ig := range res.Ignored {
				fmt.Fprintf(cmd.ErrOrStderr(), "ignored: %v\n", ig.Reason)
			}
			return emit(cmd.OutOrStdout(), out, res.Scored)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "Classification prompt name")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write scored segments JSON to this file")
	return cmd
}

func newFilterCommand(cc *commandContext) *cobra.Command {
	var (
		threshold int
		out       string
	)
	cmd := &cobra.Command{
		Use:   "filter <classified.json>",
		Short: "Keep highlights scoring at or above the threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Classification.Threshold
			}
			scored, err := usecase.ReadScored(args[0])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), out, highlights.Filter(scored, threshold))
		},
	}
	cmd.Flags().IntVar(&threshold, "threshold", 0, "Minimum score to keep")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write filtered segments JSON to this file")
	return cmd
}

func newCutCommand(cc *commandContext) *cobra.Command {
	var (
		outputDir string
		workDir   string
		srt       string
		burnSubs  bool
		jobID     string
	)
	cmd := &cobra.Command{
		Use:   "cut <video> <segments.json>",
		Short: "Cut clips for the given segments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cc.ensureLogger()
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = cfg.Paths.OutputDir
			}
			if outputDir, err = config.ExpandPath(outputDir); err != nil {
				return err
			}
			if workDir == "" {
				workDir = outputDir
			}
			if !cmd.Flags().Changed("burn-subtitles") {
				burnSubs = cfg.Media.BurnSubtitles
			}
			segs, err := usecase.ReadSegments(args[1])
			if err != nil {
				return err
			}
			var blocks []types.TranscriptBlock
			if burnSubs {
				if srt == "" {
					return fmt.Errorf("--burn-subtitles needs --transcript")
				}
				if blocks, err = loadBlocks(srt); err != nil {
					return err
				}
			}

			deps := usecase.Deps{Media: pipeline.NewMedia(cfg), Logger: logger}
			var (
				tracker *jobs.Tracker
				name    string
			)
			if jobID != "" {
				if !pipeline.ValidJobID(jobID) {
					return fmt.Errorf("invalid job id %q", jobID)
				}
				if tracker, err = jobs.NewTracker(outputDir, jobID, logger); err != nil {
					return err
				}
				deps.Progress = tracker
				name = pipeline.ClipName(jobID, args[0])
				if err := tracker.Enter(types.StageCutting, "Cutting video...", jobs.ProgressCutting); err != nil {
					return err
				}
			}

			res, err := usecase.New(deps).Cut(cmd.Context(), usecase.CutInput{
				Video:         args[0],
				Segments:      segs,
				WorkDir:       workDir,
				DestDir:       outputDir,
				Name:          name,
				Blocks:        blocks,
				BurnSubtitles: burnSubs,
			})
			if err != nil {
				if tracker != nil {
					_ = tracker.Fail(err)
				}
				return err
			}
			if tracker != nil {
				if err := tracker.Done(); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), renderClips(res.Clips, res.Discards))
			for _, moveErr := range res.MoveErrors {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", moveErr)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for finished clips")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "Directory clips are cut into before being moved")
	cmd.Flags().StringVar(&srt, "transcript", "", "SRT transcript used for burned-in subtitles")
	cmd.Flags().BoolVar(&burnSubs, "burn-subtitles", false, "Burn karaoke subtitles into each clip")
	cmd.Flags().StringVar(&jobID, "job-id", "", "Publish progress to status_<job-id>.json")
	return cmd
}
