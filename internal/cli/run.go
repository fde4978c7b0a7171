package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/highcut/internal/config"
	"github.com/forPelevin/highcut/internal/pipeline"
)

func newRunCommand(cc *commandContext) *cobra.Command {
	var (
		jobID       string
		prompt      string
		outputDir   string
		mode        string
		noClassify  bool
		keep        bool
		burnSubs    bool
		removeInput bool
	)
	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Run the whole pipeline on a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			if outputDir != "" {
				if cfg.Paths.OutputDir, err = config.ExpandPath(outputDir); err != nil {
					return err
				}
			}
			if mode != "" {
				cfg.Detection.Mode = mode
			}
			if cmd.Flags().Changed("no-classify") {
				cfg.Classification.Enabled = !noClassify
			}
			if cmd.Flags().Changed("keep-intermediates") {
				cfg.Cleanup.KeepIntermediates = keep
			}
			if cmd.Flags().Changed("burn-subtitles") {
				cfg.Media.BurnSubtitles = burnSubs
			}
			if cmd.Flags().Changed("remove-input") {
				cfg.Cleanup.RemoveInput = removeInput
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger, err := cc.ensureLogger()
			if err != nil {
				return err
			}

			out, err := pipeline.Run(cmd.Context(), &cfg, pipeline.Options{
				Input:        args[0],
				JobID:        jobID,
				DetectPrompt: prompt,
				Logger:       logger,
			})
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "job: %s\n", out.JobID)
			if out.StatusPath != "" {
				fmt.Fprintf(w, "status: %s\n", out.StatusPath)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(w, renderClips(out.Result.Cut.Clips, out.Result.Cut.Discards))
			for _, moveErr := range out.Result.Cut.MoveErrors {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", moveErr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&jobID, "job-id", "", "Job identifier (generated when empty)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Detection prompt name from the prompts directory")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for clips and the status file")
	cmd.Flags().StringVar(&mode, "mode", "", "Detection mode: llm or rules")
	cmd.Flags().BoolVar(&noClassify, "no-classify", false, "Skip the classification pass")
	cmd.Flags().BoolVar(&keep, "keep-intermediates", false, "Keep audio, transcript and JSON artifacts")
	cmd.Flags().BoolVar(&burnSubs, "burn-subtitles", false, "Burn karaoke subtitles into each clip")
	cmd.Flags().BoolVar(&removeInput, "remove-input", false, "Delete the input video after a successful run")
	return cmd
}
