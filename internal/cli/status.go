package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/highcut/internal/config"
	"github.com/forPelevin/highcut/internal/jobs"
	"github.com/forPelevin/highcut/internal/pipeline"
)

func newStatusCommand(cc *commandContext) *cobra.Command {
	var (
		asJSON    bool
		outputDir string
	)
	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the progress of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !pipeline.ValidJobID(args[0]) {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			dir := cfg.Paths.OutputDir
			if outputDir != "" {
				if dir, err = config.ExpandPath(outputDir); err != nil {
					return err
				}
			}
			rep, err := jobs.ReadStatus(dir, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			fmt.Fprint(out, renderStatus(rep, shouldColorize(out)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw status document")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory holding the status file")
	return cmd
}
