package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/highcut/internal/prompts"
)

func newPromptsCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "prompts [detect|classify]",
		Short:     "List available prompt templates",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"detect", "classify"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			kinds := []prompts.Kind{prompts.KindDetect, prompts.KindClassify}
			if len(args) == 1 {
				switch args[0] {
				case "detect":
					kinds = kinds[:1]
				case "classify":
					kinds = kinds[1:]
				default:
					return fmt.Errorf("unknown prompt kind %q (want detect or classify)", args[0])
				}
			}

			catalog := prompts.NewCatalog(cfg.Paths.PromptsDir)
			rows := [][]string{}
			for _, kind := range kinds {
				names, err := catalog.List(kind)
				if err != nil {
					return err
				}
				for _, name := range names {
					rows = append(rows, []string{string(kind), name})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Kind", "Name"}, rows, nil))
			return nil
		},
	}
}
