package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Main runs the highcut command line and exits non-zero on failure.
func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	cc := &commandContext{}

	root := &cobra.Command{
		Use:           "highcut",
		Short:         "Cut highlight clips from long-form video",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfigLoad] == "true" {
				return nil
			}
			_, err := cc.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&cc.configPath, "config", "c", "", "Configuration file path")
	root.PersistentFlags().StringVar(&cc.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&cc.logFormat, "log-format", "", "Override logging.format (console, json)")

	root.AddCommand(
		newRunCommand(cc),
		newSegmentCommand(cc),
		newDetectCommand(cc),
		newClassifyCommand(cc),
		newFilterCommand(cc),
		newCutCommand(cc),
		newStatusCommand(cc),
		newPromptsCommand(cc),
		newConfigCommand(cc),
	)
	return root
}
