package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "reelsmith",
		Short:         "Assemble finished videos from scene clips, voiceover, music, and captions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newAssetsCommand(ctx))
	rootCmd.AddCommand(newProbeCommand(ctx))
	rootCmd.AddCommand(newHealthCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
