package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelsmith/internal/media/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Probe a media file's duration and streams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:      %s\n", args[0])
			fmt.Fprintf(out, "Container: %s\n", result.Format.FormatName)
			fmt.Fprintf(out, "Duration:  %.3fs\n", result.DurationSeconds())
			fmt.Fprintf(out, "Video:     %s\n", yesNo(result.HasVideo()))
			if w, h := result.Dimensions(); w > 0 {
				fmt.Fprintf(out, "Frame:     %dx%d\n", w, h)
			}
			fmt.Fprintf(out, "Audio:     %s\n", yesNo(result.HasAudio()))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
