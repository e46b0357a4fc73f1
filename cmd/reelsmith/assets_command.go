package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/assets"
)

func newAssetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assets [asset-root]",
		Short: "Inspect the assets available under a root directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			root := cfg.Paths.AssetRoot
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				root = args[0]
			}
			if strings.TrimSpace(root) == "" {
				return fmt.Errorf("no asset root: pass one or set paths.asset_root")
			}

			locator := assets.NewLocator(root)
			count, err := locator.SceneCount()
			if err != nil {
				return err
			}

			var rows [][]string
			problems := 0
			for index := 1; index <= count; index++ {
				animation, animErr := locator.ScenePath(assets.KindAnimation, index)
				voiceover, voiceErr := locator.ScenePath(assets.KindVoiceover, index)
				rows = append(rows, []string{
					strconv.Itoa(index),
					describeMatch(animation, animErr),
					describeMatch(voiceover, voiceErr),
				})
				if animErr != nil || voiceErr != nil {
					problems++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Asset root: %s\n", root)
			if count == 0 {
				fmt.Fprintln(out, "No scene clips found")
			} else {
				fmt.Fprintln(out, renderTable(
					[]string{"Scene", "Animation", "Voiceover"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft},
				))
			}

			music, err := locator.MusicFiles(false)
			if err != nil {
				return err
			}
			sfx, err := locator.SFXFiles()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Music files: %s\n", describeList(music))
			fmt.Fprintf(out, "SFX files:   %s\n", describeList(sfx))

			manifest, err := assets.LoadManifest(root)
			if err != nil {
				return err
			}
			if manifest != nil {
				fmt.Fprintf(out, "Narration manifest: %d scenes (topic %q)\n",
					len(manifest.Scenes), manifest.Topic)
			} else {
				fmt.Fprintln(out, "Narration manifest: none")
			}

			if problems > 0 {
				return fmt.Errorf("%d scene(s) have missing or ambiguous files", problems)
			}
			return nil
		},
	}
}

func describeMatch(path string, err error) string {
	switch {
	case errors.Is(err, assets.ErrNotFound):
		return "MISSING"
	case errors.Is(err, assets.ErrAmbiguous):
		return "AMBIGUOUS"
	case err != nil:
		return "ERROR: " + err.Error()
	default:
		return filepath.Base(path)
	}
}

func describeList(files []string) string {
	if len(files) == 0 {
		return "none"
	}
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, filepath.Base(file))
	}
	return strings.Join(names, ", ")
}
