//go:build tui

package main

import (
	"github.com/spf13/cobra"

	"github.com/unowned-ai/geonote/pkg/tui"
	"github.com/unowned-ai/geonote/pkg/viewmodel"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show terminal UI",
	Long:  `Display an interactive terminal UI for browsing, writing and archiving notes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if a.path != ":memory:" {
			if err := a.store.WatchFile(cmd.Context(), a.path, cfg.WatchDebounce); err != nil {
				return err
			}
		}

		return tui.ShowTUI(a.repo, tui.Options{
			DBFile:   a.path,
			Gate:     permissionGate(),
			Location: locationSource(),
			Camera:   cameraCapture(),
		}, viewmodel.WithLogger(logger.Named("holder")))
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
