package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/geonote/pkg/mapview"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Show the notes that have a location",
	Long: `Print the map markers for active notes with a location: the center (the first
located note, or Santiago de Chile when there is none), the zoom level and one line
per marker.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.snapshot(cmd.Context())
		if err != nil {
			return err
		}
		v := mapview.Build(list)

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		}
		_, err = cmd.OutOrStdout().Write([]byte(v.Text()))
		return err
	},
}

func initMapCmd() {
	mapCmd.Flags().Bool("json", false, "Print the map data as JSON")
}
