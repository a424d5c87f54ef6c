package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/geonote/pkg/export"
	"github.com/unowned-ai/geonote/pkg/notes"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export active notes",
	Long: fmt.Sprintf(`Write every active note, most recently updated first, in one of: %s.
HTML output renders note bodies as Markdown.`, strings.Join(export.Formats, ", ")),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		tag, _ := cmd.Flags().GetString("tag")

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.snapshot(cmd.Context())
		if err != nil {
			return err
		}
		list = notes.FilterByTag(list, tag)

		var w io.Writer = cmd.OutOrStdout()
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create '%s': %w", output, err)
			}
			defer f.Close()
			w = f
		}
		if err := export.Write(w, format, list); err != nil {
			return err
		}
		if output != "" && output != "-" {
			stderrf("Exported %d notes to %s\n", len(list), output)
		}
		return nil
	},
}

func initExportCmd() {
	exportCmd.Flags().String("format", export.FormatJSON, "Export format: "+strings.Join(export.Formats, ", "))
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().String("tag", "", "Only export notes with this tag")
}
