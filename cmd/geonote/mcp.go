package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unowned-ai/geonote/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the GeoNote MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes notes as MCP tools via STDIO.

Tools: ping, create_note, update_note, get_note, list_notes, archive_note,
delete_note, search_notes, notes_map. Writes are validated exactly like the UI:
blank titles and bodies are rejected.

The --db flag is optional. If not provided, a system-specific default location will be used:
- Windows: %USERPROFILE%\AppData\Roaming\geonote\geonote.db
- macOS: ~/Library/Application Support/geonote/geonote.db
- Linux: ~/.local/share/geonote/geonote.db

Example:
  geonote mcp
  geonote mcp --db notes.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		srv := mcp.NewGeoNoteMCPServer(a.repo, logger.Named("mcp"))

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		logger.Info("GeoNote MCP server started",
			zap.String("db", a.path), zap.Bool("wal", cfg.WAL), zap.String("sync", cfg.Sync))
		stderrf("Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)\n")

		// Blocks until stdio closes.
		return srv.Start()
	},
}
