package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	geonote "github.com/unowned-ai/geonote/pkg"
	"github.com/unowned-ai/geonote/pkg/config"
	pkgdb "github.com/unowned-ai/geonote/pkg/db"
	"github.com/unowned-ai/geonote/pkg/logging"
	"github.com/unowned-ai/geonote/pkg/notes"
)

var (
	configPath string
	dbPath     string
	walMode    bool
	syncMode   string
	logLevel   string

	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "geonote",
	Short:         "Short notes with a place, a photo and tags, kept in a local database.",
	Version:       fmt.Sprintf("v%s", geonote.Version),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// loadSettings resolves config file, env and flags (highest priority) and builds the logger.
func loadSettings(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		loaded.DBPath = dbPath
	}
	if flags.Changed("wal") {
		loaded.WAL = walMode
	}
	if flags.Changed("sync") {
		loaded.Sync = syncMode
	}
	if flags.Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	cfg = loaded

	l, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for geonote.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(geonote completion bash)

  Zsh:
    $ geonote completion zsh > "${fpath[1]}/_geonote"

  Fish:
    $ geonote completion fish > ~/.config/fish/completions/geonote.fish

  PowerShell:
    PS> geonote completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	PersistentPreRunE:     func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the version number of geonote",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), geonote.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the geonote database",
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Bring the notes schema to the current version",
	Long: `Opens the database and brings the notes schema to the current version.
A database without the schema is initialized. A database at any other version is
rebuilt from scratch: existing notes are dropped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Upgrading notes schema in %s (WAL: %t, Sync: %s)\n", path, cfg.WAL, cfg.Sync)

		dbConn, err := pkgdb.OpenDBConnection(path, cfg.WAL, cfg.Sync)
		if err != nil {
			return storageFailure("open database", err)
		}
		defer dbConn.Close()

		if err := pkgdb.UpgradeDB(cmd.Context(), dbConn, path, pkgdb.TargetSchemaVersion, logger); err != nil {
			return storageFailure("upgrade database", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema is at version %d\n", pkgdb.TargetSchemaVersion)
		return nil
	},
}

func initCmd() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default: platform data dir)")
	rootCmd.PersistentFlags().BoolVar(&walMode, "wal", true, "Enable SQLite WAL (Write-Ahead Logging) mode")
	rootCmd.PersistentFlags().StringVar(&syncMode, "sync", "NORMAL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	dbCmd.AddCommand(dbUpgradeCmd)

	initNotesCmd()
	initMapCmd()
	initExportCmd()
	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd, notesCmd, mapCmd, exportCmd, mcpCmd)
}

// reportError prints err for the user. Storage failures get a generic lead line
// and are logged; they are never retried.
func reportError(err error) {
	if errors.Is(err, notes.ErrStorage) {
		logger.Error("storage failure", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: the notes database could not complete the operation.\nCause: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		_ = logger.Sync()
		os.Exit(1)
	}
}
