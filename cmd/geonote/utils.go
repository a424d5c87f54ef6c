package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	pkgdb "github.com/unowned-ai/geonote/pkg/db"
	"github.com/unowned-ai/geonote/pkg/device"
	"github.com/unowned-ai/geonote/pkg/notes"
	"github.com/unowned-ai/geonote/pkg/utils"
	"github.com/unowned-ai/geonote/pkg/viewmodel"
)

// app is the composition root: one store per process, injected everywhere.
type app struct {
	db    *sql.DB
	path  string
	store *notes.SQLStore
	repo  *notes.Repository
}

func resolveDBPath() (string, error) {
	return utils.ResolveAndEnsureDBPath(cfg.DBPath)
}

func storageFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, notes.ErrStorage, err)
}

// openApp opens the database, brings the schema up to date and builds the store.
func openApp(ctx context.Context) (*app, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, err
	}

	dbConn, err := pkgdb.OpenDBConnection(path, cfg.WAL, cfg.Sync)
	if err != nil {
		return nil, storageFailure("open database", err)
	}
	if err := pkgdb.UpgradeDB(ctx, dbConn, path, pkgdb.TargetSchemaVersion, logger); err != nil {
		dbConn.Close()
		return nil, storageFailure("initialize database schema", err)
	}

	store := notes.NewSQLStore(dbConn, notes.WithLogger(logger.Named("store")))
	return &app{
		db:    dbConn,
		path:  path,
		store: store,
		repo:  notes.NewRepository(store),
	}, nil
}

func (a *app) newHolder() *viewmodel.Holder {
	return viewmodel.NewHolder(a.repo, viewmodel.WithLogger(logger.Named("holder")))
}

// Close checkpoints the WAL back into the main file and closes the database.
func (a *app) Close() error {
	if cfg.WAL {
		// TRUNCATE mode waits for transactions and writes the WAL back to the main DB.
		if _, err := a.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
			logger.Warn("WAL checkpoint failed during close", zap.Error(err))
		}
	}
	return a.db.Close()
}

// snapshot returns the current active notes and detaches from the live query.
func (a *app) snapshot(ctx context.Context) ([]notes.Note, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := a.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return <-stream, nil
}

func parseNoteID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note ID '%s'", raw)
	}
	return id, nil
}

func permissionGate() device.PermissionGate {
	return device.ParseCapabilities(cfg.Device.Permissions)
}

func locationSource() device.LocationSource {
	if len(cfg.Device.LocationCommand) == 0 {
		return nil
	}
	return device.CommandSource{Name: cfg.Device.LocationCommand[0], Args: cfg.Device.LocationCommand[1:]}
}

func cameraCapture() device.ImageCapture {
	if len(cfg.Device.CameraCommand) == 0 {
		return nil
	}
	return device.CommandCapture{
		Name:     cfg.Device.CameraCommand[0],
		Args:     cfg.Device.CameraCommand[1:],
		MediaDir: cfg.MediaDir,
	}
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Format(time.RFC3339)
}

func printNote(w io.Writer, n notes.Note) {
	fmt.Fprintln(w, "Note Details:")
	fmt.Fprintf(w, "ID:         %d\n", n.ID)
	fmt.Fprintf(w, "Title:      %s\n", n.Title)
	location := viewmodel.LocationLabel(n, 6)
	if acc := viewmodel.AccuracyLabel(n.Accuracy); acc != "" && n.HasLocation() {
		location += " (" + acc + ")"
	}
	fmt.Fprintf(w, "Location:   %s\n", location)
	fmt.Fprintf(w, "Tags:       %s\n", formatTags(n))
	if n.ImageURI != nil {
		fmt.Fprintf(w, "Photo:      %s\n", *n.ImageURI)
	}
	fmt.Fprintf(w, "Archived:   %t\n", n.Archived)
	fmt.Fprintf(w, "Created At: %s\n", formatMillis(n.CreatedAt))
	fmt.Fprintf(w, "Updated At: %s\n", formatMillis(n.UpdatedAt))
	fmt.Fprintf(w, "Body:\n%s\n", n.Body)
}

func formatTags(n notes.Note) string {
	tags := notes.SplitTags(n.Tags)
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ", ")
}

// printNoteRows writes one line per note, newest first as given.
func printNoteRows(w io.Writer, list []notes.Note) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No notes found.")
		return
	}
	now := time.Now()
	for _, n := range list {
		line := fmt.Sprintf("%-6d %-5s %s", n.ID, viewmodel.RelativeTime(now, n.UpdatedAt), n.Title)
		if n.HasLocation() {
			line += "  @ " + viewmodel.LocationLabel(n, 4)
		}
		if chips := viewmodel.TagChips(n, 3); len(chips) > 0 {
			line += "  #" + strings.Join(chips, " #")
		}
		fmt.Fprintln(w, line)
	}
}

func stderrf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
