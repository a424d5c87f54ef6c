package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	// TargetSchemaVersion is the notes schema version this build writes.
	TargetSchemaVersion int64 = 2
	// NotesComponent is the name under which the notes schema is versioned.
	NotesComponent = "notes"
)

const upsertVersionStatement = `
INSERT INTO geonote_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`

// GetComponentSchemaVersion retrieves the schema version for a given component.
// Returns 0 if the component is not found or the versions table doesn't exist.
func GetComponentSchemaVersion(ctx context.Context, db *sql.DB, componentName string) (int64, error) {
	var version int64
	err := db.QueryRowContext(ctx, `SELECT version FROM geonote_versions WHERE component = ?;`, componentName).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

// InitializeSchema creates the notes schema and records schemaVersionToSet for it.
func InitializeSchema(ctx context.Context, db *sql.DB, schemaVersionToSet int64) error {
	return inTx(ctx, db, func(tx *sql.Tx) error {
		return createSchema(ctx, tx, schemaVersionToSet)
	})
}

// UpgradeDB brings the notes schema of db to appTargetSchemaVersion.
//
// Notes are local, disposable data, so any version mismatch is resolved by
// dropping and recreating the table instead of migrating rows.
// dbIdentifierForLog is used for logging purposes only.
func UpgradeDB(ctx context.Context, db *sql.DB, dbIdentifierForLog string, appTargetSchemaVersion int64, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("component", NotesComponent), zap.String("db", dbIdentifierForLog))

	currentDBVersion, err := GetComponentSchemaVersion(ctx, db, NotesComponent)
	if err != nil {
		return err
	}

	switch {
	case currentDBVersion == 0:
		log.Info("initializing schema", zap.Int64("version", appTargetSchemaVersion))
		if err := InitializeSchema(ctx, db, appTargetSchemaVersion); err != nil {
			return fmt.Errorf("failed to initialize component %s in database '%s': %w", NotesComponent, dbIdentifierForLog, err)
		}
		return nil
	case currentDBVersion == appTargetSchemaVersion:
		log.Debug("schema up to date", zap.Int64("version", currentDBVersion))
		return nil
	default:
		log.Warn("schema version mismatch, recreating notes table",
			zap.Int64("from", currentDBVersion), zap.Int64("to", appTargetSchemaVersion))
		err := inTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, dropNotesTable); err != nil {
				return fmt.Errorf("failed to drop notes table: %w", err)
			}
			return createSchema(ctx, tx, appTargetSchemaVersion)
		})
		if err != nil {
			return fmt.Errorf("failed to recreate component %s in database '%s' (version %d -> %d): %w",
				NotesComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion, err)
		}
		return nil
	}
}

func createSchema(ctx context.Context, tx *sql.Tx, version int64) error {
	if _, err := tx.ExecContext(ctx, versionsTable); err != nil {
		return fmt.Errorf("failed to create versions table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, NotesTableV2); err != nil {
		return fmt.Errorf("failed to execute notes schema SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsertVersionStatement, NotesComponent, version); err != nil {
		return fmt.Errorf("failed to set version for component %s to %d: %w", NotesComponent, version, err)
	}
	return nil
}

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
