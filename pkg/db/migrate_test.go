package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDBConnection(":memory:", true, "NORMAL")
	require.NoError(t, err, "OpenDBConnection failed for in-memory DB")
	t.Cleanup(func() { db.Close() })
	return db
}

// checkTableExists is a test helper to verify if a table exists in the database.
func checkTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?;", tableName).Scan(&name)
	require.NoError(t, err, "table %q should exist", tableName)
	assert.Equal(t, tableName, name)
}

func columnNames(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	require.NoError(t, err)
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		require.NoError(t, rows.Scan(&c))
		cols = append(cols, c)
	}
	require.NoError(t, rows.Err())
	return cols
}

func TestOpenDBConnection_InvalidSyncPragma(t *testing.T) {
	_, err := OpenDBConnection(":memory:", false, "SOMETIMES")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sync pragma value")
}

func TestUpgradeDB_NewDatabase(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, UpgradeDB(ctx, db, ":memory:", TargetSchemaVersion, nil))

	for _, tableName := range []string{"geonote_versions", "notes"} {
		checkTableExists(t, db, tableName)
	}

	assert.Equal(t,
		[]string{"id", "title", "body", "latitude", "longitude", "accuracy", "createdAt", "updatedAt", "tags", "archived", "imageUri"},
		columnNames(t, db, "notes"))

	version, err := GetComponentSchemaVersion(ctx, db, NotesComponent)
	require.NoError(t, err)
	assert.Equal(t, TargetSchemaVersion, version)
}

func TestUpgradeDB_AlreadyUpToDate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, InitializeSchema(ctx, db, TargetSchemaVersion))
	_, err := db.Exec(`INSERT INTO notes (title, body, createdAt, updatedAt) VALUES ('t', 'b', 1, 1)`)
	require.NoError(t, err)

	require.NoError(t, UpgradeDB(ctx, db, ":memory:", TargetSchemaVersion, nil))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&count))
	assert.Equal(t, 1, count, "an up-to-date database must keep its rows")
}

func TestUpgradeDB_OlderVersionIsRecreated(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, InitializeSchema(ctx, db, 1))
	_, err := db.Exec(`INSERT INTO notes (title, body, createdAt, updatedAt) VALUES ('old', 'row', 1, 1)`)
	require.NoError(t, err)

	require.NoError(t, UpgradeDB(ctx, db, ":memory:", TargetSchemaVersion, nil))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&count))
	assert.Zero(t, count, "a version mismatch discards existing notes")

	version, err := GetComponentSchemaVersion(ctx, db, NotesComponent)
	require.NoError(t, err)
	assert.Equal(t, TargetSchemaVersion, version)
}

func TestUpgradeDB_NewerVersionIsRecreated(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, InitializeSchema(ctx, db, 3))

	require.NoError(t, UpgradeDB(ctx, db, ":memory:", TargetSchemaVersion, nil))

	version, err := GetComponentSchemaVersion(ctx, db, NotesComponent)
	require.NoError(t, err)
	assert.Equal(t, TargetSchemaVersion, version)
	checkTableExists(t, db, "notes")
}

func TestGetComponentSchemaVersion_NoTable(t *testing.T) {
	db := openTestDB(t)

	version, err := GetComponentSchemaVersion(context.Background(), db, NotesComponent)
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestDatabaseFile_InMemory(t *testing.T) {
	db := openTestDB(t)

	file, err := DatabaseFile(db)
	require.NoError(t, err)
	assert.Empty(t, file)
}
