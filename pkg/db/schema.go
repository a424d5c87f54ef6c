package db

const (
	// versionsTable tracks the schema version of each component stored in the file.
	versionsTable = `
CREATE TABLE IF NOT EXISTS geonote_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);
`

	// NotesTableV2 defines the notes table. Version 1 had no imageUri column.
	// Column names mirror the Note attributes one to one.
	NotesTableV2 = `
CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    latitude REAL,
    longitude REAL,
    accuracy REAL,
    createdAt INTEGER NOT NULL,
    updatedAt INTEGER NOT NULL,
    tags TEXT,
    archived INTEGER NOT NULL DEFAULT 0,
    imageUri TEXT
);

CREATE INDEX IF NOT EXISTS notes_active_updated ON notes (archived, updatedAt DESC);
`

	dropNotesTable = `
DROP INDEX IF EXISTS notes_active_updated;
DROP TABLE IF EXISTS notes;
`
)
