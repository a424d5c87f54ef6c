package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrNoteNotFound = errors.New("note not found")
	// ErrStorage marks failures of the underlying medium. They are never retried.
	ErrStorage = errors.New("storage failure")
)

// Store owns the durable table of notes.
type Store interface {
	// ActiveNotes streams every non-archived note ordered by UpdatedAt descending.
	// The first snapshot is available immediately; a new one follows every committed
	// write. The channel is closed once ctx is done.
	ActiveNotes(ctx context.Context) (<-chan []Note, error)
	// GetByID returns ErrNoteNotFound when no row has that id. Archived notes are returned.
	GetByID(ctx context.Context, id int64) (Note, error)
	// Upsert inserts when n.ID is zero and replaces the whole row otherwise.
	Upsert(ctx context.Context, n Note) (int64, error)
	// SetArchived flags a note as archived. Unknown ids are ignored.
	SetArchived(ctx context.Context, id int64) error
	// Delete removes the row permanently. Unknown ids are ignored.
	Delete(ctx context.Context, n Note) error
}

const (
	noteColumns = `id, title, body, latitude, longitude, accuracy, createdAt, updatedAt, tags, archived, imageUri`

	getNoteStatement = `
	SELECT ` + noteColumns + `
	FROM notes
	WHERE id = ?
	`

	listActiveNotesStatement = `
	SELECT ` + noteColumns + `
	FROM notes
	WHERE archived = 0
	ORDER BY updatedAt DESC, id DESC
	`

	insertNoteStatement = `
	INSERT INTO notes (title, body, latitude, longitude, accuracy, createdAt, updatedAt, tags, archived, imageUri)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	replaceNoteStatement = `
	INSERT OR REPLACE INTO notes (id, title, body, latitude, longitude, accuracy, createdAt, updatedAt, tags, archived, imageUri)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	archiveNoteStatement = `
	UPDATE notes
	SET archived = 1
	WHERE id = ?
	`

	deleteNoteStatement = `
	DELETE FROM notes
	WHERE id = ?
	`
)

// Option configures a SQLStore.
type Option func(*SQLStore)

// WithLogger sets the logger used by the store.
func WithLogger(logger *zap.Logger) Option {
	return func(s *SQLStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// SQLStore is the SQLite implementation of Store. It does not own db.
type SQLStore struct {
	db     *sql.DB
	logger *zap.Logger

	mu      sync.Mutex
	nextSub int
	subs    map[int]chan struct{}
}

// NewSQLStore wraps an open database whose schema is already upgraded.
func NewSQLStore(db *sql.DB, opts ...Option) *SQLStore {
	s := &SQLStore{
		db:     db,
		logger: zap.NewNop(),
		subs:   make(map[int]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (Note, error) {
	var (
		n                  Note
		lat, lon, accuracy sql.NullFloat64
		tags, imageURI     sql.NullString
	)
	err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Body,
		&lat,
		&lon,
		&accuracy,
		&n.CreatedAt,
		&n.UpdatedAt,
		&tags,
		&n.Archived,
		&imageURI,
	)
	if err != nil {
		return Note{}, err
	}
	if lat.Valid {
		n.Latitude = &lat.Float64
	}
	if lon.Valid {
		n.Longitude = &lon.Float64
	}
	if accuracy.Valid {
		a := float32(accuracy.Float64)
		n.Accuracy = &a
	}
	if tags.Valid {
		n.Tags = &tags.String
	}
	if imageURI.Valid {
		n.ImageURI = &imageURI.String
	}
	return n, nil
}

// GetByID retrieves a note by id, archived or not.
func (s *SQLStore) GetByID(ctx context.Context, id int64) (Note, error) {
	n, err := scanNote(s.db.QueryRowContext(ctx, getNoteStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Note{}, ErrNoteNotFound
		}
		return Note{}, storageErr("get note", err)
	}
	return n, nil
}

func (s *SQLStore) listActive(ctx context.Context) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, listActiveNotesStatement)
	if err != nil {
		return nil, storageErr("list active notes", err)
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, storageErr("scan note", err)
		}
		notes = append(notes, n)
	}
	if err = rows.Err(); err != nil {
		return nil, storageErr("iterate notes", err)
	}
	return notes, nil
}

// Upsert writes n in a single statement and returns its id.
func (s *SQLStore) Upsert(ctx context.Context, n Note) (int64, error) {
	var id int64
	if n.IsNew() {
		res, err := s.db.ExecContext(ctx, insertNoteStatement,
			n.Title, n.Body, n.Latitude, n.Longitude, n.Accuracy,
			n.CreatedAt, n.UpdatedAt, n.Tags, n.Archived, n.ImageURI,
		)
		if err != nil {
			return 0, storageErr("insert note", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, storageErr("insert note", err)
		}
	} else {
		_, err := s.db.ExecContext(ctx, replaceNoteStatement,
			n.ID, n.Title, n.Body, n.Latitude, n.Longitude, n.Accuracy,
			n.CreatedAt, n.UpdatedAt, n.Tags, n.Archived, n.ImageURI,
		)
		if err != nil {
			return 0, storageErr("replace note", err)
		}
		id = n.ID
	}

	s.logger.Debug("note upserted", zap.Int64("id", id), zap.Bool("created", n.IsNew()))
	s.notify()
	return id, nil
}

// SetArchived only touches the archived flag; UpdatedAt is left as is.
func (s *SQLStore) SetArchived(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, archiveNoteStatement, id)
	if err != nil {
		return storageErr("archive note", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		s.logger.Debug("note archived", zap.Int64("id", id))
		s.notify()
	}
	return nil
}

// Delete removes n by id.
func (s *SQLStore) Delete(ctx context.Context, n Note) error {
	res, err := s.db.ExecContext(ctx, deleteNoteStatement, n.ID)
	if err != nil {
		return storageErr("delete note", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		s.logger.Debug("note deleted", zap.Int64("id", n.ID))
		s.notify()
	}
	return nil
}
