package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unowned-ai/geonote/pkg/db"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.OpenDBConnection(":memory:", true, "NORMAL")
	require.NoError(t, err, "failed to open in-memory database")
	require.NoError(t, db.InitializeSchema(context.Background(), testDB, db.TargetSchemaVersion))
	t.Cleanup(func() { testDB.Close() })
	return testDB
}

func setupTestStore(t *testing.T) *SQLStore {
	t.Helper()
	return NewSQLStore(setupTestDB(t))
}

func ptr[T any](v T) *T { return &v }

// waitForSnapshot reads snapshots until one satisfies match.
func waitForSnapshot(t *testing.T, ch <-chan []Note, match func([]Note) bool) []Note {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case snapshot, ok := <-ch:
			require.True(t, ok, "subscription closed unexpectedly")
			if match(snapshot) {
				return snapshot
			}
		case <-timeout:
			t.Fatal("timed out waiting for snapshot")
			return nil
		}
	}
}

func ids(notes []Note) []int64 {
	out := make([]int64, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func createTestNote(t *testing.T, ctx context.Context, s Store, title string, updatedAt int64) Note {
	t.Helper()
	n := Note{Title: title, Body: title + " body", CreatedAt: updatedAt, UpdatedAt: updatedAt}
	id, err := s.Upsert(ctx, n)
	require.NoError(t, err)
	n.ID = id
	return n
}

func TestUpsert_InsertAssignsFreshIDs(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	in := Note{
		Title:     "Mi Nota",
		Body:      "Contenido de prueba",
		Latitude:  ptr(-33.4489),
		Longitude: ptr(-70.6693),
		Accuracy:  ptr(float32(10.5)),
		CreatedAt: 1000,
		UpdatedAt: 1000,
		Tags:      ptr("tag1,tag2"),
		ImageURI:  ptr("content://image.jpg"),
	}

	id, err := s.Upsert(ctx, in)
	require.NoError(t, err)
	assert.Positive(t, id)

	stored, err := s.GetByID(ctx, id)
	require.NoError(t, err)

	in.ID = id
	assert.Equal(t, in, stored)

	second, err := s.Upsert(ctx, Note{Title: "b", Body: "b", CreatedAt: 1, UpdatedAt: 1})
	require.NoError(t, err)
	assert.NotEqual(t, id, second)
}

func TestUpsert_ReplacesWholeRow(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	original := Note{
		Title: "first", Body: "body", Latitude: ptr(1.0), Longitude: ptr(2.0),
		Tags: ptr("x"), CreatedAt: 10, UpdatedAt: 10,
	}
	id, err := s.Upsert(ctx, original)
	require.NoError(t, err)

	replacement := Note{ID: id, Title: "second", Body: "other", CreatedAt: 10, UpdatedAt: 20}
	gotID, err := s.Upsert(ctx, replacement)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)

	stored, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, replacement, stored, "replace must not merge old fields")
}

func TestUpsert_UnknownIDInsertsWithThatID(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	id, err := s.Upsert(ctx, Note{ID: 42, Title: "t", Body: "b", CreatedAt: 1, UpdatedAt: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = s.GetByID(ctx, 42)
	require.NoError(t, err)
}

func TestGetByID_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.NotErrorIs(t, err, ErrStorage)
}

func TestSetArchived(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	n := createTestNote(t, ctx, s, "archive me", 500)

	require.NoError(t, s.SetArchived(ctx, n.ID))
	require.NoError(t, s.SetArchived(ctx, n.ID), "archiving twice is not an error")

	stored, err := s.GetByID(ctx, n.ID)
	require.NoError(t, err, "archived notes stay retrievable by id")
	assert.True(t, stored.Archived)
	assert.Equal(t, int64(500), stored.UpdatedAt, "archiving leaves updatedAt alone")
	assert.Equal(t, n.Title, stored.Title)

	assert.NoError(t, s.SetArchived(ctx, 12345), "unknown ids are ignored")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	n := createTestNote(t, ctx, s, "gone", 1)

	require.NoError(t, s.Delete(ctx, n))

	_, err := s.GetByID(ctx, n.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)

	assert.NoError(t, s.Delete(ctx, n), "deleting a missing note is a no-op")
}

func TestActiveNotes_InitialSnapshotOrderedByRecency(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := setupTestStore(t)

	older := createTestNote(t, ctx, s, "older", 100)
	newer := createTestNote(t, ctx, s, "newer", 300)
	middle := createTestNote(t, ctx, s, "middle", 200)
	archived := createTestNote(t, ctx, s, "archived", 400)
	require.NoError(t, s.SetArchived(ctx, archived.ID))

	ch, err := s.ActiveNotes(ctx)
	require.NoError(t, err)

	select {
	case snapshot := <-ch:
		assert.Equal(t, []int64{newer.ID, middle.ID, older.ID}, ids(snapshot))
	default:
		t.Fatal("initial snapshot must be available immediately")
	}
}

func TestActiveNotes_EmptyTableYieldsEmptySnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := setupTestStore(t)

	ch, err := s.ActiveNotes(ctx)
	require.NoError(t, err)

	snapshot := <-ch
	assert.NotNil(t, snapshot)
	assert.Empty(t, snapshot)
}

func TestActiveNotes_ReemitsOnEveryKindOfWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := setupTestStore(t)

	first := createTestNote(t, ctx, s, "first", 100)

	ch, err := s.ActiveNotes(ctx)
	require.NoError(t, err)
	waitForSnapshot(t, ch, func(n []Note) bool { return len(n) == 1 })

	second := createTestNote(t, ctx, s, "second", 200)
	waitForSnapshot(t, ch, func(n []Note) bool {
		return assert.ObjectsAreEqual([]int64{second.ID, first.ID}, ids(n))
	})

	first.UpdatedAt = 300
	first.Title = "first edited"
	_, err = s.Upsert(ctx, first)
	require.NoError(t, err)
	got := waitForSnapshot(t, ch, func(n []Note) bool { return len(n) == 2 && n[0].ID == first.ID })
	assert.Equal(t, "first edited", got[0].Title)

	require.NoError(t, s.SetArchived(ctx, first.ID))
	waitForSnapshot(t, ch, func(n []Note) bool {
		return assert.ObjectsAreEqual([]int64{second.ID}, ids(n))
	})

	require.NoError(t, s.Delete(ctx, second))
	waitForSnapshot(t, ch, func(n []Note) bool { return len(n) == 0 })
}

func TestActiveNotes_MultipleSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := setupTestStore(t)

	a, err := s.ActiveNotes(ctx)
	require.NoError(t, err)
	b, err := s.ActiveNotes(ctx)
	require.NoError(t, err)

	createTestNote(t, ctx, s, "shared", 1)

	waitForSnapshot(t, a, func(n []Note) bool { return len(n) == 1 })
	waitForSnapshot(t, b, func(n []Note) bool { return len(n) == 1 })
}

func TestActiveNotes_ClosedOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := setupTestStore(t)

	ch, err := s.ActiveNotes(ctx)
	require.NoError(t, err)
	<-ch

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not closed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.subs)
}

func TestStoreErrorsAreStorageKind(t *testing.T) {
	ctx := context.Background()
	testDB := setupTestDB(t)
	s := NewSQLStore(testDB)
	require.NoError(t, testDB.Close())

	_, err := s.Upsert(ctx, Note{Title: "t", Body: "b"})
	assert.True(t, errors.Is(err, ErrStorage), "got %v", err)

	_, err = s.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ErrStorage)

	assert.ErrorIs(t, s.SetArchived(ctx, 1), ErrStorage)
	assert.ErrorIs(t, s.Delete(ctx, Note{ID: 1}), ErrStorage)

	_, err = s.ActiveNotes(ctx)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestUpsert_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	const writers = 16
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		newIDs = map[int64]bool{}
		errs   []error
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			title := fmt.Sprintf("note %d", i)
			id, err := s.Upsert(ctx, Note{Title: title, Body: title, CreatedAt: int64(i), UpdatedAt: int64(i)})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			newIDs[id] = true
		}(i)
	}
	wg.Wait()
	require.Empty(t, errs)
	assert.Len(t, newIDs, writers, "every insert gets its own id")

	listCtx, cancel := context.WithCancel(ctx)
	stream, err := s.ActiveNotes(listCtx)
	require.NoError(t, err)
	assert.Len(t, <-stream, writers)
	cancel()

	target := createTestNote(t, ctx, s, "target", 1)
	submitted := make([]Note, writers)
	for i := range submitted {
		submitted[i] = Note{
			ID:        target.ID,
			Title:     fmt.Sprintf("version %d", i),
			Body:      fmt.Sprintf("body %d", i),
			Latitude:  ptr(float64(i)),
			Longitude: ptr(float64(-i)),
			Accuracy:  ptr(float32(i) + 0.5),
			CreatedAt: 1,
			UpdatedAt: int64(100 + i),
			Tags:      ptr(fmt.Sprintf("tag%d", i)),
			ImageURI:  ptr(fmt.Sprintf("file:///img/%d.jpg", i)),
		}
	}

	errs = nil
	for _, n := range submitted {
		wg.Add(1)
		go func(n Note) {
			defer wg.Done()
			if _, err := s.Upsert(ctx, n); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(n)
	}
	wg.Wait()
	require.Empty(t, errs)

	stored, err := s.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Contains(t, submitted, stored, "the last write wins whole, without merging fields")
}
