package notes

import "context"

// Repository is the set of note operations the rest of the application uses.
// It delegates to a Store so the storage technology can change without touching callers.
type Repository struct {
	store Store
}

// NewRepository builds a Repository over store.
func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

// List streams the active notes, most recently updated first.
func (r *Repository) List(ctx context.Context) (<-chan []Note, error) {
	return r.store.ActiveNotes(ctx)
}

// Get returns the note with id or ErrNoteNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (Note, error) {
	return r.store.GetByID(ctx, id)
}

// Save inserts or replaces n and returns its id.
func (r *Repository) Save(ctx context.Context, n Note) (int64, error) {
	return r.store.Upsert(ctx, n)
}

// Archive hides the note from the active list.
func (r *Repository) Archive(ctx context.Context, id int64) error {
	return r.store.SetArchived(ctx, id)
}

// Delete removes n permanently. Not part of the regular editing flow.
func (r *Repository) Delete(ctx context.Context, n Note) error {
	return r.store.Delete(ctx, n)
}
