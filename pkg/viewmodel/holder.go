// Package viewmodel holds the state a note screen renders: the live list of
// notes, the note being edited, the last validation error and a save signal.
package viewmodel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unowned-ai/geonote/pkg/notes"
	"github.com/unowned-ai/geonote/pkg/observe"
)

// Validation messages surfaced through ValidationError.
const (
	MsgTitleEmpty = "title must not be empty"
	MsgBodyEmpty  = "body must not be empty"
)

// NoteInput is what a create or edit form submits.
// Location and photo values come from the device collaborators, already resolved.
type NoteInput struct {
	Title     string
	Body      string
	Latitude  *float64
	Longitude *float64
	Accuracy  *float32
	Tags      *string
	ImageURI  *string
	// NoteID selects the note to overwrite; zero or negative creates a new note.
	NoteID int64
}

// Option configures a Holder.
type Option func(*Holder)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Holder) { h.now = now }
}

// WithLogger sets the holder's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Holder) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Holder is owned by a single screen or session; it is not meant to be shared.
type Holder struct {
	repo   *notes.Repository
	logger *zap.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	notes           *observe.Value[[]notes.Note]
	loaded          chan struct{}
	loadedOnce      sync.Once
	validationError *observe.Value[string]
	currentNote     *observe.Value[*notes.Note]
	saveCompleted   *observe.Broadcast[int64]
}

// NewHolder builds a Holder over repo. Call Close when the screen goes away.
func NewHolder(repo *notes.Repository, opts ...Option) *Holder {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Holder{
		repo:            repo,
		logger:          zap.NewNop(),
		now:             time.Now,
		ctx:             ctx,
		cancel:          cancel,
		loaded:          make(chan struct{}),
		validationError: observe.NewValue(""),
		currentNote:     observe.NewValue[*notes.Note](nil),
		saveCompleted:   observe.NewBroadcast[int64](observe.DefaultBroadcastBuffer),
	}
	h.notes = observe.NewLazyValue([]notes.Note{}, h.collectNotes)
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// collectNotes mirrors the repository's live list for the holder's lifetime.
func (h *Holder) collectNotes() {
	stream, err := h.repo.List(h.ctx)
	if err != nil {
		if h.ctx.Err() == nil {
			h.logger.Error("failed to subscribe to notes", zap.Error(err))
		}
		return
	}
	for snapshot := range stream {
		h.notes.Set(snapshot)
		h.loadedOnce.Do(func() { close(h.loaded) })
	}
}

// Close releases the live list. Operations still in flight finish, but their
// effects on the holder's state are dropped.
func (h *Holder) Close() {
	h.cancel()
}

func (h *Holder) closed() bool {
	return h.ctx.Err() != nil
}

// Notes streams the active notes; the first call starts the underlying subscription.
func (h *Holder) Notes(ctx context.Context) <-chan []notes.Note {
	return h.notes.Subscribe(ctx)
}

// NotesSnapshot returns the latest list, empty until the first emission arrives.
func (h *Holder) NotesSnapshot() []notes.Note {
	return h.notes.Get()
}

// Loaded is closed once the first list from the store has been published.
// Until then Notes only carries the empty placeholder. Loaded does not start
// the subscription; call Notes or NotesSnapshot first.
func (h *Holder) Loaded() <-chan struct{} {
	return h.loaded
}

// ValidationError returns the pending validation message, or "" when there is none.
func (h *Holder) ValidationError() string {
	return h.validationError.Get()
}

// ValidationErrors streams the validation message as it changes.
func (h *Holder) ValidationErrors(ctx context.Context) <-chan string {
	return h.validationError.Subscribe(ctx)
}

// ClearError hides the validation message, typically once the user edits the field.
func (h *Holder) ClearError() {
	h.validationError.Set("")
}

// CurrentNote returns the note loaded for editing, or nil.
func (h *Holder) CurrentNote() *notes.Note {
	return h.currentNote.Get()
}

// CurrentNotes streams the note under edit as it changes.
func (h *Holder) CurrentNotes(ctx context.Context) <-chan *notes.Note {
	return h.currentNote.Subscribe(ctx)
}

// SaveCompleted delivers the id of every note saved after the call.
func (h *Holder) SaveCompleted(ctx context.Context) <-chan int64 {
	return h.saveCompleted.Subscribe(ctx)
}

// LoadNote fetches id into the note-under-edit slot. A missing note clears it.
func (h *Holder) LoadNote(ctx context.Context, id int64) error {
	n, err := h.repo.Get(ctx, id)
	if err != nil && !errors.Is(err, notes.ErrNoteNotFound) {
		return err
	}
	if h.closed() {
		return nil
	}
	if err != nil {
		h.currentNote.Set(nil)
		return nil
	}
	h.currentNote.Set(&n)
	return nil
}

// ClearCurrentNote empties the note-under-edit slot.
func (h *Holder) ClearCurrentNote() {
	h.currentNote.Set(nil)
}

// SaveNote validates in and writes it. A rejected input sets ValidationError and
// returns (0, nil) without touching storage; storage failures are returned as is.
// On success the note under edit is cleared and SaveCompleted fires once.
func (h *Holder) SaveNote(ctx context.Context, in NoteInput) (int64, error) {
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Body)

	if title == "" {
		h.validationError.Set(MsgTitleEmpty)
		return 0, nil
	}
	if body == "" {
		h.validationError.Set(MsgBodyEmpty)
		return 0, nil
	}

	now := h.now().UnixMilli()
	n := notes.Note{
		Title:     title,
		Body:      body,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Accuracy:  in.Accuracy,
		CreatedAt: now,
		UpdatedAt: now,
		Tags:      notes.NormalizeTags(in.Tags),
		Archived:  false,
		ImageURI:  in.ImageURI,
	}
	if in.NoteID > 0 {
		n.ID = in.NoteID
		if cur := h.currentNote.Get(); cur != nil && cur.ID == in.NoteID {
			n.CreatedAt = cur.CreatedAt
			if n.UpdatedAt < n.CreatedAt {
				n.UpdatedAt = n.CreatedAt
			}
		}
	}

	id, err := h.repo.Save(ctx, n)
	if err != nil {
		return 0, err
	}
	h.logger.Debug("note saved", zap.Int64("id", id), zap.Bool("edit", in.NoteID > 0))

	if h.closed() {
		return id, nil
	}
	h.currentNote.Set(nil)
	if err := h.saveCompleted.Emit(h.ctx, id); err != nil && !h.closed() {
		h.logger.Warn("save signal not delivered", zap.Error(err))
	}
	return id, nil
}

// Archive hides the note from the active list.
func (h *Holder) Archive(ctx context.Context, id int64) error {
	return h.repo.Archive(ctx, id)
}
