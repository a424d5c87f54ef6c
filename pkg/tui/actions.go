package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unowned-ai/geonote/pkg/device"
	"github.com/unowned-ai/geonote/pkg/notes"
	"github.com/unowned-ai/geonote/pkg/viewmodel"
)

type notesMsg []notes.Note

type notesClosedMsg struct{}

type savedMsg int64

type saveResultMsg struct {
	err error
}

type noteLoadedMsg struct {
	note *notes.Note
}

type archivedMsg int64

type locationMsg struct {
	fix *device.Fix
	err error
}

type photoMsg struct {
	uri *string
	err error
}

// Wait for the next notes snapshot from the holder
func waitForNotes(ch <-chan []notes.Note) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-ch
		if !ok {
			return notesClosedMsg{}
		}
		return notesMsg(snapshot)
	}
}

// Wait for the next save signal
func waitForSaved(ch <-chan int64) tea.Cmd {
	return func() tea.Msg {
		id, ok := <-ch
		if !ok {
			return nil
		}
		return savedMsg(id)
	}
}

func saveNote(ctx context.Context, h *viewmodel.Holder, in viewmodel.NoteInput) tea.Cmd {
	return func() tea.Msg {
		_, err := h.SaveNote(ctx, in)
		return saveResultMsg{err: err}
	}
}

func loadNote(ctx context.Context, h *viewmodel.Holder, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := h.LoadNote(ctx, id); err != nil {
			return err
		}
		return noteLoadedMsg{note: h.CurrentNote()}
	}
}

func archiveNote(ctx context.Context, h *viewmodel.Holder, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := h.Archive(ctx, id); err != nil {
			return err
		}
		return archivedMsg(id)
	}
}

func fetchLocation(ctx context.Context, gate device.PermissionGate, src device.LocationSource) tea.Cmd {
	return func() tea.Msg {
		fix, err := device.FetchLocation(ctx, gate, src)
		return locationMsg{fix: fix, err: err}
	}
}

func capturePhoto(ctx context.Context, gate device.PermissionGate, capture device.ImageCapture) tea.Cmd {
	return func() tea.Msg {
		uri, err := device.CapturePhoto(ctx, gate, capture)
		return photoMsg{uri: uri, err: err}
	}
}
