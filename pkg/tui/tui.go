package tui

import (
	"context"
	"fmt"
	"time"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unowned-ai/geonote/pkg/device"
	"github.com/unowned-ai/geonote/pkg/notes"
	"github.com/unowned-ai/geonote/pkg/viewmodel"
)

const (
	modeBrowse = iota
	modeForm
	modeArchive
	modeMap
)

// Options wires the device collaborators into the form. All are optional.
type Options struct {
	DBFile   string
	Gate     device.PermissionGate
	Location device.LocationSource
	Camera   device.ImageCapture
	Now      func() time.Time
}

type model struct {
	ctx    context.Context
	holder *viewmodel.Holder
	opts   Options

	notesCh <-chan []notes.Note
	savedCh <-chan int64

	notes   []notes.Note // latest snapshot
	visible []notes.Note // snapshot after the filter
	cursor  int

	mode              int
	form              noteForm
	archiveConfirmIdx int // 0 = "Yes" selected, 1 = "No"

	filtering   bool
	filterInput textinput.Model

	status   string
	width    int
	height   int
	err      error
	quitting bool
}

// Initialize TUI model. Observation of h lasts as long as ctx.
func initModel(ctx context.Context, h *viewmodel.Holder, opts Options) model {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	filter := textinput.New()
	filter.Placeholder = "search"
	filter.Prompt = "/ "
	filter.CharLimit = 128

	return model{
		ctx:         ctx,
		holder:      h,
		opts:        opts,
		notesCh:     h.Notes(ctx),
		savedCh:     h.SaveCompleted(ctx),
		notes:       []notes.Note{},
		visible:     []notes.Note{},
		filterInput: filter,
		form:        newNoteForm(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForNotes(m.notesCh), waitForSaved(m.savedCh))
}

func (m model) selected() (notes.Note, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return notes.Note{}, false
	}
	return m.visible[m.cursor], true
}

// applyFilter recomputes the visible list, keeping the cursor on the same note when possible.
func (m *model) applyFilter() {
	var keep int64
	if n, ok := m.selected(); ok {
		keep = n.ID
	}

	m.visible = notes.Search(m.notes, m.filterInput.Value())
	m.cursor = 0
	for i, n := range m.visible {
		if n.ID == keep {
			m.cursor = i
			break
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case error:
		m.err = msg
		return m, nil

	case notesMsg:
		m.notes = msg
		m.applyFilter()
		return m, waitForNotes(m.notesCh)

	case notesClosedMsg:
		return m, nil

	case savedMsg:
		// The form closes on the save signal, not on the call returning.
		if m.mode == modeForm {
			m.mode = modeBrowse
			m.form = newNoteForm()
		}
		m.status = fmt.Sprintf("Saved note %d", int64(msg))
		return m, waitForSaved(m.savedCh)

	case saveResultMsg:
		if msg.err != nil {
			m.form.err = fmt.Sprintf("Could not save: %v", msg.err)
		}
		return m, nil

	case noteLoadedMsg:
		if msg.note == nil {
			m.status = "Note no longer exists"
			return m, nil
		}
		m.form = editForm(*msg.note)
		m.mode = modeForm
		return m, nil

	case archivedMsg:
		m.status = fmt.Sprintf("Archived note %d", int64(msg))
		return m, nil

	case locationMsg:
		if msg.err != nil {
			m.form.status = msg.err.Error()
			return m, nil
		}
		m.form.setLocation(msg.fix.Latitude, msg.fix.Longitude, msg.fix.Accuracy)
		m.form.status = "Location captured " + viewmodel.AccuracyLabel(msg.fix.Accuracy)
		return m, nil

	case photoMsg:
		switch {
		case msg.err != nil:
			m.form.status = fmt.Sprintf("Could not attach photo: %v", msg.err)
		case msg.uri != nil:
			m.form.imageURI = msg.uri
			m.form.status = "Photo attached"
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeArchive:
			return m.updateArchive(msg)
		case modeMap:
			switch msg.String() {
			case "esc", "m", "q":
				m.mode = modeBrowse
			}
			return m, nil
		}
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		// Exit alt screen before quitting so the goodbye message displays
		return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}

	case "/":
		m.filtering = true
		m.filterInput.Focus()

	case "n":
		m.holder.ClearCurrentNote()
		m.holder.ClearError()
		m.form = newNoteForm()
		m.mode = modeForm

	case "e", "enter":
		if n, ok := m.selected(); ok {
			m.holder.ClearError()
			return m, loadNote(m.ctx, m.holder, n.ID)
		}

	case "a":
		if _, ok := m.selected(); ok {
			m.archiveConfirmIdx = 1
			m.mode = modeArchive
		}

	case "m":
		m.mode = modeMap
	}
	return m, nil
}

func (m model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.Reset()
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.holder.ClearCurrentNote()
		m.holder.ClearError()
		m.form = newNoteForm()
		m.mode = modeBrowse
		return m, nil

	case "tab", "down":
		m.form.move(1)
		return m, nil

	case "shift+tab", "up":
		m.form.move(-1)
		return m, nil

	case "ctrl+s", "enter":
		if msg.String() == "enter" && m.form.focus != fieldCount-1 {
			m.form.move(1)
			return m, nil
		}
		in, err := m.form.input()
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.form.err = ""
		return m, saveNote(m.ctx, m.holder, in)

	case "ctrl+l":
		m.form.status = "Getting location..."
		return m, fetchLocation(m.ctx, m.opts.Gate, m.opts.Location)

	case "ctrl+p":
		if m.opts.Camera == nil {
			m.form.status = "No camera configured"
			return m, nil
		}
		return m, capturePhoto(m.ctx, m.opts.Gate, m.opts.Camera)

	case "ctrl+x":
		m.form.imageURI = nil
		m.form.status = "Photo removed"
		return m, nil
	}

	// Typing hides a stale validation message.
	if m.holder.ValidationError() != "" {
		m.holder.ClearError()
	}
	m.form.err = ""
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m model) updateArchive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.archiveConfirmIdx = 0

	case "down", "j":
		m.archiveConfirmIdx = 1

	case "enter":
		m.mode = modeBrowse
		if n, ok := m.selected(); ok && m.archiveConfirmIdx == 0 {
			return m, archiveNote(m.ctx, m.holder, n.ID)
		}

	case "esc":
		m.mode = modeBrowse
	}
	return m, nil
}

// ShowTUI runs the note browser until the user quits. It owns h's lifetime.
func ShowTUI(repo *notes.Repository, opts Options, holderOpts ...viewmodel.Option) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := viewmodel.NewHolder(repo, holderOpts...)
	defer h.Close()

	p := tea.NewProgram(initModel(ctx, h, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
