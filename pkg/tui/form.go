package tui

import (
	"fmt"
	"strconv"
	"strings"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unowned-ai/geonote/pkg/notes"
	"github.com/unowned-ai/geonote/pkg/viewmodel"
)

const (
	fieldTitle = iota
	fieldBody
	fieldTags
	fieldLatitude
	fieldLongitude
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Body", "Tags", "Latitude", "Longitude"}

// noteForm is the create/edit form. noteID is zero when creating.
type noteForm struct {
	noteID   int64
	inputs   [fieldCount]textinput.Model
	focus    int
	accuracy *float32
	imageURI *string
	err      string // local parse errors; validation comes from the holder
	status   string // location/photo feedback
}

func newNoteForm() noteForm {
	var f noteForm
	placeholders := [fieldCount]string{
		"What is this about?",
		"Write your note",
		"comma,separated,tags (optional)",
		"-33.4489 (optional)",
		"-70.6693 (optional)",
	}
	limits := [fieldCount]int{256, 4096, 256, 32, 32}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		f.inputs[i] = in
	}
	f.inputs[fieldTitle].Focus()
	return f
}

// editForm fills a form from an existing note.
func editForm(n notes.Note) noteForm {
	f := newNoteForm()
	f.noteID = n.ID
	f.inputs[fieldTitle].SetValue(n.Title)
	f.inputs[fieldBody].SetValue(n.Body)
	if n.Tags != nil {
		f.inputs[fieldTags].SetValue(*n.Tags)
	}
	if n.HasLocation() {
		f.setLocation(*n.Latitude, *n.Longitude, n.Accuracy)
	}
	f.imageURI = n.ImageURI
	return f
}

func (f *noteForm) setLocation(lat, lon float64, accuracy *float32) {
	f.inputs[fieldLatitude].SetValue(strconv.FormatFloat(lat, 'f', -1, 64))
	f.inputs[fieldLongitude].SetValue(strconv.FormatFloat(lon, 'f', -1, 64))
	f.accuracy = accuracy
}

func (f *noteForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

func (f noteForm) update(msg tea.Msg) (noteForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func parseCoordinate(label, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", strings.ToLower(label))
	}
	return &v, nil
}

// input converts the form into what the holder validates and saves.
func (f noteForm) input() (viewmodel.NoteInput, error) {
	lat, err := parseCoordinate(fieldLabels[fieldLatitude], f.inputs[fieldLatitude].Value())
	if err != nil {
		return viewmodel.NoteInput{}, err
	}
	lon, err := parseCoordinate(fieldLabels[fieldLongitude], f.inputs[fieldLongitude].Value())
	if err != nil {
		return viewmodel.NoteInput{}, err
	}
	if (lat == nil) != (lon == nil) {
		return viewmodel.NoteInput{}, fmt.Errorf("latitude and longitude go together")
	}

	in := viewmodel.NoteInput{
		NoteID:    f.noteID,
		Title:     f.inputs[fieldTitle].Value(),
		Body:      f.inputs[fieldBody].Value(),
		Latitude:  lat,
		Longitude: lon,
		ImageURI:  f.imageURI,
	}
	if lat != nil {
		in.Accuracy = f.accuracy
	}
	tags := f.inputs[fieldTags].Value()
	in.Tags = &tags
	return in, nil
}
