// Package mapview turns a notes snapshot into what the map screen draws.
package mapview

import (
	"fmt"
	"strings"

	"github.com/unowned-ai/geonote/pkg/notes"
)

const (
	DefaultZoom  = 12
	SnippetRunes = 60

	EmptyTitle = "No notes with a location"
	EmptyHint  = "Create notes and add a location to see them here"
)

// DefaultCenter is used when no note has a location (Santiago, Chile).
var DefaultCenter = LatLng{Lat: -33.4489, Lon: -70.6693}

type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

type Marker struct {
	NoteID   int64  `json:"noteId" yaml:"noteId"`
	Position LatLng `json:"position" yaml:"position"`
	Title    string `json:"title" yaml:"title"`
	Snippet  string `json:"snippet" yaml:"snippet"`
}

// View is the map screen state for one snapshot.
type View struct {
	Center  LatLng   `json:"center" yaml:"center"`
	Zoom    int      `json:"zoom" yaml:"zoom"`
	Markers []Marker `json:"markers" yaml:"markers"`
}

// Build keeps the notes that have both coordinates, in snapshot order, and
// centers on the first of them.
func Build(snapshot []notes.Note) View {
	v := View{Center: DefaultCenter, Zoom: DefaultZoom, Markers: []Marker{}}
	for _, n := range snapshot {
		if !n.HasLocation() {
			continue
		}
		v.Markers = append(v.Markers, Marker{
			NoteID:   n.ID,
			Position: LatLng{Lat: *n.Latitude, Lon: *n.Longitude},
			Title:    n.Title,
			Snippet:  Snippet(n.Body),
		})
	}
	if len(v.Markers) > 0 {
		v.Center = v.Markers[0].Position
	}
	return v
}

// Empty reports whether there is nothing to place on the map.
func (v View) Empty() bool {
	return len(v.Markers) == 0
}

// CountLabel is the badge shown over the map.
func (v View) CountLabel() string {
	if len(v.Markers) == 1 {
		return "1 note"
	}
	return fmt.Sprintf("%d notes", len(v.Markers))
}

// Snippet cuts body to SnippetRunes runes, adding "..." when something was cut.
func Snippet(body string) string {
	r := []rune(body)
	if len(r) <= SnippetRunes {
		return body
	}
	return string(r[:SnippetRunes]) + "..."
}

// Text renders v for a terminal.
func (v View) Text() string {
	if v.Empty() {
		return EmptyTitle + "\n" + EmptyHint + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Center: %.4f, %.4f (zoom %d) | %s\n", v.Center.Lat, v.Center.Lon, v.Zoom, v.CountLabel())
	for _, m := range v.Markers {
		fmt.Fprintf(&b, "  [%d] %.4f, %.4f  %s\n", m.NoteID, m.Position.Lat, m.Position.Lon, m.Title)
		if m.Snippet != "" {
			fmt.Fprintf(&b, "      %s\n", m.Snippet)
		}
	}
	return b.String()
}
