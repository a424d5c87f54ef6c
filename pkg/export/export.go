// Package export writes a notes snapshot as json, yaml or a standalone html page.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"

	"github.com/unowned-ai/geonote/pkg/notes"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatHTML = "html"
)

// Formats lists the accepted format names.
var Formats = []string{FormatJSON, FormatYAML, FormatHTML}

// Write encodes list to w in format. Notes are written in the order given.
func Write(w io.Writer, format string, list []notes.Note) error {
	if list == nil {
		list = []notes.Note{}
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(list); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(list); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatHTML:
		return writeHTML(w, list)
	default:
		return fmt.Errorf("unknown export format '%s' (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// writeHTML renders each body as Markdown. Raw HTML in bodies is dropped by goldmark.
func writeHTML(w io.Writer, list []notes.Note) error {
	md := goldmark.New()

	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>GeoNote</title>\n</head>\n<body>\n")
	for _, n := range list {
		fmt.Fprintf(&b, "<article id=\"note-%d\">\n<h2>%s</h2>\n", n.ID, html.EscapeString(n.Title))
		fmt.Fprintf(&b, "<p class=\"meta\">%s", time.UnixMilli(n.UpdatedAt).UTC().Format(time.RFC3339))
		if n.HasLocation() {
			fmt.Fprintf(&b, " &middot; %.5f, %.5f", *n.Latitude, *n.Longitude)
		}
		b.WriteString("</p>\n")

		if err := md.Convert([]byte(n.Body), &b); err != nil {
			return fmt.Errorf("failed to render note %d: %w", n.ID, err)
		}

		if tags := notes.SplitTags(n.Tags); len(tags) > 0 {
			b.WriteString("<ul class=\"tags\">")
			for _, t := range tags {
				fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(t))
			}
			b.WriteString("</ul>\n")
		}
		if n.ImageURI != nil {
			fmt.Fprintf(&b, "<img src=\"%s\" alt=\"\">\n", html.EscapeString(*n.ImageURI))
		}
		b.WriteString("</article>\n")
	}
	b.WriteString("</body>\n</html>\n")

	_, err := w.Write(b.Bytes())
	return err
}
