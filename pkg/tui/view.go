package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unowned-ai/geonote/pkg/mapview"
	"github.com/unowned-ai/geonote/pkg/notes"
	"github.com/unowned-ai/geonote/pkg/viewmodel"
)

// Assembles the UI string for each frame
func (m model) View() string {
	if m.quitting {
		return "Notes saved. See you around.\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	titleBar := titleStyle.Width(m.width).Render("GeoNote - notes with a place")
	leftWidth, rightWidth := m.columnWidths()

	leftPanel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(0, 2).
		Width(leftWidth).Height(m.height - panelHeightPadding).
		Render(m.listView(leftWidth))

	rightPanel := lipgloss.NewStyle().Padding(0, 2).
		Width(rightWidth).Height(m.height - panelHeightPadding).
		Render(m.detailView(rightWidth))

	columns := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
	footerBar := footerStyle.Width(m.width).Render("\n" + m.footerText())

	return titleBar + "\n\n" + columns + footerBar
}

func (m model) listView(width int) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("  Notes (%d)", len(m.visible))))
	b.WriteString("\n")
	if m.filtering || m.filterInput.Value() != "" {
		b.WriteString(m.filterInput.View())
	}
	b.WriteString("\n\n")

	if len(m.notes) == 0 {
		b.WriteString("No notes yet. Press 'n' to create one.\n")
		return b.String()
	}
	if len(m.visible) == 0 {
		b.WriteString("Nothing matches the search.\n")
		return b.String()
	}

	now := m.opts.Now()
	available := width - bordersAndPaddingWidth - 2
	for i, n := range m.visible {
		pointer := "  "
		itemStyle := inactiveStyle
		if i == m.cursor {
			pointer = "> "
			itemStyle = selectedStyle
		}
		age := viewmodel.RelativeTime(now, n.UpdatedAt)
		title := truncate(n.Title, available-len(age)-1)
		b.WriteString(pointer + itemStyle.Render(title) + " " + metaStyle.Render(age) + "\n")

		var extras []string
		if n.HasLocation() {
			extras = append(extras, viewmodel.LocationLabel(n, 3))
		}
		if chips := viewmodel.TagChips(n, 3); len(chips) > 0 {
			extras = append(extras, tagStyle.Render("#"+strings.Join(chips, " #")))
		}
		if n.ImageURI != nil {
			extras = append(extras, "[photo]")
		}
		if len(extras) > 0 {
			b.WriteString("    " + strings.Join(extras, "  ") + "\n")
		}
	}
	return b.String()
}

func (m model) detailView(width int) string {
	var b strings.Builder

	switch m.mode {
	case modeForm:
		heading := "New Note"
		if m.form.noteID > 0 {
			heading = fmt.Sprintf("Edit Note %d", m.form.noteID)
		}
		b.WriteString(subtitleStyle.Render(heading) + "\n\n")
		for i := range m.form.inputs {
			m.form.inputs[i].Width = width - bordersAndPaddingWidth - 12
			b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", fieldLabels[i])) + " " + m.form.inputs[i].View() + "\n")
		}
		if m.form.accuracy != nil {
			b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", "Accuracy")) + " " + viewmodel.AccuracyLabel(m.form.accuracy) + "\n")
		}
		if m.form.imageURI != nil {
			b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", "Photo")) + " " + filepath.Base(*m.form.imageURI) + "\n")
		}
		b.WriteString("\n(ctrl+s to save, ctrl+l location, ctrl+p photo, ctrl+x remove photo, esc to cancel)")

		if msg := m.holder.ValidationError(); msg != "" {
			b.WriteString("\n\n" + textRedStyle.Render(msg))
		}
		if m.form.err != "" {
			b.WriteString("\n\n" + textRedStyle.Render(m.form.err))
		}
		if m.form.status != "" {
			b.WriteString("\n\n" + metaStyle.Render(m.form.status))
		}

	case modeArchive:
		b.WriteString(subtitleStyle.Render("Archive Note") + "\n\n")
		if n, ok := m.selected(); ok {
			b.WriteString("Title: " + textRedStyle.Render(n.Title) + "\n\n")
		}
		b.WriteString(confirmOptions(m.archiveConfirmIdx == 0) + "\n\n")
		b.WriteString("(enter to confirm, esc to cancel, up/down to switch)")

	case modeMap:
		v := mapview.Build(m.notes)
		b.WriteString(subtitleStyle.Render("Map") + "\n\n")
		b.WriteString(v.Text())

	default:
		b.WriteString(subtitleStyle.Render("Note") + "\n\n")
		n, ok := m.selected()
		if !ok {
			b.WriteString("Select a note to view details.")
			break
		}
		b.WriteString(noteDetail(n))
	}
	return b.String()
}

func noteDetail(n notes.Note) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(labelStyle.Render("Title: ")+inactiveStyle.Render(n.Title)) + "\n\n")

	location := viewmodel.LocationLabel(n, 5)
	if acc := viewmodel.AccuracyLabel(n.Accuracy); acc != "" && n.HasLocation() {
		location += " (" + acc + ")"
	}
	b.WriteString(labelStyle.Render("Location: ") + location + "\n")

	tagsLine := "-"
	if tags := notes.SplitTags(n.Tags); len(tags) > 0 {
		tagsLine = strings.Join(tags, " ")
	}
	b.WriteString(labelStyle.Render("Tags: ") + tagStyle.Render(tagsLine) + "\n")
	if n.ImageURI != nil {
		b.WriteString(labelStyle.Render("Photo: ") + *n.ImageURI + "\n")
	}
	b.WriteString("\n" + inactiveStyle.Render(n.Body))
	return b.String()
}

func (m model) footerText() string {
	var status string
	if m.status != "" {
		status = m.status + " • "
	}
	if m.opts.DBFile != "" {
		status += "db: " + TextStatusColorize(filepath.Base(m.opts.DBFile), 1) + " • "
	}
	switch m.mode {
	case modeForm:
		return status + "tab to switch field • ctrl+s to save • esc to cancel"
	case modeMap:
		return status + "m/esc to go back"
	}
	return status + "↑/↓ to navigate • / to search • n to create • e to edit • a to archive • m for map • q to quit"
}
