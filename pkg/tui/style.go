package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// UI styles and layout settings
// Color palette "Blue Moon" from https://gogh-co.github.io/Gogh/
const (
	colorGray     = "#353b52"
	colorWhite    = "#ffffff"
	colorGreen    = "#acfab4"
	colorGreenDim = "#b4c4b4"
	colorRed      = "#e61f44"
	colorRedDim   = "#d06178"
	colorPurple   = "#b9a3eb"
	colorBlue     = "#89ddff"

	bordersAndPaddingWidth = 4
	panelHeightPadding     = 3
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue)).
			Background(lipgloss.Color(colorGray)).
			Padding(0, 2).Align(lipgloss.Center)
	subtitleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray)).
			Background(lipgloss.Color(colorGreen))
	dangerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorGray)).
				Background(lipgloss.Color(colorRed))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWhite))
	textRedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorBlue))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPurple))
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreenDim))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray))
)

// Function to colorize text based on its status
// 0 (default) - unknown, 1 - green, 2 - red
func TextStatusColorize(text string, status int) string {
	switch status {
	case 1:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreenDim)).Render(text)
	case 2:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorRedDim)).Render(text)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)).Render(text)
	}
}

// truncate cuts s to width runes, ending in ".." when shortened.
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return s
	}
	return string(r[:width-2]) + ".."
}

// confirmOptions renders the Yes/No pair used by confirmation prompts.
func confirmOptions(yesSelected bool) string {
	yesOpt, noOpt := "Yes", "No"
	if yesSelected {
		yesOpt = dangerSelectedStyle.Render(" >" + yesOpt)
		noOpt = inactiveStyle.Render("  " + noOpt)
	} else {
		yesOpt = inactiveStyle.Render("  " + yesOpt)
		noOpt = selectedStyle.Render(" >" + noOpt)
	}
	return strings.Join([]string{yesOpt, noOpt}, "\n")
}

// columnWidths splits the terminal 40/60 between the list and the detail pane.
func (m model) columnWidths() (int, int) {
	left := (m.width * 40) / 100
	return left, m.width - left
}
