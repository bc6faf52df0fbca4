package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals outside this block.
var (
	// ColorCyan is used for identifiable nouns: identities, module names, paths.
	ColorCyan = lipgloss.Color("14")

	// colorGreen is used for the "created" status.
	colorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "stale" alias status.
	ColorYellow = lipgloss.Color("220")

	// colorRed is used for the "removed" status.
	colorRed = lipgloss.Color("196")

	// colorBoldRed is used for the "failed" status (matches ERROR level).
	colorBoldRed = lipgloss.Color("204")

	// colorGreenCheck is used for the completion checkmark.
	colorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")

	// colorBlue is used for table headers.
	colorBlue = lipgloss.Color("12")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns (identities, modules, paths).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs (building, removing).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (prefixes, separators).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)

	// StyleHeader styles section labels in text listings.
	StyleHeader = lipgloss.NewStyle().Bold(true)
)

// Environment status words.
const (
	StatusCreated   = "created"
	StatusRemoved   = "removed"
	StatusUnchanged = "unchanged"
	StatusStale     = "stale"
	StatusFailed    = "failed"
)

// StatusStyle returns the lipgloss style for a given status string.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusCreated:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case StatusStale:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusUnchanged:
		return lipgloss.NewStyle().Faint(true)
	case StatusRemoved:
		return lipgloss.NewStyle().Foreground(colorRed)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(colorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minEnvColumnWidth is the minimum width of the "id module/package" column
// before the status suffix, so status words align.
const minEnvColumnWidth = 40

// FormatEnvLine renders an environment identifier with a right-aligned,
// color-coded status suffix.
//
// Format: e:<id> <module>[/<package>]  <status>
func FormatEnvLine(id, module, pkg, status string) string {
	label := module
	if pkg != "" {
		label = module + "/" + pkg
	}
	path := id + " " + label

	padding := minEnvColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}

	return StyleDim.Render("e:") +
		StyleNoun.Render(id) + " " + label +
		strings.Repeat(" ", padding) +
		StatusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(colorGreenCheck).Render("✔")
	return check + " " + msg
}
