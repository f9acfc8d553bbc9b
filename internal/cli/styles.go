// Package cli renders buildtrack's terminal output: styled status lines,
// boxes and tables, rupee amounts and prompts.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	BrickColor   = lipgloss.Color("#C1440E")
	CementColor  = lipgloss.Color("#8D8D8D")
	SuccessColor = lipgloss.Color("#3FA34D")
	WarningColor = lipgloss.Color("#E9B824")
	ErrorColor   = lipgloss.Color("#D7263D")
	InfoColor    = lipgloss.Color("#4A90C2")
)

var (
	TitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(BrickColor)
	SuccessStyle     = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle     = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle       = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle        = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle      = lipgloss.NewStyle().Foreground(CementColor)
	PromptStyle      = lipgloss.NewStyle().Bold(true).Foreground(BrickColor)
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(BrickColor).Padding(0, 1)
	TableCellStyle   = lipgloss.NewStyle().Padding(0, 1)

	// BoxStyle frames dashboards and status panels.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BrickColor).
			Padding(0, 2)
)

// Status line icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "!"
	InfoIcon    = "•"
)

func line(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess renders a success line.
func FormatSuccess(message string) string { return line(SuccessStyle, SuccessIcon, message) }

// FormatError renders an error line.
func FormatError(message string) string { return line(ErrorStyle, ErrorIcon, message) }

// FormatWarning renders a warning line.
func FormatWarning(message string) string { return line(WarningStyle, WarningIcon, message) }

// FormatInfo renders an informational line.
func FormatInfo(message string) string { return line(InfoStyle, InfoIcon, message) }

// FormatPrompt renders a question awaiting input.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt) + " "
}

// RenderBox frames content under a title.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), "", content))
}
