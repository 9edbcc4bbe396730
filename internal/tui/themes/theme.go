// Package themes holds the chat UI color palettes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the chat UI.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	UserLabel   lipgloss.Style
	AssistLabel lipgloss.Style
	Message     lipgloss.Style
	Goal        lipgloss.Style
	StatusError lipgloss.Style
	Help        lipgloss.Style
	InputBox    lipgloss.Style
	Primary     lipgloss.Color
	Muted       lipgloss.Color
	Border      lipgloss.Color
	Error       lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary: lipgloss.Color("#2A9D8F"),
	Muted:   lipgloss.Color("#737373"),
	Border:  lipgloss.Color("#404040"),
	Error:   lipgloss.Color("#ef4444"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#2A9D8F")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	UserLabel: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#a78bfa")),
	AssistLabel: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#2A9D8F")),
	Message: lipgloss.NewStyle().
		PaddingLeft(2),
	Goal: lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("#10b981")),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	InputBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
}

// Plain has no colors, for dumb terminals and golden output.
var Plain = Theme{
	Title:       lipgloss.NewStyle().Bold(true),
	Subtitle:    lipgloss.NewStyle(),
	UserLabel:   lipgloss.NewStyle().Bold(true),
	AssistLabel: lipgloss.NewStyle().Bold(true),
	Message:     lipgloss.NewStyle().PaddingLeft(2),
	Goal:        lipgloss.NewStyle().PaddingLeft(2),
	StatusError: lipgloss.NewStyle(),
	Help:        lipgloss.NewStyle(),
	InputBox:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()),
}
