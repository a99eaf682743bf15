// Package theme holds the terminal palette and styles shared by the
// console driver and report commands.
package theme

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

// Color palette, calm clinical tones
var (
	Primary   = lipgloss.Color("#2563EB") // Blue
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Rule = lipgloss.NewStyle().
		Foreground(Border)
)

// States
var (
	Leading = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	Option = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Good = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Bad = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Severity picks a color for a triage severity multiplier: above 1 is
// urgent, below 1 is mild.
func Severity(sev float64) lipgloss.Style {
	var c color.Color
	switch {
	case sev > 1.2:
		c = Error
	case sev > 1:
		c = Accent
	default:
		c = Success
	}
	return lipgloss.NewStyle().Foreground(c)
}

// Bar renders a proportion in [0,1] as a fixed-width meter.
func Bar(p float64, width int) string {
	if width <= 0 {
		return ""
	}
	p = min(max(p, 0), 1)
	filled := int(p*float64(width) + 0.5)
	return lipgloss.NewStyle().Foreground(Secondary).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("░", width-filled))
}

