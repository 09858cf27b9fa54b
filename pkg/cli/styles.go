package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tutorstack/tutorcore/pkg/transcript"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Student lipgloss.Color // Student speaker color
	Tutor   lipgloss.Color // Tutor speaker color
	Math    lipgloss.Color // Math content color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Student: lipgloss.Color("#58a6ff"),
	Tutor:   lipgloss.Color("#00ff9f"),
	Math:    lipgloss.Color("#d2a8ff"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title   lipgloss.Style
	Student lipgloss.Style
	Tutor   lipgloss.Style
	System  lipgloss.Style
	Math    lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Student: lipgloss.NewStyle().Bold(true).Foreground(t.Student),
		Tutor:   lipgloss.NewStyle().Bold(true).Foreground(t.Tutor),
		System:  lipgloss.NewStyle().Italic(true).Foreground(t.Dim),
		Math:    lipgloss.NewStyle().Foreground(t.Math),
		Help:    lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// FormatItem renders one transcript item as a styled terminal line.
// Math items show the converted markup next to the spoken content; system
// items are dimmed.
func (s Styles) FormatItem(it transcript.Item) string {
	if it.Kind == transcript.KindSystem {
		return s.System.Render("· " + it.Content)
	}

	speaker := s.speakerStyle(it.Speaker).Render(it.Speaker + ":")
	line := fmt.Sprintf("%s %s", speaker, it.Content)
	if it.Kind == transcript.KindMath && it.Rendered != nil {
		line += "  " + s.Math.Render(it.Rendered.Source)
	}
	return line
}

func (s Styles) speakerStyle(speaker string) lipgloss.Style {
	switch speaker {
	case transcript.SpeakerStudent:
		return s.Student
	default:
		return s.Tutor
	}
}
