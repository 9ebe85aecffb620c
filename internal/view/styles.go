package view

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#06B6D4")
	colorDanger    = lipgloss.Color("#EF4444")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorSuccess   = lipgloss.Color("#10B981")
	colorMuted     = lipgloss.Color("#6B7280")
	colorFg        = lipgloss.Color("#CDD6F4")
	colorAccent    = lipgloss.Color("#F5C2E7")
)

// theme holds the styles of one terminal renderer.
type theme struct {
	panel      lipgloss.Style
	title      lipgloss.Style
	heading    lipgloss.Style
	subheading lipgloss.Style
	label      lipgloss.Style
	value      lipgloss.Style
	muted      lipgloss.Style
	tags       lipgloss.Style
	footer     lipgloss.Style

	good lipgloss.Style
	warn lipgloss.Style
	bad  lipgloss.Style
}

func newRenderer(w io.Writer, noColor bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

func newTheme(r *lipgloss.Renderer) theme {
	return theme{
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1),
		title: r.NewStyle().
			Bold(true).
			Foreground(colorAccent),
		heading: r.NewStyle().
			Bold(true).
			Foreground(colorPrimary),
		subheading: r.NewStyle().
			Bold(true).
			Foreground(colorSecondary),
		label: r.NewStyle().
			Foreground(colorSecondary).
			Bold(true),
		value: r.NewStyle().
			Foreground(colorFg),
		muted: r.NewStyle().
			Foreground(colorMuted).
			Italic(true),
		tags: r.NewStyle().
			Foreground(colorAccent),
		footer: r.NewStyle().
			Foreground(colorMuted),
		good: r.NewStyle().
			Foreground(colorSuccess).
			Bold(true),
		warn: r.NewStyle().
			Foreground(colorWarning).
			Bold(true),
		bad: r.NewStyle().
			Foreground(colorDanger).
			Bold(true),
	}
}

// scoreStyle grades a count of bad verdicts.
func (t theme) scoreStyle(bad int) lipgloss.Style {
	switch {
	case bad >= 5:
		return t.bad
	case bad > 0:
		return t.warn
	default:
		return t.good
	}
}
