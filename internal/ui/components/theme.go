package components

import (
	"github.com/charmbracelet/lipgloss"
)

// ColorToken names a semantic color slot of a Theme.
type ColorToken int

const (
	PalettePrimary ColorToken = iota
	PaletteAccent
	PaletteMuted
	PaletteSurface
	PaletteText
	PaletteBorder
)

// Theme is an immutable set of colors and border glyphs.
type Theme struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Surface lipgloss.Color
	Text    lipgloss.Color
	Border  lipgloss.Color

	BorderStyle lipgloss.Border
}

// DefaultTheme returns the 256-color theme used by the playground.
func DefaultTheme() Theme {
	return Theme{
		Primary:     lipgloss.Color("99"),
		Accent:      lipgloss.Color("212"),
		Muted:       lipgloss.Color("245"),
		Surface:     lipgloss.Color("235"),
		Text:        lipgloss.Color("252"),
		Border:      lipgloss.Color("63"),
		BorderStyle: lipgloss.RoundedBorder(),
	}
}

// MonochromeTheme has no colors, only ASCII borders. Useful for golden
// output and dumb terminals.
func MonochromeTheme() Theme {
	return Theme{BorderStyle: lipgloss.NormalBorder()}
}

// Color resolves a token. Unknown tokens resolve to Text.
func (t Theme) Color(token ColorToken) lipgloss.Color {
	switch token {
	case PalettePrimary:
		return t.Primary
	case PaletteAccent:
		return t.Accent
	case PaletteMuted:
		return t.Muted
	case PaletteSurface:
		return t.Surface
	case PaletteBorder:
		return t.Border
	default:
		return t.Text
	}
}

// Foreground sets the text color from the theme.
func Foreground(token ColorToken) StyleFunc {
	return func(s lipgloss.Style, theme Theme) lipgloss.Style {
		if c := theme.Color(token); c != "" {
			return s.Foreground(c)
		}
		return s
	}
}

// Background sets the background color from the theme.
func Background(token ColorToken) StyleFunc {
	return func(s lipgloss.Style, theme Theme) lipgloss.Style {
		if c := theme.Color(token); c != "" {
			return s.Background(c)
		}
		return s
	}
}

// Bordered draws the theme border around the component.
func Bordered() StyleFunc {
	return func(s lipgloss.Style, theme Theme) lipgloss.Style {
		s = s.Border(theme.BorderStyle)
		if theme.Border != "" {
			s = s.BorderForeground(theme.Border)
		}
		return s
	}
}

// Bold makes the text bold.
func Bold() StyleFunc {
	return func(s lipgloss.Style, _ Theme) lipgloss.Style {
		return s.Bold(true)
	}
}
