package ui

import (
	"github.com/charmbracelet/lipgloss"

	"webdeck/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title     lipgloss.Style
	ok        lipgloss.Style
	err       lipgloss.Style
	warn      lipgloss.Style
	help      lipgloss.Style
	tabActive lipgloss.Style
	tabIdle   lipgloss.Style
	banner    lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:     NewBold(t).MarginBottom(1),
		ok:        NewBold(s),
		err:       NewBold(e),
		warn:      NewStyle(w),
		help:      NewEm(h),
		tabActive: NewBold(t).Underline(true).Padding(0, 1),
		tabIdle:   NewStyle(h).Padding(0, 1),
		banner:    NewBold(w).Padding(0, 1),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// statusBadge renders a project status with the palette color it deserves.
func statusBadge(s models.Status) string {
	switch s {
	case models.StatusRunning:
		return styles.ok.Render(s.String())
	case models.StatusError:
		return styles.err.Render(s.String())
	case models.StatusAvailable:
		return styles.help.Render(s.String())
	default:
		return styles.warn.Render(s.String())
	}
}
