package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/roster/internal/reconcile"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

// Gate styles a gate name: open is ok, loading a warning, empty an error.
func (p *Palette) Gate(g reconcile.Gate) string {
	switch g {
	case reconcile.GateOpen:
		return p.ok.Render(g.String())
	case reconcile.GateLoading:
		return p.warn.Render(g.String())
	default:
		return p.err.Render(g.String())
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
