package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette shared by all CLI output.
const (
	colorMuted     = lipgloss.Color("#6B7280")
	colorSuccess   = lipgloss.Color("#10B981")
	colorError     = lipgloss.Color("#EF4444")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorHighlight = lipgloss.Color("#3B82F6")
)

// styles renders for one output stream, so color is only emitted when that
// stream is a terminal.
type styles struct {
	success lipgloss.Style
	err     lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
	cmd     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		success: r.NewStyle().Foreground(colorSuccess),
		err:     r.NewStyle().Bold(true).Foreground(colorError),
		warning: r.NewStyle().Foreground(colorWarning),
		muted:   r.NewStyle().Foreground(colorMuted),
		cmd:     r.NewStyle().Foreground(colorHighlight),
	}
}
