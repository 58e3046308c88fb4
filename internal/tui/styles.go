package tui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Styles groups the lipgloss styles used by the chat view.
type Styles struct {
	Header    lipgloss.Style
	Hint      lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Error     lipgloss.Style
	Raw       lipgloss.Style
	TableHead lipgloss.Style
	TableCell lipgloss.Style
	Label     lipgloss.Style
	Welcome   lipgloss.Style
	Spinner   lipgloss.Style

	// Markdown renders assistant text answers. Plain wrapping is used when nil.
	Markdown *glamour.TermRenderer
}

// NewMarkdown returns a markdown renderer that picks its theme from the
// terminal background.
func NewMarkdown(wrap int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Hint:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		User:      lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("27")).Padding(0, 1),
		Assistant: lipgloss.NewStyle().Padding(0, 1),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("196")).Padding(0, 1),
		Raw:       lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		TableHead: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		TableCell: lipgloss.NewStyle(),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Welcome:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(1, 2),
		Spinner:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
	}
}
