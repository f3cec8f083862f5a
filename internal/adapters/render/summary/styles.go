package summary

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	profile   lipgloss.Style
	detail    lipgloss.Style
	token     lipgloss.Style
	ok        lipgloss.Style
	duplicate lipgloss.Style
	none      lipgloss.Style
	failed    lipgloss.Style
	warning   lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		profile:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		token:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		ok:        lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		duplicate: lipgloss.NewStyle().Foreground(lipgloss.Color("179")),
		none:      lipgloss.NewStyle().Faint(true),
		failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
	}
}
