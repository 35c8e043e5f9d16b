package ui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	label    lipgloss.Style
	selected lipgloss.Style
	accent   lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	box      lipgloss.Style
	modal    lipgloss.Style
}

func newStyles(theme string) styles {
	accent, muted, text, errColor := lipgloss.Color("205"), lipgloss.Color("245"), lipgloss.Color("229"), lipgloss.Color("203")
	if theme == "light" {
		accent, muted, text, errColor = lipgloss.Color("162"), lipgloss.Color("240"), lipgloss.Color("25"), lipgloss.Color("160")
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		muted:    lipgloss.NewStyle().Foreground(muted),
		label:    lipgloss.NewStyle().Foreground(muted),
		selected: lipgloss.NewStyle().Bold(true).Foreground(text),
		accent:   lipgloss.NewStyle().Foreground(accent),
		ok:       lipgloss.NewStyle().Foreground(text),
		err:      lipgloss.NewStyle().Bold(true).Foreground(errColor),
		box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2),
		modal:    lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(errColor).Padding(1, 2),
	}
}
