package main

import "github.com/charmbracelet/lipgloss"

var (
	primary   = lipgloss.Color("#7D56F4")
	muted     = lipgloss.Color("#6C6C6C")
	danger    = lipgloss.Color("#E06C75")
	success   = lipgloss.Color("#98C379")
	highlight = lipgloss.Color("#E5C07B")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primary).MarginBottom(1)
	helpStyle  = lipgloss.NewStyle().Foreground(muted).MarginTop(1)
	errorStyle = lipgloss.NewStyle().Foreground(danger)
	okStyle    = lipgloss.NewStyle().Foreground(success)
	warnStyle  = lipgloss.NewStyle().Foreground(highlight)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1).
			Width(72)
	selectedCardStyle = cardStyle.BorderForeground(primary)
	frontStyle        = lipgloss.NewStyle().Bold(true)
	typeStyle         = lipgloss.NewStyle().Foreground(muted).Italic(true)
)
