// AngelaMos | 2026
// styles.go

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.Color("#7D56F4")
	muted  = lipgloss.Color("241")
	danger = lipgloss.Color("196")
	green  = lipgloss.Color("42")
)

type styles struct {
	header    lipgloss.Style
	status    lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	system    lipgloss.Style
	errorLine lipgloss.Style
	spinner   lipgloss.Style
	footer    lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(accent).
			Padding(0, 1),
		status: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		user: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		assistant: lipgloss.NewStyle().
			Bold(true).
			Foreground(green),
		system: lipgloss.NewStyle().
			Foreground(muted),
		errorLine: lipgloss.NewStyle().
			Foreground(danger),
		spinner: lipgloss.NewStyle().
			Foreground(accent),
		footer: lipgloss.NewStyle().
			Foreground(muted),
	}
}
