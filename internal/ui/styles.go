package ui

import (
	"github.com/charmbracelet/lipgloss"

	"livetask/internal/service"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	descStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
	promptStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9")).Padding(0, 1)
	priorityStyle = map[service.Priority]lipgloss.Style{
		service.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		service.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		service.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

func priorityBadge(p service.Priority) string {
	p = p.OrDefault()
	return priorityStyle[p].Render(string(p))
}
