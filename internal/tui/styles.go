package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ngenohkevin/hivedeck-monitor/internal/process"
)

// Color palette
var (
	colorRunning = lipgloss.Color("76")  // green
	colorWaiting = lipgloss.Color("214") // orange
	colorStopped = lipgloss.Color("39")  // blue
	colorDead    = lipgloss.Color("196") // bright red
	colorMuted   = lipgloss.Color("242") // gray
	colorAccent  = lipgloss.Color("62")
)

var (
	titleStyle = lipgloss.NewStyle().
			Background(colorAccent).
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan"))

	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	placeholderStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Italic(true).
				Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDead).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorRunning).
			Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("yellow")).
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("yellow")).
			Padding(0, 2)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

// statusStyles colour the closed status vocabulary
var statusStyles = map[string]lipgloss.Style{
	process.StatusRunning:   lipgloss.NewStyle().Foreground(colorRunning),
	process.StatusSleeping:  lipgloss.NewStyle(),
	process.StatusIdle:      mutedStyle,
	process.StatusDiskSleep: lipgloss.NewStyle().Foreground(colorWaiting),
	process.StatusStopped:   lipgloss.NewStyle().Foreground(colorStopped),
	process.StatusZombie:    lipgloss.NewStyle().Foreground(colorDead),
	process.StatusDead:      lipgloss.NewStyle().Foreground(colorDead),
}

func renderStatus(status string) string {
	if style, ok := statusStyles[status]; ok {
		return style.Render(status)
	}
	return mutedStyle.Render(status)
}
