package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle    = lipgloss.NewStyle().Bold(true)
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	pausedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	sparkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("118"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)
