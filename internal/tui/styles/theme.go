package styles

import (
	"github.com/allbin/go-slcan/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// Status styles
	StatusConnectedStyle = lipgloss.NewStyle().
				Foreground(colors.Green).
				Bold(true)

	StatusDisconnectedStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	StatusConnectingStyle = lipgloss.NewStyle().
				Foreground(colors.Yellow).
				Bold(true)

	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	// Input styles
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	// Frame rendering styles shared by the monitor table and dump output
	StandardIDStyle = lipgloss.NewStyle().
			Foreground(colors.Sky).
			Bold(true)

	ExtendedIDStyle = lipgloss.NewStyle().
			Foreground(colors.Teal).
			Bold(true)

	RTRStyle = lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true)

	DataStyle = lipgloss.NewStyle().
			Foreground(colors.Text)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)
)
