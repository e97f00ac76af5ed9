package components

import (
	"fmt"

	"github.com/allbin/go-slcan"
	"github.com/allbin/go-slcan/internal/tui/colors"
	"github.com/allbin/go-slcan/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

type ConnectionInfo struct {
	Device string
	Baud   int
	Ratio  int
	Addr   int
}

type StatusBar struct {
	title          string
	device         string
	status         string
	err            error
	width          int
	connectionInfo *ConnectionInfo
	stats          slcan.Stats
}

func NewStatusBar(title, device string) *StatusBar {
	return &StatusBar{
		title:  title,
		device: device,
		status: "Initializing...",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnectionInfo(info *ConnectionInfo) {
	sb.connectionInfo = info
}

func (sb *StatusBar) SetStats(stats slcan.Stats) {
	sb.stats = stats
}

func (sb *StatusBar) SetConnecting() {
	sb.status = "Connecting..."
	sb.err = nil
}

func (sb *StatusBar) SetConnected() {
	sb.status = "Connected"
	sb.err = nil
}

func (sb *StatusBar) SetDisconnected(err error) {
	if err != nil {
		sb.status = fmt.Sprintf("Connection failed: %v", err)
		sb.err = err
	} else {
		sb.status = "Disconnected"
		sb.err = nil
	}
}

// View renders the full-width status bar: mode indicator, device, connection
// state, counters and timestamp.
func (sb *StatusBar) View(inputMode, viewMode string, connected bool, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	// Mode indicator, nvim style
	var modeStyle lipgloss.Style
	if inputMode == "INSERT" {
		modeStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Green).
			Bold(true).
			Padding(0, 1)
	} else {
		modeStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Blue).
			Bold(true).
			Padding(0, 1)
	}
	mode := modeStyle.Render(inputMode)

	device := styles.TitleStyle.Render(sb.device)

	var connIndicator string
	var connStyle lipgloss.Style
	if sb.err != nil {
		connStyle = lipgloss.NewStyle().Foreground(colors.Red)
		connIndicator = "✗"
	} else if connected {
		connStyle = lipgloss.NewStyle().Foreground(colors.Green)
		connIndicator = "●"
	} else {
		connStyle = lipgloss.NewStyle().Foreground(colors.Yellow)
		connIndicator = "○"
	}
	connectionIndicator := connStyle.Render(connIndicator)

	viewModeStyle := lipgloss.NewStyle().
		Foreground(colors.Peach).
		Bold(true).
		Padding(0, 1)
	viewModeInfo := viewModeStyle.Render(viewMode)

	var connInfo string
	if sb.connectionInfo != nil {
		connInfo = fmt.Sprintf("⚡ %d baud ep %d/%d",
			sb.connectionInfo.Baud,
			sb.connectionInfo.Addr,
			sb.connectionInfo.Ratio)
	} else {
		connInfo = "⚡ slcan"
	}
	connectionDetails := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(connInfo)

	counters := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(fmt.Sprintf("rx %d tx %d err %d ovr %d",
			sb.stats.RxPackets, sb.stats.TxPackets,
			sb.stats.RxErrors, sb.stats.RxOver))

	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, mode, device, connectionIndicator, viewModeInfo, divider)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, counters, divider, connectionDetails, divider, clock)

	leftWidth := lipgloss.Width(leftSide)
	rightWidth := lipgloss.Width(rightSide)
	spacerWidth := terminalWidth - leftWidth - rightWidth
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	statusBarStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth)

	content := lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide)
	return statusBarStyle.Render(content)
}
