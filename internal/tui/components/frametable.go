package components

import (
	"fmt"
	"strings"

	"github.com/allbin/go-slcan/internal/tui/colors"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ViewMode int

const (
	ViewModeFollow ViewMode = iota
	ViewModeVisual
)

// FrameTable is a scrolling table of decoded frames. In follow mode it
// pins to the newest frame; visual mode frees the cursor for scrollback.
type FrameTable struct {
	table     table.Model
	formatter *FrameFormatter
	viewMode  ViewMode
	frames    []FrameMsg
}

func NewFrameTable(width, height int) *FrameTable {
	if width < 80 {
		width = 80
	}
	if height < 5 {
		height = 5
	}

	t := table.New(
		table.WithFocused(false), // unfocused while following
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colors.Subtext0).
		BorderBottom(true).
		Bold(true).
		Foreground(colors.Text)
	s.Selected = s.Selected.
		Foreground(colors.Text).
		Background(colors.Surface1).
		Bold(false)
	t.SetStyles(s)

	ft := &FrameTable{
		table:     t,
		formatter: NewFrameFormatter(true),
		viewMode:  ViewModeFollow,
		frames:    make([]FrameMsg, 0),
	}
	ft.updateColumns(width)
	return ft
}

func (ft *FrameTable) SetSize(width, height int) {
	ft.updateColumns(width)
	ft.table.SetHeight(height)
	ft.table.SetWidth(width)
	ft.table.UpdateViewport()
}

func (ft *FrameTable) updateColumns(width int) {
	if width < 80 {
		width = 80
	}

	timeWidth := 14 // "15:04:05.000"
	dirWidth := 3
	chWidth := 3
	idWidth := 9 // widest is an 8-digit extended id
	flagsWidth := 8
	lenWidth := 4

	// Data gets whatever remains, split with ASCII when that column is on.
	reservedWidth := timeWidth + dirWidth + chWidth + idWidth + flagsWidth + lenWidth + 10
	remainingWidth := width - reservedWidth
	if remainingWidth < 24 {
		remainingWidth = 24
	}

	var columns []table.Column
	if ft.formatter.GetDisplayMode().ShowASCII {
		dataWidth := (remainingWidth * 3) / 4
		asciiWidth := remainingWidth - dataWidth
		if dataWidth < 23 {
			dataWidth = 23 // 8 spaced hex bytes
		}
		if asciiWidth < 8 {
			asciiWidth = 8
		}
		columns = []table.Column{
			{Title: "Time", Width: timeWidth},
			{Title: "↕", Width: dirWidth},
			{Title: "Ch", Width: chWidth},
			{Title: "ID", Width: idWidth},
			{Title: "Flags", Width: flagsWidth},
			{Title: "Len", Width: lenWidth},
			{Title: "Data", Width: dataWidth},
			{Title: "ASCII", Width: asciiWidth},
		}
	} else {
		dataWidth := remainingWidth
		if dataWidth < 23 {
			dataWidth = 23
		}
		columns = []table.Column{
			{Title: "Time", Width: timeWidth},
			{Title: "↕", Width: dirWidth},
			{Title: "Ch", Width: chWidth},
			{Title: "ID", Width: idWidth},
			{Title: "Flags", Width: flagsWidth},
			{Title: "Len", Width: lenWidth},
			{Title: "Data", Width: dataWidth},
		}
	}

	ft.table.SetColumns(columns)
	ft.table.UpdateViewport()
}

func (ft *FrameTable) AddFrame(msg FrameMsg) {
	ft.frames = append(ft.frames, msg)
	ft.refreshTable()

	if ft.viewMode == ViewModeFollow {
		ft.table.GotoBottom()
	}
}

func (ft *FrameTable) refreshTable() {
	rows := make([]table.Row, len(ft.frames))
	for i, msg := range ft.frames {
		rows[i] = ft.formatRow(msg)
	}
	ft.table.SetRows(rows)
	ft.table.UpdateViewport()
}

func (ft *FrameTable) formatRow(msg FrameMsg) table.Row {
	timestamp := msg.Timestamp.Format("15:04:05.000")

	var direction string
	if msg.IsTX {
		direction = "↗"
	} else {
		direction = "↙"
	}

	f := msg.Frame
	var id string
	if f.Extended {
		id = fmt.Sprintf("%08X", f.ID)
	} else {
		id = fmt.Sprintf("%03X", f.ID)
	}

	var flags []string
	if f.Extended {
		flags = append(flags, "EXT")
	}
	if f.RTR {
		flags = append(flags, "RTR")
	}

	var data string
	if f.RTR {
		data = "-"
	} else {
		data = strings.ToUpper(fmt.Sprintf("% X", f.Payload()))
	}

	row := table.Row{
		timestamp,
		direction,
		fmt.Sprintf("%d", msg.Addr),
		id,
		strings.Join(flags, " "),
		fmt.Sprintf("%d", f.Len),
		data,
	}
	if ft.formatter.GetDisplayMode().ShowASCII {
		row = append(row, ASCII(f))
	}
	return row
}

func (ft *FrameTable) Clear() {
	ft.frames = make([]FrameMsg, 0)
	ft.table.SetRows([]table.Row{})
}

func (ft *FrameTable) ToggleASCII() {
	ft.formatter.ToggleASCII()
	ft.updateColumns(ft.table.Width())
	ft.refreshTable()
}

func (ft *FrameTable) GetViewMode() ViewMode {
	return ft.viewMode
}

func (ft *FrameTable) SetViewMode(mode ViewMode) {
	ft.viewMode = mode
	if mode == ViewModeFollow {
		if len(ft.frames) > 0 {
			ft.table.SetCursor(len(ft.frames) - 1)
		}
		ft.table.GotoBottom()
		ft.table.Blur()
	} else {
		ft.table.Focus()
	}
	ft.table.UpdateViewport()
}

func (ft *FrameTable) GetViewModeString() string {
	switch ft.viewMode {
	case ViewModeVisual:
		return "VISUAL"
	default:
		return "FOLLOW"
	}
}

func (ft *FrameTable) Init() tea.Cmd {
	return nil
}

func (ft *FrameTable) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// cursor navigation only makes sense in visual mode
	if ft.viewMode == ViewModeVisual {
		ft.table, cmd = ft.table.Update(msg)
	}
	return ft, cmd
}

func (ft *FrameTable) View() string {
	return ft.table.View()
}
