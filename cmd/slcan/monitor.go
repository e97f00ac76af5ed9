package main

import (
	"fmt"
	"os"
	"time"

	"github.com/allbin/go-slcan"
	"github.com/allbin/go-slcan/internal/tui/components"
	"github.com/allbin/go-slcan/internal/tui/keys"
	"github.com/allbin/go-slcan/internal/tui/models"
	"github.com/allbin/go-slcan/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <device>",
	Short: "Watch CAN traffic in an interactive TUI",
	Long: `Open an slcan adapter and watch its traffic in a real-time terminal
interface.

Received frames scroll in a table with identifier, flags, length and
payload. Press 'i' to enter a frame in cansend notation ("123#DEADBEEF")
and send it from the monitored interface. 'v' frees the cursor for
scrollback, 'f' snaps back to following the newest frame.

Example usage:
  slcan monitor /dev/ttyUSB0
  slcan monitor /dev/ttyUSB0 --baud 921600
  slcan monitor /dev/ttyACM0 --ratio 2 --addr 1`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		device := args[0]
		baud, _ := cmd.Flags().GetInt("baud")
		addr, _ := cmd.Flags().GetInt("addr")

		if err := runMonitorTUI(device, baud, addr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	monitorCmd.Flags().Int("addr", 0, "Multiplex address to monitor and send from")
}

// tickMsg drives the status bar clock and counter refresh
type tickMsg time.Time

// monitorModel represents the Bubble Tea model for the monitor command
type monitorModel struct {
	*models.MonitorModel
	frames    *components.FrameTable
	statusBar *components.StatusBar
	input     *components.FrameInput
	help      help.Model
	keys      keys.MonitorKeys
	addr      int
}

func runMonitorTUI(device string, baud, addr int) error {
	m := monitorModel{
		MonitorModel: models.NewMonitorModel(device),
		frames:       components.NewFrameTable(80, 20),
		statusBar:    components.NewStatusBar("slcan monitor", device),
		input:        components.NewFrameInput(),
		help:         help.New(),
		keys:         keys.NewMonitorKeys(),
		addr:         addr,
	}
	m.statusBar.SetConnecting()

	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Connect in the background so the UI comes up immediately
	go func() {
		a, err := openAdapter(device, baud)
		if err != nil {
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}

		ep, err := a.channel.Endpoint(addr)
		if err != nil {
			a.Close()
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}
		m.SetChannel(a.channel, ep)
		m.statusBar.SetConnectionInfo(&components.ConnectionInfo{
			Device: device,
			Baud:   baud,
			Ratio:  a.pool.Config().Ratio,
			Addr:   addr,
		})

		for _, watched := range a.channel.Endpoints() {
			watchedAddr := watched.Addr()
			watched.SetHandler(func(f slcan.Frame) {
				p.Send(components.FrameMsg{
					Timestamp: time.Now(),
					Frame:     f,
					Addr:      watchedAddr,
				})
			})
		}

		p.Send(models.ConnectionStatusMsg{Connected: true})

		go func() {
			defer a.Close()
			a.transport.ReadLoop(m.Context(), a.channel)
			if m.Context().Err() == nil {
				p.Send(models.ConnectionStatusMsg{Connected: false})
			}
		}()
	}()

	_, err := p.Run()
	m.Cancel()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *monitorModel) Init() tea.Cmd {
	return tick()
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		statusBarHeight := 1
		inputHeight := 3
		m.frames.SetSize(msg.Width, msg.Height-statusBarHeight-inputHeight)
		m.statusBar.SetWidth(msg.Width)
		m.input.SetWidth(msg.Width)
		m.SetReady(true)

	case tickMsg:
		m.statusBar.SetStats(m.Stats())
		cmds = append(cmds, tick())

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
		} else if msg.Connected {
			m.statusBar.SetConnected()
		} else {
			m.statusBar.SetDisconnected(nil)
		}

	case components.FrameMsg:
		if !m.IsReady() {
			m.frames.SetSize(80, 20)
			m.SetReady(true)
		}
		m.frames.AddFrame(msg)

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			cmds = append(cmds, m.updateInsertMode(msg))
		} else {
			cmds = append(cmds, m.updateNormalMode(msg))
			if cmd := m.forwardToTable(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)
	}

	return m, tea.Batch(cmds...)
}

func (m *monitorModel) updateNormalMode(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.Cancel()
		return tea.Quit

	case key.Matches(keyMsg, m.keys.InsertMode):
		m.SetInputMode(models.InputModeInsert)
		m.input.Focus()

	case key.Matches(keyMsg, m.keys.Clear):
		m.frames.Clear()

	case key.Matches(keyMsg, m.keys.ToggleASCII):
		m.frames.ToggleASCII()

	case key.Matches(keyMsg, m.keys.VisualMode):
		m.frames.SetViewMode(components.ViewModeVisual)

	case key.Matches(keyMsg, m.keys.Follow):
		m.frames.SetViewMode(components.ViewModeFollow)

	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *monitorModel) updateInsertMode(keyMsg tea.KeyMsg) tea.Cmd {
	switch keyMsg.String() {
	case "esc":
		m.SetInputMode(models.InputModeNormal)
		m.input.Blur()
		return nil

	case "enter":
		return m.submitFrame()

	case "up":
		m.input.NavigateHistoryUp()
		return nil

	case "down":
		m.input.NavigateHistoryDown()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	return cmd
}

// submitFrame parses the input line and sends it from the monitored
// endpoint. The sent frame is echoed into the table marked TX.
func (m *monitorModel) submitFrame() tea.Cmd {
	line := m.input.Value()
	frame, err := components.ParseFrameText(line)
	if err != nil {
		return nil // leave the line for correction
	}

	ep := m.Endpoint()
	if ep == nil {
		return nil
	}
	if err := ep.Send(frame); err != nil {
		m.SetError(err)
		return nil
	}

	m.input.AddToHistory(line)
	m.input.SetValue("")
	m.frames.AddFrame(components.FrameMsg{
		Timestamp: time.Now(),
		Frame:     frame,
		Addr:      m.addr,
		IsTX:      true,
	})
	return nil
}

func (m *monitorModel) forwardToTable(msg tea.Msg) tea.Cmd {
	_, cmd := m.frames.Update(msg)
	return cmd
}

func (m *monitorModel) View() string {
	var content string
	if m.IsReady() {
		content = m.frames.View()
	} else {
		content = "Initializing..."
	}

	contentWithBorder := styles.ContentBorderStyle.Render(content)
	inputView := m.input.View(m.IsInInsertMode())
	statusBar := m.statusBar.View(
		m.InputMode().String(),
		m.frames.GetViewModeString(),
		m.IsConnected(),
		time.Now().Format("15:04:05"),
	)

	if m.help.ShowAll {
		helpStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Margin(1, 0)
		helpView := helpStyle.Render(m.help.View(m.keys))
		return lipgloss.JoinVertical(
			lipgloss.Left,
			contentWithBorder,
			helpView,
			inputView,
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		inputView,
		statusBar,
	)
}
