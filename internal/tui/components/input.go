package components

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/allbin/go-slcan"
	"github.com/allbin/go-slcan/internal/tui/colors"
	"github.com/allbin/go-slcan/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FrameInput is the transmit prompt for the monitor view. Frames are typed
// in cansend notation: "123#DEADBEEF", "1ABCDEFF#0011", "123#R2".
type FrameInput struct {
	textInput     textinput.Model
	history       []string
	historyIndex  int
	currentInput  string // stashed while navigating history
	terminalWidth int
}

func NewFrameInput() *FrameInput {
	ti := textinput.New()
	ti.Placeholder = "id#data, e.g. 123#DEADBEEF"
	ti.CharLimit = 64
	ti.Prompt = ""
	ti.Focus()

	return &FrameInput{
		textInput:    ti,
		history:      make([]string, 0),
		historyIndex: -1,
	}
}

// ParseFrameText parses cansend notation into a frame. The identifier
// selects the format by digit count: more than three hex digits means an
// extended frame. Data is an even run of hex digits; "R" with an optional
// length digit requests a remote frame.
func ParseFrameText(s string) (slcan.Frame, error) {
	var f slcan.Frame

	idStr, dataStr, found := strings.Cut(strings.TrimSpace(s), "#")
	if !found {
		return f, fmt.Errorf("expected id#data, got %q", s)
	}

	id, err := strconv.ParseUint(idStr, 16, 32)
	if err != nil {
		return f, fmt.Errorf("invalid identifier %q: %w", idStr, err)
	}
	f.ID = uint32(id)
	f.Extended = len(idStr) > 3

	if r, ok := parseRemoteMarker(dataStr); ok {
		f.RTR = true
		f.Len = r
	} else {
		dataStr = strings.ReplaceAll(dataStr, ".", "")
		data, err := hex.DecodeString(dataStr)
		if err != nil {
			return f, fmt.Errorf("invalid data %q: %w", dataStr, err)
		}
		if len(data) > 8 {
			return f, slcan.ErrInvalidLength
		}
		f.Len = uint8(len(data))
		copy(f.Data[:], data)
	}

	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

func parseRemoteMarker(s string) (uint8, bool) {
	if len(s) == 0 || (s[0] != 'R' && s[0] != 'r') {
		return 0, false
	}
	rest := s[1:]
	if rest == "" {
		return 0, true
	}
	if len(rest) == 1 && rest[0] >= '0' && rest[0] <= '8' {
		return rest[0] - '0', true
	}
	return 0, false
}

func (i *FrameInput) SetWidth(width int) {
	i.terminalWidth = width
	usableWidth := width - 6
	if usableWidth < 20 {
		usableWidth = 20
	}
	i.textInput.Width = usableWidth
}

func (i *FrameInput) Focus() {
	i.textInput.Focus()
}

func (i *FrameInput) Blur() {
	i.textInput.Blur()
}

func (i *FrameInput) Value() string {
	return i.textInput.Value()
}

func (i *FrameInput) SetValue(value string) {
	i.textInput.SetValue(value)
}

func (i *FrameInput) Update(msg tea.Msg) (*FrameInput, tea.Cmd) {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

func (i *FrameInput) View(isInsertMode bool) string {
	promptSymbol := lipgloss.NewStyle().
		Foreground(colors.Yellow).
		Bold(true).
		Render("#")

	var inputContent string
	if isInsertMode {
		inputContent = lipgloss.JoinHorizontal(lipgloss.Left, promptSymbol, " ", i.textInput.View())
	} else {
		instruction := lipgloss.NewStyle().
			Foreground(colors.Overlay0).
			Render("Press 'i' to enter a frame")
		inputContent = lipgloss.JoinHorizontal(lipgloss.Left, promptSymbol, " ", instruction)
	}

	adjustedWidth := i.terminalWidth - 4
	if adjustedWidth < 10 {
		adjustedWidth = 10
	}

	inputStyle := styles.InputStyle.
		Width(adjustedWidth).
		AlignHorizontal(lipgloss.Left)
	if isInsertMode {
		inputStyle = inputStyle.BorderForeground(colors.Green)
	}
	return inputStyle.Render(inputContent)
}

// AddToHistory records a submitted frame line, skipping blanks and
// immediate duplicates.
func (i *FrameInput) AddToHistory(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if len(i.history) > 0 && i.history[len(i.history)-1] == line {
		return
	}

	i.history = append(i.history, line)
	if len(i.history) > 100 {
		i.history = i.history[1:]
	}
	i.historyIndex = -1
	i.currentInput = ""
}

func (i *FrameInput) NavigateHistoryUp() {
	if len(i.history) == 0 {
		return
	}
	if i.historyIndex == -1 {
		i.currentInput = i.textInput.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	}
	i.textInput.SetValue(i.history[i.historyIndex])
}

func (i *FrameInput) NavigateHistoryDown() {
	if len(i.history) == 0 || i.historyIndex == -1 {
		return
	}
	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.textInput.SetValue(i.history[i.historyIndex])
	} else {
		i.historyIndex = -1
		i.textInput.SetValue(i.currentInput)
		i.currentInput = ""
	}
}
