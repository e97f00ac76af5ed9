package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/go-slcan"
	"github.com/allbin/go-slcan/internal/tui/colors"
	"github.com/allbin/go-slcan/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// FrameMsg carries one decoded frame through the TUI event loop.
type FrameMsg struct {
	Timestamp time.Time
	Frame     slcan.Frame
	Addr      int
	IsTX      bool
}

type DisplayMode struct {
	ShowASCII bool
}

// FrameFormatter renders frames for the monitor view and the dump stream.
type FrameFormatter struct {
	mode DisplayMode
}

func NewFrameFormatter(showASCII bool) *FrameFormatter {
	return &FrameFormatter{
		mode: DisplayMode{ShowASCII: showASCII},
	}
}

func (ff *FrameFormatter) GetDisplayMode() DisplayMode {
	return ff.mode
}

func (ff *FrameFormatter) ToggleASCII() {
	ff.mode.ShowASCII = !ff.mode.ShowASCII
}

// FormatID renders the identifier, styled by frame format.
func (ff *FrameFormatter) FormatID(f slcan.Frame) string {
	if f.Extended {
		return styles.ExtendedIDStyle.Render(fmt.Sprintf("%08X", f.ID))
	}
	return styles.StandardIDStyle.Render(fmt.Sprintf("%03X", f.ID))
}

// FormatFlags renders the frame-format markers.
func (ff *FrameFormatter) FormatFlags(f slcan.Frame) string {
	var flags []string
	if f.Extended {
		flags = append(flags, "EXT")
	}
	if f.RTR {
		flags = append(flags, styles.RTRStyle.Render("RTR"))
	}
	return strings.Join(flags, " ")
}

// FormatData renders the payload as spaced uppercase hex. Remote frames have
// no payload on the wire, only a length.
func (ff *FrameFormatter) FormatData(f slcan.Frame) string {
	if f.RTR {
		return styles.RTRStyle.Render("remote request")
	}
	return styles.DataStyle.Render(strings.ToUpper(fmt.Sprintf("% X", f.Payload())))
}

// ASCII renders the payload's printable bytes, dots elsewhere.
func ASCII(f slcan.Frame) string {
	var sb strings.Builder
	for _, b := range f.Payload() {
		if b >= 32 && b <= 126 {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// FormatFrame renders one frame as a dump-style line:
//
//	[15:04:05.000] ↙ RX  0  123 [2] DE AD  ..
func (ff *FrameFormatter) FormatFrame(msg FrameMsg) string {
	timestamp := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(fmt.Sprintf("[%s]", msg.Timestamp.Format("15:04:05.000")))

	var indicator string
	if msg.IsTX {
		indicator = lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true).
			Render("↗ TX")
	} else {
		indicator = lipgloss.NewStyle().
			Foreground(colors.Sky).
			Bold(true).
			Render("↙ RX")
	}

	addr := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Render(fmt.Sprintf("%d", msg.Addr))

	parts := []string{
		timestamp,
		indicator,
		addr,
		ff.FormatID(msg.Frame),
		fmt.Sprintf("[%d]", msg.Frame.Len),
		ff.FormatData(msg.Frame),
	}
	if ff.mode.ShowASCII && !msg.Frame.RTR {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(colors.Overlay0).
			Render(ASCII(msg.Frame)))
	}
	return strings.Join(parts, "  ")
}
