package main

import (
	"fmt"
	"os"
	"time"

	"github.com/allbin/go-slcan"
	"github.com/allbin/go-slcan/internal/tui/components"
	"github.com/allbin/go-slcan/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <device> <id#data>...",
	Short: "Send CAN frames through an slcan adapter",
	Long: `Send one or more frames, given in cansend notation, through an slcan
adapter.

Frames are queued one at a time: each line must drain into the serial
buffer before the next is submitted. With --addr the frames are sent from
the given virtual interface of a multiplexed adapter (requires --ratio
greater than the address).

Example usage:
  slcan send /dev/ttyUSB0 123#DEADBEEF
  slcan send /dev/ttyUSB0 1ABCDEFF#0011 123#R4
  slcan send /dev/ttyUSB0 --ratio 2 --addr 1 456#00`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		device := args[0]
		baud, _ := cmd.Flags().GetInt("baud")
		addr, _ := cmd.Flags().GetInt("addr")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		if err := runSend(device, baud, addr, timeout, args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	sendCmd.Flags().Int("addr", 0, "Multiplex address to send from")
	sendCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Per-frame drain timeout")
}

func runSend(device string, baud, addr int, timeout time.Duration, specs []string) error {
	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)
	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)

	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), device)

	a, err := openAdapter(device, baud)
	if err != nil {
		return err
	}
	defer a.Close()

	ep, err := a.channel.Endpoint(addr)
	if err != nil {
		return fmt.Errorf("%s address %d: %w", styles.ErrorStyle.Render("✗"), addr, err)
	}

	fmt.Printf("%s Connected\n", successStyle.Render("✓"))

	for _, spec := range specs {
		frame, err := components.ParseFrameText(spec)
		if err != nil {
			return fmt.Errorf("%s %s: %w", styles.ErrorStyle.Render("✗"), spec, err)
		}
		if err := ep.Send(frame); err != nil {
			return fmt.Errorf("%s failed to send %s: %w", styles.ErrorStyle.Render("✗"), spec, err)
		}
		if err := waitDrained(ep, timeout); err != nil {
			return fmt.Errorf("%s %s: %w", styles.ErrorStyle.Render("✗"), spec, err)
		}
		fmt.Printf("%s Sent %s\n", successStyle.Render("✓"), frame)
	}
	return nil
}

// waitDrained waits for the endpoint's queue to restart, which happens once
// the serial buffer has accepted the whole line.
func waitDrained(ep *slcan.Endpoint, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for !ep.Running() {
		if time.Now().After(deadline) {
			return fmt.Errorf("line did not drain within %v", timeout)
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}
