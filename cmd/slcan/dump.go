package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allbin/go-slcan"
	"github.com/allbin/go-slcan/internal/tui/components"
	"github.com/spf13/cobra"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <device>",
	Short: "Print frames from an slcan adapter, candump style",
	Long: `Open an slcan adapter and print every received frame as a line on
stdout until interrupted.

Each line shows a timestamp, the multiplex address the frame arrived on,
the identifier, length and payload. Use --ascii to append a printable
rendering of the payload.

Example usage:
  slcan dump /dev/ttyUSB0
  slcan dump /dev/ttyUSB0 --baud 921600 --ascii
  slcan dump /dev/ttyACM0 --ratio 2`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		device := args[0]
		baud, _ := cmd.Flags().GetInt("baud")
		ascii, _ := cmd.Flags().GetBool("ascii")

		if err := runDump(device, baud, ascii); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	dumpCmd.Flags().Bool("ascii", false, "Append a printable rendering of the payload")
}

func runDump(device string, baud int, ascii bool) error {
	a, err := openAdapter(device, baud)
	if err != nil {
		return err
	}
	defer a.Close()

	formatter := components.NewFrameFormatter(ascii)
	for _, ep := range a.channel.Endpoints() {
		addr := ep.Addr()
		ep.SetHandler(func(f slcan.Frame) {
			fmt.Println(formatter.FormatFrame(components.FrameMsg{
				Timestamp: time.Now(),
				Frame:     f,
				Addr:      addr,
			}))
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = a.transport.ReadLoop(ctx, a.channel)
	if errors.Is(err, io.EOF) || ctx.Err() != nil {
		return nil
	}
	return err
}
