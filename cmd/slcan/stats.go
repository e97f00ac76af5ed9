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

	"github.com/allbin/go-slcan/internal/tui/colors"
	"github.com/allbin/go-slcan/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <device>",
	Short: "Collect traffic counters from an slcan adapter",
	Long: `Listen on an slcan adapter for a while and print per-interface traffic
counters.

Counters cover received and transmitted packets and payload bytes, plus
receive faults and buffer overruns, which are accounted on the adapter's
first virtual interface.

Example usage:
  slcan stats /dev/ttyUSB0
  slcan stats /dev/ttyUSB0 --duration 30s --ratio 2`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		device := args[0]
		baud, _ := cmd.Flags().GetInt("baud")
		duration, _ := cmd.Flags().GetDuration("duration")

		if err := runStats(device, baud, duration); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	statsCmd.Flags().DurationP("duration", "d", 10*time.Second, "How long to listen")
}

func runStats(device string, baud int, duration time.Duration) error {
	a, err := openAdapter(device, baud)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	err = a.transport.ReadLoop(ctx, a.channel)
	if err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
		return err
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Text)
	cellStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext1)

	fmt.Println(styles.TitleStyle.Render(device))
	fmt.Println(headerStyle.Render(fmt.Sprintf("%-4s %10s %10s %10s %10s %8s %8s",
		"Ep", "RxPkts", "RxBytes", "TxPkts", "TxBytes", "RxErr", "RxOver")))
	for _, ep := range a.channel.Endpoints() {
		st := ep.Stats()
		fmt.Println(cellStyle.Render(fmt.Sprintf("%-4d %10d %10d %10d %10d %8d %8d",
			ep.Addr(), st.RxPackets, st.RxBytes, st.TxPackets, st.TxBytes,
			st.RxErrors, st.RxOver)))
	}
	return nil
}
