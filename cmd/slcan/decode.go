package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/allbin/go-slcan"
	"github.com/allbin/go-slcan/internal/tui/components"
	"github.com/allbin/go-slcan/internal/tui/styles"
	"github.com/spf13/cobra"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode [line]...",
	Short: "Decode slcan wire lines into CAN frames",
	Long: `Decode one or more slcan wire lines and print the frames they carry.

Lines can be given as arguments or piped on stdin, one per line. The
terminator (CR or BEL) is optional. A leading decimal digit is read as a
multiplex address when --mux is set.

Example usage:
  slcan decode "t10021122"
  slcan decode "T0000012345AABBCCDDEE" "r1230"
  cat capture.log | slcan decode
  slcan decode --mux "31230..."`,
	Run: func(cmd *cobra.Command, args []string) {
		mux, _ := cmd.Flags().GetBool("mux")

		lines := args
		if len(lines) == 0 {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				if s := scanner.Text(); s != "" {
					lines = append(lines, s)
				}
			}
		}

		failed := 0
		for _, line := range lines {
			if err := decodeLine(line, mux); err != nil {
				fmt.Fprintf(os.Stderr, "%s %s: %v\n", styles.ErrorStyle.Render("✗"), line, err)
				failed++
			}
		}
		if failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().Bool("mux", false, "Treat a leading decimal digit as a multiplex address")
}

func decodeLine(line string, mux bool) error {
	frame, addr, err := slcan.Unmarshal([]byte(line))
	if err != nil {
		return err
	}

	formatter := components.NewFrameFormatter(false)
	if mux {
		fmt.Printf("%d  %s [%d] %s\n", addr, formatter.FormatID(frame), frame.Len, formatter.FormatData(frame))
	} else {
		fmt.Printf("%s [%d] %s\n", formatter.FormatID(frame), frame.Len, formatter.FormatData(frame))
	}
	return nil
}
