package main

import (
	"fmt"
	"os"

	"github.com/allbin/go-slcan"
	"github.com/allbin/go-slcan/internal/tui/components"
	"github.com/allbin/go-slcan/internal/tui/styles"
	"github.com/spf13/cobra"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <id#data>...",
	Short: "Encode CAN frames into slcan wire lines",
	Long: `Encode one or more frames, given in cansend notation, into the slcan
wire format and print the resulting lines.

An identifier of more than three hex digits selects the extended (29-bit)
format. "R" in the data position requests a remote frame, optionally
followed by a length digit. With --addr the line gets a multiplex address
prefix for adapters carrying more than one virtual interface.

Example usage:
  slcan encode 123#DEADBEEF
  slcan encode 1ABCDEFF#0011 123#R4
  slcan encode --addr 3 123#00`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetInt("addr")
		mux := cmd.Flags().Changed("addr")

		for _, arg := range args {
			frame, err := components.ParseFrameText(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %s: %v\n", styles.ErrorStyle.Render("✗"), arg, err)
				os.Exit(1)
			}
			line, err := slcan.Marshal(frame, addr, mux)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %s: %v\n", styles.ErrorStyle.Render("✗"), arg, err)
				os.Exit(1)
			}
			// strip the CR for display
			fmt.Printf("%s\n", line[:len(line)-1])
		}
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().Int("addr", 0, "Multiplex address to prefix the line with")
}
