package main

import (
	"fmt"
	"os"
	"time"

	"github.com/allbin/go-slcan"
	"github.com/allbin/go-slcan/internal/term"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slcan",
	Short: "Work with slcan (serial line CAN) adapters",
	Long: `Tools for slcan adapters: CAN interfaces attached over a serial line,
speaking the ASCII slcan protocol (t/T/r/R frame lines).

Frames can be decoded and encoded offline, dumped from a live adapter in
candump style, sent one-shot, or watched in an interactive monitor. An
adapter can multiplex several virtual CAN interfaces over one serial line;
lines are then prefixed with a decimal address digit selecting the
interface.

Example usage:
  slcan decode "t10021122"
  slcan encode 123 DEADBEEF
  slcan dump /dev/ttyUSB0 --baud 115200
  slcan send /dev/ttyUSB0 123#DEADBEEF
  slcan monitor /dev/ttyUSB0`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.slcan.yaml)")
	rootCmd.PersistentFlags().Int("channels", 10, "channel pool capacity")
	rootCmd.PersistentFlags().Int("ratio", 1, "virtual interfaces multiplexed per adapter (1-10)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: trace, debug, info, warn, error")

	viper.BindPFlag("channels", rootCmd.PersistentFlags().Lookup("channels"))
	viper.BindPFlag("ratio", rootCmd.PersistentFlags().Lookup("ratio"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".slcan")
	}

	viper.SetEnvPrefix("SLCAN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "slcan").Logger()
}

func newPool() (*slcan.Pool, error) {
	return slcan.New(
		slcan.WithChannels(viper.GetInt("channels")),
		slcan.WithRatio(viper.GetInt("ratio")),
		slcan.WithLogger(newLogger()),
	)
}

// adapter bundles everything needed to talk to one live slcan device.
type adapter struct {
	pool      *slcan.Pool
	channel   *slcan.Channel
	transport *slcan.FDTransport
}

// openAdapter opens the device, binds it to a fresh pool and starts every
// endpoint. The caller owns the returned adapter and must close it.
func openAdapter(device string, baud int) (*adapter, error) {
	pool, err := newPool()
	if err != nil {
		return nil, err
	}

	fd, err := term.Open(device, baud)
	if err != nil {
		return nil, err
	}
	term.FlushInput(fd)

	transport, err := slcan.NewFDTransport(fd)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	ch, err := pool.Bind(transport)
	if err != nil {
		transport.Close()
		return nil, err
	}
	for _, ep := range ch.Endpoints() {
		if err := ep.Start(); err != nil {
			pool.Unbind(ch)
			transport.Close()
			return nil, err
		}
	}

	transport.SetHangupFunc(func() {
		pool.Unbind(ch)
	})

	return &adapter{pool: pool, channel: ch, transport: transport}, nil
}

func (a *adapter) Close() {
	a.pool.Unbind(a.channel)
	a.transport.Close()
	a.pool.Shutdown()
}
