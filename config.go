package slcan

import (
	"time"

	"github.com/rs/zerolog"
)

// Pool size limits. Capacities below MinChannels are raised to MinChannels;
// the multiplex ratio is clamped to [1, MaxRatio]. The wire format carries a
// single decimal address digit, which caps the ratio at 10.
const (
	MinChannels = 4
	MaxRatio    = 10
)

// Config holds the configuration for a channel pool. All fields are fixed
// once the pool is constructed.
type Config struct {
	Channels        int           // pool slot capacity
	Ratio           int           // endpoints multiplexed per channel
	ReceiveBuffer   int           // per-channel receive accumulation capacity
	ShutdownTimeout time.Duration // bounded wait for transports to let go
	ShutdownPoll    time.Duration // sleep between shutdown retries
	Logger          zerolog.Logger
}

// Option is a functional option for configuring a channel pool
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Channels:        10,
		Ratio:           2,
		ReceiveBuffer:   maxLineLen,
		ShutdownTimeout: time.Second,
		ShutdownPoll:    100 * time.Millisecond,
		Logger:          zerolog.Nop(),
	}
}

// WithChannels sets the pool capacity. Values below MinChannels are raised
// to MinChannels.
func WithChannels(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return ErrInvalidConfig
		}
		if n < MinChannels {
			n = MinChannels
		}
		c.Channels = n
		return nil
	}
}

// WithRatio sets how many endpoints are multiplexed per channel, clamped to
// [1, MaxRatio].
func WithRatio(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			n = 1
		}
		if n > MaxRatio {
			n = MaxRatio
		}
		c.Ratio = n
		return nil
	}
}

// WithReceiveBuffer sets the per-channel receive accumulation capacity in
// bytes. It cannot be smaller than the longest legal wire line.
func WithReceiveBuffer(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return ErrInvalidConfig
		}
		if n < maxLineLen {
			n = maxLineLen
		}
		c.ReceiveBuffer = n
		return nil
	}
}

// WithShutdownTimeout bounds how long Shutdown waits for bound transports
// to hang up before force-detaching them.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d < 0 {
			return ErrInvalidConfig
		}
		c.ShutdownTimeout = d
		return nil
	}
}

// WithLogger sets the logger used for lifecycle events. The default
// discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Config) error {
		c.Logger = log
		return nil
	}
}
