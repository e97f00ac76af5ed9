// Package term opens and configures the tty device an slcan adapter hangs
// off. The device is put into raw 8N1 mode with non-blocking reads, which is
// what the line discipline expects: the caller polls the descriptor and
// feeds bytes into a channel as they arrive.
package term

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var ErrInvalidBaudRate = errors.New("term: unsupported baud rate")

// getBaudRate converts an integer baud rate to the unix constant. slcan
// adapters ship at a handful of standard rates; anything else is rejected.
func getBaudRate(rate int) (uint32, error) {
	switch rate {
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 500000:
		return unix.B500000, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	case 2000000:
		return unix.B2000000, nil
	case 3000000:
		return unix.B3000000, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// Open opens the tty device and configures it for slcan traffic. The
// returned descriptor is non-blocking; close it with unix.Close.
func Open(device string, baud int) (int, error) {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return -1, fmt.Errorf("term: failed to open %s: %w", device, err)
	}

	if err := configure(fd, baud); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// configure puts the descriptor into raw 8N1 mode at the requested rate.
func configure(fd int, baud int) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("term: failed to get termios: %w", err)
	}

	// Raw mode: no input, output or line processing. The framing layer
	// handles terminators itself.
	termios.Cflag = unix.CS8 | unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	// Non-blocking reads return whatever is buffered.
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 0

	rate, err := getBaudRate(baud)
	if err != nil {
		return err
	}
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | rate
	termios.Ispeed = rate
	termios.Ospeed = rate

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("term: failed to set termios: %w", err)
	}
	return nil
}

// FlushInput discards any unread input buffered on the descriptor. Useful
// right after open, when the adapter may have queued stale lines.
func FlushInput(fd int) error {
	return unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH)
}
