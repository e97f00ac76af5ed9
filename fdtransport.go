package slcan

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// FDTransport adapts a non-blocking file descriptor (typically a raw-mode
// tty) to the Transport interface. Partial writes fall out of unix.Write
// on a non-blocking descriptor; write readiness comes from polling POLLOUT
// in a background pump that keeps invoking the registered callback while
// the engine makes progress.
//
// FDTransport is an adapter at the transport boundary: opening and
// configuring the serial line is the caller's business.
type FDTransport struct {
	fd int

	mu     sync.Mutex
	ready  func()
	onHang func()
	bound  bool

	wrote  atomic.Bool // a Write happened during the current ready pass
	kick   chan struct{}
	closed chan struct{}
}

var _ Transport = (*FDTransport)(nil)

const pollIntervalMs = 200

// NewFDTransport wraps fd, switches it to non-blocking mode and starts the
// write-readiness pump. The caller keeps ownership of the descriptor until
// Close.
func NewFDTransport(fd int) (*FDTransport, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, err
	}
	t := &FDTransport{
		fd:     fd,
		bound:  true,
		kick:   make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
	go t.pumpLoop()
	return t, nil
}

// Write pushes up to len(p) bytes into the descriptor and returns how many
// were accepted. EAGAIN counts as zero bytes accepted; a short write arms
// the readiness pump.
func (t *FDTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	if !t.bound {
		t.mu.Unlock()
		return 0, ErrNotConnected
	}
	t.mu.Unlock()

	t.wrote.Store(true)
	n, err := unix.Write(t.fd, p)
	if err != nil {
		if err == unix.EAGAIN {
			n, err = 0, nil
		} else {
			return 0, err
		}
	}
	if n < len(p) {
		select {
		case t.kick <- struct{}{}:
		default:
		}
	}
	return n, nil
}

// RegisterWriteReady installs the readiness callback.
func (t *FDTransport) RegisterWriteReady(fn func()) {
	t.mu.Lock()
	t.ready = fn
	t.mu.Unlock()
}

// Bound reports whether the descriptor is still open.
func (t *FDTransport) Bound() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bound
}

// SetHangupFunc installs the callback invoked when a hang-up is requested
// or the peer drops the line.
func (t *FDTransport) SetHangupFunc(fn func()) {
	t.mu.Lock()
	t.onHang = fn
	t.mu.Unlock()
}

// Hangup asynchronously invokes the installed hang-up callback.
func (t *FDTransport) Hangup() {
	t.mu.Lock()
	fn := t.onHang
	t.mu.Unlock()
	if fn != nil {
		go fn()
	}
}

// Close stops the pump and closes the descriptor.
func (t *FDTransport) Close() error {
	t.mu.Lock()
	if !t.bound {
		t.mu.Unlock()
		return nil
	}
	t.bound = false
	t.mu.Unlock()
	close(t.closed)
	return unix.Close(t.fd)
}

// ReadLoop polls the descriptor and feeds arriving bytes into the bound
// channel's stream parser until the context is cancelled or the line
// drops. It returns io.EOF on a clean hang-up from the far side.
func (t *FDTransport) ReadLoop(ctx context.Context, ch *Channel) error {
	buf := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		pfd := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(pfd, pollIntervalMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		if n == 0 {
			continue
		}
		if pfd[0].Revents&unix.POLLERR != 0 {
			ch.ReceiveError()
		}
		if pfd[0].Revents&unix.POLLHUP != 0 {
			t.Hangup()
			return io.EOF
		}
		rn, err := unix.Read(t.fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return err
		}
		if rn == 0 {
			t.Hangup()
			return io.EOF
		}
		ch.Receive(buf[:rn])
	}
}

// pumpLoop waits for a short write, then keeps signalling readiness while
// the descriptor is writable and the callback keeps making progress.
func (t *FDTransport) pumpLoop() {
	for {
		select {
		case <-t.closed:
			return
		case <-t.kick:
		}
		for {
			pfd := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLOUT}}
			if _, err := unix.Poll(pfd, pollIntervalMs); err != nil {
				if err == unix.EINTR {
					continue
				}
				return
			}
			select {
			case <-t.closed:
				return
			default:
			}

			t.mu.Lock()
			fn := t.ready
			t.mu.Unlock()
			if fn == nil {
				break
			}
			t.wrote.Store(false)
			fn()
			if !t.wrote.Load() {
				break
			}
		}
	}
}
