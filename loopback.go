package slcan

import "sync"

// Loopback is an in-memory Transport for tests and simulations. Writes
// accumulate into an internal buffer, optionally capped to a fixed number
// of accepted bytes per call so partial-write flow control can be
// exercised. Readiness is pumped manually.
type Loopback struct {
	mu     sync.Mutex
	limit  int // max bytes accepted per Write, 0 = unlimited
	buf    []byte
	ready  func()
	bound  bool
	onHang func()
}

var _ Transport = (*Loopback)(nil)

// NewLoopback creates a bound loopback transport with no accept limit.
func NewLoopback() *Loopback {
	return &Loopback{bound: true}
}

// SetAcceptLimit caps how many bytes a single Write accepts. Zero removes
// the cap.
func (l *Loopback) SetAcceptLimit(n int) {
	l.mu.Lock()
	l.limit = n
	l.mu.Unlock()
}

// SetHangupFunc installs the callback invoked, asynchronously, when the
// pool requests a hang-up. Typically it unbinds the channel this transport
// is bound to.
func (l *Loopback) SetHangupFunc(fn func()) {
	l.mu.Lock()
	l.onHang = fn
	l.mu.Unlock()
}

// Write accepts up to the configured limit of leading bytes. It never
// blocks and never invokes the readiness callback itself.
func (l *Loopback) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.bound {
		return 0, ErrNotConnected
	}
	n := len(p)
	if l.limit > 0 && n > l.limit {
		n = l.limit
	}
	l.buf = append(l.buf, p[:n]...)
	return n, nil
}

// RegisterWriteReady installs the readiness callback.
func (l *Loopback) RegisterWriteReady(fn func()) {
	l.mu.Lock()
	l.ready = fn
	l.mu.Unlock()
}

// Bound reports whether the loopback is still open.
func (l *Loopback) Bound() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bound
}

// Hangup asynchronously invokes the installed hang-up callback. Without
// one the loopback stays bound, which is how tests provoke the forced
// shutdown path.
func (l *Loopback) Hangup() {
	l.mu.Lock()
	fn := l.onHang
	l.mu.Unlock()
	if fn != nil {
		go fn()
	}
}

// Close marks the loopback unbound. Pending buffered bytes are kept.
func (l *Loopback) Close() error {
	l.mu.Lock()
	l.bound = false
	l.mu.Unlock()
	return nil
}

// Pump fires the readiness callback once, if registered.
func (l *Loopback) Pump() {
	l.mu.Lock()
	fn := l.ready
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Flush pumps readiness until a pass accepts no further bytes, emulating a
// level-triggered write-ready signal.
func (l *Loopback) Flush() {
	for {
		before := len(l.Bytes())
		l.Pump()
		if len(l.Bytes()) == before {
			return
		}
	}
}

// Bytes returns a copy of everything accepted so far.
func (l *Loopback) Bytes() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]byte, len(l.buf))
	copy(out, l.buf)
	return out
}

// Drain returns everything accepted so far and clears the buffer.
func (l *Loopback) Drain() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.buf
	l.buf = nil
	return out
}
