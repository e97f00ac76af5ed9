package slcan

import "sync/atomic"

// Endpoint is one logical CAN interface multiplexed onto a channel at a
// fixed address. Endpoints are created with their channel and destroyed at
// most once; the channel's pool slot is reclaimed when the last endpoint is
// closed. All mutable endpoint state is guarded by the owning channel's
// lock.
type Endpoint struct {
	channel *Channel
	addr    int

	// transmit staging, guarded by channel.mu
	xbuff   [maxLineLen]byte
	xhead   int // cursor past the bytes the transport accepted
	xleft   int // bytes left in the staging buffer
	up      bool
	stopped bool // queue stopped while a line drains
	dead    bool

	handler func(Frame) // guarded by channel.mu

	rxPackets atomic.Uint64
	rxBytes   atomic.Uint64
	rxErrors  atomic.Uint64
	rxOver    atomic.Uint64
	txPackets atomic.Uint64
	txBytes   atomic.Uint64
}

// Stats is a snapshot of an endpoint's counters. Receive error and overrun
// counts are accounted on a channel's endpoint 0.
type Stats struct {
	RxPackets uint64
	RxBytes   uint64
	RxErrors  uint64
	RxOver    uint64
	TxPackets uint64
	TxBytes   uint64
}

// Addr returns the endpoint's multiplex address within its channel.
func (e *Endpoint) Addr() int {
	return e.addr
}

// Channel returns the owning channel. The reference is non-owning: the
// endpoint keeps the channel's pool slot alive, not the other way round.
func (e *Endpoint) Channel() *Channel {
	return e.channel
}

// Running reports whether the endpoint has been started and its queue is
// accepting submissions.
func (e *Endpoint) Running() bool {
	c := e.channel
	c.mu.Lock()
	defer c.mu.Unlock()
	return e.up && !e.stopped
}

// SetHandler installs the receive callback invoked for every frame routed
// to this endpoint. The handler runs outside the channel lock.
func (e *Endpoint) SetHandler(fn func(Frame)) {
	c := e.channel
	c.mu.Lock()
	e.handler = fn
	c.mu.Unlock()
}

// Stats returns a snapshot of the endpoint's counters.
func (e *Endpoint) Stats() Stats {
	return Stats{
		RxPackets: e.rxPackets.Load(),
		RxBytes:   e.rxBytes.Load(),
		RxErrors:  e.rxErrors.Load(),
		RxOver:    e.rxOver.Load(),
		TxPackets: e.txPackets.Load(),
		TxBytes:   e.txBytes.Load(),
	}
}

// Start makes the endpoint runnable. It fails with ErrNotConnected while
// the channel has no bound transport. Starting clears the channel's
// receive error flag.
func (e *Endpoint) Start() error {
	c := e.channel
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.dead {
		return ErrEndpointClosed
	}
	if c.transport == nil {
		return ErrNotConnected
	}
	c.errored = false
	e.up = true
	e.stopped = false
	return nil
}

// Stop halts the endpoint's queue and discards pending receive and
// transmit state. The channel and its pool slot stay intact; the endpoint
// can be started again.
func (e *Endpoint) Stop() {
	c := e.channel
	c.mu.Lock()
	defer c.mu.Unlock()
	e.stopLocked()
}

func (e *Endpoint) stopLocked() {
	c := e.channel
	if e.dead {
		return
	}
	if c.transport != nil {
		c.wakeup = false
	}
	e.up = false
	e.stopped = false
	c.rcount = 0
	e.xleft = 0
	e.xhead = 0
}

// Send encodes the frame and hands it to the transport. The endpoint's
// queue is stopped before encoding begins; it restarts immediately when
// the transport accepts the whole line, otherwise on the write-ready
// continuation. Send never blocks and never queues for later retry: a
// stopped queue or an unbound channel fails with ErrNotConnected and the
// frame is discarded.
func (e *Endpoint) Send(f Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}

	c := e.channel
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.dead {
		return ErrEndpointClosed
	}
	if !e.up || e.stopped {
		return ErrNotConnected
	}
	if c.transport == nil {
		return ErrNotConnected
	}

	// Backpressure point: no further submissions until this line drains.
	e.stopped = true

	line := appendFrame(e.xbuff[:0], f, e.addr, len(c.endpoints) > 1)

	// Arm the continuation before writing. A short line may be consumed
	// entirely inside Write; without arming first the readiness signal for
	// it could be missed.
	c.wakeup = true
	n, err := c.transport.Write(line)
	if err != nil {
		n = 0
	}
	e.xleft = len(line) - n
	e.xhead = n
	e.txBytes.Add(uint64(f.Len))

	if e.xleft == 0 {
		e.txPackets.Add(1)
		c.wakeup = false
		e.stopped = false
	}
	return nil
}

// Close destroys the endpoint. Destruction is terminal: the endpoint's
// slot in the channel is removed and, when this was the channel's last
// endpoint, the channel's pool slot is released. Closing an already closed
// endpoint is a no-op.
func (e *Endpoint) Close() error {
	c := e.channel

	c.mu.Lock()
	if e.dead {
		c.mu.Unlock()
		return nil
	}
	e.stopLocked()
	e.dead = true
	e.handler = nil
	c.endpoints[e.addr] = nil
	c.refs--
	last := c.refs == 0
	c.mu.Unlock()

	if last {
		c.pool.release(c)
	}
	return nil
}
