package slcan

import (
	"sync"
)

// Channel is one physical transport binding, multiplexing up to the
// configured ratio of endpoints over a single serial line.
//
// Two call contexts touch a channel concurrently: the transport's delivery
// path (Receive, ReceiveError, the write-ready callback) and control
// operations (endpoint start/stop, Send, bind/unbind). The channel mutex
// guards the receive buffer, flag bits and all shared endpoint transmit
// state; every critical section is bounded and allocation-free so the
// delivery path stays cheap. Byte delivery itself is never re-entered
// concurrently with itself.
type Channel struct {
	pool  *Pool
	index int

	mu        sync.Mutex
	transport Transport
	endpoints []*Endpoint // fixed size = ratio; nil once an endpoint is destroyed
	refs      int         // live endpoints keeping this channel's slot occupied

	rbuff   []byte // receive accumulation buffer
	rcount  int    // received chars counter
	inUse   bool
	errored bool // parity fault or overrun, discarding until next terminator
	wakeup  bool // write-ready continuation armed
}

// delivery is a decoded frame waiting to be handed to an endpoint handler
// once the channel lock has been dropped.
type delivery struct {
	fn    func(Frame)
	frame Frame
}

// Index returns the channel's stable slot index in its pool.
func (c *Channel) Index() int {
	return c.index
}

// Bound reports whether a transport is currently bound.
func (c *Channel) Bound() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport != nil
}

// Endpoint returns the endpoint at the given multiplex address.
func (c *Channel) Endpoint(addr int) (*Endpoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if addr < 0 || addr >= len(c.endpoints) {
		return nil, ErrInvalidAddr
	}
	ep := c.endpoints[addr]
	if ep == nil {
		return nil, ErrEndpointClosed
	}
	return ep, nil
}

// Endpoints returns a snapshot of the channel's live endpoints in address
// order. Destroyed endpoints are skipped.
func (c *Channel) Endpoints() []*Endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	eps := make([]*Endpoint, 0, len(c.endpoints))
	for _, ep := range c.endpoints {
		if ep != nil {
			eps = append(eps, ep)
		}
	}
	return eps
}

// Receive feeds bytes arriving from the transport into the stream parser.
// Completed lines are decoded and dispatched to the endpoint selected by
// the address digit; malformed lines are discarded silently. Reception is
// dropped entirely while endpoint 0 is down.
//
// Handlers run after the channel lock has been released, so a handler may
// call back into Send.
func (c *Channel) Receive(p []byte) {
	var pending []delivery

	c.mu.Lock()
	if c.endpoints[0] == nil || !c.endpoints[0].up {
		c.mu.Unlock()
		return
	}
	for _, b := range p {
		if d, ok := c.feed(b); ok {
			pending = append(pending, d)
		}
	}
	c.mu.Unlock()

	for _, d := range pending {
		d.fn(d.frame)
	}
}

// ReceiveError records a transport-reported bad byte (parity fault and the
// like). The byte is consumed but never accumulated: the error flag forces
// a resync discard of the in-progress line and the receive-error counter is
// bumped once per episode.
func (c *Channel) ReceiveError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.endpoints[0] == nil || !c.endpoints[0].up {
		return
	}
	if !c.errored {
		c.errored = true
		c.endpoints[0].rxErrors.Add(1)
	}
}

// feed advances the parser by one byte. Called with the channel lock held.
// A CR or BEL terminator ends the line: a clean line of viable length is
// decoded, everything else is dropped, and parser state is reset either
// way so the stream resynchronizes at the next terminator.
func (c *Channel) feed(b byte) (delivery, bool) {
	if b == termCR || b == termBEL {
		errored := c.errored
		count := c.rcount
		c.errored = false
		c.rcount = 0
		if errored || count < minLineLen {
			return delivery{}, false
		}
		f, addr, err := Unmarshal(c.rbuff[:count])
		if err != nil {
			return delivery{}, false
		}
		if addr >= len(c.endpoints) {
			// address digit beyond the ratio: dropped, never misrouted
			return delivery{}, false
		}
		ep := c.endpoints[addr]
		if ep == nil || !ep.up || ep.handler == nil {
			return delivery{}, false
		}
		ep.rxPackets.Add(1)
		ep.rxBytes.Add(uint64(f.Len))
		return delivery{fn: ep.handler, frame: f}, true
	}

	if c.errored {
		// resyncing: drop until the next terminator
		return delivery{}, false
	}
	if c.rcount < len(c.rbuff) {
		c.rbuff[c.rcount] = b
		c.rcount++
		return delivery{}, false
	}

	// overrun: the line outgrew the buffer before a terminator arrived
	c.endpoints[0].rxOver.Add(1)
	c.errored = true
	return delivery{}, false
}

// writeReady continues partial transmissions. The transport invokes it,
// once per channel, whenever the line can accept more bytes; it keeps
// being invoked until nothing remains pending on any endpoint. Endpoints
// that have drained get their packet counter bumped and their queue
// restarted; endpoints with a remainder get another best-effort write.
func (c *Channel) writeReady() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.wakeup || c.transport == nil {
		return
	}

	for _, ep := range c.endpoints {
		if ep == nil || !ep.up {
			continue
		}
		if ep.xleft <= 0 {
			if ep.stopped {
				// serial buffer drained: count the packet and let the
				// next submission through
				ep.txPackets.Add(1)
				c.wakeup = false
				ep.stopped = false
			}
			continue
		}
		n, err := c.transport.Write(ep.xbuff[ep.xhead : ep.xhead+ep.xleft])
		if err != nil {
			continue
		}
		ep.xleft -= n
		ep.xhead += n
	}
}

// transportIs reports whether t is this channel's bound transport.
func (c *Channel) transportIs(t Transport) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport != nil && c.transport == t
}
