package slcan

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Pool is a fixed-capacity table of channels. It is constructed once and
// passed into every lifecycle operation; there is no implicit global
// state. Slot allocation, the slot-clearing side effect of last-endpoint
// destruction and bind/unbind are all serialized by the pool mutex, so two
// concurrent binds can never race for the same slot.
type Pool struct {
	cfg Config
	log zerolog.Logger

	mu       sync.Mutex
	channels []*Channel
	closed   bool
}

// New creates a channel pool. Capacity and ratio are clamped to their
// documented bounds.
func New(opts ...Option) (*Pool, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Channels < MinChannels {
		cfg.Channels = MinChannels
	}
	if cfg.Ratio < 1 {
		cfg.Ratio = 1
	}
	if cfg.Ratio > MaxRatio {
		cfg.Ratio = MaxRatio
	}
	if cfg.ReceiveBuffer < maxLineLen {
		cfg.ReceiveBuffer = maxLineLen
	}

	p := &Pool{
		cfg:      cfg,
		log:      cfg.Logger,
		channels: make([]*Channel, cfg.Channels),
	}
	p.log.Debug().
		Int("channels", cfg.Channels).
		Int("ratio", cfg.Ratio).
		Msg("slcan pool created")
	return p, nil
}

// Config returns the pool's effective configuration.
func (p *Pool) Config() Config {
	return p.cfg
}

// Bind links a transport to a free channel, creating the channel's
// endpoints. A transport that is already bound fails with
// ErrAlreadyConnected; a full pool fails with ErrPoolExhausted. On success
// the channel's write-ready callback is registered with the transport and
// the endpoints are ready to be started.
func (p *Pool) Bind(t Transport) (*Channel, error) {
	if t == nil || !t.Bound() {
		return nil, ErrNoTransport
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	// Collect channels whose transport hung up without a clean stop.
	p.syncLocked()

	for _, ch := range p.channels {
		if ch != nil && ch.transportIs(t) {
			return nil, ErrAlreadyConnected
		}
	}

	ch, err := p.allocLocked()
	if err != nil {
		return nil, err
	}

	ch.mu.Lock()
	ch.transport = t
	ch.rcount = 0
	ch.inUse = true
	ch.mu.Unlock()

	t.RegisterWriteReady(ch.writeReady)

	p.log.Debug().Int("channel", ch.index).Msg("transport bound")
	return ch, nil
}

// Unbind detaches the channel's transport and tears down every endpoint
// through the normal destruction path, which releases the channel's pool
// slot once the last endpoint is gone. Unbinding a channel without a
// transport is a no-op.
func (p *Pool) Unbind(ch *Channel) {
	ch.mu.Lock()
	t := ch.transport
	if t == nil {
		ch.mu.Unlock()
		return
	}
	ch.transport = nil
	ch.wakeup = false
	eps := make([]*Endpoint, len(ch.endpoints))
	copy(eps, ch.endpoints)
	ch.mu.Unlock()

	t.RegisterWriteReady(nil)

	for _, ep := range eps {
		if ep != nil {
			ep.Close()
		}
	}
	p.log.Debug().Int("channel", ch.index).Msg("transport unbound")
}

// Shutdown drives every still-bound channel through an unbind-then-destroy
// sequence. Transports that can be hung up are asked to let go
// asynchronously; the pool retries for the configured timeout and then
// force-detaches whatever is left. A channel whose transport never
// released is torn down but intentionally left referenced, since the
// transport side may still deliver into it: a bounded leak beats a
// use-after-teardown race. That case is logged and reported as an error.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.closed = true
	p.mu.Unlock()

	deadline := time.Now().Add(p.cfg.ShutdownTimeout)
	busy := 0
	for {
		if busy > 0 {
			time.Sleep(p.cfg.ShutdownPoll)
		}
		busy = 0

		p.mu.Lock()
		for _, ch := range p.channels {
			if ch == nil {
				continue
			}
			ch.mu.Lock()
			t := ch.transport
			ch.mu.Unlock()
			if t == nil {
				continue
			}
			busy++
			if h, ok := t.(Hangupper); ok {
				h.Hangup()
			}
		}
		p.mu.Unlock()

		if busy == 0 || !time.Now().Before(deadline) {
			break
		}
	}

	// Detach the remaining slots in one exclusive section, then tear the
	// endpoints down outside it: endpoint destruction re-enters the pool
	// to clear its slot.
	p.mu.Lock()
	var leftover []*Channel
	for i, ch := range p.channels {
		if ch == nil {
			continue
		}
		p.channels[i] = nil
		leftover = append(leftover, ch)
	}
	p.mu.Unlock()

	anomalies := 0
	for _, ch := range leftover {
		ch.mu.Lock()
		still := ch.transport != nil
		eps := make([]*Endpoint, len(ch.endpoints))
		copy(eps, ch.endpoints)
		ch.mu.Unlock()

		if still {
			anomalies++
			p.log.Error().Int("channel", ch.index).
				Msg("transport still bound after shutdown wait, leaking channel")
		}
		for _, ep := range eps {
			if ep != nil {
				ep.Close()
			}
		}
	}

	if anomalies > 0 {
		return fmt.Errorf("shutdown: %d channel(s) still bound after %v", anomalies, p.cfg.ShutdownTimeout)
	}
	return nil
}

// Channels returns a snapshot of the currently occupied channels.
func (p *Pool) Channels() []*Channel {
	p.mu.Lock()
	defer p.mu.Unlock()
	var chs []*Channel
	for _, ch := range p.channels {
		if ch != nil {
			chs = append(chs, ch)
		}
	}
	return chs
}

// allocLocked finds a free slot and builds a zeroed channel with its full
// complement of endpoints. Endpoint creation is all-or-nothing; the slot
// is only marked occupied once the channel is complete. Called with the
// pool mutex held.
func (p *Pool) allocLocked() (*Channel, error) {
	slot := -1
	for i, ch := range p.channels {
		if ch == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return nil, ErrPoolExhausted
	}

	ch := &Channel{
		pool:  p,
		index: slot,
		rbuff: make([]byte, p.cfg.ReceiveBuffer),
	}
	ch.endpoints = make([]*Endpoint, p.cfg.Ratio)
	for j := range ch.endpoints {
		ch.endpoints[j] = &Endpoint{channel: ch, addr: j}
	}
	ch.refs = p.cfg.Ratio

	p.channels[slot] = ch
	return ch, nil
}

// syncLocked stops the endpoints of channels whose transport disappeared
// without a clean teardown. Called with the pool mutex held.
func (p *Pool) syncLocked() {
	for _, ch := range p.channels {
		if ch == nil {
			continue
		}
		ch.mu.Lock()
		if ch.transport == nil {
			for _, ep := range ch.endpoints {
				if ep != nil && ep.up {
					ep.stopLocked()
				}
			}
		}
		ch.mu.Unlock()
	}
}

// release clears the channel's pool slot. Invoked by the destruction of a
// channel's last endpoint; clearing is idempotent so forced shutdown can
// detach slots up front.
func (p *Pool) release(ch *Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, cur := range p.channels {
		if cur == ch {
			p.channels[i] = nil
			p.log.Debug().Int("channel", ch.index).Msg("channel released")
		}
	}
}
