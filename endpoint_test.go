package slcan

import (
	"errors"
	"testing"
)

func TestSendCompleteWrite(t *testing.T) {
	ch, lb, _ := newTestChannel(t, 1)
	eps := ch.Endpoints()

	f := Frame{ID: 0x456, Len: 3, Data: [8]byte{0x11, 0x22, 0x33}}
	if err := eps[0].Send(f); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if want := "t4563112233\r"; string(lb.Bytes()) != want {
		t.Errorf("wire = %q, want %q", lb.Bytes(), want)
	}

	st := eps[0].Stats()
	if st.TxPackets != 1 {
		t.Errorf("TxPackets = %d, want 1", st.TxPackets)
	}
	if st.TxBytes != 3 {
		t.Errorf("TxBytes = %d, want 3 (payload bytes, not wire bytes)", st.TxBytes)
	}
	if !eps[0].Running() {
		t.Error("queue not restarted after a complete write")
	}
}

func TestSendPartialWriteContinuation(t *testing.T) {
	ch, lb, _ := newTestChannel(t, 1)
	eps := ch.Endpoints()

	lb.SetAcceptLimit(4)
	if err := eps[0].Send(Frame{ID: 0x456, Len: 3, Data: [8]byte{0x11, 0x22, 0x33}}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if got := len(lb.Bytes()); got != 4 {
		t.Fatalf("transport accepted %d bytes, want 4", got)
	}
	if eps[0].Running() {
		t.Error("queue runnable while a line is still draining")
	}
	if eps[0].Stats().TxPackets != 0 {
		t.Error("packet counted before line drained")
	}

	// a submission while the queue is stopped is rejected, not queued
	if err := eps[0].Send(Frame{ID: 0x001}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send while draining: error = %v, want %v", err, ErrNotConnected)
	}

	lb.Flush()

	if want := "t4563112233\r"; string(lb.Bytes()) != want {
		t.Errorf("wire = %q, want %q", lb.Bytes(), want)
	}
	if eps[0].Stats().TxPackets != 1 {
		t.Errorf("TxPackets = %d after drain, want 1", eps[0].Stats().TxPackets)
	}
	if !eps[0].Running() {
		t.Error("queue not restarted after drain")
	}

	if err := eps[0].Send(Frame{ID: 0x001}); err != nil {
		t.Errorf("Send after drain failed: %v", err)
	}
}

func TestSendSingleByteTrickle(t *testing.T) {
	ch, lb, _ := newTestChannel(t, 1)
	eps := ch.Endpoints()

	lb.SetAcceptLimit(1)
	if err := eps[0].Send(Frame{ID: 0x123}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	lb.Flush()

	if want := "t1230\r"; string(lb.Bytes()) != want {
		t.Errorf("wire = %q, want %q", lb.Bytes(), want)
	}
	if eps[0].Stats().TxPackets != 1 {
		t.Errorf("TxPackets = %d, want 1", eps[0].Stats().TxPackets)
	}
}

func TestSendMuxAddressPrefix(t *testing.T) {
	ch, lb, _ := newTestChannel(t, 2)
	eps := ch.Endpoints()

	if err := eps[1].Send(Frame{ID: 0x123}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if want := "1t1230\r"; string(lb.Bytes()) != want {
		t.Errorf("wire = %q, want %q", lb.Bytes(), want)
	}
}

func TestSendInvalidFrame(t *testing.T) {
	ch, lb, _ := newTestChannel(t, 1)
	eps := ch.Endpoints()

	if err := eps[0].Send(Frame{ID: 0x800}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("out of range id: error = %v, want %v", err, ErrInvalidID)
	}
	if err := eps[0].Send(Frame{ID: 1, Len: 9}); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("bad length: error = %v, want %v", err, ErrInvalidLength)
	}
	if len(lb.Bytes()) != 0 {
		t.Error("invalid frame reached the transport")
	}
}

func TestSendRequiresRunning(t *testing.T) {
	pool, err := New(WithChannels(4), WithRatio(1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	lb := NewLoopback()
	ch, err := pool.Bind(lb)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	eps := ch.Endpoints()

	// never started
	if err := eps[0].Send(Frame{ID: 1}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send before Start: error = %v, want %v", err, ErrNotConnected)
	}

	if err := eps[0].Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	eps[0].Stop()
	if err := eps[0].Send(Frame{ID: 1}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send after Stop: error = %v, want %v", err, ErrNotConnected)
	}
}

func TestSendRequiresTransport(t *testing.T) {
	ch, _, _ := newTestChannel(t, 1)
	eps := ch.Endpoints()

	// simulate the transport dropping out from under a running endpoint
	ch.mu.Lock()
	ch.transport = nil
	ch.mu.Unlock()

	if err := eps[0].Send(Frame{ID: 1}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send without transport: error = %v, want %v", err, ErrNotConnected)
	}
}

func TestStartRequiresTransport(t *testing.T) {
	ch, _, _ := newTestChannel(t, 1)
	eps := ch.Endpoints()
	eps[0].Stop()

	ch.mu.Lock()
	ch.transport = nil
	ch.mu.Unlock()

	if err := eps[0].Start(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Start without transport: error = %v, want %v", err, ErrNotConnected)
	}
}

func TestStartClearsReceiveErrorState(t *testing.T) {
	ch, _, got := newTestChannel(t, 1)
	eps := ch.Endpoints()

	ch.ReceiveError() // channel now resyncing
	eps[0].Stop()
	if err := eps[0].Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// error flag cleared by Start: the next line decodes without waiting
	// for a terminator first
	ch.Receive([]byte("t1230\r"))
	if len(got[0]) != 1 {
		t.Errorf("received %d frames, want 1", len(got[0]))
	}
}

func TestStopDiscardsPendingTransmit(t *testing.T) {
	ch, lb, _ := newTestChannel(t, 1)
	eps := ch.Endpoints()

	lb.SetAcceptLimit(2)
	if err := eps[0].Send(Frame{ID: 0x123}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	eps[0].Stop()
	lb.Flush()

	// only the two bytes accepted before Stop made it out
	if got := len(lb.Bytes()); got != 2 {
		t.Errorf("wire carries %d bytes after Stop, want 2", got)
	}
	if eps[0].Stats().TxPackets != 0 {
		t.Errorf("TxPackets = %d, want 0 for an abandoned line", eps[0].Stats().TxPackets)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	ch, _, _ := newTestChannel(t, 2)
	eps := ch.Endpoints()

	if err := eps[1].Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := eps[1].Send(Frame{ID: 1}); !errors.Is(err, ErrEndpointClosed) {
		t.Errorf("Send on closed endpoint: error = %v, want %v", err, ErrEndpointClosed)
	}
	if err := eps[1].Start(); !errors.Is(err, ErrEndpointClosed) {
		t.Errorf("Start on closed endpoint: error = %v, want %v", err, ErrEndpointClosed)
	}
	if err := eps[1].Close(); err != nil {
		t.Errorf("second Close: error = %v, want nil", err)
	}

	// sibling endpoint unaffected, channel slot still occupied
	if err := eps[0].Send(Frame{ID: 1}); err != nil {
		t.Errorf("sibling Send failed: %v", err)
	}
	if _, err := ch.Endpoint(1); !errors.Is(err, ErrEndpointClosed) {
		t.Errorf("Endpoint(1) after close: error = %v, want %v", err, ErrEndpointClosed)
	}
}
