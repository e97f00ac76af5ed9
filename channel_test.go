package slcan

import (
	"bytes"
	"testing"
)

// newTestChannel builds a pool with a bound loopback transport and starts
// every endpoint, collecting received frames per address.
func newTestChannel(t *testing.T, ratio int, opts ...Option) (*Channel, *Loopback, [][]Frame) {
	t.Helper()

	opts = append([]Option{WithChannels(4), WithRatio(ratio)}, opts...)
	pool, err := New(opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	lb := NewLoopback()
	ch, err := pool.Bind(lb)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	got := make([][]Frame, ratio)
	for i, ep := range ch.Endpoints() {
		i := i
		ep.SetHandler(func(f Frame) {
			got[i] = append(got[i], f)
		})
		if err := ep.Start(); err != nil {
			t.Fatalf("Start endpoint %d failed: %v", i, err)
		}
	}
	return ch, lb, got
}

func TestReceiveDecodesLines(t *testing.T) {
	ch, _, got := newTestChannel(t, 1)

	ch.Receive([]byte("t1230\rt4563112233\r"))

	want := []Frame{
		{ID: 0x123},
		{ID: 0x456, Len: 3, Data: [8]byte{0x11, 0x22, 0x33}},
	}
	if len(got[0]) != len(want) {
		t.Fatalf("received %d frames, want %d", len(got[0]), len(want))
	}
	for i, f := range want {
		if got[0][i] != f {
			t.Errorf("frame %d = %+v, want %+v", i, got[0][i], f)
		}
	}

	eps := ch.Endpoints()
	st := eps[0].Stats()
	if st.RxPackets != 2 {
		t.Errorf("RxPackets = %d, want 2", st.RxPackets)
	}
	if st.RxBytes != 3 {
		t.Errorf("RxBytes = %d, want 3", st.RxBytes)
	}
}

func TestReceiveSplitAcrossCalls(t *testing.T) {
	ch, _, got := newTestChannel(t, 1)

	for _, b := range []byte("t4563112233\r") {
		ch.Receive([]byte{b})
	}

	if len(got[0]) != 1 {
		t.Fatalf("received %d frames, want 1", len(got[0]))
	}
	if got[0][0].ID != 0x456 {
		t.Errorf("ID = %#x, want 0x456", got[0][0].ID)
	}
}

func TestResyncRecovery(t *testing.T) {
	ch, _, got := newTestChannel(t, 1)

	// a malformed prefix, a terminator, then a clean line
	ch.Receive([]byte("zzqq##t12"))
	ch.Receive([]byte("\r"))
	ch.Receive([]byte("t1230\r"))

	if len(got[0]) != 1 {
		t.Fatalf("received %d frames, want exactly the clean line", len(got[0]))
	}
	if got[0][0].ID != 0x123 {
		t.Errorf("ID = %#x, want 0x123", got[0][0].ID)
	}
}

func TestOverrunRecovery(t *testing.T) {
	ch, _, got := newTestChannel(t, 1, WithReceiveBuffer(80))

	garbage := bytes.Repeat([]byte{'z'}, 200)
	ch.Receive(garbage)

	eps := ch.Endpoints()
	if over := eps[0].Stats().RxOver; over != 1 {
		t.Errorf("RxOver = %d, want 1 (once per episode)", over)
	}
	if len(got[0]) != 0 {
		t.Fatalf("received %d frames during overrun, want 0", len(got[0]))
	}

	// the partial buffer from the overrun line is never decoded
	ch.Receive([]byte("\r"))
	if len(got[0]) != 0 {
		t.Fatalf("overrun line was decoded, want it discarded")
	}

	ch.Receive([]byte("t0010\r"))
	if len(got[0]) != 1 {
		t.Fatalf("received %d frames after recovery, want 1", len(got[0]))
	}
	if f := got[0][0]; f.ID != 0x001 || f.Len != 0 {
		t.Errorf("recovered frame = %+v, want id=0x001 len=0", f)
	}
}

func TestOverrunCountsOncePerEpisode(t *testing.T) {
	ch, _, _ := newTestChannel(t, 1)

	ch.Receive(bytes.Repeat([]byte{'z'}, 500))
	eps := ch.Endpoints()
	if over := eps[0].Stats().RxOver; over != 1 {
		t.Errorf("RxOver = %d after one long run, want 1", over)
	}

	ch.Receive([]byte("\r"))
	ch.Receive(bytes.Repeat([]byte{'z'}, 500))
	if over := eps[0].Stats().RxOver; over != 2 {
		t.Errorf("RxOver = %d after second episode, want 2", over)
	}
}

func TestReceiveErrorForcesResync(t *testing.T) {
	ch, _, got := newTestChannel(t, 1)

	ch.Receive([]byte("t12"))
	ch.ReceiveError()
	ch.Receive([]byte("30\r")) // remains of the faulted line, dropped
	ch.Receive([]byte("t4561AB\r"))

	if len(got[0]) != 1 {
		t.Fatalf("received %d frames, want 1", len(got[0]))
	}
	if got[0][0].ID != 0x456 {
		t.Errorf("ID = %#x, want 0x456", got[0][0].ID)
	}

	eps := ch.Endpoints()
	if errs := eps[0].Stats().RxErrors; errs != 1 {
		t.Errorf("RxErrors = %d, want 1", errs)
	}
}

func TestAddressRouting(t *testing.T) {
	ch, _, got := newTestChannel(t, 3)

	ch.Receive([]byte("0t1230\r"))
	ch.Receive([]byte("1t1230\r"))
	ch.Receive([]byte("2t1230\r"))
	ch.Receive([]byte("3t1230\r")) // beyond the ratio: dropped

	for i := 0; i < 3; i++ {
		if len(got[i]) != 1 {
			t.Errorf("endpoint %d received %d frames, want 1", i, len(got[i]))
			continue
		}
		if got[i][0].ID != 0x123 {
			t.Errorf("endpoint %d ID = %#x, want 0x123", i, got[i][0].ID)
		}
	}
}

func TestAddressDefaultsToZero(t *testing.T) {
	ch, _, got := newTestChannel(t, 2)

	ch.Receive([]byte("t1230\r"))

	if len(got[0]) != 1 {
		t.Errorf("endpoint 0 received %d frames, want 1", len(got[0]))
	}
	if len(got[1]) != 0 {
		t.Errorf("endpoint 1 received %d frames, want 0", len(got[1]))
	}
}

func TestMinimumViableLine(t *testing.T) {
	ch, _, got := newTestChannel(t, 1)

	// four characters between terminators can never be a frame
	ch.Receive([]byte("t123\r"))
	if len(got[0]) != 0 {
		t.Errorf("short line decoded, want it dropped")
	}

	ch.Receive([]byte("t1230\r"))
	if len(got[0]) != 1 {
		t.Errorf("parser did not recover after short line")
	}
}

func TestReceiveDroppedWhileDown(t *testing.T) {
	ch, _, got := newTestChannel(t, 1)

	eps := ch.Endpoints()
	eps[0].Stop()
	ch.Receive([]byte("t1230\r"))
	if len(got[0]) != 0 {
		t.Fatalf("received %d frames while stopped, want 0", len(got[0]))
	}

	if err := eps[0].Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	ch.Receive([]byte("t1230\r"))
	if len(got[0]) != 1 {
		t.Errorf("received %d frames after restart, want 1", len(got[0]))
	}
}

func TestStopResetsPartialReceive(t *testing.T) {
	ch, _, got := newTestChannel(t, 1)
	eps := ch.Endpoints()

	ch.Receive([]byte("t456311"))
	eps[0].Stop()
	if err := eps[0].Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	// the stale partial line is gone; this terminator ends an empty line
	ch.Receive([]byte("2233\r"))
	ch.Receive([]byte("t1230\r"))

	if len(got[0]) != 1 {
		t.Fatalf("received %d frames, want 1", len(got[0]))
	}
	if got[0][0].ID != 0x123 {
		t.Errorf("ID = %#x, want 0x123", got[0][0].ID)
	}
}

func TestHandlerMayCallSend(t *testing.T) {
	ch, lb, _ := newTestChannel(t, 1)
	eps := ch.Endpoints()

	var sendErr error
	eps[0].SetHandler(func(f Frame) {
		sendErr = eps[0].Send(f)
	})

	ch.Receive([]byte("t1230\r"))
	if sendErr != nil {
		t.Fatalf("Send from handler failed: %v", sendErr)
	}
	if want := "t1230\r"; string(lb.Bytes()) != want {
		t.Errorf("echoed line = %q, want %q", lb.Bytes(), want)
	}
}
