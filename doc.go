// Package slcan implements the serial line CAN (slcan) framing protocol:
// an ASCII line format carrying CAN frames over a serial byte stream, with
// up to ten logical endpoints multiplexed over one physical line.
//
// The engine is split along the wire's natural seams: a stateless frame
// codec, a per-channel resynchronizing stream parser, a per-endpoint
// transmit flow controller that cooperates with a non-blocking partially
// consuming transport, and a fixed-capacity channel pool whose slots are
// reclaimed when the last endpoint of a channel is destroyed.
//
// # Basic Usage
//
// Create a pool, bind a transport and start an endpoint:
//
//	pool, err := slcan.New(slcan.WithChannels(4), slcan.WithRatio(2))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ch, err := pool.Bind(transport)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ep, _ := ch.Endpoint(0)
//	ep.SetHandler(func(f slcan.Frame) {
//	    fmt.Printf("id=%03X len=%d\n", f.ID, f.Len)
//	})
//	if err := ep.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
//	err = ep.Send(slcan.MustFrame(0x123, []byte{0x11, 0x22}))
//
// Bytes arriving from the serial line are fed into the channel:
//
//	ch.Receive(buf[:n])
//
// # Wire Format
//
// A line is [addr] type id dlc data* terminated by CR or BEL. Lower-case
// type characters ('t' data, 'r' RTR) carry an 11-bit identifier as three
// hex digits; upper-case ('T', 'R') carry a 29-bit identifier as eight.
// The address digit routes the frame to one of the multiplexed endpoints
// and is present only when the ratio exceeds one. Malformed lines are
// discarded silently; garbage on the line is skipped until the next
// terminator.
//
// # Transports
//
// Anything satisfying the Transport interface can carry the line protocol.
// FDTransport adapts a non-blocking file descriptor (a raw-mode tty);
// Loopback is an in-memory transport for tests and simulations. Transport
// writes are best-effort and may accept only a prefix; the engine finishes
// the line on the transport's write-readiness signal and never blocks.
//
// # Error Handling
//
// Lifecycle and resource failures are synchronous sentinel errors checked
// with errors.Is():
//
//	if errors.Is(err, slcan.ErrPoolExhausted) {
//	    // no free channel slot
//	}
//
// Parse-level problems never surface as errors: they only move the
// per-endpoint statistics counters and the parser's resync state.
//
// # Configuration Defaults
//
//   - Channels: 10 (minimum 4)
//   - Ratio: 2 (1 to 10 endpoints per channel)
//   - ReceiveBuffer: sized to the longest legal line
//   - ShutdownTimeout: 1s
package slcan
