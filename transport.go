package slcan

// Transport is the serial byte pipe a channel binds to. Implementations
// must never block in Write: a write accepts as many leading bytes as fit
// and reports how many were taken. The registered write-ready callback is
// level-triggered; implementations keep invoking it while the line can
// accept more bytes, until the engine has nothing left pending.
type Transport interface {
	// Write queues up to len(p) bytes for transmission and returns how
	// many leading bytes were accepted. It must not block.
	Write(p []byte) (int, error)

	// RegisterWriteReady installs the callback invoked whenever the
	// transport can accept more data. Passing nil removes it.
	RegisterWriteReady(fn func())

	// Bound reports whether the underlying line is open.
	Bound() bool
}

// Hangupper is optionally implemented by transports that can be asked to
// close their side of the line. Pool.Shutdown uses it to request that
// still-bound transports let go; the request is asynchronous and is
// expected to end in a Pool.Unbind from the transport's owner.
type Hangupper interface {
	Hangup()
}
