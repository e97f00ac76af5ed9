package slcan

import "errors"

// Predefined error types for robust error handling
var (
	// Codec errors
	ErrMalformedLine = errors.New("malformed slcan line")
	ErrInvalidID     = errors.New("CAN identifier out of range")
	ErrInvalidLength = errors.New("CAN data length out of range")
	ErrInvalidAddr   = errors.New("endpoint address out of range")

	// Lifecycle and resource errors
	ErrPoolExhausted    = errors.New("no free channel slot in pool")
	ErrNotConnected     = errors.New("no transport bound to channel")
	ErrAlreadyConnected = errors.New("transport already bound to a channel")
	ErrNoTransport      = errors.New("transport is nil or not writable")
	ErrEndpointClosed   = errors.New("endpoint has been destroyed")
	ErrPoolClosed       = errors.New("pool has been shut down")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid slcan configuration")
)
