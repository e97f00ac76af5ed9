package slcan

import "fmt"

// Frame represents a classical CAN (2.0A/2.0B) frame.
//
// Supported features:
//   - Standard (11-bit) and Extended (29-bit) identifiers
//   - Data frames and Remote Transmission Request (RTR)
//   - Data length 0-8 bytes (classical CAN)
//
// CAN FD is not supported by the slcan wire format.
type Frame struct {
	ID       uint32 // 11-bit (std) or 29-bit (ext)
	Extended bool   // true for 29-bit identifier
	RTR      bool   // remote transmission request
	Len      uint8  // 0..8
	Data     [8]byte
}

// Identifier limits per frame format.
const (
	MaxStandardID = 0x7FF
	MaxExtendedID = 0x1FFFFFFF
)

// Validate returns an error if the frame is not valid.
func (f Frame) Validate() error {
	if f.Len > 8 {
		return ErrInvalidLength
	}
	if f.Extended {
		if f.ID > MaxExtendedID {
			return ErrInvalidID
		}
	} else {
		if f.ID > MaxStandardID {
			return ErrInvalidID
		}
	}
	return nil
}

// MustFrame constructs a Frame and panics if invalid. Convenience for
// examples and tests. Identifiers above the standard range select the
// extended format automatically.
func MustFrame(id uint32, data []byte) Frame {
	var f Frame
	f.ID = id
	if id > MaxStandardID {
		f.Extended = true
	}
	if len(data) > 8 {
		panic(ErrInvalidLength)
	}
	f.Len = uint8(len(data))
	copy(f.Data[:], data)
	if err := f.Validate(); err != nil {
		panic(err)
	}
	return f
}

// Payload returns the frame's data truncated to its length.
func (f Frame) Payload() []byte {
	return f.Data[:f.Len]
}

// String renders the frame in candump-like notation, e.g. "123 [2] DE AD".
// Remote frames carry an RTR marker instead of data bytes.
func (f Frame) String() string {
	width := 3
	if f.Extended {
		width = 8
	}
	s := fmt.Sprintf("%0*X [%d]", width, f.ID, f.Len)
	if f.RTR {
		return s + " RTR"
	}
	for _, b := range f.Payload() {
		s += fmt.Sprintf(" %02X", b)
	}
	return s
}
