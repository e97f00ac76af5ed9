package slcan

// The slcan ASCII representation of a CAN frame is:
//
//	[addr] <type> <id> <dlc> <data>* <cr>
//
// Extended (29 bit) frames are marked by capital type characters, RTR
// frames use 'r' types, data frames use 't':
//
//	t => 11 bit data frame
//	r => 11 bit RTR frame
//	T => 29 bit data frame
//	R => 29 bit RTR frame
//
// The <id> is 3 (standard) or 8 (extended) ASCII hex digits, <dlc> a single
// digit '0'-'8' and <data> has two hex digits per payload byte. The optional
// leading address digit '0'-'9' selects the multiplexed endpoint and is only
// emitted when more than one endpoint shares the line. A line ends with CR
// or BEL.
//
// Examples:
//
//	t1230         : can_id 0x123, len 0, no data
//	t4563112233   : can_id 0x456, len 3, data 0x11 0x22 0x33
//	T12ABCDEF2AA55: extended can_id 0x12ABCDEF, len 2, data 0xAA 0x55
//	r1230         : can_id 0x123, len 0, remote transmission request

// Line terminators accepted on the wire.
const (
	termCR  = '\r'
	termBEL = '\a'
)

// minLineLen is the shortest decodable line excluding address digit and
// terminator: type, 3-digit standard id, dlc.
const minLineLen = 5

// maxLineLen bounds a fully populated line: address digit, extended data
// frame with 8 payload bytes, terminator, plus headroom for an adapter
// timestamp suffix.
const maxLineLen = len("0T1111222281122334455667788EA5F\r") + 2

const hexUpper = "0123456789ABCDEF"

// Marshal encodes a frame to its ASCII wire line, terminated with CR. The
// address digit is prefixed only when mux is true; addr must then be in
// [0, 10).
func Marshal(f Frame, addr int, mux bool) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if mux && (addr < 0 || addr > 9) {
		return nil, ErrInvalidAddr
	}
	return appendFrame(make([]byte, 0, maxLineLen), f, addr, mux), nil
}

// appendFrame appends the wire representation of a valid frame to dst.
// Callers validate the frame first; the identifier is masked to the
// format's width either way.
func appendFrame(dst []byte, f Frame, addr int, mux bool) []byte {
	if mux {
		dst = append(dst, byte('0'+addr))
	}

	cmd := byte('t')
	if f.RTR {
		cmd = 'r'
	}
	if f.Extended {
		cmd &^= 0x20 // capital type char selects the extended format
		id := f.ID & MaxExtendedID
		dst = append(dst, cmd)
		for shift := 28; shift >= 0; shift -= 4 {
			dst = append(dst, hexUpper[id>>uint(shift)&0xF])
		}
	} else {
		id := f.ID & MaxStandardID
		dst = append(dst, cmd, hexUpper[id>>8&0xF], hexUpper[id>>4&0xF], hexUpper[id&0xF])
	}

	dst = append(dst, '0'+f.Len)
	for _, b := range f.Data[:f.Len] {
		dst = append(dst, hexUpper[b>>4], hexUpper[b&0xF])
	}
	return append(dst, termCR)
}

// Unmarshal decodes one ASCII line into a frame. The line may carry a
// leading address digit and may or may not include the terminator; the
// returned address is 0 when no digit is present. Trailing characters past
// the payload (some adapters append a timestamp) are ignored.
//
// Any structural violation yields ErrMalformedLine (or a more specific
// codec error) with no partial result.
func Unmarshal(line []byte) (Frame, int, error) {
	var f Frame

	if n := len(line); n > 0 && (line[n-1] == termCR || line[n-1] == termBEL) {
		line = line[:n-1]
	}

	addr := 0
	if len(line) > 0 && line[0] >= '0' && line[0] <= '9' {
		addr = int(line[0] - '0')
		line = line[1:]
	}

	if len(line) < minLineLen {
		return Frame{}, 0, ErrMalformedLine
	}

	cmd := line[0]
	switch cmd {
	case 't', 'T', 'r', 'R':
	default:
		return Frame{}, 0, ErrMalformedLine
	}
	f.Extended = cmd&0x20 == 0
	f.RTR = cmd|0x20 == 'r'

	idLen := 3
	if f.Extended {
		idLen = 8
	}
	dlcPos := 1 + idLen
	if len(line) <= dlcPos {
		return Frame{}, 0, ErrMalformedLine
	}

	var id uint32
	for _, c := range line[1:dlcPos] {
		v := hexVal(c)
		if v < 0 {
			return Frame{}, 0, ErrMalformedLine
		}
		id = id<<4 | uint32(v)
	}
	f.ID = id

	if line[dlcPos] < '0' || line[dlcPos] > '8' {
		return Frame{}, 0, ErrMalformedLine
	}
	f.Len = line[dlcPos] - '0'

	data := line[dlcPos+1:]
	if len(data) < 2*int(f.Len) {
		return Frame{}, 0, ErrMalformedLine
	}
	for i := 0; i < int(f.Len); i++ {
		hi := hexVal(data[2*i])
		lo := hexVal(data[2*i+1])
		if hi < 0 || lo < 0 {
			return Frame{}, 0, ErrMalformedLine
		}
		f.Data[i] = byte(hi<<4 | lo)
	}

	// Three hex digits can express more than 11 bits (and eight more than
	// 29); reject those so every decoded frame satisfies Validate.
	if err := f.Validate(); err != nil {
		return Frame{}, 0, err
	}
	return f, addr, nil
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
