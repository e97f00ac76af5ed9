package slcan

import (
	"bytes"
	"errors"
	"testing"
)

func TestUnmarshalScenarios(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Frame
		addr int
	}{
		{
			name: "standard no data",
			line: "t1230\r",
			want: Frame{ID: 0x123},
		},
		{
			name: "standard with data",
			line: "t4563112233\r",
			want: Frame{ID: 0x456, Len: 3, Data: [8]byte{0x11, 0x22, 0x33}},
		},
		{
			name: "extended with data",
			line: "T12ABCDEF2AA55\r",
			want: Frame{ID: 0x12ABCDEF, Extended: true, Len: 2, Data: [8]byte{0xAA, 0x55}},
		},
		{
			name: "standard RTR",
			line: "r1230\r",
			want: Frame{ID: 0x123, RTR: true},
		},
		{
			name: "extended RTR",
			line: "R000001230\r",
			want: Frame{ID: 0x123, Extended: true, RTR: true},
		},
		{
			name: "BEL terminator",
			line: "t1230\a",
			want: Frame{ID: 0x123},
		},
		{
			name: "no terminator",
			line: "t1230",
			want: Frame{ID: 0x123},
		},
		{
			name: "lowercase hex accepted",
			line: "t0ab2cdef\r",
			want: Frame{ID: 0x0AB, Len: 2, Data: [8]byte{0xCD, 0xEF}},
		},
		{
			name: "address digit",
			line: "5t1230\r",
			want: Frame{ID: 0x123},
			addr: 5,
		},
		{
			name: "address zero",
			line: "0t1230\r",
			want: Frame{ID: 0x123},
		},
		{
			name: "trailing timestamp ignored",
			line: "t1230EA5F\r",
			want: Frame{ID: 0x123},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, addr, err := Unmarshal([]byte(tt.line))
			if err != nil {
				t.Fatalf("Unmarshal(%q) error = %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("Unmarshal(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
			if addr != tt.addr {
				t.Errorf("Unmarshal(%q) addr = %d, want %d", tt.line, addr, tt.addr)
			}
		})
	}
}

func TestUnmarshalRejects(t *testing.T) {
	tests := []struct {
		name string
		line string
		err  error
	}{
		{"empty", "", ErrMalformedLine},
		{"terminator only", "\r", ErrMalformedLine},
		{"unknown type", "x1230\r", ErrMalformedLine},
		{"short standard", "t123\r", ErrMalformedLine},
		{"short extended", "T1230\r", ErrMalformedLine},
		{"dlc nine", "t1239\r", ErrMalformedLine},
		{"dlc not a digit", "t123x\r", ErrMalformedLine},
		{"non-hex id", "t1G30\r", ErrMalformedLine},
		{"non-hex data", "t45631122GG\r", ErrMalformedLine},
		{"truncated data", "t45631122\r", ErrMalformedLine},
		{"missing dlc", "t123\r", ErrMalformedLine},
		{"standard id above 11 bits", "tFFF0\r", ErrInvalidID},
		{"extended id above 29 bits", "TFFFFFFFF0\r", ErrInvalidID},
		{"bare address digit", "5\r", ErrMalformedLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Unmarshal([]byte(tt.line))
			if !errors.Is(err, tt.err) {
				t.Errorf("Unmarshal(%q) error = %v, want %v", tt.line, err, tt.err)
			}
		})
	}
}

func TestMarshal(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		addr  int
		mux   bool
		want  string
	}{
		{
			name:  "standard no data",
			frame: Frame{ID: 0x123},
			want:  "t1230\r",
		},
		{
			name:  "standard with data",
			frame: Frame{ID: 0x456, Len: 3, Data: [8]byte{0x11, 0x22, 0x33}},
			want:  "t4563112233\r",
		},
		{
			name:  "extended",
			frame: Frame{ID: 0x12ABCDEF, Extended: true, Len: 2, Data: [8]byte{0xAA, 0x55}},
			want:  "T12ABCDEF2AA55\r",
		},
		{
			name:  "standard RTR",
			frame: Frame{ID: 0x123, RTR: true},
			want:  "r1230\r",
		},
		{
			name:  "extended RTR",
			frame: Frame{ID: 0x123, Extended: true, RTR: true},
			want:  "R000001230\r",
		},
		{
			name:  "mux address prefix",
			frame: Frame{ID: 0x123},
			addr:  3,
			mux:   true,
			want:  "3t1230\r",
		},
		{
			name:  "mux address zero",
			frame: Frame{ID: 0x7FF, Len: 1, Data: [8]byte{0xFF}},
			mux:   true,
			want:  "0t7FF1FF\r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.frame, tt.addr, tt.mux)
			if err != nil {
				t.Fatalf("Marshal error = %v", err)
			}
			if !bytes.Equal(got, []byte(tt.want)) {
				t.Errorf("Marshal = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarshalRejects(t *testing.T) {
	if _, err := Marshal(Frame{ID: 0x800}, 0, false); !errors.Is(err, ErrInvalidID) {
		t.Errorf("standard id above range: error = %v, want %v", err, ErrInvalidID)
	}
	if _, err := Marshal(Frame{ID: 0x2000_0000, Extended: true}, 0, false); !errors.Is(err, ErrInvalidID) {
		t.Errorf("extended id above range: error = %v, want %v", err, ErrInvalidID)
	}
	if _, err := Marshal(Frame{ID: 1, Len: 9}, 0, false); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("length above 8: error = %v, want %v", err, ErrInvalidLength)
	}
	if _, err := Marshal(Frame{ID: 1}, 10, true); !errors.Is(err, ErrInvalidAddr) {
		t.Errorf("address above range: error = %v, want %v", err, ErrInvalidAddr)
	}
}

func TestRoundTrip(t *testing.T) {
	frames := []Frame{
		{},
		{ID: 0x123, Len: 3, Data: [8]byte{0x11, 0x22, 0x33}},
		{ID: MaxStandardID, Len: 8, Data: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{ID: 0x123, RTR: true},
		{ID: 0x12ABCDEF, Extended: true, Len: 2, Data: [8]byte{0xAA, 0x55}},
		{ID: MaxExtendedID, Extended: true, RTR: true, Len: 1, Data: [8]byte{0xFF}},
		{ID: 0, Extended: true},
	}

	for _, f := range frames {
		for addr := 0; addr < 10; addr += 3 {
			for _, mux := range []bool{false, true} {
				a := addr
				if !mux {
					a = 0
				}
				line, err := Marshal(f, a, mux)
				if err != nil {
					t.Fatalf("Marshal(%+v, %d, %v) error = %v", f, a, mux, err)
				}
				got, gotAddr, err := Unmarshal(line)
				if err != nil {
					t.Fatalf("Unmarshal(%q) error = %v", line, err)
				}
				if got != f {
					t.Errorf("round trip %q: got %+v, want %+v", line, got, f)
				}
				if gotAddr != a {
					t.Errorf("round trip %q: addr = %d, want %d", line, gotAddr, a)
				}
			}
		}
	}
}
