package components

import (
	"bytes"
	"testing"

	"github.com/allbin/go-slcan"
)

func TestParseFrameText(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    slcan.Frame
		wantErr bool
	}{
		{
			name: "standard with data",
			in:   "123#DEADBEEF",
			want: slcan.Frame{ID: 0x123, Len: 4, Data: [8]byte{0xDE, 0xAD, 0xBE, 0xEF}},
		},
		{
			name: "extended",
			in:   "1ABCDEFF#0011",
			want: slcan.Frame{ID: 0x1ABCDEFF, Extended: true, Len: 2, Data: [8]byte{0x00, 0x11}},
		},
		{
			name: "dotted data",
			in:   "123#DE.AD",
			want: slcan.Frame{ID: 0x123, Len: 2, Data: [8]byte{0xDE, 0xAD}},
		},
		{
			name: "remote",
			in:   "123#R",
			want: slcan.Frame{ID: 0x123, RTR: true},
		},
		{
			name: "remote with length",
			in:   "123#R4",
			want: slcan.Frame{ID: 0x123, RTR: true, Len: 4},
		},
		{
			name: "empty payload",
			in:   "7FF#",
			want: slcan.Frame{ID: 0x7FF},
		},
		{name: "missing separator", in: "123DEAD", wantErr: true},
		{name: "odd hex", in: "123#DEA", wantErr: true},
		{name: "payload too long", in: "123#00112233445566778899", wantErr: true},
		{name: "bad identifier", in: "XYZ#00", wantErr: true},
		{name: "standard id out of range", in: "800#00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrameText(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFrameText(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFrameText(%q) failed: %v", tt.in, err)
			}
			if got.ID != tt.want.ID || got.Extended != tt.want.Extended ||
				got.RTR != tt.want.RTR || got.Len != tt.want.Len ||
				!bytes.Equal(got.Data[:], tt.want.Data[:]) {
				t.Errorf("ParseFrameText(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFrameInputHistory(t *testing.T) {
	in := NewFrameInput()

	in.AddToHistory("123#00")
	in.AddToHistory("123#00") // duplicate, skipped
	in.AddToHistory("456#11")

	if len(in.history) != 2 {
		t.Fatalf("history length = %d, want 2", len(in.history))
	}

	in.SetValue("789#")
	in.NavigateHistoryUp()
	if got := in.Value(); got != "456#11" {
		t.Errorf("after up: %q, want %q", got, "456#11")
	}
	in.NavigateHistoryUp()
	if got := in.Value(); got != "123#00" {
		t.Errorf("after second up: %q, want %q", got, "123#00")
	}
	in.NavigateHistoryDown()
	in.NavigateHistoryDown()
	if got := in.Value(); got != "789#" {
		t.Errorf("after returning down: %q, want %q", got, "789#")
	}
}
