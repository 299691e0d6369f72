// FilePath: internal/sui/bcs_test.go
package sui

import (
	"bytes"
	"testing"
)

func TestReadULEB(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  uint64
		ok    bool
	}{
		{"zero", []byte{0x00}, 0, true},
		{"single byte max", []byte{0x7f}, 127, true},
		{"two bytes", []byte{0x80, 0x01}, 128, true},
		{"top bit set", append(bytes.Repeat([]byte{0x80}, 9), 0x01), 1 << 63, true},
		{"truncated", []byte{0x80}, 0, false},
		{"non-canonical zero", []byte{0x80, 0x00}, 0, false},
		{"tenth byte past u64", append(bytes.Repeat([]byte{0x80}, 9), 0x02), 0, false},
		{"eleven bytes", append(bytes.Repeat([]byte{0x80}, 10), 0x01), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newBCSReader(tt.input).readULEB()
			if tt.ok {
				if err != nil {
					t.Fatalf("readULEB(% x) failed: %v", tt.input, err)
				}
				if got != tt.want {
					t.Errorf("readULEB(% x) = %d, want %d", tt.input, got, tt.want)
				}
				return
			}
			if err == nil {
				t.Errorf("readULEB(% x) = %d, want error", tt.input, got)
			}
		})
	}
}

func TestReadVecOversizedLength(t *testing.T) {
	// Length claims far more bytes than the buffer holds, including a
	// value whose int conversion would go negative.
	inputs := [][]byte{
		append([]byte{0xff, 0x01}, 0xaa), // length 255, 1 byte left
		append(append([]byte{}, bytes.Repeat([]byte{0x80}, 9)...), 0x01, 0xaa), // length 1<<63
	}
	for _, in := range inputs {
		if _, err := newBCSReader(in).readVec(); err == nil {
			t.Errorf("readVec(% x) should fail, not read past the buffer", in)
		}
	}
}

func TestDecodeOversizedPureLength(t *testing.T) {
	// A V1 programmable transaction whose first pure payload declares a
	// length with bit 63 set. Decoding must return an error, never panic.
	txBytes := []byte{0x00, 0x00, 0x08, 0x00}
	txBytes = append(txBytes, bytes.Repeat([]byte{0x80}, 9)...)
	txBytes = append(txBytes, 0x01)

	if _, err := DecodeSensorTransaction(txBytes); err == nil {
		t.Fatal("oversized pure payload length should not decode")
	}
}

func TestWriteReadULEBRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 16383, 16384, 1 << 32, 1<<64 - 1}
	for _, v := range values {
		w := newBCSWriter()
		w.writeULEB(v)
		got, err := newBCSReader(w.bytes()).readULEB()
		if err != nil {
			t.Fatalf("readULEB of encoded %d failed: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip of %d = %d", v, got)
		}
	}
}
