// FilePath: internal/sui/bcs.go
package sui

import (
	"encoding/binary"
	"fmt"
)

// Minimal BCS (Binary Canonical Serialization) support for the transaction
// shapes this system emits. BCS has no schema or framing: writer and reader
// must agree on field order, which is exactly the determinism the external
// signing path depends on.

type bcsWriter struct {
	buf []byte
}

func newBCSWriter() *bcsWriter {
	return &bcsWriter{buf: make([]byte, 0, 512)}
}

func (w *bcsWriter) bytes() []byte {
	return w.buf
}

func (w *bcsWriter) writeU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *bcsWriter) writeU16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *bcsWriter) writeU64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *bcsWriter) writeBool(v bool) {
	if v {
		w.writeU8(1)
		return
	}
	w.writeU8(0)
}

// writeULEB emits an unsigned LEB128 length or variant index
func (w *bcsWriter) writeULEB(v uint64) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

func (w *bcsWriter) writeFixed(b []byte) {
	w.buf = append(w.buf, b...)
}

// writeVec emits a ULEB128 length prefix followed by the raw bytes
func (w *bcsWriter) writeVec(b []byte) {
	w.writeULEB(uint64(len(b)))
	w.writeFixed(b)
}

func (w *bcsWriter) writeString(s string) {
	w.writeVec([]byte(s))
}

type bcsReader struct {
	buf []byte
	pos int
}

func newBCSReader(b []byte) *bcsReader {
	return &bcsReader{buf: b}
}

func (r *bcsReader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *bcsReader) readU8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, fmt.Errorf("bcs: truncated at offset %d reading u8", r.pos)
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *bcsReader) readU16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, fmt.Errorf("bcs: truncated at offset %d reading u16", r.pos)
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *bcsReader) readU64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, fmt.Errorf("bcs: truncated at offset %d reading u64", r.pos)
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *bcsReader) readBool() (bool, error) {
	v, err := r.readU8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("bcs: invalid bool byte 0x%02x at offset %d", v, r.pos-1)
	}
}

func (r *bcsReader) readULEB() (uint64, error) {
	var v uint64
	var shift uint
	for {
		b, err := r.readU8()
		if err != nil {
			return 0, err
		}
		// At shift 63 only the low bit still fits in 64 bits
		if shift == 63 && b > 1 {
			return 0, fmt.Errorf("bcs: uleb128 overflow at offset %d", r.pos)
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			if b == 0 && shift > 0 {
				return 0, fmt.Errorf("bcs: non-canonical uleb128 at offset %d", r.pos)
			}
			return v, nil
		}
		shift += 7
		if shift > 63 {
			return 0, fmt.Errorf("bcs: uleb128 overflow at offset %d", r.pos)
		}
	}
}

func (r *bcsReader) readFixed(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("bcs: truncated at offset %d reading %d bytes", r.pos, n)
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *bcsReader) readVec() ([]byte, error) {
	n, err := r.readULEB()
	if err != nil {
		return nil, err
	}
	// Compare before converting: a length with bit 63 set would turn into
	// a negative int and slip past the remaining-bytes check.
	if n > uint64(r.remaining()) {
		return nil, fmt.Errorf("bcs: length %d exceeds %d remaining bytes at offset %d", n, r.remaining(), r.pos)
	}
	return r.readFixed(int(n))
}

func (r *bcsReader) readString() (string, error) {
	b, err := r.readVec()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
