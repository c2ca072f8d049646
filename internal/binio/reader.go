// Package binio provides bounds-checked little-endian cursor access to
// in-memory container buffers. The reader records the first truncation it
// hits together with the section being read, so decode errors name the
// exact spot in the file.
package binio

import (
	"encoding/binary"
	"math"

	"golang.org/x/text/encoding/charmap"

	"arx-asset-codec/internal/codecerr"
)

// Reader walks a byte buffer with a monotonically advancing offset.
// After a short read every subsequent call returns zero values; the first
// failure is kept and reported by Err.
type Reader struct {
	data    []byte
	off     int
	section string
	err     error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data, section: "header"}
}

// Section names the part of the file being read. It is reported in
// truncation errors and by warnings raised on values read afterwards.
func (r *Reader) Section(name string) { r.section = name }

func (r *Reader) SectionName() string { return r.section }

func (r *Reader) Offset() int { return r.off }

func (r *Reader) Remaining() int { return len(r.data) - r.off }

func (r *Reader) Err() error { return r.err }

func (r *Reader) fail(need int) {
	if r.err == nil {
		r.err = &codecerr.TruncationError{
			Section: r.section,
			Offset:  r.off,
			Need:    need,
			Have:    len(r.data) - r.off,
		}
	}
	r.off = len(r.data)
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.fail(n)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) Skip(n int) { r.take(n) }

func (r *Reader) Bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (r *Reader) U8() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) I16() int16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(b))
}

func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) I32() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) F32() float32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// Str reads a fixed-width null-padded ISO 8859-1 string of n bytes.
func (r *Reader) Str(n int) string {
	b := r.take(n)
	if b == nil {
		return ""
	}
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		// ISO 8859-1 decoding is total over bytes; unreachable.
		return string(b)
	}
	return string(s)
}

// Count reads an i32 count and validates it against the bytes left in the
// buffer, assuming each counted record occupies at least recordSize bytes.
// A negative or impossible count fails the decode with a FormatError.
func (r *Reader) Count(what string, recordSize int) (int, error) {
	off := r.off
	n := r.I32()
	if r.err != nil {
		return 0, r.err
	}
	if n < 0 {
		return 0, codecerr.Formatf(r.section, off, "negative %s count %d", what, n)
	}
	if recordSize > 0 && int(n) > r.Remaining()/recordSize {
		return 0, codecerr.Formatf(r.section, off,
			"%s count %d exceeds remaining buffer (%d bytes)", what, n, r.Remaining())
	}
	return int(n), nil
}
