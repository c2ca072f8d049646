package binio

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding/charmap"
)

// Writer appends little-endian values to a growing buffer. String encoding
// failures (non-Latin-1 runes, oversized names) are sticky and reported by
// Err, so encode paths stay linear.
type Writer struct {
	buf []byte
	err error
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 4096)}
}

func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) Err() error { return w.err }

func (w *Writer) U8(v byte) { w.buf = append(w.buf, v) }

func (w *Writer) I16(v int16) { w.U16(uint16(v)) }

func (w *Writer) U16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) I32(v int32) { w.U32(uint32(v)) }

func (w *Writer) U32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

func (w *Writer) Pad(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

// Str writes s as a fixed-width null-padded ISO 8859-1 field of n bytes.
func (w *Writer) Str(s string, n int) {
	enc, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil && w.err == nil {
		w.err = fmt.Errorf("binio: string %q not representable in Latin-1: %w", s, err)
	}
	if len(enc) > n {
		if w.err == nil {
			w.err = fmt.Errorf("binio: string %q longer than %d-byte field", s, n)
		}
		enc = enc[:n]
	}
	w.buf = append(w.buf, enc...)
	w.Pad(n - len(enc))
}

// PadTo zero-fills up to an absolute offset. Writing past it is an error.
func (w *Writer) PadTo(off int) {
	if len(w.buf) > off {
		if w.err == nil {
			w.err = fmt.Errorf("binio: buffer length %d already past offset %d", len(w.buf), off)
		}
		return
	}
	w.Pad(off - len(w.buf))
}
