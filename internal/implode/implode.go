// Package implode produces PKWare "implode" bitstreams decodable by the
// engine's streaming blast decompressor. The encoder emits every input
// byte as an uncoded literal and never attempts back-references, so each
// output stream round-trips exactly and its size is computable in closed
// form: 2 header bytes, 9 bits per input byte, a 16-bit end marker.
package implode

// Header values fixed by the target decompressor's expectations for scene
// containers: uncoded 8-bit literals and a 4 KiB sliding dictionary.
const (
	litUncoded = 0
	dictSize   = 6 // window = 1 << (dictSize + 6)
)

type bitWriter struct {
	buf []byte
	acc uint64
	n   uint8
}

func (w *bitWriter) writeBits(v uint64, bits uint8) {
	w.acc |= (v & ((1 << bits) - 1)) << w.n
	w.n += bits
	for w.n >= 8 {
		w.buf = append(w.buf, byte(w.acc&0xFF))
		w.acc >>= 8
		w.n -= 8
	}
}

// bytes flushes any partial byte, zero-padded in the high bits.
func (w *bitWriter) bytes() []byte {
	if w.n > 0 {
		w.buf = append(w.buf, byte(w.acc&0xFF))
		w.acc = 0
		w.n = 0
	}
	return w.buf
}

// writeLengthSymbol emits a length-alphabet symbol. The stored code is the
// bit-reversed canonical code; the stream carries each code bit
// complemented, so the whole code is complemented at emission.
func (w *bitWriter) writeLengthSymbol(sym int) {
	c := lengthTable[sym]
	w.writeBits(uint64(^c.Code), c.Bits)
}

// Compress encodes data as a literal-only implode stream. It is total
// over all inputs; empty input yields just the header and end marker.
func Compress(data []byte) []byte {
	w := &bitWriter{buf: make([]byte, 0, len(data)+len(data)/8+4)}

	// The two header fields are part of the bitstream, each read by the
	// decompressor as a plain 8-bit value.
	w.writeBits(litUncoded, 8)
	w.writeBits(dictSize, 8)

	// Marker bit 0 = literal, then the 8 data bits in natural order.
	for _, b := range data {
		w.writeBits(0, 1)
		w.writeBits(uint64(b), 8)
	}

	// Marker bit 1 = match, then length symbol 15 with all extra bits
	// set, which the decompressor reads as length 519 and stops.
	w.writeBits(1, 1)
	w.writeLengthSymbol(15)
	w.writeBits(uint64(endOfStreamLength-lengthBase[15]), lengthExtra[15])

	return w.bytes()
}

// CompressedSize returns len(Compress(data)) for an input of n bytes
// without building the stream.
func CompressedSize(n int) int {
	bits := 16 + 9*n + 1 + int(lengthTable[15].Bits) + int(lengthExtra[15])
	return (bits + 7) / 8
}
