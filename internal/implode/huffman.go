package implode

// Length-code alphabet used by the PKWare "implode" bitstream. The
// decompressor hard-codes the code-length distribution; we rebuild the
// matching canonical table so the encoder can emit length symbols, most
// importantly the end-of-stream marker.

// lenLengths is the packed code-length distribution for the 16-symbol
// length alphabet: low nibble = code length, high nibble = repeat-1.
var lenLengths = [6]byte{2, 35, 36, 53, 38, 23}

// lengthBase and lengthExtra give, per length symbol, the base match
// length and the number of extra bits that follow the symbol.
var (
	lengthBase  = [16]int{3, 2, 4, 5, 6, 7, 8, 9, 10, 12, 16, 24, 40, 72, 136, 264}
	lengthExtra = [16]uint8{0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8}
)

// endOfStreamLength is the match length the decompressor treats as the
// end-of-stream marker: symbol 15 with all extra bits set.
const endOfStreamLength = 519

// lengthCode is one entry of the canonical length table. Code holds the
// bit-reversed canonical code: reading its bits LSB-first yields the
// canonical code MSB-first, which is the order the decompressor consumes.
type lengthCode struct {
	Code uint16
	Bits uint8
}

// lengthTable is built once at startup and never mutated.
var lengthTable = buildLengthTable()

func expandLengths(packed []byte) []uint8 {
	var lengths []uint8
	for _, p := range packed {
		n := int(p>>4) + 1
		l := p & 15
		for i := 0; i < n; i++ {
			lengths = append(lengths, l)
		}
	}
	return lengths
}

// buildLengthTable assigns canonical codes (shorter codes first, symbol
// order breaking ties) and stores each code bit-reversed.
func buildLengthTable() [16]lengthCode {
	lengths := expandLengths(lenLengths[:])

	var table [16]lengthCode
	maxLen := uint8(0)
	for _, l := range lengths {
		if l > maxLen {
			maxLen = l
		}
	}

	code := uint16(0)
	for bits := uint8(1); bits <= maxLen; bits++ {
		for sym, l := range lengths {
			if l != bits {
				continue
			}
			table[sym] = lengthCode{Code: reverseBits(code, bits), Bits: bits}
			code++
		}
		code <<= 1
	}
	return table
}

func reverseBits(v uint16, n uint8) uint16 {
	var out uint16
	for i := uint8(0); i < n; i++ {
		if v&(1<<i) != 0 {
			out |= 1 << (n - 1 - i)
		}
	}
	return out
}
