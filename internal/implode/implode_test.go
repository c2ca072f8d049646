package implode

import (
	"bytes"
	"math/rand"
	"testing"
)

// Reference decompressor mirroring the engine's streaming blast decoder,
// used to prove the encoder's streams are accepted and reproduce the
// input. Supports the full format (coded lengths, back-references) even
// though the encoder only ever emits literals.

type bitReader struct {
	data []byte
	acc  uint64
	n    uint8
	pos  int
}

func (r *bitReader) bits(t *testing.T, n uint8) int {
	t.Helper()
	for r.n < n {
		if r.pos >= len(r.data) {
			t.Fatalf("reference decoder: bitstream exhausted at byte %d", r.pos)
		}
		r.acc |= uint64(r.data[r.pos]) << r.n
		r.n += 8
		r.pos++
	}
	v := r.acc & ((1 << n) - 1)
	r.acc >>= n
	r.n -= n
	return int(v)
}

type refHuffman struct {
	count  [16]int
	symbol []int
}

func newRefHuffman(packed []byte) refHuffman {
	lengths := expandLengths(packed)
	h := refHuffman{symbol: make([]int, len(lengths))}
	for _, l := range lengths {
		h.count[l]++
	}
	var offs [16]int
	for l := 1; l < 15; l++ {
		offs[l+1] = offs[l] + h.count[l]
	}
	for sym, l := range lengths {
		if l != 0 {
			h.symbol[offs[l]] = sym
			offs[l]++
		}
	}
	return h
}

// decode reads one symbol. Stream bits arrive complemented, most
// significant code bit first.
func (h refHuffman) decode(t *testing.T, r *bitReader) int {
	t.Helper()
	code, first, index := 0, 0, 0
	for l := 1; l < 16; l++ {
		code |= r.bits(t, 1) ^ 1
		count := h.count[l]
		if code-count < first {
			return h.symbol[index+code-first]
		}
		index += count
		first = (first + count) << 1
		code <<= 1
	}
	t.Fatal("reference decoder: ran out of codes")
	return -1
}

var refDistLengths = []byte{2, 20, 53, 230, 247, 151, 248}

func blastDecompress(t *testing.T, in []byte) []byte {
	t.Helper()
	r := &bitReader{data: in}

	lit := r.bits(t, 8)
	dict := r.bits(t, 8)
	if lit != 0 {
		t.Fatalf("reference decoder: coded literals not supported, lit=%d", lit)
	}
	if dict < 4 || dict > 6 {
		t.Fatalf("reference decoder: invalid dictionary size %d", dict)
	}

	lenCode := newRefHuffman(lenLengths[:])
	distCode := newRefHuffman(refDistLengths)

	var out []byte
	for {
		if r.bits(t, 1) == 0 {
			out = append(out, byte(r.bits(t, 8)))
			continue
		}
		sym := lenCode.decode(t, r)
		length := lengthBase[sym] + r.bits(t, lengthExtra[sym])
		if length == endOfStreamLength {
			return out
		}
		extra := uint8(dict)
		if length == 2 {
			extra = 2
		}
		dist := distCode.decode(t, r)<<extra + r.bits(t, extra) + 1
		if dist > len(out) {
			t.Fatalf("reference decoder: distance %d exceeds output length %d", dist, len(out))
		}
		for i := 0; i < length; i++ {
			out = append(out, out[len(out)-dist])
		}
	}
}

func TestCompressEmpty(t *testing.T) {
	got := Compress(nil)
	// lit=0, dict=6, then marker 1 + seven complemented code bits + eight
	// set extra bits: 0x01, 0xFF.
	want := []byte{0x00, 0x06, 0x01, 0xFF}
	if !bytes.Equal(got, want) {
		t.Fatalf("Compress(nil) = % x, want % x", got, want)
	}
	if out := blastDecompress(t, got); len(out) != 0 {
		t.Fatalf("decompressed %d bytes from empty stream", len(out))
	}
}

func TestCompressRoundTrip(t *testing.T) {
	allBytes := make([]byte, 256)
	for i := range allBytes {
		allBytes[i] = byte(i)
	}
	rng := rand.New(rand.NewSource(1))
	random := make([]byte, 10000)
	rng.Read(random)

	cases := map[string][]byte{
		"single zero": {0},
		"single 0xFF": {0xFF},
		"all values":  allBytes,
		"repetitive":  bytes.Repeat([]byte("abcabc"), 500),
		"random":      random,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			stream := Compress(in)
			out := blastDecompress(t, stream)
			if !bytes.Equal(out, in) {
				t.Fatalf("round trip mismatch: got %d bytes, want %d", len(out), len(in))
			}
		})
	}
}

func TestCompressedSize(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 255, 4096, 10001} {
		in := make([]byte, n)
		if got, want := len(Compress(in)), CompressedSize(n); got != want {
			t.Errorf("n=%d: len(Compress) = %d, CompressedSize = %d", n, got, want)
		}
	}
}

func TestLengthTableCanonical(t *testing.T) {
	lengths := expandLengths(lenLengths[:])
	if len(lengths) != 16 {
		t.Fatalf("expanded %d code lengths, want 16", len(lengths))
	}

	// The code must be complete: Kraft sum exactly 1.
	kraft := 0
	for _, l := range lengths {
		kraft += 1 << (15 - l)
	}
	if kraft != 1<<15 {
		t.Fatalf("code lengths not complete: kraft sum %d/32768", kraft)
	}

	// Reversing twice restores the canonical code, and canonical codes
	// must be strictly increasing across (length, symbol) order.
	prevLen, prevCode := uint8(0), -1
	for sym, l := range lengths {
		entry := lengthTable[sym]
		if entry.Bits != l {
			t.Fatalf("symbol %d: stored length %d, want %d", sym, entry.Bits, l)
		}
		canonical := int(reverseBits(entry.Code, entry.Bits))
		if l > prevLen {
			prevCode = prevCode << (l - prevLen)
			prevLen = l
		}
		if canonical <= prevCode {
			t.Fatalf("symbol %d: canonical code %d not increasing (prev %d)", sym, canonical, prevCode)
		}
		prevCode = canonical
	}
}

// Each length symbol's emitted bit pattern must decode back to itself
// through the reference decoder's table walk.
func TestLengthSymbolsDecode(t *testing.T) {
	for sym := 0; sym < 16; sym++ {
		w := &bitWriter{}
		w.writeLengthSymbol(sym)
		r := &bitReader{data: w.bytes()}
		h := newRefHuffman(lenLengths[:])
		if got := h.decode(t, r); got != sym {
			t.Errorf("symbol %d decoded as %d", sym, got)
		}
	}
}
