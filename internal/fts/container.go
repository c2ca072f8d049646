package fts

import (
	"arx-asset-codec/internal/binio"
	"arx-asset-codec/internal/codecerr"
	"arx-asset-codec/internal/implode"
)

// Outer container layout: a primary header plus `count` secondary
// headers. The engine's own writer truncates the header block to 1040
// bytes (0x410) and zero-pads up to 1816 (0x718), where the imploded
// payload begins; the reader skips by declared record sizes, which for
// the shipped count of 2 also lands on 1816.
const (
	primaryHeaderSize   = 256 + 4 + 4 + 4 + 3*4
	secondaryHeaderSize = 256 + 512
	headerBlockSize     = 0x410
	payloadOffset       = 0x718

	containerPath  = "Level\\FTS"
	secondaryPath  = "fast.fts"
	secondaryCheck = "DANAE_FILE"
)

// ContainerInfo is the outer header summary, readable without
// decompressing the payload.
type ContainerInfo struct {
	Path             string
	SecondaryCount   int
	Version          float32
	UncompressedSize int32
	CompressedSize   int
}

// ReadContainerInfo parses just the outer headers of a scene file.
func ReadContainerInfo(raw []byte) (ContainerInfo, error) {
	r := binio.NewReader(raw)
	r.Section("container header")
	info := ContainerInfo{Path: r.Str(256)}
	count, err := r.Count("secondary header", secondaryHeaderSize)
	if err != nil {
		return ContainerInfo{}, err
	}
	info.SecondaryCount = count
	info.Version = r.F32()
	info.UncompressedSize = r.I32()
	r.Skip(3 * 4)
	r.Skip(count * secondaryHeaderSize)
	if err := r.Err(); err != nil {
		return ContainerInfo{}, err
	}
	info.CompressedSize = r.Remaining()
	return info, nil
}

// Decompressor expands an imploded payload. The codec only compresses;
// decompression is supplied by the caller (the engine's blast routine or
// an equivalent).
type Decompressor func([]byte) ([]byte, error)

// DecodeContainer parses a complete scene file: outer headers, imploded
// payload, then the scene payload itself.
func DecodeContainer(raw []byte, decompress Decompressor) (*Scene, []codecerr.Warning, error) {
	r := binio.NewReader(raw)
	r.Section("container header")
	r.Skip(256) // path
	count, err := r.Count("secondary header", secondaryHeaderSize)
	if err != nil {
		return nil, nil, err
	}
	r.Skip(4) // version
	uncompressedSize := r.I32()
	r.Skip(3 * 4) // padding
	r.Skip(count * secondaryHeaderSize)
	if err := r.Err(); err != nil {
		return nil, nil, err
	}

	payload, err := decompress(raw[r.Offset():])
	if err != nil {
		return nil, nil, codecerr.Formatf("container payload", r.Offset(), "decompress: %v", err)
	}

	s, warns, err := Decode(payload)
	if err != nil {
		return nil, nil, err
	}
	if int(uncompressedSize) != len(payload) {
		warns = append(warns, codecerr.Warnf("container header", 0,
			"header declares %d uncompressed bytes, payload has %d", uncompressedSize, len(payload)))
	}
	return s, warns, nil
}

// EncodeContainer serializes a complete scene file with a freshly
// imploded payload.
func EncodeContainer(s *Scene) ([]byte, []codecerr.Warning, error) {
	payload, warns, err := Encode(s)
	if err != nil {
		return nil, nil, err
	}
	compressed := implode.Compress(payload)

	w := binio.NewWriter()
	w.Str(containerPath, 256)
	w.I32(2) // secondary header count
	w.F32(sceneVersion)
	w.I32(int32(len(payload)))
	w.Pad(3 * 4)
	w.Str(secondaryPath, 256)
	w.Str(secondaryCheck, 512)
	if err := w.Err(); err != nil {
		return nil, nil, err
	}

	// Truncate the header block to its fixed size, then pad to the
	// payload offset.
	buf := w.Bytes()
	if len(buf) > headerBlockSize {
		buf = buf[:headerBlockSize]
	}
	out := make([]byte, payloadOffset, payloadOffset+len(compressed))
	copy(out, buf)
	return append(out, compressed...), warns, nil
}
