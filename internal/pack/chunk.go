// Package pack implements the XTG (1-bit) and XTH (2-bit) per-page chunk
// codecs of spec.md §4.5: bit packing, the 22-byte chunk header, and the
// page-size formula the container uses to pre-compute index offsets.
package pack

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/xtconv/xtconv/internal/xerrors"
)

// HeaderSize is the fixed size, in bytes, of the header prepended to every
// packed page chunk.
const HeaderSize = 22

// Magic values identifying a chunk's bit depth.
var (
	MagicXTG = [4]byte{'X', 'T', 'G', 0}
	MagicXTH = [4]byte{'X', 'T', 'H', 0}
)

// Header is the 22-byte chunk header described in spec.md §4.5.
type Header struct {
	Magic         [4]byte
	Width, Height uint16
	ColorMode     byte
	Compression   byte
	PayloadLen    uint32
	DigestPrefix  [8]byte
}

// digest computes an opaque, deterministic 8-byte content fingerprint of
// payload. Spec.md §9's open question treats this as any deterministic
// function usable for equality checks, not a specific hash algorithm; FNV-64a
// is the standard library's fast non-cryptographic option for exactly this.
func digest(payload []byte) [8]byte {
	h := fnv.New64a()
	h.Write(payload)
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], h.Sum64())
	return out
}

func writeHeader(magic [4]byte, w, h int, payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	copy(buf[0:4], magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], uint16(w))
	binary.LittleEndian.PutUint16(buf[6:8], uint16(h))
	buf[8] = 0 // colorMode
	buf[9] = 0 // compression
	binary.LittleEndian.PutUint32(buf[10:14], uint32(len(payload)))
	copy(buf[14:22], digest(payload)[:])
	copy(buf[22:], payload)
	return buf
}

// ParseHeader reads the 22-byte chunk header from the front of chunk. It
// returns xerrors.MalformedChunk if chunk is shorter than the header or the
// declared payload length overruns chunk's remaining bytes.
func ParseHeader(chunk []byte) (Header, []byte, error) {
	if len(chunk) < HeaderSize {
		return Header{}, nil, xerrors.Newf(xerrors.KindMalformedChunk, "chunk too short: %d bytes", len(chunk))
	}
	var hdr Header
	copy(hdr.Magic[:], chunk[0:4])
	hdr.Width = binary.LittleEndian.Uint16(chunk[4:6])
	hdr.Height = binary.LittleEndian.Uint16(chunk[6:8])
	hdr.ColorMode = chunk[8]
	hdr.Compression = chunk[9]
	hdr.PayloadLen = binary.LittleEndian.Uint32(chunk[10:14])
	copy(hdr.DigestPrefix[:], chunk[14:22])

	if hdr.Magic != MagicXTG && hdr.Magic != MagicXTH {
		return Header{}, nil, xerrors.Newf(xerrors.KindMalformedChunk, "unrecognized chunk magic %v", hdr.Magic)
	}

	end := HeaderSize + int(hdr.PayloadLen)
	if end > len(chunk) {
		return Header{}, nil, xerrors.Newf(xerrors.KindMalformedChunk,
			"declared payload length %d overruns chunk of %d bytes", hdr.PayloadLen, len(chunk))
	}

	return hdr, chunk[HeaderSize:end], nil
}

// Is2Bit reports whether hdr's magic identifies an XTH (2-bit) chunk.
func (h Header) Is2Bit() bool { return h.Magic == MagicXTH }

// GetPageSize computes the full chunk size (header + payload) for a page
// of dimensions (w,h) at the given bit depth, without packing any pixels —
// used by the container to pre-compute index offsets (spec.md §4.8).
func GetPageSize(w, h int, is2bit bool) int {
	if is2bit {
		return HeaderSize + 2*ceilDiv(h, 8)*w
	}
	return HeaderSize + ceilDiv(w, 8)*h
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
