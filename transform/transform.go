// Package transform implements PACKR's outer back-end transform: a one-byte
// marker prefixed to a serialized frame, selecting raw passthrough, LZ77,
// Huffman, a combination of the two, or (decode-only) one of two legacy
// formats an older encoder could have produced.
package transform

import (
	"github.com/jaylikesbunda/packr/endian"
	"github.com/jaylikesbunda/packr/format"
)

// Outer marker bytes.
const (
	MarkerRaw         = format.MarkerRaw
	MarkerLZ77        = format.MarkerLZ77
	MarkerHuffman     = format.MarkerHuffman
	MarkerLZHuffman   = format.MarkerLZHuffman // LZ77 applied, then Huffman over its output
	MarkerHuffmanLZ   = format.MarkerHuffmanLZ // Huffman applied, then LZ77 over its output
	MarkerLegacyMTF   = format.MarkerLegacyMTF
	MarkerLegacyFlate = format.MarkerLegacyFlate

	// minCompressCandidate is the largest serialized frame size that is
	// never compressed: only frames longer than this are tried.
	minCompressCandidate = 20
)

// le is the byte order every multi-byte length field in the outer transform
// is packed with.
var le = endian.GetLittleEndianEngine()

// Compress wraps frame bytes with the outer transform. When enabled is false
// or data is too small to bother, it emits the raw passthrough marker.
// Otherwise it tries LZ77 alone, Huffman alone over the raw bytes, and
// Huffman over LZ77's output, and keeps whichever candidate is smallest —
// falling back to raw if nothing beats it.
func Compress(data []byte, enabled bool) []byte {
	if !enabled || len(data) <= minCompressCandidate {
		return wrapRaw(data)
	}

	best := wrapRaw(data)
	bestLen := len(best)

	lz := lz77Encode(data)
	if lz != nil && 1+len(lz) < bestLen {
		best = append(append(make([]byte, 0, 1+len(lz)), byte(MarkerLZ77)), lz...)
		bestLen = len(best)
	}

	huff := huffmanEncode(data)
	if huff != nil && 1+len(huff) < bestLen {
		best = append(append(make([]byte, 0, 1+len(huff)), byte(MarkerHuffman)), huff...)
		bestLen = len(best)
	}

	if lz != nil {
		lzHuff := huffmanEncode(lz)
		if lzHuff != nil && 1+len(lzHuff) < bestLen {
			best = append(append(make([]byte, 0, 1+len(lzHuff)), byte(MarkerLZHuffman)), lzHuff...)
		}
	}

	return best
}

func wrapRaw(data []byte) []byte {
	out := make([]byte, 0, 5+len(data))
	out = append(out, byte(MarkerRaw))
	out = le.AppendUint32(out, uint32(len(data)))

	return append(out, data...)
}

// Decompress strips outer transform markers iteratively until the remaining
// bytes are unmarked (the start of a frame), applying each recognized
// transform's inverse along the way.
func Decompress(data []byte) ([]byte, error) {
	for len(data) > 0 {
		switch format.Marker(data[0]) {
		case MarkerRaw:
			if len(data) < 5 {
				return nil, errTruncated("raw marker header")
			}
			n := int(le.Uint32(data[1:5]))
			if 5+n > len(data) {
				return nil, errTruncated("raw payload")
			}
			data = data[5 : 5+n]

		case MarkerLZ77:
			body, err := lz77Decode(data[1:])
			if err != nil {
				return nil, err
			}
			data = body

		case MarkerHuffman:
			body, err := huffmanDecode(data[1:])
			if err != nil {
				return nil, err
			}
			data = body

		case MarkerLZHuffman:
			body, err := huffmanDecode(data[1:])
			if err != nil {
				return nil, err
			}
			body, err = lz77Decode(body)
			if err != nil {
				return nil, err
			}
			data = body

		case MarkerHuffmanLZ:
			body, err := lz77Decode(data[1:])
			if err != nil {
				return nil, err
			}
			body, err = huffmanDecode(body)
			if err != nil {
				return nil, err
			}
			data = body

		case MarkerLegacyMTF:
			if len(data) >= 2 && isModernMarker(data[1]) {
				data = data[1:]
				continue
			}
			body, err := legacyMTFRLEDecode(data[1:])
			if err != nil {
				return nil, err
			}
			data = body

		case MarkerLegacyFlate:
			body, err := legacyInflateDecode(data[1:])
			if err != nil {
				return nil, err
			}
			data = body

		default:
			return data, nil
		}
	}

	return data, nil
}

func isModernMarker(b byte) bool {
	switch format.Marker(b) {
	case MarkerRaw, MarkerLZ77, MarkerHuffman, MarkerLZHuffman, MarkerHuffmanLZ:
		return true
	default:
		return false
	}
}
