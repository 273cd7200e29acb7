package transform

import (
	"bytes"
	"compress/flate"
	"io"

	"github.com/jaylikesbunda/packr/varint"
)

// legacyInflateDecode decodes a classic DEFLATE payload (marker 0xFF),
// supported for backward compatibility with streams produced by an older
// encoder that shelled out to a general-purpose compressor at the outer
// layer. Never produced by this package's own encode path.
func legacyInflateDecode(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errTruncated("legacy deflate payload")
	}

	return out, nil
}

// legacyMTFRLEDecode reverses a legacy move-to-front + zero-run-length
// payload (marker 0xFE, when not immediately followed by a modern marker
// byte). The body is a zero-RLE-compressed stream of MTF indices: a literal
// non-zero byte is an index as-is, and a 0x00 byte introduces a varint run
// length of consecutive zero indices.
func legacyMTFRLEDecode(data []byte) ([]byte, error) {
	indices, err := zeroRLEDecode(data)
	if err != nil {
		return nil, err
	}

	return mtfDecode(indices), nil
}

func zeroRLEDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))

	i := 0
	for i < len(data) {
		b := data[i]
		i++

		if b != 0 {
			out = append(out, b)
			continue
		}

		run, n, err := varint.Uvarint(data[i:])
		if err != nil {
			return nil, err
		}
		i += n

		for k := uint64(0); k < run; k++ {
			out = append(out, 0)
		}
	}

	return out, nil
}

func mtfDecode(indices []byte) []byte {
	var alphabet [256]byte
	for i := range alphabet {
		alphabet[i] = byte(i)
	}

	out := make([]byte, len(indices))

	for pos, idx := range indices {
		sym := alphabet[idx]
		out[pos] = sym

		copy(alphabet[1:idx+1], alphabet[0:idx])
		alphabet[0] = sym
	}

	return out
}
