package transform

import (
	"bytes"
	"compress/flate"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaylikesbunda/packr/format"
)

func TestCompressDecompressRoundTripSmall(t *testing.T) {
	data := []byte("short")
	out := Compress(data, true)
	got, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, MarkerRaw, outMarker(out), "data at or under the compress threshold must stay raw")
}

func TestCompressDisabledStaysRaw(t *testing.T) {
	data := bytes.Repeat([]byte("abababab"), 50)
	out := Compress(data, false)
	assert.Equal(t, MarkerRaw, outMarker(out))

	got, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCompressRepetitiveDataRoundTrips(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 40)
	out := Compress(data, true)

	got, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Less(t, len(out), len(data), "repetitive data should compress smaller than raw")
}

func TestCompressHighEntropyDataStaysUncompressedOrSmaller(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	data := make([]byte, 4096)
	r.Read(data)

	out := Compress(data, true)
	got, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLegacyMarkerPairStripsToBareMarker(t *testing.T) {
	inner := wrapRaw([]byte("payload"))
	legacy := append([]byte{byte(MarkerLegacyMTF)}, inner...)

	got, err := Decompress(legacy)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestGenuineLegacyMTFRLEDecodes(t *testing.T) {
	// MTF-index stream for "aaab": with an initial identity alphabet,
	// 'a'=0x61 first emits index 0x61, and repeats collapse to index 0.
	orig := []byte("aaab")
	indices := mtfEncode(orig)
	body := zeroRLEEncode(indices)

	legacy := append([]byte{byte(MarkerLegacyMTF)}, body...)
	got, err := Decompress(legacy)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestLegacyDeflateDecodes(t *testing.T) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write([]byte(strings.Repeat("hello world ", 20)))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	legacy := append([]byte{byte(MarkerLegacyFlate)}, buf.Bytes()...)
	got, err := Decompress(legacy)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("hello world ", 20), string(got))
}

func outMarker(data []byte) format.Marker {
	return format.Marker(data[0])
}

func mtfEncode(data []byte) []byte {
	var alphabet [256]byte
	for i := range alphabet {
		alphabet[i] = byte(i)
	}

	out := make([]byte, len(data))
	for pos, sym := range data {
		idx := byte(0)
		for i, s := range alphabet {
			if s == sym {
				idx = byte(i)
				break
			}
		}
		out[pos] = idx
		copy(alphabet[1:idx+1], alphabet[0:idx])
		alphabet[0] = sym
	}

	return out
}

func zeroRLEEncode(indices []byte) []byte {
	var out []byte
	i := 0
	for i < len(indices) {
		if indices[i] != 0 {
			out = append(out, indices[i])
			i++
			continue
		}
		j := i
		for j < len(indices) && indices[j] == 0 {
			j++
		}
		run := j - i
		out = append(out, 0)
		out = appendUvarintLocal(out, uint64(run))
		i = j
	}
	return out
}

func appendUvarintLocal(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}
