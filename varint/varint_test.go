package varint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 16383, 16384, 1<<31 - 1, 1 << 40}
	for _, v := range cases {
		buf := AppendUvarint(nil, v)
		got, n, err := Uvarint(buf)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, got)
	}
}

func TestVarintRoundTrip(t *testing.T) {
	cases := []int64{0, -1, 1, -64, 63, -(1 << 31), 1<<31 - 1}
	for _, v := range cases {
		buf := AppendVarint(nil, v)
		got, n, err := Varint(buf)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, got)
	}
}

func TestUvarintTruncated(t *testing.T) {
	_, _, err := Uvarint(nil)
	assert.Error(t, err)

	_, _, err = Uvarint([]byte{0x80, 0x80})
	assert.Error(t, err)
}

func TestUvarintShiftOverflow(t *testing.T) {
	data := make([]byte, 0, 7)
	for i := 0; i < 7; i++ {
		data = append(data, 0xFF)
	}
	_, _, err := Uvarint(data)
	assert.Error(t, err)
}

func TestFixed16RoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, -1, 127.5, -128, 3.25} {
		raw := EncodeFixed16(v)
		got := DecodeFixed16(raw[:])
		assert.InDelta(t, v, got, 1.0/256)
	}
}

func TestFixed16Clamps(t *testing.T) {
	raw := EncodeFixed16(100000)
	got := DecodeFixed16(raw[:])
	assert.InDelta(t, 32767.0/256, got, 0.01)
}

func TestFixed32RoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, -1, 32767.5, -32768, 100.125} {
		raw := EncodeFixed32(v)
		got := DecodeFixed32(raw[:])
		assert.InDelta(t, v, got, 1.0/65536)
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1.5, -1.5, 3.14159265358979, 1e300} {
		raw := EncodeDouble(v)
		got := DecodeDouble(raw[:])
		assert.Equal(t, v, got)
	}
}

func TestMACParseFormat(t *testing.T) {
	raw, err := ParseMAC("ac:DE:48:00:11:22")
	require.NoError(t, err)
	assert.Equal(t, "AC:DE:48:00:11:22", FormatMAC(raw))

	raw2, err := ParseMAC("ac-de-48-00-11-22")
	require.NoError(t, err)
	assert.Equal(t, raw, raw2)
}

func TestMACRejectsInvalid(t *testing.T) {
	_, err := ParseMAC("not a mac")
	assert.Error(t, err)

	_, err = ParseMAC("ac:de:48:00:11") // too short
	assert.Error(t, err)

	_, err = ParseMAC("ac:de-48:00:11:22") // mixed separators
	assert.Error(t, err)
}

func TestIsMAC(t *testing.T) {
	assert.True(t, IsMAC("AA:BB:CC:DD:EE:FF"))
	assert.False(t, IsMAC("hello"))
}
