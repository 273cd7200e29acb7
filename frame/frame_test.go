package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParseRoundTrip(t *testing.T) {
	f := Frame{Flags: FlagHasDictUpdate, SymbolCount: 3, Data: []byte("hello")}
	buf := Build(f)

	got, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, f.Flags, got.Flags)
	assert.Equal(t, f.SymbolCount, got.SymbolCount)
	assert.Equal(t, f.Data, got.Data)
}

func TestEmptyDataRoundTrip(t *testing.T) {
	buf := Build(Frame{SymbolCount: 0, Data: nil})
	got, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.SymbolCount)
	assert.Empty(t, got.Data)
}

func TestParseRejectsBadMagic(t *testing.T) {
	buf := Build(Frame{SymbolCount: 1})
	buf[0] = 'X'
	_, err := Parse(buf)
	assert.Error(t, err)
}

func TestParseRejectsBadVersion(t *testing.T) {
	buf := Build(Frame{SymbolCount: 1})
	buf[4] = 2
	_, err := Parse(buf)
	assert.Error(t, err)
}

func TestParseRejectsCRCMismatch(t *testing.T) {
	buf := Build(Frame{SymbolCount: 1, Data: []byte("payload")})
	buf[len(buf)-1] ^= 0xFF
	_, err := Parse(buf)
	assert.Error(t, err)
}

func TestParseRejectsTruncated(t *testing.T) {
	buf := Build(Frame{SymbolCount: 1, Data: []byte("payload")})
	_, err := Parse(buf[:4])
	assert.Error(t, err)
}

func TestSingleBitFlipBreaksDecode(t *testing.T) {
	buf := Build(Frame{SymbolCount: 1, Data: []byte("some payload bytes")})

	for i := range buf {
		corrupt := append([]byte(nil), buf...)
		corrupt[i] ^= 0x01
		_, err := Parse(corrupt)
		assert.Error(t, err, "flipping bit 0 of byte %d must break decode", i)
	}
}
