package rice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	deltas := []int64{0, 1, -1, 2, -2, 5, -5, 100, -100, 0, 0, 0}
	buf := Encode(deltas)

	got, err := Decode(buf, len(deltas))
	require.NoError(t, err)
	assert.Equal(t, deltas, got)
}

func TestDecodeWithLenReportsConsumed(t *testing.T) {
	deltas := []int64{1, 2, 3, 4, 5}
	buf := Encode(deltas)

	got, consumed, err := DecodeWithLen(buf, len(deltas))
	require.NoError(t, err)
	assert.Equal(t, deltas, got)
	assert.Equal(t, len(buf), consumed)
}

func TestChooseKClampsToMaxK(t *testing.T) {
	assert.Equal(t, uint(0), ChooseK(0))
	assert.Equal(t, uint(MaxK), ChooseK(1<<40))
}

func TestDecodeRejectsMissingParamByte(t *testing.T) {
	_, _, err := DecodeWithLen(nil, 1)
	assert.Error(t, err)
}

func TestDecodeRejectsOutOfRangeK(t *testing.T) {
	_, _, err := DecodeWithLen([]byte{MaxK + 1, 0x00}, 1)
	assert.Error(t, err)
}

func TestSlowlyDriftingColumnStaysCompact(t *testing.T) {
	deltas := make([]int64, 200)
	for i := range deltas {
		deltas[i] = int64(1 + i%5)
	}

	buf := Encode(deltas)
	assert.Less(t, float64(len(buf)), 1.5*float64(len(deltas)),
		"a 200-value slowly-drifting column should Rice-code under 1.5 bytes/value")

	got, err := Decode(buf, len(deltas))
	require.NoError(t, err)
	assert.Equal(t, deltas, got)
}
