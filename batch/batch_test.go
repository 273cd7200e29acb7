package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaylikesbunda/packr/dict"
	"github.com/jaylikesbunda/packr/token"
	"github.com/jaylikesbunda/packr/value"
)

func encodeDecode(t *testing.T, records []value.Value) []value.Value {
	t.Helper()
	dicts := dict.NewSet()
	codec := token.NewCodec(dicts)

	require.True(t, Eligible(records))

	buf, err := Encode(nil, codec, records)
	require.NoError(t, err)

	dec := dict.NewSet()
	decCodec := token.NewCodec(dec)
	got, pos, err := Decode(decCodec, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, len(buf), pos)

	return got
}

func TestConstantAndDeltaColumns(t *testing.T) {
	records := []value.Value{
		value.Obj(value.F("t", value.Int(1)), value.F("r", value.Int(-60))),
		value.Obj(value.F("t", value.Int(2)), value.F("r", value.Int(-60))),
		value.Obj(value.F("t", value.Int(3)), value.F("r", value.Int(-60))),
	}

	got := encodeDecode(t, records)
	require.Len(t, got, 3)
	for i, rec := range got {
		assert.True(t, value.Equal(records[i], rec))
	}
}

func TestSchemaUnionWithNulls(t *testing.T) {
	records := []value.Value{
		value.Obj(value.F("a", value.Int(1))),
		value.Obj(value.F("b", value.Int(2))),
		value.Obj(value.F("a", value.Int(3)), value.F("b", value.Int(4))),
	}

	got := encodeDecode(t, records)
	require.Len(t, got, 3)
	for i := range records {
		assert.True(t, value.Equal(records[i], got[i]), "record %d mismatch", i)
	}
}

func TestBitPackDeltaColumn(t *testing.T) {
	ints := []int64{1000, 1001, 1002, 1001, 1001, 1001, 1001, 1000}
	records := make([]value.Value, len(ints))
	for i, v := range ints {
		records[i] = value.Obj(value.F("v", value.Int(v)))
	}

	got := encodeDecode(t, records)
	require.Len(t, got, len(ints))
	for i, v := range ints {
		fv, ok := got[i].Object().Get("v")
		require.True(t, ok)
		assert.Equal(t, v, fv.Int())
	}
}

func TestRiceColumnForSlowlyDriftingValues(t *testing.T) {
	n := 200
	records := make([]value.Value, n)
	v := int64(0)
	for i := 0; i < n; i++ {
		v += int64(1 + i%5)
		records[i] = value.Obj(value.F("v", value.Int(v)))
	}

	buf, err := Encode(nil, token.NewCodec(dict.NewSet()), records)
	require.NoError(t, err)
	assert.Less(t, float64(len(buf)), 1.5*float64(n))

	got := encodeDecode(t, records)
	require.Len(t, got, n)
	for i := range records {
		assert.True(t, value.Equal(records[i], got[i]))
	}
}

func TestRLEStringColumn(t *testing.T) {
	records := []value.Value{
		value.Obj(value.F("host", value.Str("edge-01"))),
		value.Obj(value.F("host", value.Str("edge-01"))),
		value.Obj(value.F("host", value.Str("edge-02"))),
		value.Obj(value.F("host", value.Str("edge-02"))),
		value.Obj(value.F("host", value.Str("edge-02"))),
	}

	got := encodeDecode(t, records)
	require.Len(t, got, len(records))
	for i := range records {
		assert.True(t, value.Equal(records[i], got[i]))
	}
}

func TestAllNullColumn(t *testing.T) {
	records := []value.Value{
		value.Obj(value.F("a", value.Null()), value.F("k", value.Int(1))),
		value.Obj(value.F("a", value.Null()), value.F("k", value.Int(2))),
	}

	got := encodeDecode(t, records)
	require.Len(t, got, 2)
	for i := range records {
		v, ok := got[i].Object().Get("a")
		assert.False(t, ok, "an all-null column's values must not be materialized in the decoded record")
		_ = v
	}
}

func TestEligibleRequiresObjectFirstRecord(t *testing.T) {
	assert.False(t, Eligible(nil))
	assert.False(t, Eligible([]value.Value{value.Int(1)}))
	assert.True(t, Eligible([]value.Value{value.Obj()}))
}

// BenchmarkEncodeDriftingColumn times the column-major encode path against a
// slowly-drifting numeric column, the shape that routes through Rice coding.
func BenchmarkEncodeDriftingColumn(b *testing.B) {
	n := 500
	records := make([]value.Value, n)
	v := int64(0)
	for i := 0; i < n; i++ {
		v += int64(1 + i%5)
		records[i] = value.Obj(value.F("v", value.Int(v)), value.F("host", value.Str("edge-01")))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		codec := token.NewCodec(dict.NewSet())
		if _, err := Encode(nil, codec, records); err != nil {
			b.Fatal(err)
		}
	}
}
