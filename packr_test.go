package packr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaylikesbunda/packr/value"
)

func TestEncodeDecodeScalarRoundTrip(t *testing.T) {
	enc := NewEncoder()
	dec := NewDecoder()

	for _, v := range []Value{
		Null(),
		Bool(true),
		Bool(false),
		Int(-65),
		Float(3.5),
		Str("hello"),
		Bytes([]byte{1, 2, 3}),
	} {
		out, err := enc.Encode(v)
		require.NoError(t, err)

		got, err := dec.Decode(out)
		require.NoError(t, err)
		assert.True(t, value.Equal(v, got))
	}
}

func TestEncodeDecodeNestedRoundTrip(t *testing.T) {
	mac, err := MAC("AA:BB:CC:DD:EE:01")
	require.NoError(t, err)

	v := Obj(
		F("rssi", Int(-65)),
		F("mac", mac),
		F("tags", Array(Str("a"), Str("b"))),
		F("nested", Obj(F("x", Int(1)))),
	)

	enc := NewEncoder()
	out, err := enc.Encode(v)
	require.NoError(t, err)

	dec := NewDecoder()
	got, err := dec.Decode(out)
	require.NoError(t, err)
	assert.True(t, value.Equal(v, got))
}

// Scenario 1 from the spec: a single flat object with a MAC address field.
func TestScenarioSingleObjectWithMAC(t *testing.T) {
	mac, err := MAC("AA:BB:CC:DD:EE:01")
	require.NoError(t, err)

	v := Obj(F("rssi", Int(-65)), F("mac", mac))

	enc := NewEncoder()
	out, err := enc.Encode(v)
	require.NoError(t, err)

	dec := NewDecoder()
	got, err := dec.Decode(out)
	require.NoError(t, err)
	assert.True(t, value.Equal(v, got))
}

// Scenario 2: a 3-record stream where "t" is ALL_DELTA and "r" is CONSTANT.
func TestScenarioStreamWithConstantAndDeltaColumns(t *testing.T) {
	records := []Value{
		Obj(F("t", Int(1)), F("r", Int(-60))),
		Obj(F("t", Int(2)), F("r", Int(-60))),
		Obj(F("t", Int(3)), F("r", Int(-60))),
	}

	enc := NewEncoder()
	out, err := enc.EncodeStream(records)
	require.NoError(t, err)

	dec := NewDecoder()
	got, err := dec.DecodeStream(out)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range records {
		assert.True(t, value.Equal(records[i], got[i]))
	}
}

// Scenario 3: a schema union across records with some keys missing.
func TestScenarioSchemaUnionWithMissingKeys(t *testing.T) {
	records := []Value{
		Obj(F("a", Int(1))),
		Obj(F("b", Int(2))),
		Obj(F("a", Int(3)), F("b", Int(4))),
	}

	enc := NewEncoder()
	out, err := enc.EncodeStream(records)
	require.NoError(t, err)

	dec := NewDecoder()
	got, err := dec.DecodeStream(out)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range records {
		assert.True(t, value.Equal(records[i], got[i]))
	}
}

// Scenario 4: a 200-record slowly-drifting integer column, which should
// route through the Rice-coded path and land under 1.5 bytes/value.
func TestScenarioLargeDriftingStream(t *testing.T) {
	n := 200
	records := make([]Value, n)
	v := int64(0)
	for i := 0; i < n; i++ {
		v += int64(1 + i%5)
		records[i] = Obj(F("v", Int(v)))
	}

	enc := NewEncoder()
	out, err := enc.EncodeStream(records)
	require.NoError(t, err)
	assert.Less(t, float64(len(out)), 1.5*float64(n))

	dec := NewDecoder()
	got, err := dec.DecodeStream(out)
	require.NoError(t, err)
	require.Len(t, got, n)
	for i := range records {
		assert.True(t, value.Equal(records[i], got[i]))
	}
}

// Scenario 5: an empty stream must encode and decode cleanly.
func TestScenarioEmptyStream(t *testing.T) {
	enc := NewEncoder()
	out, err := enc.EncodeStream(nil)
	require.NoError(t, err)

	dec := NewDecoder()
	got, err := dec.DecodeStream(out)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResetClearsDictionaryState(t *testing.T) {
	enc := NewEncoder()
	v := Obj(F("rssi", Int(-65)))

	_, err := enc.Encode(v)
	require.NoError(t, err)

	first, err := enc.Encode(v)
	require.NoError(t, err)

	enc.Reset()
	afterReset, err := enc.Encode(v)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(afterReset), len(first),
		"a freshly reset encoder must not still benefit from prior dictionary state")
}

func TestRepeatedFieldNamesCompactAcrossCalls(t *testing.T) {
	enc := NewEncoder()
	dec := NewDecoder()

	v := Obj(F("rssi", Int(-65)), F("humidity", Int(40)))

	first, err := enc.Encode(v)
	require.NoError(t, err)
	got1, err := dec.Decode(first)
	require.NoError(t, err)
	assert.True(t, value.Equal(v, got1))

	second, err := enc.Encode(v)
	require.NoError(t, err)
	got2, err := dec.Decode(second)
	require.NoError(t, err)
	assert.True(t, value.Equal(v, got2))

	assert.Less(t, len(second), len(first),
		"repeated field names must compact via field-ref dictionary slots on later calls")
}

func TestWithCompressionDisabled(t *testing.T) {
	enc := NewEncoder(WithCompression(false))
	dec := NewDecoder()

	v := Obj(F("a", Int(1)), F("b", Str("hello world, a somewhat longer string value")))
	out, err := enc.Encode(v)
	require.NoError(t, err)

	got, err := dec.Decode(out)
	require.NoError(t, err)
	assert.True(t, value.Equal(v, got))
}

func TestDecoderResetRequiredAfterIndependentStream(t *testing.T) {
	enc1 := NewEncoder()
	v1 := Obj(F("x", Int(1)))
	out1, err := enc1.Encode(v1)
	require.NoError(t, err)

	dec := NewDecoder()
	got1, err := dec.Decode(out1)
	require.NoError(t, err)
	assert.True(t, value.Equal(v1, got1))

	dec.Reset()

	enc2 := NewEncoder()
	v2 := Obj(F("x", Int(2)))
	out2, err := enc2.Encode(v2)
	require.NoError(t, err)

	got2, err := dec.Decode(out2)
	require.NoError(t, err)
	assert.True(t, value.Equal(v2, got2))
}
