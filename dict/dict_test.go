package dict

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrAddFillsSlotsInOrder(t *testing.T) {
	d := New()

	for i := 0; i < Slots; i++ {
		slot, added, evicted := d.GetOrAdd(fmt.Sprintf("key-%d", i))
		assert.True(t, added)
		assert.Equal(t, i, slot)
		assert.Empty(t, evicted)
	}
}

func TestLookupTouchesRecencyAndPreventsEviction(t *testing.T) {
	d := New()
	for i := 0; i < Slots; i++ {
		d.GetOrAdd(fmt.Sprintf("key-%d", i))
	}

	// key-0 would be the LRU victim next; touch it so it survives.
	slot0, ok := d.Lookup("key-0")
	require.True(t, ok)
	assert.Equal(t, 0, slot0)

	slot, added, evicted := d.GetOrAdd("key-65")
	assert.True(t, added)
	assert.Equal(t, "key-1", evicted, "key-1 should now be the LRU victim since key-0 was just touched")
	assert.Equal(t, 1, slot)
}

func TestGetOrAddExistingKeyDoesNotEvict(t *testing.T) {
	d := New()
	for i := 0; i < Slots; i++ {
		d.GetOrAdd(fmt.Sprintf("key-%d", i))
	}

	slot, added, evicted := d.GetOrAdd("key-5")
	assert.False(t, added)
	assert.Equal(t, 5, slot)
	assert.Empty(t, evicted)
}

func TestValueAndReset(t *testing.T) {
	d := New()
	slot, _, _ := d.GetOrAdd("hello")

	v, ok := d.Value(slot)
	require.True(t, ok)
	assert.Equal(t, "hello", v)

	d.Reset()
	_, ok = d.Value(slot)
	assert.False(t, ok)

	_, ok = d.Lookup("hello")
	assert.False(t, ok)
}

func TestValueTouchesRecencyAndPreventsEviction(t *testing.T) {
	d := New()
	for i := 0; i < Slots; i++ {
		d.GetOrAdd(fmt.Sprintf("key-%d", i))
	}

	// A decode-side reference to key-0 must bump its recency exactly as a
	// Lookup would on the encode side, so both sides evict the same slot.
	v, ok := d.Value(0)
	require.True(t, ok)
	assert.Equal(t, "key-0", v)

	slot, added, evicted := d.GetOrAdd("key-65")
	assert.True(t, added)
	assert.Equal(t, "key-1", evicted, "key-1 should now be the LRU victim since key-0 was just touched via Value")
	assert.Equal(t, 1, slot)
}

func TestSetResetsAllThree(t *testing.T) {
	s := NewSet()
	s.Fields.GetOrAdd("f")
	s.Strings.GetOrAdd("s")
	s.MACs.GetOrAdd("AA:BB:CC:DD:EE:FF")

	s.Reset()

	_, ok := s.Fields.Lookup("f")
	assert.False(t, ok)
	_, ok = s.Strings.Lookup("s")
	assert.False(t, ok)
	_, ok = s.MACs.Lookup("AA:BB:CC:DD:EE:FF")
	assert.False(t, ok)
}
