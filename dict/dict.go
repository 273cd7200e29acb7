// Package dict implements PACKR's 64-slot LRU dictionaries. Three independent
// instances run per frame (field names, strings, MAC addresses), each mapping
// a recently-seen value to a small slot index so later references can be
// re-emitted as a single token byte instead of the full value.
package dict

import "github.com/jaylikesbunda/packr/internal/hash"

// Slots is the fixed dictionary size; token bytes encode a slot index in 6
// bits (0x00-0x3F field refs, 0x40-0x7F string refs, 0x80-0xBF MAC refs).
const Slots = 64

type entry struct {
	key    string
	hash   uint64
	used   bool
	recent int // higher = more recently used
}

// Dictionary is a fixed-size, hash-indexed LRU keyed by string. It never
// grows past Slots entries: once full, adding a new key evicts the least
// recently used slot.
type Dictionary struct {
	entries [Slots]entry
	index   map[uint64]int // hash -> slot, for O(1) lookup
	clock   int
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{index: make(map[uint64]int, Slots)}
}

// Lookup reports the slot index holding key, if present, and bumps its
// recency without modifying contents.
func (d *Dictionary) Lookup(key string) (int, bool) {
	h := hash.Key(key)

	slot, ok := d.index[h]
	if !ok || !d.entries[slot].used || d.entries[slot].key != key {
		return 0, false
	}

	d.clock++
	d.entries[slot].recent = d.clock

	return slot, true
}

// GetOrAdd returns the existing slot for key if present (added=false), or
// inserts it into a free or least-recently-used slot and returns
// added=true along with the evicted key (empty if no eviction occurred).
func (d *Dictionary) GetOrAdd(key string) (slot int, added bool, evicted string) {
	if s, ok := d.Lookup(key); ok {
		return s, false, ""
	}

	slot = d.freeSlot()
	if d.entries[slot].used {
		evicted = d.entries[slot].key
		delete(d.index, d.entries[slot].hash)
	}

	h := hash.Key(key)
	d.clock++
	d.entries[slot] = entry{key: key, hash: h, used: true, recent: d.clock}
	d.index[h] = slot

	return slot, true, evicted
}

// Value returns the key stored at slot, if any, and bumps its recency: a
// dictionary-reference token resolves on the decode side exactly as Lookup
// resolves one on the encode side, so both sides agree on eviction order.
func (d *Dictionary) Value(slot int) (string, bool) {
	if slot < 0 || slot >= Slots || !d.entries[slot].used {
		return "", false
	}

	d.clock++
	d.entries[slot].recent = d.clock

	return d.entries[slot].key, true
}

// Reset clears all slots.
func (d *Dictionary) Reset() {
	d.entries = [Slots]entry{}
	d.index = make(map[uint64]int, Slots)
	d.clock = 0
}

// freeSlot returns an unused slot if one exists, otherwise the least
// recently used slot.
func (d *Dictionary) freeSlot() int {
	lru := 0
	lruRecent := int(^uint(0) >> 1)

	for i := range d.entries {
		if !d.entries[i].used {
			return i
		}
		if d.entries[i].recent < lruRecent {
			lruRecent = d.entries[i].recent
			lru = i
		}
	}

	return lru
}

// Set bundles the three independent per-frame dictionaries PACKR maintains:
// field names, general strings, and MAC addresses each get their own 64-slot
// LRU so unrelated churn in one namespace doesn't evict entries in another.
type Set struct {
	Fields  *Dictionary
	Strings *Dictionary
	MACs    *Dictionary
}

// NewSet returns a Set of three empty dictionaries.
func NewSet() *Set {
	return &Set{Fields: New(), Strings: New(), MACs: New()}
}

// Reset clears all three dictionaries.
func (s *Set) Reset() {
	s.Fields.Reset()
	s.Strings.Reset()
	s.MACs.Reset()
}
