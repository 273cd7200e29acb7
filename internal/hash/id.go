// Package hash provides the hash function used to index dictionary slots.
package hash

import "github.com/cespare/xxhash/v2"

// Key computes a 64-bit hash of a dictionary key (string or formatted MAC) for
// use in the dictionaries' hash-to-slot index map.
func Key(data string) uint64 {
	return xxhash.Sum64String(data)
}

// KeyBytes computes a 64-bit hash of raw bytes. The dictionaries do not use
// it: MAC keys are hashed in their formatted string form via Key.
func KeyBytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}
