// Package token defines PACKR's token byte space and implements per-value
// encode/decode against the three dictionaries and per-field delta state.
// Everything above this layer (the batch engine, the façade) builds records
// out of these tokens rather than touching dictionaries or varints directly.
package token

// Dictionary reference regions: the low 6 bits of the byte are the slot index.
const (
	FieldRefBase  = 0x00 // 0x00-0x3F
	StringRefBase = 0x40 // 0x40-0x7F
	MACRefBase    = 0x80 // 0x80-0xBF
	RefMask       = 0x3F
)

// Value and control tokens.
const (
	INT         = 0xC0
	FLOAT16     = 0xC1
	FLOAT32     = 0xC2
	DeltaSmallLo = 0xC3 // inclusive
	DeltaSmallHi = 0xD2 // inclusive
	DELTA_LARGE = 0xD3
	NEW_STRING  = 0xD4
	NEW_FIELD   = 0xD5
	NEW_MAC     = 0xD6
	BOOL_TRUE   = 0xD7
	BOOL_FALSE  = 0xD8
	NULL        = 0xD9
	ARRAY_START = 0xDA
	ARRAY_END   = 0xDB
	OBJECT_START = 0xDC
	OBJECT_END  = 0xDD
	DOUBLE      = 0xDE
	BINARY      = 0xDF

	RLE_REPEAT    = 0xE5
	DELTA_ZERO    = 0xE6
	DELTA_ONE     = 0xE7
	DELTA_NEG_ONE = 0xE8
	ULTRA_BATCH   = 0xE9
	BITPACK_COLUMN = 0xEB
	DELTA_MEDIUM  = 0xEC
	RICE_COLUMN   = 0xED
)

// deltaSmallBias is the byte-to-delta offset for the inline small-delta
// range: delta = byte - 0xCB, so 0xC3 maps to -8 and 0xD2 maps to +7.
const deltaSmallBias = 0xCB

// deltaMediumBias is the byte-to-delta offset for the 1-byte medium-delta
// payload: delta = byte - 64, range -64..+63.
const deltaMediumBias = 64

// IsFieldRef reports whether b is a field-dictionary reference byte.
func IsFieldRef(b byte) bool { return b <= 0x3F }

// IsStringRef reports whether b is a string-dictionary reference byte.
func IsStringRef(b byte) bool { return b >= 0x40 && b <= 0x7F }

// IsMACRef reports whether b is a MAC-dictionary reference byte.
func IsMACRef(b byte) bool { return b >= 0x80 && b <= 0xBF }

// IsDeltaSmall reports whether b falls in the inline small-delta range.
func IsDeltaSmall(b byte) bool { return b >= DeltaSmallLo && b <= DeltaSmallHi }

// FieldRefByte builds the token byte for a field-dictionary reference at slot.
func FieldRefByte(slot int) byte { return FieldRefBase | byte(slot&RefMask) }

// StringRefByte builds the token byte for a string-dictionary reference at slot.
func StringRefByte(slot int) byte { return StringRefBase | byte(slot&RefMask) }

// MACRefByte builds the token byte for a MAC-dictionary reference at slot.
func MACRefByte(slot int) byte { return MACRefBase | byte(slot&RefMask) }

// RefSlot extracts the slot index from any of the three reference byte forms.
func RefSlot(b byte) int { return int(b & RefMask) }

// EncodeDeltaSmall returns the token byte for an inline delta in [-8, 7].
// Callers must check InDeltaSmallRange first.
func EncodeDeltaSmall(delta int64) byte {
	return byte(delta + deltaSmallBias)
}

// DecodeDeltaSmall returns the delta value carried by an inline small-delta token byte.
func DecodeDeltaSmall(b byte) int64 {
	return int64(b) - deltaSmallBias
}

// InDeltaSmallRange reports whether delta fits the inline small-delta token.
func InDeltaSmallRange(delta int64) bool { return delta >= -8 && delta <= 7 }

// EncodeDeltaMedium returns the payload byte for a 1-byte delta in [-64, 63].
// Callers must check InDeltaMediumRange first.
func EncodeDeltaMedium(delta int64) byte {
	return byte(delta + deltaMediumBias)
}

// DecodeDeltaMedium returns the delta value carried by a DELTA_MEDIUM payload byte.
func DecodeDeltaMedium(b byte) int64 {
	return int64(b) - deltaMediumBias
}

// InDeltaMediumRange reports whether delta fits the one-byte medium-delta payload.
func InDeltaMediumRange(delta int64) bool { return delta >= -64 && delta <= 63 }
