// Package format names the small bitmask and enum types that appear in
// PACKR's wire format — frame flags, column-metadata flags, and outer
// transform markers — each with a String() for debug printing and log
// output, mirroring how the rest of the codec documents its byte-level
// vocabulary in code rather than only in prose.
package format

// FrameFlag is a bit in a Frame's single flags byte.
type FrameFlag uint8

const (
	FlagHasDictUpdate FrameFlag = 0x01
	FlagUsesRice      FrameFlag = 0x02
	FlagDictReset     FrameFlag = 0x04
)

func (f FrameFlag) String() string {
	if f == 0 {
		return "none"
	}

	s := ""
	if f&FlagHasDictUpdate != 0 {
		s = appendFlag(s, "HAS_DICT_UPDATE")
	}
	if f&FlagUsesRice != 0 {
		s = appendFlag(s, "USES_RICE")
	}
	if f&FlagDictReset != 0 {
		s = appendFlag(s, "DICT_RESET")
	}

	return s
}

// ColumnFlag is a bit in a batch column's metadata flags byte. Exactly one
// of Constant/AllDelta/RLE is set on any real column; HasNulls is orthogonal.
type ColumnFlag uint8

const (
	ColumnConstant ColumnFlag = 0x01
	ColumnAllDelta ColumnFlag = 0x02
	ColumnRLE      ColumnFlag = 0x04
	ColumnHasNulls ColumnFlag = 0x08
)

func (c ColumnFlag) String() string {
	s := ""
	switch {
	case c&ColumnConstant != 0:
		s = "CONSTANT"
	case c&ColumnAllDelta != 0:
		s = "ALL_DELTA"
	case c&ColumnRLE != 0:
		s = "RLE"
	default:
		s = "UNCLASSIFIED"
	}
	if c&ColumnHasNulls != 0 {
		s = appendFlag(s, "HAS_NULLS")
	}

	return s
}

// Marker identifies the outer back-end transform wrapping a serialized
// frame, or a legacy decode-only variant of one.
type Marker uint8

const (
	MarkerRaw         Marker = 0x00
	MarkerLZ77        Marker = 0x03
	MarkerHuffman     Marker = 0x04
	MarkerLZHuffman   Marker = 0x05
	MarkerHuffmanLZ   Marker = 0x06
	MarkerLegacyMTF   Marker = 0xFE
	MarkerLegacyFlate Marker = 0xFF
)

func (m Marker) String() string {
	switch m {
	case MarkerRaw:
		return "RAW"
	case MarkerLZ77:
		return "LZ77"
	case MarkerHuffman:
		return "HUFFMAN"
	case MarkerLZHuffman:
		return "LZ77+HUFFMAN"
	case MarkerHuffmanLZ:
		return "HUFFMAN+LZ77"
	case MarkerLegacyMTF:
		return "LEGACY_MTF_RLE"
	case MarkerLegacyFlate:
		return "LEGACY_DEFLATE"
	default:
		return "UNKNOWN"
	}
}

func appendFlag(s, name string) string {
	if s == "" {
		return name
	}

	return s + "|" + name
}
