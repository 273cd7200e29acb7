// Package frame implements PACKR's self-contained container: a magic tag,
// version, flags byte, varint symbol count, payload, and trailing CRC32.
// A frame is decoded as a whole; its token stream is replayed by the
// caller's codec against whatever dictionary state that codec holds.
package frame

import (
	"hash/crc32"

	"github.com/jaylikesbunda/packr/endian"
	"github.com/jaylikesbunda/packr/errs"
	"github.com/jaylikesbunda/packr/format"
	"github.com/jaylikesbunda/packr/varint"
)

// Magic is the 4-byte tag every frame begins with.
var Magic = [4]byte{'P', 'K', 'R', '1'}

// Version is the only frame version this package understands.
const Version = 1

// Flags bits, stored in the single flags byte.
const (
	FlagHasDictUpdate = format.FlagHasDictUpdate
	FlagUsesRice      = format.FlagUsesRice
	FlagDictReset     = format.FlagDictReset
)

// le is the engine every multi-byte integer in the wire format is packed
// with: PACKR is little-endian throughout, with no byte-order negotiation.
var le = endian.GetLittleEndianEngine()

// headerFixedLen is the byte count of Magic+Version+Flags, before the
// variable-length symbol count.
const headerFixedLen = 4 + 1 + 1

// Frame is a parsed container: flags, the declared symbol count, and the
// token-stream payload. Flags and SymbolCount are descriptive — they don't
// gate any current decode behavior of this package, but are threaded through
// so encoders can communicate dictionary-reset/Rice-usage hints across a
// multi-frame stream.
type Frame struct {
	Flags       format.FrameFlag
	SymbolCount uint64
	Data        []byte
}

// Build serializes a Frame: magic, version, flags, varint symbol count,
// payload, then a little-endian CRC32 over everything preceding it.
func Build(f Frame) []byte {
	buf := make([]byte, 0, headerFixedLen+varint.MaxVarintLen64+len(f.Data)+4)
	buf = append(buf, Magic[:]...)
	buf = append(buf, Version, byte(f.Flags))
	buf = varint.AppendUvarint(buf, f.SymbolCount)
	buf = append(buf, f.Data...)

	sum := crc32.ChecksumIEEE(buf)
	buf = le.AppendUint32(buf, sum)

	return buf
}

// Parse validates and decodes data as exactly one frame. Bytes after the
// frame are not detected as such: they are read as part of the payload and
// so normally fail the CRC check.
func Parse(data []byte) (Frame, error) {
	f, n, err := ParsePrefix(data)
	if err != nil {
		return Frame{}, err
	}
	if n != len(data) {
		return Frame{}, errs.New(errs.InvalidFrame, "trailing bytes after frame")
	}

	return f, nil
}

// ParsePrefix decodes one frame from data and returns the number of bytes it
// consumed, which is always len(data): the payload runs to the trailing CRC,
// so concatenated frames cannot be split apart with it.
func ParsePrefix(data []byte) (Frame, int, error) {
	if len(data) < headerFixedLen+1+4 {
		return Frame{}, 0, errs.New(errs.MalformedInput, "frame shorter than minimum header+CRC size")
	}

	if data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] || data[3] != Magic[3] {
		return Frame{}, 0, errs.New(errs.InvalidFrame, "bad magic")
	}

	version := data[4]
	if version != Version {
		return Frame{}, 0, errs.New(errs.InvalidFrame, "unsupported version %d", version)
	}

	flags := format.FrameFlag(data[5])

	symbolCount, n, err := varint.Uvarint(data[6:])
	if err != nil {
		return Frame{}, 0, err
	}

	dataStart := 6 + n
	if dataStart+4 > len(data) {
		return Frame{}, 0, errs.New(errs.MalformedInput, "frame truncated before CRC")
	}

	// Without knowing the payload length up front, the payload runs to the
	// end of the provided slice minus the trailing 4-byte CRC: frames are
	// parsed from exactly the bytes the outer transform handed back.
	crcStart := len(data) - 4
	if crcStart < dataStart {
		return Frame{}, 0, errs.New(errs.MalformedInput, "frame truncated before CRC")
	}

	payload := data[dataStart:crcStart]

	wantSum := crc32.ChecksumIEEE(data[:crcStart])
	gotSum := le.Uint32(data[crcStart : crcStart+4])

	if wantSum != gotSum {
		return Frame{}, 0, errs.New(errs.InvalidFrame, "CRC mismatch")
	}

	return Frame{Flags: flags, SymbolCount: symbolCount, Data: payload}, len(data), nil
}
