package token

import "github.com/jaylikesbunda/packr/varint"

// AppendDeltaToken appends the smallest token that represents delta: the
// fixed singletons for 0/1/-1, the inline small-delta byte for [-8,7], the
// one-byte medium-delta payload for [-64,63], or DELTA_LARGE with a zigzag
// varint otherwise. delta is the raw payload value; for a float-category
// field this is the delta already scaled by 65536, not the float delta
// itself.
func AppendDeltaToken(buf []byte, delta int64) []byte {
	switch {
	case delta == 0:
		return append(buf, DELTA_ZERO)
	case delta == 1:
		return append(buf, DELTA_ONE)
	case delta == -1:
		return append(buf, DELTA_NEG_ONE)
	case InDeltaSmallRange(delta):
		return append(buf, EncodeDeltaSmall(delta))
	case InDeltaMediumRange(delta):
		return append(buf, DELTA_MEDIUM, EncodeDeltaMedium(delta))
	default:
		buf = append(buf, DELTA_LARGE)
		return varint.AppendVarint(buf, delta)
	}
}

// IsDeltaToken reports whether b introduces one of the delta token forms
// (including the fixed singletons and DELTA_MEDIUM, but not the dictionary
// reference ranges).
func IsDeltaToken(b byte) bool {
	switch {
	case IsDeltaSmall(b):
		return true
	case b == DELTA_LARGE, b == DELTA_MEDIUM, b == DELTA_ZERO, b == DELTA_ONE, b == DELTA_NEG_ONE:
		return true
	default:
		return false
	}
}

// ReadDeltaToken decodes a delta token starting at data[pos], where
// data[pos] is already known to satisfy IsDeltaToken. Returns the delta
// payload value and the position just past the token.
func ReadDeltaToken(data []byte, pos int) (int64, int, error) {
	b := data[pos]

	switch {
	case IsDeltaSmall(b):
		return DecodeDeltaSmall(b), pos + 1, nil
	case b == DELTA_ZERO:
		return 0, pos + 1, nil
	case b == DELTA_ONE:
		return 1, pos + 1, nil
	case b == DELTA_NEG_ONE:
		return -1, pos + 1, nil
	case b == DELTA_MEDIUM:
		if pos+1 >= len(data) {
			return 0, 0, errTruncated("DELTA_MEDIUM")
		}
		return DecodeDeltaMedium(data[pos+1]), pos + 2, nil
	case b == DELTA_LARGE:
		v, n, err := varint.Varint(data[pos+1:])
		if err != nil {
			return 0, 0, err
		}
		return v, pos + 1 + n, nil
	default:
		return 0, 0, errUnknown(b)
	}
}
