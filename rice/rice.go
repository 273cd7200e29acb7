// Package rice implements Rice (Golomb power-of-two) coding for signed delta
// streams, used by the batch engine's numeric columns when deltas are small
// and fairly uniform in magnitude. Each encoded stream is self-describing: a
// single parameter byte k precedes the bitstream.
package rice

import (
	"github.com/jaylikesbunda/packr/bitio"
	"github.com/jaylikesbunda/packr/errs"
	"github.com/jaylikesbunda/packr/varint"
)

// MaxK is the largest Rice parameter PACKR will select or accept.
const MaxK = 7

// ChooseK picks the Rice parameter for a batch of deltas: the bit length of
// the largest magnitude, minus 2, clamped to [0, MaxK]. This keeps the
// unary quotient short for the common case of small, similarly sized deltas.
func ChooseK(maxAbs uint64) uint {
	bl := bitLength(maxAbs)

	k := 0
	if bl > 2 {
		k = bl - 2
	}
	if k > MaxK {
		k = MaxK
	}

	return uint(k)
}

func bitLength(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}

	return n
}

// Encode Rice-codes a slice of signed deltas, zigzag-mapping each to unsigned
// before splitting into a unary quotient and a k-bit remainder. The returned
// buffer begins with one parameter byte holding k.
func Encode(deltas []int64) []byte {
	var maxAbs uint64
	for _, d := range deltas {
		u := varint.ZigzagEncode(d)
		if u > maxAbs {
			maxAbs = u
		}
	}

	k := ChooseK(maxAbs)

	w := bitio.NewWriter(len(deltas)/2 + 1)
	for _, d := range deltas {
		u := varint.ZigzagEncode(d)
		q := u >> k
		w.WriteUnary(q)
		if k > 0 {
			w.WriteBits(u&((1<<k)-1), k)
		}
	}

	out := make([]byte, 0, w.Len()+1)
	out = append(out, byte(k))
	out = append(out, w.Bytes()...)

	return out
}

// Decode reads count Rice-coded deltas from data, which must begin with the
// parameter byte written by Encode.
func Decode(data []byte, count int) ([]int64, error) {
	out, _, err := DecodeWithLen(data, count)
	return out, err
}

// DecodeWithLen behaves like Decode but also reports how many bytes of data
// the encoded stream occupied (the parameter byte plus the byte-aligned
// bitstream), so a caller packing this stream inline in a larger buffer knows
// where the next token begins.
func DecodeWithLen(data []byte, count int) ([]int64, int, error) {
	if len(data) < 1 {
		return nil, 0, errs.New(errs.MalformedInput, "rice stream missing parameter byte")
	}

	k := uint(data[0])
	if k > MaxK {
		return nil, 0, errs.New(errs.MalformedInput, "rice parameter %d out of range", k)
	}

	r := bitio.NewReader(data[1:])
	out := make([]int64, count)

	for i := 0; i < count; i++ {
		q, err := r.ReadUnary()
		if err != nil {
			return nil, 0, err
		}

		var rem uint64
		if k > 0 {
			rem, err = r.ReadBits(k)
			if err != nil {
				return nil, 0, err
			}
		}

		u := q<<k | rem
		out[i] = varint.ZigzagDecode(u)
	}

	consumed := 1 + (r.BitPos()+7)/8

	return out, consumed, nil
}

// EstimateBits returns the number of bits Encode would produce for deltas
// under parameter k, without actually writing them. Used by the batch
// engine's column analysis to compare Rice coding against the alternatives
// before committing to an encoding.
func EstimateBits(deltas []int64, k uint) int {
	bits := 0
	for _, d := range deltas {
		u := varint.ZigzagEncode(d)
		bits += int(u>>k) + 1 + int(k)
	}

	return bits
}
