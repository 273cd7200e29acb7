// Package packr provides a structure-aware binary codec for semi-structured
// records: null/bool/int64/double/string/MAC/bytes/array/object values,
// compacted with per-field delta tracking, bounded LRU dictionaries for
// repeated field names, strings, and MAC addresses, a column-major batch
// mode for homogeneous record sequences, and an adaptive LZ77/Huffman
// back-end transform.
//
// # Basic usage
//
//	enc := packr.NewEncoder()
//	out, err := enc.Encode(packr.Obj(packr.F("t", packr.Int(1)), packr.F("v", packr.Float(3.5))))
//
//	dec := packr.NewDecoder()
//	v, err := dec.Decode(out)
//
// A homogeneous sequence of flat object records compresses far better
// through EncodeStream, which triggers the column-major ULTRA_BATCH layout
// when eligible:
//
//	out, err := enc.EncodeStream(records)
//	records, err := dec.DecodeStream(out)
//
// Each Encode/EncodeStream call produces one self-contained frame; the
// encoder's dictionaries and per-field delta state persist across calls
// until Reset is invoked, so repeated field names and strings across many
// calls keep compacting against the same LRU slots. Decoder state tracks
// the encoder symmetrically: call Reset on both sides together, or use a
// fresh pair per independent stream.
package packr

import (
	"github.com/jaylikesbunda/packr/batch"
	"github.com/jaylikesbunda/packr/dict"
	"github.com/jaylikesbunda/packr/frame"
	"github.com/jaylikesbunda/packr/internal/pool"
	"github.com/jaylikesbunda/packr/token"
	"github.com/jaylikesbunda/packr/transform"
	"github.com/jaylikesbunda/packr/value"
)

// Re-exported value constructors, so callers need only import this package
// for the common case.
var (
	Null         = value.Null
	Bool         = value.Bool
	Int          = value.Int
	Float        = value.Float
	Str          = value.Str
	MAC          = value.MAC
	MACFromBytes = value.MACFromBytes
	Bytes        = value.Bytes
	Array        = value.Array
	Obj          = value.Obj
	F            = value.F
)

// Value is the tagged-variant record type this codec encodes and decodes.
type Value = value.Value

// Field is a single name/value pair within an object Value, in declaration order.
type Field = value.Field

// Encoder carries the three LRU dictionaries and per-field delta state for
// one logical stream of frames. It is not safe for concurrent use; separate
// encoders are fully independent.
type Encoder struct {
	dicts    *dict.Set
	codec    *token.Codec
	compress bool
}

// EncoderOption configures a new Encoder.
type EncoderOption func(*Encoder)

// WithCompression enables or disables the outer LZ77/Huffman transform.
// Enabled by default.
func WithCompression(enabled bool) EncoderOption {
	return func(e *Encoder) { e.compress = enabled }
}

// NewEncoder returns an Encoder with fresh dictionaries and compression
// enabled.
func NewEncoder(opts ...EncoderOption) *Encoder {
	dicts := dict.NewSet()
	e := &Encoder{
		dicts:    dicts,
		codec:    token.NewCodec(dicts),
		compress: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Reset clears the encoder's dictionaries and per-field delta state. Call
// between independent streams that should not share dictionary slots.
func (e *Encoder) Reset() {
	e.dicts.Reset()
	e.codec.Reset()
}

// Encode serializes a single value into one self-contained frame (wrapped
// in the outer transform).
func (e *Encoder) Encode(v Value) ([]byte, error) {
	bb := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(bb)

	var err error
	bb.B, err = e.codec.EncodeValue(bb.B, v)
	if err != nil {
		return nil, err
	}

	f := frame.Build(frame.Frame{SymbolCount: 1, Data: bb.Bytes()})

	return transform.Compress(f, e.compress), nil
}

// EncodeStream serializes a sequence of values into one frame. When the
// sequence is non-empty and its first record is an object, the column-major
// ULTRA_BATCH layout is used, and every record must then be an object or
// EncodeStream fails with InvalidValue; otherwise each value is encoded in
// turn through the generic token path.
func (e *Encoder) EncodeStream(records []Value) ([]byte, error) {
	bb := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(bb)

	var err error

	if batch.Eligible(records) {
		bb.B, err = batch.Encode(bb.B, e.codec, records)
		if err != nil {
			return nil, err
		}
	} else {
		for _, rec := range records {
			bb.B, err = e.codec.EncodeValue(bb.B, rec)
			if err != nil {
				return nil, err
			}
		}
	}

	f := frame.Build(frame.Frame{SymbolCount: uint64(len(records)), Data: bb.Bytes()})

	return transform.Compress(f, e.compress), nil
}

// Decoder mirrors Encoder's dictionary and delta state on the read side.
type Decoder struct {
	dicts *dict.Set
	codec *token.Codec
}

// NewDecoder returns a Decoder with fresh dictionaries.
func NewDecoder() *Decoder {
	dicts := dict.NewSet()

	return &Decoder{dicts: dicts, codec: token.NewCodec(dicts)}
}

// Reset clears the decoder's dictionaries and per-field delta state. A
// decode failure leaves the decoder in an indeterminate state; callers must
// Reset before reusing it.
func (d *Decoder) Reset() {
	d.dicts.Reset()
	d.codec.Reset()
}

// Decode reverses Encode. If data was produced by EncodeStream in batch
// mode, the single returned value is never an ULTRA_BATCH artifact itself —
// use DecodeStream for batch-mode data.
func (d *Decoder) Decode(data []byte) (Value, error) {
	raw, err := transform.Decompress(data)
	if err != nil {
		return Value{}, err
	}

	fr, err := frame.Parse(raw)
	if err != nil {
		return Value{}, err
	}

	v, _, err := d.codec.DecodeValue(fr.Data, 0)
	if err != nil {
		return Value{}, err
	}

	return v, nil
}

// DecodeStream reverses EncodeStream. It detects the ULTRA_BATCH marker as
// the first payload token and decodes the column-major layout when present;
// otherwise it decodes fr.SymbolCount values in sequence through the
// generic token path.
func (d *Decoder) DecodeStream(data []byte) ([]Value, error) {
	raw, err := transform.Decompress(data)
	if err != nil {
		return nil, err
	}

	fr, err := frame.Parse(raw)
	if err != nil {
		return nil, err
	}

	if len(fr.Data) > 0 && fr.Data[0] == token.ULTRA_BATCH {
		records, _, err := batch.Decode(d.codec, fr.Data, 0)
		if err != nil {
			return nil, err
		}

		return records, nil
	}

	records := make([]Value, 0, fr.SymbolCount)
	p := 0
	for uint64(len(records)) < fr.SymbolCount {
		var v Value
		v, p, err = d.codec.DecodeValue(fr.Data, p)
		if err != nil {
			return nil, err
		}
		records = append(records, v)
	}

	return records, nil
}
