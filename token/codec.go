package token

import (
	"github.com/jaylikesbunda/packr/dict"
	"github.com/jaylikesbunda/packr/errs"
	"github.com/jaylikesbunda/packr/varint"
	"github.com/jaylikesbunda/packr/value"
)

// deltaScale is the divisor applied to a raw delta payload when the field in
// scope holds a float. Resolved per the fixed 1/65536 scale used throughout
// this codec (the generic path and the batch path agree, rather than
// diverging as in some historical ports).
const deltaScale = 65536.0

// fieldState is the last-seen absolute value recorded for one field-dictionary
// slot, established only once a literal value has passed through that field.
type fieldState struct {
	set     bool
	isFloat bool
	lastInt int64
	lastF   float64
}

// Codec performs recursive value encode/decode against the token byte space,
// threading the three dictionaries and per-field delta state through nested
// objects and arrays. Its dictionaries and per-field state carry over from
// one frame to the next until Reset; it is not safe for concurrent use.
type Codec struct {
	Dicts      *dict.Set
	fieldState map[int]*fieldState
	fieldStack []int // current field-in-scope slot; -1 = none
}

// NewCodec returns a Codec sharing the given dictionary set.
func NewCodec(dicts *dict.Set) *Codec {
	return &Codec{
		Dicts:      dicts,
		fieldState: make(map[int]*fieldState),
		fieldStack: []int{-1},
	}
}

// Reset clears per-field delta state and the field scope stack. Dictionaries
// are reset independently via dict.Set.Reset.
func (c *Codec) Reset() {
	c.fieldState = make(map[int]*fieldState)
	c.fieldStack = []int{-1}
}

func (c *Codec) currentField() int {
	return c.fieldStack[len(c.fieldStack)-1]
}

func (c *Codec) pushField(slot int) {
	c.fieldStack = append(c.fieldStack, slot)
}

func (c *Codec) popField() {
	c.fieldStack = c.fieldStack[:len(c.fieldStack)-1]
}

func (c *Codec) state(slot int) *fieldState {
	st, ok := c.fieldState[slot]
	if !ok {
		st = &fieldState{}
		c.fieldState[slot] = st
	}

	return st
}

// EncodeFieldToken emits the field-name token for name (a dictionary
// reference if already known, otherwise NEW_FIELD with its payload) and
// returns the field's dictionary slot.
func (c *Codec) EncodeFieldToken(buf []byte, name string) ([]byte, int) {
	slot, added, _ := c.Dicts.Fields.GetOrAdd(name)
	if added {
		buf = append(buf, NEW_FIELD)
		buf = varint.AppendUvarint(buf, uint64(len(name)))
		buf = append(buf, name...)
	} else {
		buf = append(buf, FieldRefByte(slot))
	}

	return buf, slot
}

// DecodeFieldToken reads a field-name token (ref or NEW_FIELD) and returns
// the field name, its dictionary slot, and the position just past the token.
func (c *Codec) DecodeFieldToken(data []byte, pos int) (string, int, int, error) {
	if pos >= len(data) {
		return "", 0, 0, errTruncated("field token")
	}

	b := data[pos]

	switch {
	case IsFieldRef(b):
		slot := RefSlot(b)
		name, ok := c.Dicts.Fields.Value(slot)
		if !ok {
			return "", 0, 0, errDictMiss("field", slot)
		}

		return name, slot, pos + 1, nil

	case b == NEW_FIELD:
		length, n, err := varint.Uvarint(data[pos+1:])
		if err != nil {
			return "", 0, 0, err
		}
		start := pos + 1 + n
		end := start + int(length)
		if end > len(data) {
			return "", 0, 0, errTruncated("NEW_FIELD")
		}
		name := string(data[start:end])
		slot, _, _ := c.Dicts.Fields.GetOrAdd(name)

		return name, slot, end, nil

	default:
		return "", 0, 0, errUnknown(b)
	}
}

// EncodeValue appends the token encoding of v to buf. When a field is
// currently in scope (via a prior EncodeFieldToken/pushField), integer
// values are delta-encoded against that field's last value when the delta
// token is shorter than a full INT token.
func (c *Codec) EncodeValue(buf []byte, v value.Value) ([]byte, error) {
	switch v.Kind() {
	case value.KindNull:
		return append(buf, NULL), nil

	case value.KindBool:
		if v.Bool() {
			return append(buf, BOOL_TRUE), nil
		}
		return append(buf, BOOL_FALSE), nil

	case value.KindInt:
		return c.encodeInt(buf, v.Int()), nil

	case value.KindFloat:
		return c.encodeFloat(buf, v.Float()), nil

	case value.KindString:
		return c.encodeString(buf, v.Str()), nil

	case value.KindMAC:
		return c.encodeMAC(buf, v.MACBytes()), nil

	case value.KindBytes:
		b := v.Bytes()
		buf = append(buf, BINARY)
		buf = varint.AppendUvarint(buf, uint64(len(b)))
		return append(buf, b...), nil

	case value.KindArray:
		arr := v.Array()
		buf = append(buf, ARRAY_START)
		buf = varint.AppendUvarint(buf, uint64(len(arr)))
		for _, el := range arr {
			var err error
			buf, err = c.EncodeValue(buf, el)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, ARRAY_END), nil

	case value.KindObject:
		buf = append(buf, OBJECT_START)
		for _, f := range v.Object().Fields {
			var slot int
			buf, slot = c.EncodeFieldToken(buf, f.Name)
			c.pushField(slot)
			var err error
			buf, err = c.EncodeValue(buf, f.Value)
			c.popField()
			if err != nil {
				return nil, err
			}
		}
		return append(buf, OBJECT_END), nil

	default:
		return nil, errs.New(errs.InvalidValue, "unrecognized value kind %v", v.Kind())
	}
}

func (c *Codec) encodeInt(buf []byte, i int64) []byte {
	slot := c.currentField()
	if slot >= 0 {
		st := c.state(slot)
		if st.set && !st.isFloat {
			delta := AppendDeltaToken(nil, i-st.lastInt)
			st.lastInt = i
			if len(delta) < 1+len(varint.AppendVarint(nil, i)) {
				return append(buf, delta...)
			}
			buf = append(buf, INT)
			return varint.AppendVarint(buf, i)
		}
		st.set, st.isFloat, st.lastInt = true, false, i
	}

	buf = append(buf, INT)
	return varint.AppendVarint(buf, i)
}

// encodeFloat always emits a full DOUBLE literal; the generic path never
// delta-encodes floats (only the batch numeric-column path does).
func (c *Codec) encodeFloat(buf []byte, f float64) []byte {
	slot := c.currentField()
	if slot >= 0 {
		st := c.state(slot)
		st.set, st.isFloat, st.lastF = true, true, f
	}

	raw := varint.EncodeDouble(f)
	buf = append(buf, DOUBLE)
	return append(buf, raw[:]...)
}

func (c *Codec) encodeString(buf []byte, s string) []byte {
	if varint.IsMAC(s) {
		raw, err := varint.ParseMAC(s)
		if err == nil {
			return c.encodeMAC(buf, raw)
		}
	}

	slot, added, _ := c.Dicts.Strings.GetOrAdd(s)
	if added {
		buf = append(buf, NEW_STRING)
		buf = varint.AppendUvarint(buf, uint64(len(s)))
		return append(buf, s...)
	}

	return append(buf, StringRefByte(slot))
}

func (c *Codec) encodeMAC(buf []byte, raw [6]byte) []byte {
	key := varint.FormatMAC(raw)

	slot, added, _ := c.Dicts.MACs.GetOrAdd(key)
	if added {
		buf = append(buf, NEW_MAC)
		return append(buf, raw[:]...)
	}

	return append(buf, MACRefByte(slot))
}

// DecodeValue reads one value token (and its nested payload) starting at
// data[pos]. Returns the decoded value and the position just past it.
func (c *Codec) DecodeValue(data []byte, pos int) (value.Value, int, error) {
	if pos >= len(data) {
		return value.Value{}, 0, errTruncated("value token")
	}

	b := data[pos]

	switch {
	case IsStringRef(b):
		slot := RefSlot(b)
		s, ok := c.Dicts.Strings.Value(slot)
		if !ok {
			return value.Value{}, 0, errDictMiss("string", slot)
		}
		return value.Str(s), pos + 1, nil

	case IsMACRef(b):
		slot := RefSlot(b)
		s, ok := c.Dicts.MACs.Value(slot)
		if !ok {
			return value.Value{}, 0, errDictMiss("mac", slot)
		}
		raw, _ := varint.ParseMAC(s)
		return value.MACFromBytes(raw), pos + 1, nil

	case IsFieldRef(b):
		return value.Value{}, 0, errUnknown(b)

	case b == INT:
		i, n, err := varint.Varint(data[pos+1:])
		if err != nil {
			return value.Value{}, 0, err
		}
		c.recordInt(i)
		return value.Int(i), pos + 1 + n, nil

	case b == FLOAT16:
		if pos+3 > len(data) {
			return value.Value{}, 0, errTruncated("FLOAT16")
		}
		f := varint.DecodeFixed16(data[pos+1 : pos+3])
		c.recordFloat(f)
		return value.Float(f), pos + 3, nil

	case b == FLOAT32:
		if pos+5 > len(data) {
			return value.Value{}, 0, errTruncated("FLOAT32")
		}
		f := varint.DecodeFixed32(data[pos+1 : pos+5])
		c.recordFloat(f)
		return value.Float(f), pos + 5, nil

	case b == DOUBLE:
		if pos+9 > len(data) {
			return value.Value{}, 0, errTruncated("DOUBLE")
		}
		f := varint.DecodeDouble(data[pos+1 : pos+9])
		c.recordFloat(f)
		return value.Float(f), pos + 9, nil

	case IsDeltaToken(b):
		return c.decodeDelta(data, pos)

	case b == NEW_STRING:
		length, n, err := varint.Uvarint(data[pos+1:])
		if err != nil {
			return value.Value{}, 0, err
		}
		start := pos + 1 + n
		end := start + int(length)
		if end > len(data) {
			return value.Value{}, 0, errTruncated("NEW_STRING")
		}
		s := string(data[start:end])
		c.Dicts.Strings.GetOrAdd(s)
		return value.Str(s), end, nil

	case b == NEW_MAC:
		if pos+7 > len(data) {
			return value.Value{}, 0, errTruncated("NEW_MAC")
		}
		var raw [6]byte
		copy(raw[:], data[pos+1:pos+7])
		c.Dicts.MACs.GetOrAdd(varint.FormatMAC(raw))
		return value.MACFromBytes(raw), pos + 7, nil

	case b == BOOL_TRUE:
		return value.Bool(true), pos + 1, nil

	case b == BOOL_FALSE:
		return value.Bool(false), pos + 1, nil

	case b == NULL:
		return value.Null(), pos + 1, nil

	case b == ARRAY_START:
		length, n, err := varint.Uvarint(data[pos+1:])
		if err != nil {
			return value.Value{}, 0, err
		}
		p := pos + 1 + n
		elems := make([]value.Value, 0, length)
		for i := uint64(0); i < length; i++ {
			var el value.Value
			el, p, err = c.DecodeValue(data, p)
			if err != nil {
				return value.Value{}, 0, err
			}
			elems = append(elems, el)
		}
		if p >= len(data) || data[p] != ARRAY_END {
			return value.Value{}, 0, errs.New(errs.MalformedInput, "array missing ARRAY_END terminator")
		}
		return value.Array(elems...), p + 1, nil

	case b == OBJECT_START:
		p := pos + 1
		var fields []value.Field
		for {
			if p >= len(data) {
				return value.Value{}, 0, errTruncated("OBJECT_END")
			}
			if data[p] == OBJECT_END {
				p++
				break
			}

			name, slot, np, err := c.DecodeFieldToken(data, p)
			if err != nil {
				return value.Value{}, 0, err
			}

			c.pushField(slot)
			var fv value.Value
			fv, p, err = c.DecodeValue(data, np)
			c.popField()
			if err != nil {
				return value.Value{}, 0, err
			}

			fields = append(fields, value.F(name, fv))
		}
		return value.Obj(fields...), p, nil

	case b == BINARY:
		length, n, err := varint.Uvarint(data[pos+1:])
		if err != nil {
			return value.Value{}, 0, err
		}
		start := pos + 1 + n
		end := start + int(length)
		if end > len(data) {
			return value.Value{}, 0, errTruncated("BINARY")
		}
		return value.Bytes(data[start:end]), end, nil

	default:
		return value.Value{}, 0, errUnknown(b)
	}
}

func (c *Codec) recordInt(i int64) {
	slot := c.currentField()
	if slot < 0 {
		return
	}
	st := c.state(slot)
	st.set, st.isFloat, st.lastInt = true, false, i
}

func (c *Codec) recordFloat(f float64) {
	slot := c.currentField()
	if slot < 0 {
		return
	}
	st := c.state(slot)
	st.set, st.isFloat, st.lastF = true, true, f
}

func (c *Codec) decodeDelta(data []byte, pos int) (value.Value, int, error) {
	slot := c.currentField()
	if slot < 0 {
		return value.Value{}, 0, errNoDeltaContext()
	}
	st := c.state(slot)
	if !st.set {
		return value.Value{}, 0, errNoDeltaContext()
	}

	raw, np, err := ReadDeltaToken(data, pos)
	if err != nil {
		return value.Value{}, 0, err
	}

	if st.isFloat {
		st.lastF += float64(raw) / deltaScale
		return value.Float(st.lastF), np, nil
	}

	st.lastInt += raw
	return value.Int(st.lastInt), np, nil
}
