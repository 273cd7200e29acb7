// Package value defines PACKR's in-memory record model: a tagged variant
// that can hold any of the primitive kinds the codec supports, plus arrays
// and order-preserving objects. Go's map[string]any loses first-seen key
// order, which the batch engine's schema discovery depends on, so objects
// are represented as an ordered slice of fields instead.
package value

import "github.com/jaylikesbunda/packr/varint"

// Kind identifies which field of a Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindMAC
	KindBytes
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindMAC:
		return "mac"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged union over PACKR's supported value kinds. The zero Value
// is KindNull.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	mac  [6]byte
	arr  []Value
	obj  *Object
}

// Field is a single name/value pair within an Object, in declaration order.
type Field struct {
	Name  string
	Value Value
}

// Object is an ordered collection of fields. Unlike map[string]any, iterating
// Fields always yields the order fields were added in, which is what lets the
// encoder assign stable field indices on first sight of each key.
type Object struct {
	Fields []Field
}

// Get returns the value for name and whether it was found. Objects are
// typically small (a handful of fields), so a linear scan is cheaper than
// maintaining a side index.
func (o *Object) Get(name string) (Value, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}

	return Value{}, false
}

// Set appends a field if name is new, or overwrites in place if it already
// exists, preserving the original position.
func (o *Object) Set(name string, v Value) {
	for i, f := range o.Fields {
		if f.Name == name {
			o.Fields[i].Value = v
			return
		}
	}

	o.Fields = append(o.Fields, Field{Name: name, Value: v})
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Str returns a string Value.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// MAC parses s as a MAC address and returns a KindMAC Value holding its
// canonical uppercase colon-separated form. Returns an error if s does not
// match the accepted MAC pattern.
func MAC(s string) (Value, error) {
	raw, err := varint.ParseMAC(s)
	if err != nil {
		return Value{}, err
	}

	return Value{kind: KindMAC, mac: raw, s: varint.FormatMAC(raw)}, nil
}

// MACFromBytes builds a KindMAC Value directly from 6 raw bytes, skipping
// string parsing. Used by the decoder, which reads raw MAC bytes off the wire.
func MACFromBytes(raw [6]byte) Value {
	return Value{kind: KindMAC, mac: raw, s: varint.FormatMAC(raw)}
}

// Bytes returns a binary-blob Value.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, s: string(b)}
}

// Array returns an array Value containing vs, in order.
func Array(vs ...Value) Value {
	return Value{kind: KindArray, arr: vs}
}

// Obj returns an object Value containing fields, in order.
func Obj(fields ...Field) Value {
	return Value{kind: KindObject, obj: &Object{Fields: fields}}
}

// F is a convenience constructor for a Field, used when building Obj calls.
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

// Kind reports which variant is populated.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload. Only meaningful when Kind() == KindBool.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload. Only meaningful when Kind() == KindInt.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload. Only meaningful when Kind() == KindFloat.
func (v Value) Float() float64 { return v.f }

// Str returns the string payload. Meaningful for KindString, KindMAC
// (canonical form), and KindBytes (raw bytes reinterpreted as a string).
func (v Value) Str() string { return v.s }

// MACBytes returns the raw 6-byte MAC payload. Only meaningful when
// Kind() == KindMAC.
func (v Value) MACBytes() [6]byte { return v.mac }

// Bytes returns the binary payload. Only meaningful when Kind() == KindBytes.
func (v Value) Bytes() []byte { return []byte(v.s) }

// Array returns the element slice. Only meaningful when Kind() == KindArray.
func (v Value) Array() []Value { return v.arr }

// Object returns the underlying ordered object. Only meaningful when
// Kind() == KindObject.
func (v Value) Object() *Object { return v.obj }

// IsNumeric reports whether v holds a value the batch engine's numeric column
// path can operate on: ints and floats, but not bools even though Go's type
// system would otherwise let a bool masquerade as a 0/1 integer.
func (v Value) IsNumeric() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

// Equal reports whether v and other hold the same kind and payload,
// recursing into arrays and objects. Used by tests to assert round trips.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString, KindBytes:
		return a.s == b.s
	case KindMAC:
		return a.mac == b.mac
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}

		return true
	case KindObject:
		if a.obj == nil || b.obj == nil {
			return a.obj == b.obj
		}
		if len(a.obj.Fields) != len(b.obj.Fields) {
			return false
		}
		for i := range a.obj.Fields {
			if a.obj.Fields[i].Name != b.obj.Fields[i].Name {
				return false
			}
			if !Equal(a.obj.Fields[i].Value, b.obj.Fields[i].Value) {
				return false
			}
		}

		return true
	default:
		return false
	}
}
