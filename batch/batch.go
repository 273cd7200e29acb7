// Package batch implements PACKR's column-major ULTRA_BATCH encoding: given a
// non-empty sequence of homogeneous object records, it discovers the union
// schema, classifies each column (constant, delta-numeric, or RLE string),
// and emits a compact column-major stream instead of repeating the generic
// per-record token tree.
package batch

import (
	"math"

	"github.com/jaylikesbunda/packr/errs"
	"github.com/jaylikesbunda/packr/format"
	"github.com/jaylikesbunda/packr/internal/pool"
	"github.com/jaylikesbunda/packr/rice"
	"github.com/jaylikesbunda/packr/token"
	"github.com/jaylikesbunda/packr/value"
	"github.com/jaylikesbunda/packr/varint"
)

// Column flags, stored one byte per field in the header.
const (
	FlagConstant = format.ColumnConstant
	FlagAllDelta = format.ColumnAllDelta
	FlagRLE      = format.ColumnRLE
	FlagHasNulls = format.ColumnHasNulls
)

// Eligible reports whether records qualifies for batch mode: non-empty with
// an object as its first element. Nested object/array field values are not
// flattened into columns: such a column is RLE-coded and each value in it is
// written with the generic token encoding.
func Eligible(records []value.Value) bool {
	return len(records) > 0 && records[0].Kind() == value.KindObject
}

// Encode appends the ULTRA_BATCH encoding of records to buf.
func Encode(buf []byte, codec *token.Codec, records []value.Value) ([]byte, error) {
	fieldNames, err := discoverSchema(records)
	if err != nil {
		return nil, err
	}

	columns := make([][]value.Value, len(fieldNames))
	for i, name := range fieldNames {
		col := make([]value.Value, len(records))
		for r, rec := range records {
			if fv, ok := rec.Object().Get(name); ok {
				col[r] = fv
			} else {
				col[r] = value.Null()
			}
		}
		columns[i] = col
	}

	flags := make([]format.ColumnFlag, len(fieldNames))
	for i, col := range columns {
		flags[i] = classify(col)
	}

	buf = append(buf, token.ULTRA_BATCH)
	buf = varint.AppendUvarint(buf, uint64(len(records)))
	buf = varint.AppendUvarint(buf, uint64(len(fieldNames)))

	for i, name := range fieldNames {
		buf, _ = codec.EncodeFieldToken(buf, name)
		buf = append(buf, byte(flags[i]))
	}

	for i, col := range columns {
		buf, err = encodeColumn(buf, codec, col, flags[i])
		if err != nil {
			return nil, err
		}
	}

	return buf, nil
}

// Decode reads an ULTRA_BATCH token (expected at data[pos]) and reconstructs
// the original record sequence.
func Decode(codec *token.Codec, data []byte, pos int) ([]value.Value, int, error) {
	if pos >= len(data) || data[pos] != token.ULTRA_BATCH {
		return nil, 0, errs.New(errs.UnknownToken, "expected ULTRA_BATCH token")
	}

	p := pos + 1

	recordCount64, n, err := varint.Uvarint(data[p:])
	if err != nil {
		return nil, 0, err
	}
	p += n
	recordCount := int(recordCount64)

	fieldCount64, n, err := varint.Uvarint(data[p:])
	if err != nil {
		return nil, 0, err
	}
	p += n
	fieldCount := int(fieldCount64)

	names := make([]string, fieldCount)
	colFlags := make([]format.ColumnFlag, fieldCount)

	for i := 0; i < fieldCount; i++ {
		name, _, np, err := codec.DecodeFieldToken(data, p)
		if err != nil {
			return nil, 0, err
		}
		p = np
		if p >= len(data) {
			return nil, 0, errs.New(errs.MalformedInput, "truncated column flags byte")
		}
		names[i] = name
		colFlags[i] = format.ColumnFlag(data[p])
		p++
	}

	columns := make([][]value.Value, fieldCount)
	for i := 0; i < fieldCount; i++ {
		var col []value.Value
		col, p, err = decodeColumn(codec, data, p, colFlags[i], recordCount)
		if err != nil {
			return nil, 0, err
		}
		columns[i] = col
	}

	records := make([]value.Value, recordCount)
	for r := 0; r < recordCount; r++ {
		var fields []value.Field
		for i, name := range names {
			v := columns[i][r]
			if !v.IsNull() {
				fields = append(fields, value.F(name, v))
			}
		}
		records[r] = value.Obj(fields...)
	}

	return records, p, nil
}

func discoverSchema(records []value.Value) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	for _, rec := range records {
		if rec.Kind() != value.KindObject {
			return nil, errs.New(errs.InvalidValue, "batch mode requires every record to be an object")
		}
		for _, f := range rec.Object().Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				names = append(names, f.Name)
			}
		}
	}

	return names, nil
}

func classify(col []value.Value) format.ColumnFlag {
	allNull := true
	hasNull := false
	for _, v := range col {
		if v.IsNull() {
			hasNull = true
		} else {
			allNull = false
		}
	}

	if allNull {
		return FlagConstant | FlagHasNulls
	}

	if hasNull {
		var nonNull []value.Value
		for _, v := range col {
			if !v.IsNull() {
				nonNull = append(nonNull, v)
			}
		}
		switch {
		case allEqual(nonNull):
			return FlagConstant | FlagHasNulls
		case allNumeric(nonNull):
			return FlagAllDelta | FlagHasNulls
		default:
			return FlagRLE | FlagHasNulls
		}
	}

	switch {
	case allEqual(col):
		return FlagConstant
	case allNumeric(col):
		return FlagAllDelta
	default:
		return FlagRLE
	}
}

func allEqual(vs []value.Value) bool {
	for _, v := range vs[1:] {
		if !value.Equal(v, vs[0]) {
			return false
		}
	}

	return true
}

func allNumeric(vs []value.Value) bool {
	for _, v := range vs {
		if !v.IsNumeric() {
			return false
		}
	}

	return true
}

func encodeColumn(buf []byte, codec *token.Codec, col []value.Value, flags format.ColumnFlag) ([]byte, error) {
	if flags&FlagHasNulls != 0 {
		buf = append(buf, nullBitmap(col)...)
	}

	switch {
	case flags&FlagConstant != 0:
		rep := col[0]
		if flags&FlagHasNulls != 0 {
			for _, v := range col {
				if !v.IsNull() {
					rep = v
					break
				}
			}
		}
		return codec.EncodeValue(buf, rep)

	case flags&FlagAllDelta != 0:
		return encodeNumericColumn(buf, col)

	default:
		return encodeRLEColumn(buf, codec, col)
	}
}

func decodeColumn(codec *token.Codec, data []byte, pos int, flags format.ColumnFlag, recordCount int) ([]value.Value, int, error) {
	p := pos

	var bitmap []byte
	if flags&FlagHasNulls != 0 {
		bmLen := (recordCount + 7) / 8
		if p+bmLen > len(data) {
			return nil, 0, errs.New(errs.MalformedInput, "truncated null bitmap")
		}
		bitmap = data[p : p+bmLen]
		p += bmLen
	}

	var values []value.Value
	var err error

	switch {
	case flags&FlagConstant != 0:
		var rep value.Value
		rep, p, err = codec.DecodeValue(data, p)
		if err != nil {
			return nil, 0, err
		}
		values = make([]value.Value, recordCount)
		for r := range values {
			values[r] = rep
		}

	case flags&FlagAllDelta != 0:
		values, p, err = decodeNumericColumn(data, p, recordCount)
		if err != nil {
			return nil, 0, err
		}

	default:
		values, p, err = decodeRLEColumn(codec, data, p, recordCount)
		if err != nil {
			return nil, 0, err
		}
	}

	if flags&FlagHasNulls != 0 {
		for r := 0; r < recordCount; r++ {
			bit := (bitmap[r/8] >> uint(r%8)) & 1
			if bit == 0 {
				values[r] = value.Null()
			}
		}
	}

	return values, p, nil
}

func nullBitmap(col []value.Value) []byte {
	out := make([]byte, (len(col)+7)/8)
	for r, v := range col {
		if !v.IsNull() {
			out[r/8] |= 1 << uint(r%8)
		}
	}

	return out
}

func numericAsInt(v value.Value) int64 {
	if v.Kind() == value.KindInt {
		return v.Int()
	}

	return int64(v.Float())
}

func numericAsFloat(v value.Value) float64 {
	if v.Kind() == value.KindInt {
		return float64(v.Int())
	}

	return v.Float()
}

func isFloatCategory(col []value.Value) bool {
	for _, v := range col {
		if v.IsNull() {
			continue
		}
		if v.Kind() == value.KindFloat {
			f := v.Float()
			if f != math.Trunc(f) {
				return true
			}
		}
	}

	return false
}

func encodeNumericColumn(buf []byte, col []value.Value) ([]byte, error) {
	n := len(col)
	floatCategory := isFloatCategory(col)

	var deltas []int64

	if !floatCategory {
		ints, cleanup := pool.GetInt64Slice(n)
		defer cleanup()

		prev := int64(0)
		for i, v := range col {
			if !v.IsNull() {
				prev = numericAsInt(v)
			}
			ints[i] = prev
		}

		buf = append(buf, token.INT)
		buf = varint.AppendVarint(buf, ints[0])

		deltas = make([]int64, n-1)
		for i := 1; i < n; i++ {
			deltas[i-1] = ints[i] - ints[i-1]
		}
	} else {
		floats, cleanup := pool.GetFloat64Slice(n)
		defer cleanup()

		prev := 0.0
		for i, v := range col {
			if !v.IsNull() {
				prev = numericAsFloat(v)
			}
			floats[i] = prev
		}

		raw := varint.EncodeDouble(floats[0])
		buf = append(buf, token.DOUBLE)
		buf = append(buf, raw[:]...)

		deltas = make([]int64, n-1)
		for i := 1; i < n; i++ {
			d := floats[i] - floats[i-1]
			deltas[i-1] = int64(math.Round(d * 65536))
		}
	}

	return encodeDeltaStream(buf, deltas), nil
}

func decodeNumericColumn(data []byte, pos int, recordCount int) ([]value.Value, int, error) {
	if recordCount == 0 {
		return nil, pos, nil
	}

	if pos >= len(data) {
		return nil, 0, errs.New(errs.MalformedInput, "truncated numeric column")
	}

	p := pos
	var firstInt int64
	var firstFloat float64
	isFloat := false

	switch data[p] {
	case token.INT:
		v, n, err := varint.Varint(data[p+1:])
		if err != nil {
			return nil, 0, err
		}
		firstInt = v
		p += 1 + n

	case token.DOUBLE:
		if p+9 > len(data) {
			return nil, 0, errs.New(errs.MalformedInput, "truncated numeric column absolute")
		}
		firstFloat = varint.DecodeDouble(data[p+1 : p+9])
		isFloat = true
		p += 9

	default:
		return nil, 0, errs.New(errs.UnknownToken, "numeric column missing INT/DOUBLE absolute")
	}

	count := recordCount - 1

	deltas, p, err := decodeDeltaStream(data, p, count)
	if err != nil {
		return nil, 0, err
	}

	values := make([]value.Value, recordCount)

	if !isFloat {
		cur := firstInt
		values[0] = value.Int(cur)
		for i := 0; i < count; i++ {
			cur += deltas[i]
			values[i+1] = value.Int(cur)
		}
	} else {
		cur := firstFloat
		values[0] = value.Float(cur)
		for i := 0; i < count; i++ {
			cur += float64(deltas[i]) / 65536.0
			values[i+1] = value.Float(cur)
		}
	}

	return values, p, nil
}

// zigzagMax returns the largest zigzag-mapped magnitude across deltas, the
// same quantity rice.Encode uses internally to pick its parameter k.
func zigzagMax(deltas []int64) uint64 {
	var maxAbs uint64
	for _, d := range deltas {
		u := varint.ZigzagEncode(d)
		if u > maxAbs {
			maxAbs = u
		}
	}

	return maxAbs
}

// encodeDeltaStream picks bit-packed, Rice, or variable-length-token encoding
// for deltas, per the cost thresholds in the column-analysis rules.
func encodeDeltaStream(buf []byte, deltas []int64) []byte {
	n := len(deltas)
	if n == 0 {
		return buf
	}

	bitpackEligible := true
	var maxAbs int64

	for _, d := range deltas {
		if !token.InDeltaSmallRange(d) {
			bitpackEligible = false
		}
		a := d
		if a < 0 {
			a = -a
		}
		if a > maxAbs {
			maxAbs = a
		}
	}

	if bitpackEligible {
		bitpackCost := (n + 1) / 2
		fallback := encodeVariableTokenDeltas(deltas)

		if float64(len(fallback)) < 0.8*float64(bitpackCost) {
			return append(buf, fallback...)
		}

		buf = append(buf, token.BITPACK_COLUMN)
		buf = varint.AppendUvarint(buf, uint64(n))
		return append(buf, packNibbles(deltas)...)
	}

	if n >= 10 && maxAbs < 1024 {
		k := rice.ChooseK(zigzagMax(deltas))
		estBytes := 1 + (rice.EstimateBits(deltas, k)+7)/8
		if float64(estBytes) < 1.5*float64(n) {
			riceBytes := rice.Encode(deltas)
			buf = append(buf, token.RICE_COLUMN)
			buf = varint.AppendUvarint(buf, uint64(n))
			return append(buf, riceBytes...)
		}
	}

	return append(buf, encodeVariableTokenDeltas(deltas)...)
}

func decodeDeltaStream(data []byte, pos int, count int) ([]int64, int, error) {
	if count == 0 {
		return nil, pos, nil
	}

	if pos >= len(data) {
		return nil, 0, errs.New(errs.MalformedInput, "truncated delta stream")
	}

	p := pos

	switch data[p] {
	case token.BITPACK_COLUMN:
		p++
		cnt, n, err := varint.Uvarint(data[p:])
		if err != nil {
			return nil, 0, err
		}
		p += n
		if int(cnt) != count {
			return nil, 0, errs.New(errs.MalformedInput, "bit-packed column count mismatch")
		}
		nbytes := (int(cnt) + 1) / 2
		if p+nbytes > len(data) {
			return nil, 0, errs.New(errs.MalformedInput, "truncated bit-packed column")
		}
		deltas := make([]int64, cnt)
		for i := 0; i < int(cnt); i++ {
			b := data[p+i/2]
			var nib byte
			if i%2 == 0 {
				nib = b >> 4
			} else {
				nib = b & 0x0F
			}
			deltas[i] = int64(nib) - 8
		}
		p += nbytes

		return deltas, p, nil

	case token.RICE_COLUMN:
		p++
		cnt, n, err := varint.Uvarint(data[p:])
		if err != nil {
			return nil, 0, err
		}
		p += n
		if int(cnt) != count {
			return nil, 0, errs.New(errs.MalformedInput, "rice column count mismatch")
		}
		deltas, consumed, err := rice.DecodeWithLen(data[p:], int(cnt))
		if err != nil {
			return nil, 0, err
		}
		p += consumed

		return deltas, p, nil

	default:
		return decodeVariableTokenDeltas(data, p, count)
	}
}

func packNibbles(deltas []int64) []byte {
	out := make([]byte, (len(deltas)+1)/2)
	for i, d := range deltas {
		nib := byte(d+8) & 0x0F
		if i%2 == 0 {
			out[i/2] = nib << 4
		} else {
			out[i/2] |= nib
		}
	}

	return out
}

func encodeVariableTokenDeltas(deltas []int64) []byte {
	var buf []byte

	i := 0
	for i < len(deltas) {
		if deltas[i] == 0 {
			j := i
			for j < len(deltas) && deltas[j] == 0 {
				j++
			}
			if run := j - i; run >= 4 {
				buf = append(buf, token.RLE_REPEAT)
				buf = varint.AppendUvarint(buf, uint64(run))
				i = j
				continue
			}
		}

		buf = token.AppendDeltaToken(buf, deltas[i])
		i++
	}

	return buf
}

func decodeVariableTokenDeltas(data []byte, pos int, count int) ([]int64, int, error) {
	deltas := make([]int64, 0, count)
	p := pos

	for len(deltas) < count {
		if p >= len(data) {
			return nil, 0, errs.New(errs.MalformedInput, "truncated delta token stream")
		}

		if data[p] == token.RLE_REPEAT {
			p++
			run, n, err := varint.Uvarint(data[p:])
			if err != nil {
				return nil, 0, err
			}
			p += n
			for i := uint64(0); i < run; i++ {
				deltas = append(deltas, 0)
			}
			continue
		}

		d, np, err := token.ReadDeltaToken(data, p)
		if err != nil {
			return nil, 0, err
		}
		p = np
		deltas = append(deltas, d)
	}

	if len(deltas) != count {
		return nil, 0, errs.New(errs.MalformedInput, "delta token stream overran column length")
	}

	return deltas, p, nil
}

func encodeRLEColumn(buf []byte, codec *token.Codec, col []value.Value) ([]byte, error) {
	i := 0
	for i < len(col) {
		j := i + 1
		for j < len(col) && value.Equal(col[j], col[i]) {
			j++
		}
		runLen := j - i

		var err error
		buf, err = codec.EncodeValue(buf, col[i])
		if err != nil {
			return nil, err
		}

		if runLen > 1 {
			buf = append(buf, token.RLE_REPEAT)
			buf = varint.AppendUvarint(buf, uint64(runLen-1))
		}

		i = j
	}

	return buf, nil
}

func decodeRLEColumn(codec *token.Codec, data []byte, pos int, recordCount int) ([]value.Value, int, error) {
	values := make([]value.Value, 0, recordCount)
	p := pos

	for len(values) < recordCount {
		v, np, err := codec.DecodeValue(data, p)
		if err != nil {
			return nil, 0, err
		}
		p = np

		runLen := 1
		if p < len(data) && data[p] == token.RLE_REPEAT {
			p++
			extra, n, err := varint.Uvarint(data[p:])
			if err != nil {
				return nil, 0, err
			}
			p += n
			runLen += int(extra)
		}

		for i := 0; i < runLen; i++ {
			values = append(values, v)
		}
	}

	if len(values) != recordCount {
		return nil, 0, errs.New(errs.MalformedInput, "RLE column overran record count")
	}

	return values, p, nil
}
