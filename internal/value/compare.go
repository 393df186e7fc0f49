package value

import (
	"math"

	"luavm/internal/errors"
)

// CompareOp identifies one of the three comparison tags the
// host-embedding API's compare(i,j,op_tag) accepts (spec §6.1, §4.3).
type CompareOp int

const (
	CmpEQ CompareOp = iota
	CmpLT
	CmpLE
)

// Eq implements spec §4.3's EQ: identical to Equal, exposed separately
// so callers working purely in terms of operators don't need to know
// Equal is also the table-key-comparison primitive.
func Eq(a, b Value) bool { return Equal(a, b) }

// Lt implements spec §4.3's LT: numeric comparison across
// Integer/Float, lexicographic for String, error otherwise.
func Lt(a, b Value) (bool, error) {
	if a.IsNumber() && b.IsNumber() {
		return numberLt(a, b), nil
	}
	if a.IsString() && b.IsString() {
		return a.str < b.str, nil
	}
	return false, comparisonError(a, b)
}

// Le implements spec §4.3's LE.
func Le(a, b Value) (bool, error) {
	if a.IsNumber() && b.IsNumber() {
		return numberLe(a, b), nil
	}
	if a.IsString() && b.IsString() {
		return a.str <= b.str, nil
	}
	return false, comparisonError(a, b)
}

func numberLt(a, b Value) bool {
	switch {
	case a.kind == KindInteger && b.kind == KindInteger:
		return a.integer < b.integer
	case a.kind == KindInteger:
		return ltIntFloat(a.integer, b.float)
	case b.kind == KindInteger:
		return ltFloatInt(a.float, b.integer)
	default:
		return a.float < b.float
	}
}

func numberLe(a, b Value) bool {
	switch {
	case a.kind == KindInteger && b.kind == KindInteger:
		return a.integer <= b.integer
	case a.kind == KindInteger:
		return leIntFloat(a.integer, b.float)
	case b.kind == KindInteger:
		return leFloatInt(a.float, b.integer)
	default:
		return a.float <= b.float
	}
}

// maxIntFitsFloat is the largest magnitude an int64 can hold while
// still converting to float64 and back without loss (2^53, the width
// of float64's mantissa). Below this bound a straight float compare
// is exact (2^53 itself is still exact); above it, Lua 5.3's LTintfloat/LEintfloat family
// instead floors/ceils the float and compares in the integer domain.
const maxIntFitsFloat = 1 << 53

func intFitsFloat(i int64) bool {
	return i >= -maxIntFitsFloat && i <= maxIntFitsFloat
}

func floorToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	ff := math.Floor(f)
	if ff < math.MinInt64 || ff >= math.MaxInt64 {
		return 0, false
	}
	return int64(ff), true
}

func ceilToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	fc := math.Ceil(f)
	if fc < math.MinInt64 || fc >= math.MaxInt64 {
		return 0, false
	}
	return int64(fc), true
}

func ltIntFloat(i int64, f float64) bool {
	if math.IsNaN(f) {
		return false
	}
	if intFitsFloat(i) {
		return float64(i) < f
	}
	if fi, ok := ceilToInt(f); ok {
		return i < fi
	}
	return f > 0
}

func leIntFloat(i int64, f float64) bool {
	if math.IsNaN(f) {
		return false
	}
	if intFitsFloat(i) {
		return float64(i) <= f
	}
	if fi, ok := floorToInt(f); ok {
		return i <= fi
	}
	return f > 0
}

func ltFloatInt(f float64, i int64) bool {
	if math.IsNaN(f) {
		return false
	}
	if intFitsFloat(i) {
		return f < float64(i)
	}
	if fi, ok := floorToInt(f); ok {
		return fi < i
	}
	return f < 0
}

func leFloatInt(f float64, i int64) bool {
	if math.IsNaN(f) {
		return false
	}
	if intFitsFloat(i) {
		return f <= float64(i)
	}
	if fi, ok := ceilToInt(f); ok {
		return fi <= i
	}
	return f < 0
}

func comparisonError(a, b Value) error {
	an, bn := TypeName(a.TypeID()), TypeName(b.TypeID())
	if an == bn {
		return errors.NewComparisonError("attempt to compare two %s values", an)
	}
	return errors.NewComparisonError("attempt to compare %s with %s", an, bn)
}

// Len implements spec §4.4's length operator: String yields its byte
// length, Table yields a border (Table.Len), anything else errors.
func Len(v Value) (Value, error) {
	switch v.kind {
	case KindString:
		return Int(int64(len(v.str))), nil
	case KindTable:
		return Int(int64(v.table.Len())), nil
	default:
		return Value{}, errors.NewTypeError("attempt to get length of a %s value", TypeName(v.TypeID()))
	}
}

// Concat implements spec §4.4's concatenation operator: both operands
// must coerce to String (String passes through, Integer/Float format
// as decimal); anything else errors.
func Concat(a, b Value) (Value, error) {
	as, aok := CoerceToString(a)
	bs, bok := CoerceToString(b)
	if !aok || !bok {
		bad := a
		if aok {
			bad = b
		}
		return Value{}, errors.NewConcatError("attempt to concatenate a %s value", TypeName(bad.TypeID()))
	}
	return Str(as + bs), nil
}
