// Package value implements the VM's runtime value representation
// (spec §3.1), the Table entity it indexes into (§3.2), and the
// Closure/Upvalue machinery that binds a compiled prototype to its
// captured variables (§3.4). The three live in one package because
// they are mutually recursive at the Go type level: a Value may hold
// a *Table or *Closure, a Table's hash part is keyed and valued by
// Value, and a Closure's upvalue cells hold Value.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// Kind tags which variant a Value holds. Integer and Float are kept
// as distinct variants all the way down — they behave distinguishably
// in table keys, equality, and arithmetic result-kind rules (spec §9),
// so nothing here conflates them into one "number" representation.
type Kind uint8

const (
	KindNil Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindTable
	KindClosure
)

// TypeID values match the access-surface mapping in spec §3.1.
type TypeID int8

const (
	TypeNone     TypeID = -1
	TypeNil      TypeID = 0
	TypeBoolean  TypeID = 1
	TypeNumber   TypeID = 3
	TypeString   TypeID = 4
	TypeTable    TypeID = 5
	TypeFunction TypeID = 6
)

// Value is a tagged union over exactly the seven variants spec §3.1
// names. The zero Value is Nil.
type Value struct {
	kind    Kind
	boolean bool
	integer int64
	float   float64
	str     string
	table   *Table
	closure *Closure
}

func Nil() Value                    { return Value{kind: KindNil} }
func Bool(b bool) Value             { return Value{kind: KindBoolean, boolean: b} }
func Int(i int64) Value             { return Value{kind: KindInteger, integer: i} }
func Float(f float64) Value         { return Value{kind: KindFloat, float: f} }
func Str(s string) Value            { return Value{kind: KindString, str: s} }
func FromTable(t *Table) Value      { return Value{kind: KindTable, table: t} }
func FromClosure(c *Closure) Value  { return Value{kind: KindClosure, closure: c} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool     { return v.kind == KindNil }
func (v Value) IsBoolean() bool { return v.kind == KindBoolean }
func (v Value) IsInteger() bool { return v.kind == KindInteger }
func (v Value) IsFloat() bool   { return v.kind == KindFloat }
func (v Value) IsNumber() bool  { return v.kind == KindInteger || v.kind == KindFloat }
func (v Value) IsString() bool  { return v.kind == KindString }
func (v Value) IsTable() bool   { return v.kind == KindTable }
func (v Value) IsClosure() bool { return v.kind == KindClosure }

// AsBoolean, AsInteger, etc. assume the matching Is* check already
// passed; they do not coerce (see Coerce* in coerce.go for that).
func (v Value) AsBoolean() bool     { return v.boolean }
func (v Value) AsInteger() int64    { return v.integer }
func (v Value) AsFloat() float64    { return v.float }
func (v Value) AsString() string    { return v.str }
func (v Value) AsTable() *Table     { return v.table }
func (v Value) AsClosure() *Closure { return v.closure }

// TypeID returns the access-surface type id (spec §3.1).
func (v Value) TypeID() TypeID {
	switch v.kind {
	case KindNil:
		return TypeNil
	case KindBoolean:
		return TypeBoolean
	case KindInteger, KindFloat:
		return TypeNumber
	case KindString:
		return TypeString
	case KindTable:
		return TypeTable
	case KindClosure:
		return TypeFunction
	default:
		return TypeNone
	}
}

func TypeName(t TypeID) string {
	switch t {
	case TypeNil:
		return "nil"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeTable:
		return "table"
	case TypeFunction:
		return "function"
	default:
		return "no value"
	}
}

// Truthy implements spec §3.1: only Nil and false are falsy.
func (v Value) Truthy() bool {
	if v.kind == KindNil {
		return false
	}
	if v.kind == KindBoolean {
		return v.boolean
	}
	return true
}

// Equal implements spec §3.1's equality rule: structural for
// Nil/Boolean/String, numeric across Integer/Float, reference identity
// for Table/Closure, and false across any other kind mismatch.
func Equal(a, b Value) bool {
	switch {
	case a.kind == KindNil && b.kind == KindNil:
		return true
	case a.kind == KindBoolean && b.kind == KindBoolean:
		return a.boolean == b.boolean
	case a.kind == KindString && b.kind == KindString:
		return a.str == b.str
	case a.kind == KindTable && b.kind == KindTable:
		return a.table == b.table
	case a.kind == KindClosure && b.kind == KindClosure:
		return a.closure == b.closure
	case a.IsNumber() && b.IsNumber():
		return numbersEqual(a, b)
	default:
		return false
	}
}

func numbersEqual(a, b Value) bool {
	if a.kind == KindInteger && b.kind == KindInteger {
		return a.integer == b.integer
	}
	if a.kind == KindFloat && b.kind == KindFloat {
		return a.float == b.float
	}
	// Mixed Integer/Float: equal iff the float represents that exact integer.
	var i int64
	var f float64
	if a.kind == KindInteger {
		i, f = a.integer, b.float
	} else {
		i, f = b.integer, a.float
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	fi, ok := floatToInteger(f)
	return ok && fi == i
}

// String renders v for display/concatenation purposes (spec §4.1's
// coerce-to-string rule for numbers; other kinds get a debug form,
// never used by CONCAT since those kinds fail to coerce).
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBoolean:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindFloat:
		return formatFloat(v.float)
	case KindString:
		return v.str
	case KindTable:
		return fmt.Sprintf("table: %p", v.table)
	case KindClosure:
		return fmt.Sprintf("function: %p", v.closure)
	default:
		return "?"
	}
}

// formatFloat implements spec §4.1's coerce-to-string rule for
// floats: %.14g-equivalent, but always marked as non-integer (1.0
// rather than 1), matching Lua 5.3 (and fixing the inconsistency
// spec §9 notes in the source this was distilled from).
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "nan"
	}
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', 14, 64)
	if !hasFloatMarker(s) {
		s += ".0"
	}
	return s
}

func hasFloatMarker(s string) bool {
	for _, r := range s {
		if r == '.' || r == 'e' || r == 'E' || r == 'n' || r == 'i' {
			return true
		}
	}
	return false
}
