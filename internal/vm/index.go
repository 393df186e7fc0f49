package vm

import (
	"luavm/internal/errors"
	"luavm/internal/value"
)

// index implements GETTABLE/GETTABUP/SELF's table read (spec §4.6.1):
// indexing anything but a Table is a TypeError (no metatable fallback
// per spec §9's open question).
func index(t, key value.Value) (value.Value, error) {
	if !t.IsTable() {
		return value.Value{}, errors.NewTypeError("attempt to index a %s value", value.TypeName(t.TypeID()))
	}
	return t.AsTable().Get(key), nil
}

// newindex implements SETTABLE/SETTABUP's table write.
func newindex(t, key, val value.Value) error {
	if !t.IsTable() {
		return errors.NewTypeError("attempt to index a %s value", value.TypeName(t.TypeID()))
	}
	return t.AsTable().Set(key, val)
}

// decodeFB decodes Lua's "floating byte" size hint (mantissa in the
// low 3 bits, exponent in the high 5, per lobject.c's luaO_fb2int):
// values below 8 are exact; above that, (1<<3 | mantissa) << (exponent-1).
func decodeFB(x int) int {
	if x < 8 {
		return x
	}
	mantissa := x & 7
	exponent := (x >> 3) & 0x1F
	return (mantissa + 8) << uint(exponent-1)
}
