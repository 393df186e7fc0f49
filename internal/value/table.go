package value

import "luavm/internal/errors"

// Table implements spec §3.2: a hybrid array part (dense, 1-based
// integer keys starting at 1) plus a hash part for everything else,
// with the array part grown/migrated the way Lua's own table.c does
// so that a pure sequence never pays hash-map overhead.
type Table struct {
	array []Value
	hash  map[Value]Value
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// NewTableSized returns an empty table pre-sized per NEWTABLE's decoded
// array/hash hints (spec §4.6.1); a size of 0 behaves like NewTable.
func NewTableSized(narr, nrec int) *Table {
	t := &Table{}
	if narr > 0 {
		t.array = make([]Value, 0, narr)
	}
	if nrec > 0 {
		t.hash = make(map[Value]Value, nrec)
	}
	return t
}

// normalizeKey implements spec §3.2's key-normalization rule: a Float
// key equal to some Integer is stored under that Integer instead, so
// t[1] and t[1.0] address the same slot. Nil and NaN keys are invalid.
func normalizeKey(key Value) (Value, error) {
	switch key.kind {
	case KindNil:
		return Value{}, errors.NewTypeError("table index is nil")
	case KindFloat:
		if key.float != key.float { // NaN
			return Value{}, errors.NewTypeError("table index is NaN")
		}
		if i, ok := floatToInteger(key.float); ok {
			return Int(i), nil
		}
		return key, nil
	default:
		return key, nil
	}
}

// Get returns the value at key, or Nil if absent. An invalid key
// (nil or NaN) simply misses, matching Lua's read-side leniency.
func (t *Table) Get(key Value) Value {
	nk, err := normalizeKey(key)
	if err != nil {
		return Nil()
	}
	if nk.kind == KindInteger {
		if idx := nk.integer; idx >= 1 && int(idx) <= len(t.array) {
			return t.array[idx-1]
		}
	}
	if t.hash == nil {
		return Nil()
	}
	if v, ok := t.hash[nk]; ok {
		return v
	}
	return Nil()
}

// Set stores val at key, removing the entry when val is Nil. Returns
// an error for an invalid key (spec §3.2).
func (t *Table) Set(key, val Value) error {
	nk, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if nk.kind == KindInteger {
		idx := nk.integer
		switch {
		case idx >= 1 && int(idx) <= len(t.array):
			t.array[idx-1] = val
			if val.IsNil() && int(idx) == len(t.array) {
				t.shrinkArray()
			}
			return nil
		case int(idx) == len(t.array)+1 && !val.IsNil():
			t.array = append(t.array, val)
			t.migrateFromHash()
			return nil
		}
	}
	if val.IsNil() {
		if t.hash != nil {
			delete(t.hash, nk)
		}
		return nil
	}
	if t.hash == nil {
		t.hash = make(map[Value]Value)
	}
	t.hash[nk] = val
	return nil
}

// migrateFromHash pulls any keys contiguous with the array part's new
// tail out of the hash part, the way appending to a Lua array triggers
// a rehash of the boundary.
func (t *Table) migrateFromHash() {
	if t.hash == nil {
		return
	}
	for {
		nextKey := Int(int64(len(t.array) + 1))
		v, ok := t.hash[nextKey]
		if !ok {
			return
		}
		delete(t.hash, nextKey)
		t.array = append(t.array, v)
	}
}

func (t *Table) shrinkArray() {
	n := len(t.array)
	for n > 0 && t.array[n-1].IsNil() {
		n--
	}
	t.array = t.array[:n]
}

// Len returns a border of t per spec §3.2: an n with t[n] non-nil and
// t[n+1] nil (0 if t[1] is nil). With holes this is any valid border,
// not necessarily the largest — the same ambiguity Lua's # operator has.
func (t *Table) Len() int {
	n := len(t.array)
	for n > 0 && t.array[n-1].IsNil() {
		n--
	}
	if n < len(t.array) {
		return n
	}
	j := int64(n)
	for {
		v := t.Get(Int(j + 1))
		if v.IsNil() {
			return int(j)
		}
		j++
	}
}
