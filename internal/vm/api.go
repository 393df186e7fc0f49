package vm

import (
	"luavm/internal/errors"
	"luavm/internal/value"
)

// The rest of spec §6.1's host-embedding surface: stack manipulation
// delegates straight to the current frame (internal/stack already
// implements the index algebra and shape-changing ops); everything
// below is the type-query/reader/pusher/arith/table layer built on it.

func (s *State) GetTop() int { return s.current().Top }

func (s *State) SetTop(idx int) error { return s.current().SetTop(idx) }

func (s *State) PushValue(idx int) {
	s.current().PushValue(s.current().Get(idx))
}

func (s *State) Pop(n int) error { return s.current().Pop(n) }

func (s *State) Copy(from, to int) error { return s.current().Copy(from, to) }

func (s *State) Replace(idx int) error { return s.current().Replace(idx) }

func (s *State) Insert(idx int) error { return s.current().Insert(idx) }

func (s *State) Remove(idx int) error { return s.current().Remove(idx) }

func (s *State) Rotate(idx, n int) error { return s.current().Rotate(idx, n) }

func (s *State) AbsIndex(idx int) int { return s.current().AbsIndex(idx) }

func (s *State) CheckStack(n int) bool { return s.current().CheckStack(n) }

// --- Type queries ---

func (s *State) TypeID(idx int) value.TypeID { return s.current().Get(idx).TypeID() }

func TypeName(t value.TypeID) string { return value.TypeName(t) }

func (s *State) IsNil(idx int) bool     { return s.current().Get(idx).IsNil() }
func (s *State) IsBoolean(idx int) bool { return s.current().Get(idx).IsBoolean() }
func (s *State) IsInteger(idx int) bool { return s.current().Get(idx).IsInteger() }
func (s *State) IsNumber(idx int) bool  { return s.current().Get(idx).IsNumber() }
func (s *State) IsString(idx int) bool  { return s.current().Get(idx).IsString() }
func (s *State) IsTable(idx int) bool   { return s.current().Get(idx).IsTable() }
func (s *State) IsFunction(idx int) bool {
	return s.current().Get(idx).IsClosure()
}
func (s *State) IsHostFunction(idx int) bool {
	v := s.current().Get(idx)
	return v.IsClosure() && v.AsClosure().IsGo()
}
func (s *State) IsNoneOrNil(idx int) bool {
	abs := s.current().AbsIndex(idx)
	return abs < 1 || abs > s.current().Top || s.current().Get(idx).IsNil()
}

// --- Readers ---

func (s *State) ToBoolean(idx int) bool { return s.current().Get(idx).Truthy() }

func (s *State) ToInteger(idx int) int64 {
	i, _ := s.ToIntegerX(idx)
	return i
}

func (s *State) ToIntegerX(idx int) (int64, bool) {
	return value.CoerceToInteger(s.current().Get(idx))
}

func (s *State) ToNumber(idx int) float64 {
	f, _ := s.ToNumberX(idx)
	return f
}

func (s *State) ToNumberX(idx int) (float64, bool) {
	n, ok := value.CoerceToNumber(s.current().Get(idx))
	if !ok {
		return 0, false
	}
	if n.IsInteger() {
		return float64(n.AsInteger()), true
	}
	return n.AsFloat(), true
}

func (s *State) ToString(idx int) string {
	str, _ := s.ToStringX(idx)
	return str
}

func (s *State) ToStringX(idx int) (string, bool) {
	return value.CoerceToString(s.current().Get(idx))
}

func (s *State) ToHostFunction(idx int) value.GoFunction {
	v := s.current().Get(idx)
	if v.IsClosure() && v.AsClosure().IsGo() {
		return v.AsClosure().Go
	}
	return nil
}

// --- Pushers ---

func (s *State) PushNil()           { s.current().PushValue(value.Nil()) }
func (s *State) PushBoolean(b bool) { s.current().PushValue(value.Bool(b)) }
func (s *State) PushInteger(i int64) { s.current().PushValue(value.Int(i)) }
func (s *State) PushNumber(f float64) { s.current().PushValue(value.Float(f)) }
func (s *State) PushString(str string) { s.current().PushValue(value.Str(str)) }
func (s *State) PushHostFunction(name string, fn value.GoFunction) {
	s.current().PushValue(value.FromClosure(value.NewGoClosure(name, fn)))
}
func (s *State) PushGlobalTable() {
	s.current().PushValue(value.FromTable(s.globals))
}

// --- Arithmetic / comparison ---

// Arith implements spec §6.1's arith(op_tag): pops 1 operand for UNM
// and BNOT, 2 for everything else, and pushes the result.
func (s *State) Arith(op value.ArithOp) error {
	f := s.current()
	unary := op == value.OpUnm || op == value.OpBNot
	need := 2
	if unary {
		need = 1
	}
	if f.Top < need {
		return errors.NewStackError("arith: not enough operands on the stack")
	}
	var a, b value.Value
	if unary {
		a = f.Slots[f.Top-1]
		b = value.Nil()
	} else {
		a = f.Slots[f.Top-2]
		b = f.Slots[f.Top-1]
	}
	if err := f.Pop(need); err != nil {
		return err
	}
	result, err := value.Arith(op, a, b)
	if err != nil {
		return err
	}
	f.PushValue(result)
	return nil
}

// Compare implements spec §6.1's compare(i,j,op_tag).
func (s *State) Compare(i, j int, op value.CompareOp) (bool, error) {
	a, b := s.current().Get(i), s.current().Get(j)
	switch op {
	case value.CmpEQ:
		return value.Eq(a, b), nil
	case value.CmpLT:
		return value.Lt(a, b)
	default:
		return value.Le(a, b)
	}
}

// Len implements spec §6.1's len(idx): pushes the length of the value
// at idx.
func (s *State) Len(idx int) error {
	v, err := value.Len(s.current().Get(idx))
	if err != nil {
		return err
	}
	s.current().PushValue(v)
	return nil
}

// Concat implements spec §6.1's concat(n): pops n values and pushes
// their left-to-right concatenation (spec §4.4).
func (s *State) Concat(n int) error {
	f := s.current()
	if n == 0 {
		f.PushValue(value.Str(""))
		return nil
	}
	if f.Top < n {
		return errors.NewStackError("concat: not enough values on the stack")
	}
	acc := f.Slots[f.Top-n]
	for i := f.Top - n + 1; i < f.Top; i++ {
		v, err := value.Concat(acc, f.Slots[i])
		if err != nil {
			return err
		}
		acc = v
	}
	if err := f.Pop(n); err != nil {
		return err
	}
	f.PushValue(acc)
	return nil
}

// --- Tables ---

func (s *State) NewTable() { s.current().PushValue(value.FromTable(value.NewTable())) }

func (s *State) CreateTable(narr, nrec int) {
	s.current().PushValue(value.FromTable(value.NewTableSized(narr, nrec)))
}

func (s *State) GetTable(idx int) (value.TypeID, error) {
	f := s.current()
	if f.Top < 1 {
		return value.TypeNone, errors.NewStackError("get_table: missing key on stack")
	}
	table := f.Get(idx)
	key := f.Slots[f.Top-1]
	if err := f.Pop(1); err != nil {
		return value.TypeNone, err
	}
	v, err := index(table, key)
	if err != nil {
		return value.TypeNone, err
	}
	f.PushValue(v)
	return v.TypeID(), nil
}

func (s *State) GetField(idx int, k string) (value.TypeID, error) {
	v, err := index(s.current().Get(idx), value.Str(k))
	if err != nil {
		return value.TypeNone, err
	}
	s.current().PushValue(v)
	return v.TypeID(), nil
}

func (s *State) GetI(idx int, i int64) (value.TypeID, error) {
	v, err := index(s.current().Get(idx), value.Int(i))
	if err != nil {
		return value.TypeNone, err
	}
	s.current().PushValue(v)
	return v.TypeID(), nil
}

func (s *State) GetGlobal(name string) value.TypeID {
	v := s.globals.Get(value.Str(name))
	s.current().PushValue(v)
	return v.TypeID()
}

func (s *State) SetTable(idx int) error {
	f := s.current()
	if f.Top < 2 {
		return errors.NewStackError("set_table: missing key/value on stack")
	}
	table := f.Get(idx)
	key, val := f.Slots[f.Top-2], f.Slots[f.Top-1]
	if err := f.Pop(2); err != nil {
		return err
	}
	return newindex(table, key, val)
}

func (s *State) SetField(idx int, k string) error {
	f := s.current()
	if f.Top < 1 {
		return errors.NewStackError("set_field: missing value on stack")
	}
	val := f.Slots[f.Top-1]
	if err := f.Pop(1); err != nil {
		return err
	}
	return newindex(f.Get(idx), value.Str(k), val)
}

func (s *State) SetI(idx int, i int64) error {
	f := s.current()
	if f.Top < 1 {
		return errors.NewStackError("set_i: missing value on stack")
	}
	val := f.Slots[f.Top-1]
	if err := f.Pop(1); err != nil {
		return err
	}
	return newindex(f.Get(idx), value.Int(i), val)
}

func (s *State) SetGlobal(name string) error {
	f := s.current()
	if f.Top < 1 {
		return errors.NewStackError("set_global: missing value on stack")
	}
	val := f.Slots[f.Top-1]
	if err := f.Pop(1); err != nil {
		return err
	}
	return s.globals.Set(value.Str(name), val)
}
