// Package stack implements the per-call activation frame (spec §3.3):
// the register file a running closure executes against, the index
// algebra that lets the host-embedding API (internal/vm) address
// registers, the registry, and a running closure's upvalues through a
// single signed integer, and the open-upvalue bookkeeping a frame
// needs to support closure capture (spec §3.4, §4.6.3).
package stack

import (
	"luavm/internal/errors"
	"luavm/internal/value"
)

// RegistryIndex is the sentinel spec §3.3 reserves for "the registry".
// Indices below it address the running closure's upvalues.
const RegistryIndex = -1000000

// Frame is one activation record: a growable register file, a program
// counter, the closure being executed (nil for a bare host frame),
// captured varargs, the open-upvalue map keyed by slot index, and a
// shared reference to the registry table.
type Frame struct {
	Slots        []value.Value
	Top          int
	PC           int
	Closure      *value.Closure
	Varargs      []value.Value
	OpenUpvalues map[int]*value.Upvalue
	Registry     *value.Table
}

// NewFrame builds an empty frame for closure cl: the slot vector is
// sized to the prototype's max stack size (at least 8), all slots Nil,
// and Top is 0. A nil cl (or a Go-function closure) yields a minimally
// sized host frame.
func NewFrame(cl *value.Closure, registry *value.Table) *Frame {
	size := 8
	if cl != nil && cl.Proto != nil {
		size = cl.Proto.MaxStackSize
	}
	if size < 8 {
		size = 8
	}
	return &Frame{
		Slots:        make([]value.Value, size),
		Top:          0,
		Closure:      cl,
		Registry:     registry,
		OpenUpvalues: make(map[int]*value.Upvalue),
	}
}

// NewLuaFrame builds the initial frame for a Lua-closure call per spec
// §4.6.2: it copies args into slots 1..=nparams, keeps any extra args
// as varargs when the prototype is vararg, and sets top to
// max_stack_size.
func NewLuaFrame(cl *value.Closure, registry *value.Table, args []value.Value) *Frame {
	f := NewFrame(cl, registry)
	n := cl.Proto.MaxStackSize
	if len(args) > n {
		n = len(args)
	}
	f.ensureCapacity(n)
	f.Top = cl.Proto.MaxStackSize
	nparams := cl.Proto.NumParams
	for i := 0; i < nparams && i < len(args); i++ {
		f.Slots[i] = args[i]
	}
	if cl.Proto.IsVararg && len(args) > nparams {
		f.Varargs = append([]value.Value(nil), args[nparams:]...)
	}
	return f
}

func (f *Frame) ensureCapacity(n int) {
	for len(f.Slots) < n {
		f.Slots = append(f.Slots, value.Nil())
	}
}

// AbsIndex resolves a signed index to its absolute (1-based) form when
// it denotes a register; the registry sentinel and upvalue indices
// pass through unchanged since they don't live in the register file.
func (f *Frame) AbsIndex(idx int) int {
	if idx > 0 || idx <= RegistryIndex {
		return idx
	}
	return f.Top + idx + 1
}

// Reg returns a pointer to the 0-based register i, growing the slot
// vector if necessary. Used by the dispatcher for direct R[i] access,
// which bypasses the host-facing index algebra entirely.
func (f *Frame) Reg(i int) *value.Value {
	f.ensureCapacity(i + 1)
	return &f.Slots[i]
}

// Get implements spec §3.3's index algebra for reads: out-of-range
// slots return Nil rather than failing.
func (f *Frame) Get(idx int) value.Value {
	switch {
	case idx == RegistryIndex:
		return value.FromTable(f.Registry)
	case idx < RegistryIndex:
		uv, ok := f.upvalueAt(idx)
		if !ok {
			return value.Nil()
		}
		return uv.Get()
	default:
		abs := f.AbsIndex(idx)
		if abs < 1 || abs > f.Top {
			return value.Nil()
		}
		return f.Slots[abs-1]
	}
}

// Set implements spec §3.3's index algebra for writes: out-of-range
// fails with a StackError.
func (f *Frame) Set(idx int, v value.Value) error {
	switch {
	case idx == RegistryIndex:
		return errors.NewStackError("cannot assign directly to the registry index")
	case idx < RegistryIndex:
		uv, ok := f.upvalueAt(idx)
		if !ok {
			return errors.NewStackError("upvalue index %d out of range", idx)
		}
		uv.Set(v)
		return nil
	default:
		abs := f.AbsIndex(idx)
		if abs < 1 || abs > f.Top {
			return errors.NewStackError("index %d out of range (top=%d)", idx, f.Top)
		}
		f.Slots[abs-1] = v
		return nil
	}
}

func (f *Frame) upvalueAt(idx int) (*value.Upvalue, bool) {
	if f.Closure == nil {
		return nil, false
	}
	uvIdx := RegistryIndex - idx - 1
	if uvIdx < 0 || uvIdx >= len(f.Closure.Upvalues) {
		return nil, false
	}
	return f.Closure.Upvalues[uvIdx], true
}

// FindOrCreateUpvalue returns the open upvalue aliasing register
// slotIdx (0-based), creating one if none exists yet — the sharing
// rule CLOSURE relies on (spec §4.6.3).
func (f *Frame) FindOrCreateUpvalue(slotIdx int) *value.Upvalue {
	if uv, ok := f.OpenUpvalues[slotIdx]; ok {
		return uv
	}
	uv := value.NewOpenUpvalue(f.Reg(slotIdx))
	f.OpenUpvalues[slotIdx] = uv
	return uv
}

// CloseUpvaluesFrom closes every open upvalue whose slot index
// (0-based) is >= threshold, per spec §4.6.3's RETURN/close-JMP rule.
func (f *Frame) CloseUpvaluesFrom(threshold int) {
	for slot, uv := range f.OpenUpvalues {
		if slot >= threshold {
			uv.Close()
			delete(f.OpenUpvalues, slot)
		}
	}
}

// CloseAllUpvalues closes every remaining open upvalue, run when a
// frame returns (spec §8's "after RETURN, all open upvalues closed").
func (f *Frame) CloseAllUpvalues() {
	f.CloseUpvaluesFrom(0)
}
