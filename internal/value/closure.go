package value

import "luavm/internal/bytecode"

// GoFunction is a host-provided callable, bound into a Closure the
// same way a compiled Prototype is (spec §3.4's "host function"
// variant of a closure's callee).
type GoFunction func(args []Value) ([]Value, error)

// Upvalue is a captured-variable cell (spec §3.4, §4.6.3). While open
// it aliases a live stack slot via a pointer the owning frame hands
// out; Close copies that slot's value into the cell itself so the
// upvalue survives the frame's return.
type Upvalue struct {
	slot   *Value
	closed Value
}

// NewOpenUpvalue creates an upvalue aliasing a stack slot.
func NewOpenUpvalue(slot *Value) *Upvalue {
	return &Upvalue{slot: slot}
}

// NewClosedUpvalue creates an upvalue with no backing stack slot,
// used for host-constructed closures that never ran inside a frame.
func NewClosedUpvalue(v Value) *Upvalue {
	return &Upvalue{closed: v}
}

func (u *Upvalue) IsOpen() bool { return u.slot != nil }

func (u *Upvalue) Get() Value {
	if u.slot != nil {
		return *u.slot
	}
	return u.closed
}

func (u *Upvalue) Set(v Value) {
	if u.slot != nil {
		*u.slot = v
		return
	}
	u.closed = v
}

// Close detaches the upvalue from its stack slot, freezing the
// slot's current value into the cell.
func (u *Upvalue) Close() {
	if u.slot == nil {
		return
	}
	u.closed = *u.slot
	u.slot = nil
}

// Closure binds either a compiled Prototype or a host GoFunction to
// an ordered list of captured upvalues (spec §3.4). Exactly one of
// Proto and Go is set.
type Closure struct {
	Proto    *bytecode.Prototype
	Go       GoFunction
	Upvalues []*Upvalue
	Name     string // debug only
}

// NewLuaClosure builds a closure over a compiled prototype.
func NewLuaClosure(proto *bytecode.Prototype, upvalues []*Upvalue) *Closure {
	return &Closure{Proto: proto, Upvalues: upvalues}
}

// NewGoClosure wraps a host function as a callable Value with no
// upvalues of its own.
func NewGoClosure(name string, fn GoFunction) *Closure {
	return &Closure{Go: fn, Name: name}
}

// IsGo reports whether c wraps a host function rather than a
// compiled prototype.
func (c *Closure) IsGo() bool { return c.Go != nil }
