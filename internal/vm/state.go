// Package vm implements the fetch-decode-execute dispatcher (spec
// §4.6) and the host-embedding stack API (spec §6.1) that together
// form the VM core: State owns the call stack of internal/stack
// Frames, the registry, and the global table; Load parses a binary
// chunk via internal/loader into a callable closure, and Call drives
// execution through run's per-frame instruction loop.
package vm

import (
	"luavm/internal/bytecode"
	"luavm/internal/errors"
	"luavm/internal/loader"
	"luavm/internal/stack"
	"luavm/internal/value"
)

// State is one independent VM instance (spec §5: single-threaded,
// synchronous — a State is never shared across goroutines).
type State struct {
	registry *value.Table
	globals  *value.Table
	frames   []*stack.Frame
	trace    func(pc int, stackValues []string)
}

// Trace installs a callback invoked after every executed instruction
// with its program-counter index and a snapshot of the current
// frame's stack contents (spec §6.3's CLI default trace behavior).
func (s *State) Trace(fn func(pc int, stackValues []string)) {
	s.trace = fn
}

// Repr renders the value at idx for display, regardless of whether it
// coerces to String (unlike ToString, which only succeeds for String
// and number kinds per spec §4.1).
func (s *State) Repr(idx int) string {
	return s.current().Get(idx).String()
}

// NewState returns a State with an empty registry, an empty global
// table, and a base host frame ready to receive pushed values.
func NewState() *State {
	s := &State{
		registry: value.NewTable(),
		globals:  value.NewTable(),
	}
	s.frames = []*stack.Frame{stack.NewFrame(nil, s.registry)}
	return s
}

func (s *State) current() *stack.Frame {
	return s.frames[len(s.frames)-1]
}

// Globals returns the global table, e.g. for a host to register
// functions before any chunk runs.
func (s *State) Globals() *value.Table { return s.globals }

// Load implements spec §6.1's load: parses bytes as a binary chunk and
// pushes the resulting top-level closure onto the current frame.
// Returns a non-nil error (and leaves the stack untouched) on any
// LoadError, matching spec §7's propagation policy and end-to-end
// scenario 6 in spec §8.
func (s *State) Load(data []byte, chunkName string) error {
	proto, err := loader.Load(data)
	if err != nil {
		return err
	}
	if chunkName != "" {
		proto.Source = chunkName
	}
	upvalues := make([]*value.Upvalue, len(proto.Upvalues))
	if len(upvalues) > 0 {
		upvalues[0] = value.NewClosedUpvalue(value.FromTable(s.globals))
	}
	for i := 1; i < len(upvalues); i++ {
		upvalues[i] = value.NewClosedUpvalue(value.Nil())
	}
	cl := value.NewLuaClosure(proto, upvalues)
	s.current().PushValue(value.FromClosure(cl))
	return nil
}

// Register implements spec §6.1's register(name, host_fn): binds a Go
// function into the global table under name.
func (s *State) Register(name string, fn value.GoFunction) {
	s.globals.Set(value.Str(name), value.FromClosure(value.NewGoClosure(name, fn)))
}

// Call implements spec §6.1's call(nargs, nresults): invokes the
// closure sitting below its nargs arguments on the current frame, and
// leaves nresults results in its place (nresults=-1 means "all").
func (s *State) Call(nargs, nresults int) error {
	f := s.current()
	if nargs < 0 || f.Top < nargs+1 {
		return errors.NewStackError("call: not enough values on the stack for %d argument(s)", nargs)
	}
	calleeIdx := f.Top - nargs - 1
	callee := f.Slots[calleeIdx]
	args := append([]value.Value(nil), f.Slots[calleeIdx+1:f.Top]...)
	if err := f.SetTop(calleeIdx + 1); err != nil {
		return err
	}
	if err := f.Pop(1); err != nil {
		return err
	}

	results, err := s.invoke(callee, args)
	if err != nil {
		return err
	}
	if nresults >= 0 {
		for len(results) < nresults {
			results = append(results, value.Nil())
		}
		if len(results) > nresults {
			results = results[:nresults]
		}
	}
	for _, r := range results {
		f.PushValue(r)
	}
	return nil
}

// invoke dispatches a single call to either a host GoFunction or a
// compiled Prototype, per spec §4.6.2's calling protocol. An error
// returning through a Lua frame picks up a StackFrame naming that
// frame, so a VMError that crosses several nested calls carries the
// full chain, innermost first.
func (s *State) invoke(callee value.Value, args []value.Value) ([]value.Value, error) {
	if !callee.IsClosure() {
		return nil, errors.NewTypeError("attempt to call a %s value", value.TypeName(callee.TypeID()))
	}
	cl := callee.AsClosure()
	if cl.IsGo() {
		return cl.Go(args)
	}
	frame := stack.NewLuaFrame(cl, s.registry, args)
	s.frames = append(s.frames, frame)
	results, err := s.run(frame)
	s.frames = s.frames[:len(s.frames)-1]
	if verr, ok := err.(*errors.VMError); ok {
		name := cl.Name
		if name == "" {
			name = cl.Proto.Source
		}
		verr.PushFrame(name, cl.Proto.Source, cl.Proto.LineFor(frame.PC))
	}
	return results, err
}

func constantValue(c bytecode.Constant) value.Value {
	switch c.Kind {
	case bytecode.ConstNil:
		return value.Nil()
	case bytecode.ConstBoolean:
		return value.Bool(c.Boolean)
	case bytecode.ConstInteger:
		return value.Int(c.Integer)
	case bytecode.ConstFloat:
		return value.Float(c.Float)
	case bytecode.ConstString:
		return value.Str(c.Str)
	default:
		return value.Nil()
	}
}
