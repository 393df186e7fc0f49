package vm

import (
	"luavm/internal/bytecode"
	"luavm/internal/errors"
	"luavm/internal/stack"
	"luavm/internal/value"
)

// fieldsPerFlush is Lua's LFIELDS_PER_FLUSH: SETLIST batches array
// entries in groups of this size (spec §4.6.1).
const fieldsPerFlush = 50

// rk resolves an iABC RK-mode operand (spec §4.5): a constant-pool
// reference or a register, decided by IsConstant.
func rk(f *stack.Frame, proto *bytecode.Prototype, operand int) value.Value {
	if bytecode.IsConstant(operand) {
		return constantValue(proto.Constants[bytecode.ConstIndex(operand)])
	}
	return *f.Reg(operand)
}

func asFloat(v value.Value) float64 {
	if v.IsInteger() {
		return float64(v.AsInteger())
	}
	return v.AsFloat()
}

// run drives f's fetch-decode-execute loop (spec §4.6) until a RETURN
// produces the frame's results or an error aborts it. Every error exit
// is attributed to the instruction in progress when it happened, via
// the proto's debug line table (spec §4.6.1's Lines).
func (s *State) run(f *stack.Frame) (results []value.Value, err error) {
	proto := f.Closure.Proto
	var executedPC int
	defer func() {
		if verr, ok := err.(*errors.VMError); ok && verr.Location.File == "" {
			verr.WithLocation(proto.Source, proto.LineFor(executedPC))
		}
	}()
	for {
		if f.PC < 0 || f.PC >= len(proto.Code) {
			err = errors.NewRuntimeError("program counter %d out of range (%d instructions)", f.PC, len(proto.Code))
			return nil, err
		}
		executedPC = f.PC
		instr := proto.Code[f.PC]
		f.PC++
		op := instr.OpCode()

		switch op {
		case bytecode.OpMove:
			*f.Reg(instr.A()) = *f.Reg(instr.B())

		case bytecode.OpLoadK:
			*f.Reg(instr.A()) = constantValue(proto.Constants[instr.Bx()])

		case bytecode.OpLoadKX:
			extra := proto.Code[f.PC]
			f.PC++
			*f.Reg(instr.A()) = constantValue(proto.Constants[extra.Ax()])

		case bytecode.OpLoadBool:
			*f.Reg(instr.A()) = value.Bool(instr.B() != 0)
			if instr.C() != 0 {
				f.PC++
			}

		case bytecode.OpLoadNil:
			a := instr.A()
			for i := a; i <= a+instr.B(); i++ {
				*f.Reg(i) = value.Nil()
			}

		case bytecode.OpGetUpval:
			*f.Reg(instr.A()) = f.Closure.Upvalues[instr.B()].Get()

		case bytecode.OpSetUpval:
			f.Closure.Upvalues[instr.B()].Set(*f.Reg(instr.A()))

		case bytecode.OpGetTabUp:
			uv := f.Closure.Upvalues[instr.B()].Get()
			v, err := index(uv, rk(f, proto, instr.C()))
			if err != nil {
				return nil, err
			}
			*f.Reg(instr.A()) = v

		case bytecode.OpSetTabUp:
			uv := f.Closure.Upvalues[instr.A()].Get()
			if err := newindex(uv, rk(f, proto, instr.B()), rk(f, proto, instr.C())); err != nil {
				return nil, err
			}

		case bytecode.OpGetTable:
			v, err := index(*f.Reg(instr.B()), rk(f, proto, instr.C()))
			if err != nil {
				return nil, err
			}
			*f.Reg(instr.A()) = v

		case bytecode.OpSetTable:
			if err := newindex(*f.Reg(instr.A()), rk(f, proto, instr.B()), rk(f, proto, instr.C())); err != nil {
				return nil, err
			}

		case bytecode.OpNewTable:
			narr, nrec := decodeFB(instr.B()), decodeFB(instr.C())
			*f.Reg(instr.A()) = value.FromTable(value.NewTableSized(narr, nrec))

		case bytecode.OpSelf:
			a, b := instr.A(), instr.B()
			recv := *f.Reg(b)
			v, err := index(recv, rk(f, proto, instr.C()))
			if err != nil {
				return nil, err
			}
			*f.Reg(a+1) = recv
			*f.Reg(a) = v

		case bytecode.OpUnm:
			v, err := value.Arith(value.OpUnm, *f.Reg(instr.B()), value.Nil())
			if err != nil {
				return nil, err
			}
			*f.Reg(instr.A()) = v

		case bytecode.OpBNot:
			v, err := value.Arith(value.OpBNot, *f.Reg(instr.B()), value.Nil())
			if err != nil {
				return nil, err
			}
			*f.Reg(instr.A()) = v

		case bytecode.OpNot:
			*f.Reg(instr.A()) = value.Bool(!f.Reg(instr.B()).Truthy())

		case bytecode.OpLen:
			v, err := value.Len(*f.Reg(instr.B()))
			if err != nil {
				return nil, err
			}
			*f.Reg(instr.A()) = v

		case bytecode.OpConcat:
			a, b, c := instr.A(), instr.B(), instr.C()
			acc := *f.Reg(c)
			for i := c - 1; i >= b; i-- {
				nv, err := value.Concat(*f.Reg(i), acc)
				if err != nil {
					return nil, err
				}
				acc = nv
			}
			*f.Reg(a) = acc

		case bytecode.OpJmp:
			a := instr.A()
			if a != 0 {
				f.CloseUpvaluesFrom(a - 1)
			}
			f.PC += instr.SBx()

		case bytecode.OpEq, bytecode.OpLt, bytecode.OpLe:
			b, c := rk(f, proto, instr.B()), rk(f, proto, instr.C())
			var result bool
			var err error
			switch op {
			case bytecode.OpEq:
				result = value.Eq(b, c)
			case bytecode.OpLt:
				result, err = value.Lt(b, c)
			default:
				result, err = value.Le(b, c)
			}
			if err != nil {
				return nil, err
			}
			if result != (instr.A() != 0) {
				f.PC++
			}

		case bytecode.OpTest:
			if f.Reg(instr.A()).Truthy() != (instr.C() != 0) {
				f.PC++
			}

		case bytecode.OpTestSet:
			a, b, c := instr.A(), instr.B(), instr.C()
			rb := *f.Reg(b)
			if rb.Truthy() == (c != 0) {
				*f.Reg(a) = rb
			} else {
				f.PC++
			}

		case bytecode.OpForPrep:
			if err := forPrep(f, instr); err != nil {
				return nil, err
			}

		case bytecode.OpForLoop:
			forLoop(f, instr)

		case bytecode.OpTForCall:
			a, c := instr.A(), instr.C()
			results, err := s.invoke(*f.Reg(a), []value.Value{*f.Reg(a + 1), *f.Reg(a + 2)})
			if err != nil {
				return nil, err
			}
			for i := 0; i < c; i++ {
				if i < len(results) {
					*f.Reg(a + 3 + i) = results[i]
				} else {
					*f.Reg(a + 3 + i) = value.Nil()
				}
			}

		case bytecode.OpTForLoop:
			a := instr.A()
			if !f.Reg(a + 1).IsNil() {
				*f.Reg(a) = *f.Reg(a + 1)
				f.PC += instr.SBx()
			}

		case bytecode.OpSetList:
			if err := setList(f, proto, instr, &f.PC); err != nil {
				return nil, err
			}

		case bytecode.OpClosure:
			child := proto.Protos[instr.Bx()]
			upvalues := make([]*value.Upvalue, len(child.Upvalues))
			for i, desc := range child.Upvalues {
				if desc.InStack {
					upvalues[i] = f.FindOrCreateUpvalue(int(desc.Index))
				} else {
					upvalues[i] = f.Closure.Upvalues[desc.Index]
				}
			}
			*f.Reg(instr.A()) = value.FromClosure(value.NewLuaClosure(child, upvalues))

		case bytecode.OpVararg:
			a, b := instr.A(), instr.B()
			if b == 0 {
				for i, v := range f.Varargs {
					*f.Reg(a + i) = v
				}
				f.Top = a + len(f.Varargs)
			} else {
				for i := 0; i < b-1; i++ {
					if i < len(f.Varargs) {
						*f.Reg(a + i) = f.Varargs[i]
					} else {
						*f.Reg(a + i) = value.Nil()
					}
				}
			}

		case bytecode.OpCall:
			if err := s.execCall(f, instr); err != nil {
				return nil, err
			}

		case bytecode.OpTailCall:
			return s.execTailCall(f, instr)

		case bytecode.OpReturn:
			a, b := instr.A(), instr.B()
			var results []value.Value
			if b == 0 {
				for i := a; i < f.Top; i++ {
					results = append(results, *f.Reg(i))
				}
			} else {
				for i := a; i < a+b-1; i++ {
					results = append(results, *f.Reg(i))
				}
			}
			f.CloseAllUpvalues()
			return results, nil

		case bytecode.OpExtraArg:
			return nil, errors.NewRuntimeError("stray EXTRAARG instruction")

		default:
			if aop, ok := binArithOp[op]; ok {
				v, err := value.Arith(aop, rk(f, proto, instr.B()), rk(f, proto, instr.C()))
				if err != nil {
					return nil, err
				}
				*f.Reg(instr.A()) = v
				break
			}
			return nil, errors.NewRuntimeError("unimplemented opcode %s", op)
		}

		if s.trace != nil {
			s.trace(executedPC, snapshotStack(f))
		}
	}
}

func snapshotStack(f *stack.Frame) []string {
	out := make([]string, f.Top)
	for i := 0; i < f.Top; i++ {
		out[i] = f.Slots[i].String()
	}
	return out
}

func forPrep(f *stack.Frame, instr bytecode.Instruction) error {
	a := instr.A()
	iv, ok1 := value.CoerceToNumber(*f.Reg(a))
	lim, ok2 := value.CoerceToNumber(*f.Reg(a + 1))
	st, ok3 := value.CoerceToNumber(*f.Reg(a + 2))
	if !ok1 || !ok2 || !ok3 {
		return errors.NewTypeError("'for' initial value, limit, or step must be a number")
	}
	if iv.IsInteger() && lim.IsInteger() && st.IsInteger() {
		*f.Reg(a) = value.Int(iv.AsInteger() - st.AsInteger())
		*f.Reg(a + 1) = lim
		*f.Reg(a + 2) = st
	} else {
		*f.Reg(a) = value.Float(asFloat(iv) - asFloat(st))
		*f.Reg(a + 1) = value.Float(asFloat(lim))
		*f.Reg(a + 2) = value.Float(asFloat(st))
	}
	f.PC += instr.SBx()
	return nil
}

func forLoop(f *stack.Frame, instr bytecode.Instruction) {
	a := instr.A()
	iv, lim, st := *f.Reg(a), *f.Reg(a+1), *f.Reg(a+2)
	var next value.Value
	var within bool
	if iv.IsInteger() {
		ni := iv.AsInteger() + st.AsInteger()
		next = value.Int(ni)
		if st.AsInteger() > 0 {
			within = ni <= lim.AsInteger()
		} else {
			within = ni >= lim.AsInteger()
		}
	} else {
		ni := iv.AsFloat() + st.AsFloat()
		next = value.Float(ni)
		if st.AsFloat() > 0 {
			within = ni <= lim.AsFloat()
		} else {
			within = ni >= lim.AsFloat()
		}
	}
	if within {
		*f.Reg(a) = next
		*f.Reg(a + 3) = next
		f.PC += instr.SBx()
	}
}

func setList(f *stack.Frame, proto *bytecode.Prototype, instr bytecode.Instruction, pc *int) error {
	a, b, c := instr.A(), instr.B(), instr.C()
	if c == 0 {
		extra := proto.Code[*pc]
		*pc++
		c = extra.Ax()
	}
	t := *f.Reg(a)
	if !t.IsTable() {
		return errors.NewTypeError("attempt to index a %s value", value.TypeName(t.TypeID()))
	}
	tbl := t.AsTable()
	n := b
	if n == 0 {
		n = f.Top - (a + 1)
	}
	base := (c - 1) * fieldsPerFlush
	for i := 1; i <= n; i++ {
		if err := tbl.Set(value.Int(int64(base+i)), *f.Reg(a+i)); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) execCall(f *stack.Frame, instr bytecode.Instruction) error {
	a, b, c := instr.A(), instr.B(), instr.C()
	callee := *f.Reg(a)
	var args []value.Value
	if b == 0 {
		for i := a + 1; i < f.Top; i++ {
			args = append(args, *f.Reg(i))
		}
	} else {
		for i := a + 1; i < a+b; i++ {
			args = append(args, *f.Reg(i))
		}
	}
	results, err := s.invoke(callee, args)
	if err != nil {
		return err
	}
	if c == 0 {
		for i, r := range results {
			*f.Reg(a + i) = r
		}
		f.Top = a + len(results)
	} else {
		for i := 0; i < c-1; i++ {
			if i < len(results) {
				*f.Reg(a + i) = results[i]
			} else {
				*f.Reg(a + i) = value.Nil()
			}
		}
	}
	return nil
}

// execTailCall implements TAILCALL's "replace the current frame"
// contract (spec §4.6.1) as call-then-return: this Go implementation
// drives frames recursively rather than with an explicit trampoline,
// so true stack-space reuse isn't observable, but the result — the
// caller sees exactly the callee's results as its own — matches.
func (s *State) execTailCall(f *stack.Frame, instr bytecode.Instruction) ([]value.Value, error) {
	a, b := instr.A(), instr.B()
	callee := *f.Reg(a)
	var args []value.Value
	if b == 0 {
		for i := a + 1; i < f.Top; i++ {
			args = append(args, *f.Reg(i))
		}
	} else {
		for i := a + 1; i < a+b; i++ {
			args = append(args, *f.Reg(i))
		}
	}
	f.CloseAllUpvalues()
	return s.invoke(callee, args)
}
