// Package loader parses a Lua 5.3 precompiled binary chunk (spec §6.2)
// into an *bytecode.Prototype, mirroring the shape of original_source's
// undump(data) -> Prototype with a from-scratch reader this module
// supplies (the original ships the format description but not the
// reader itself).
package loader

import (
	"luavm/internal/bytecode"
	"luavm/internal/errors"
)

var (
	luaSignature = [4]byte{0x1B, 0x4C, 0x75, 0x61} // "\x1bLua"
	luacData     = [6]byte{0x19, 0x93, 0x0D, 0x0A, 0x1A, 0x0A}
)

const (
	luacVersion = 0x53
	luacFormat  = 0x00

	cintSize         = 4
	csizetSize       = 8
	instructionSize  = 4
	luaIntegerSize   = 8
	luaNumberSize    = 8
	luacInt          = 0x5678
	luacNum          = 370.5

	tagNil      = 0x00
	tagBoolean  = 0x01
	tagNumber   = 0x03
	tagShortStr = 0x04
	tagLongStr  = 0x14
	tagInteger  = 0x13
)

// Load parses data as a complete binary chunk and returns the main
// function's Prototype. Any header mismatch or truncation fails with
// a LoadError and leaves the caller's stack untouched (spec §7).
func Load(data []byte) (*bytecode.Prototype, error) {
	r := newReader(data)
	if err := checkHeader(r); err != nil {
		return nil, err
	}
	// Size-of-upvalues byte for the main function; the main
	// prototype's own upvalue descriptor list (read below) is
	// authoritative, so this is only sanity-checked when nonzero.
	nUpvals, err := r.byte()
	if err != nil {
		return nil, err
	}
	proto, err := readProto(r, "")
	if err != nil {
		return nil, err
	}
	if nUpvals != 0 && int(nUpvals) != len(proto.Upvalues) {
		return nil, errors.NewLoadError("main function upvalue count mismatch: header says %d, prototype has %d", nUpvals, len(proto.Upvalues))
	}
	return proto, nil
}

func checkHeader(r *reader) error {
	sig, err := r.bytes(4)
	if err != nil {
		return err
	}
	if [4]byte(sig) != luaSignature {
		return errors.NewLoadError("bad signature: not a precompiled chunk")
	}
	version, err := r.byte()
	if err != nil {
		return err
	}
	if version != luacVersion {
		return errors.NewLoadError("version mismatch: got 0x%02x, want 0x%02x", version, luacVersion)
	}
	format, err := r.byte()
	if err != nil {
		return err
	}
	if format != luacFormat {
		return errors.NewLoadError("format mismatch: got 0x%02x, want 0x%02x", format, luacFormat)
	}
	data6, err := r.bytes(6)
	if err != nil {
		return err
	}
	if [6]byte(data6) != luacData {
		return errors.NewLoadError("corrupted chunk: luac data canary mismatch")
	}
	sizes := []struct {
		name string
		want byte
	}{
		{"int", cintSize}, {"size_t", csizetSize}, {"Instruction", instructionSize},
		{"lua_Integer", luaIntegerSize}, {"lua_Number", luaNumberSize},
	}
	for _, s := range sizes {
		got, err := r.byte()
		if err != nil {
			return err
		}
		if got != s.want {
			return errors.NewLoadError("unsupported %s size: got %d, want %d", s.name, got, s.want)
		}
	}
	intCanary, err := r.int64()
	if err != nil {
		return err
	}
	if intCanary != luacInt {
		return errors.NewLoadError("endianness mismatch: integer canary read as %d", intCanary)
	}
	numCanary, err := r.float64()
	if err != nil {
		return err
	}
	if numCanary != luacNum {
		return errors.NewLoadError("float format mismatch: number canary read as %v", numCanary)
	}
	return nil
}

func readProto(r *reader, parentSource string) (*bytecode.Prototype, error) {
	source, err := r.string()
	if err != nil {
		return nil, err
	}
	if source == "" {
		source = parentSource
	}
	lineDefined, err := r.uint32()
	if err != nil {
		return nil, err
	}
	lastLineDefined, err := r.uint32()
	if err != nil {
		return nil, err
	}
	numParams, err := r.byte()
	if err != nil {
		return nil, err
	}
	isVararg, err := r.byte()
	if err != nil {
		return nil, err
	}
	maxStackSize, err := r.byte()
	if err != nil {
		return nil, err
	}

	code, err := readCode(r)
	if err != nil {
		return nil, err
	}
	constants, err := readConstants(r)
	if err != nil {
		return nil, err
	}
	upvalues, err := readUpvalues(r)
	if err != nil {
		return nil, err
	}
	protos, err := readProtos(r, source)
	if err != nil {
		return nil, err
	}
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	locals, err := readLocals(r)
	if err != nil {
		return nil, err
	}
	upvalNames, err := readUpvalueNames(r)
	if err != nil {
		return nil, err
	}
	for i := range upvalues {
		if i < len(upvalNames) {
			upvalues[i].Name = upvalNames[i]
		}
	}

	return &bytecode.Prototype{
		Source:          source,
		LineDefined:     int(lineDefined),
		LastLineDefined: int(lastLineDefined),
		NumParams:       int(numParams),
		IsVararg:        isVararg != 0,
		MaxStackSize:    int(maxStackSize),
		Code:            code,
		Constants:       constants,
		Upvalues:        upvalues,
		Protos:          protos,
		Lines:           lines,
		Locals:          locals,
	}, nil
}

func readCode(r *reader) ([]bytecode.Instruction, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	code := make([]bytecode.Instruction, n)
	for i := range code {
		w, err := r.uint32()
		if err != nil {
			return nil, err
		}
		code[i] = bytecode.Instruction(w)
	}
	return code, nil
}

func readConstants(r *reader) ([]bytecode.Constant, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	consts := make([]bytecode.Constant, n)
	for i := range consts {
		c, err := readConstant(r)
		if err != nil {
			return nil, err
		}
		consts[i] = c
	}
	return consts, nil
}

func readConstant(r *reader) (bytecode.Constant, error) {
	tag, err := r.byte()
	if err != nil {
		return bytecode.Constant{}, err
	}
	switch tag {
	case tagNil:
		return bytecode.NilConstant(), nil
	case tagBoolean:
		b, err := r.byte()
		if err != nil {
			return bytecode.Constant{}, err
		}
		return bytecode.BoolConstant(b != 0), nil
	case tagInteger:
		i, err := r.int64()
		if err != nil {
			return bytecode.Constant{}, err
		}
		return bytecode.IntConstant(i), nil
	case tagNumber:
		f, err := r.float64()
		if err != nil {
			return bytecode.Constant{}, err
		}
		return bytecode.FloatConstant(f), nil
	case tagShortStr, tagLongStr:
		s, err := r.string()
		if err != nil {
			return bytecode.Constant{}, err
		}
		return bytecode.StringConstant(s), nil
	default:
		return bytecode.Constant{}, errors.NewLoadError("unknown constant tag 0x%02x", tag)
	}
}

func readUpvalues(r *reader) ([]bytecode.UpvalueDesc, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	upvalues := make([]bytecode.UpvalueDesc, n)
	for i := range upvalues {
		inStack, err := r.byte()
		if err != nil {
			return nil, err
		}
		idx, err := r.byte()
		if err != nil {
			return nil, err
		}
		upvalues[i] = bytecode.UpvalueDesc{InStack: inStack != 0, Index: idx}
	}
	return upvalues, nil
}

func readProtos(r *reader, source string) ([]*bytecode.Prototype, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	protos := make([]*bytecode.Prototype, n)
	for i := range protos {
		p, err := readProto(r, source)
		if err != nil {
			return nil, err
		}
		protos[i] = p
	}
	return protos, nil
}

func readLines(r *reader) ([]int, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	lines := make([]int, n)
	for i := range lines {
		v, err := r.uint32()
		if err != nil {
			return nil, err
		}
		lines[i] = int(v)
	}
	return lines, nil
}

func readLocals(r *reader) ([]bytecode.LocalVar, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	locals := make([]bytecode.LocalVar, n)
	for i := range locals {
		name, err := r.string()
		if err != nil {
			return nil, err
		}
		startPC, err := r.uint32()
		if err != nil {
			return nil, err
		}
		endPC, err := r.uint32()
		if err != nil {
			return nil, err
		}
		locals[i] = bytecode.LocalVar{Name: name, StartPC: int(startPC), EndPC: int(endPC)}
	}
	return locals, nil
}

func readUpvalueNames(r *reader) ([]string, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	names := make([]string, n)
	for i := range names {
		s, err := r.string()
		if err != nil {
			return nil, err
		}
		names[i] = s
	}
	return names, nil
}
