package bytecode

import (
	"fmt"
	"strconv"
	"strings"
)

// ConstKind tags the closed set of value kinds a Prototype's constant
// pool may hold (spec §3.5) — deliberately narrower than the runtime
// value.Kind set: a compiled constant is never a Table or Closure.
type ConstKind uint8

const (
	ConstNil ConstKind = iota
	ConstBoolean
	ConstInteger
	ConstFloat
	ConstString
)

// Constant is one entry of a Prototype's constant pool.
type Constant struct {
	Kind    ConstKind
	Boolean bool
	Integer int64
	Float   float64
	Str     string
}

func NilConstant() Constant                 { return Constant{Kind: ConstNil} }
func BoolConstant(b bool) Constant           { return Constant{Kind: ConstBoolean, Boolean: b} }
func IntConstant(i int64) Constant           { return Constant{Kind: ConstInteger, Integer: i} }
func FloatConstant(f float64) Constant       { return Constant{Kind: ConstFloat, Float: f} }
func StringConstant(s string) Constant       { return Constant{Kind: ConstString, Str: s} }

func (c Constant) String() string {
	switch c.Kind {
	case ConstNil:
		return "nil"
	case ConstBoolean:
		return strconv.FormatBool(c.Boolean)
	case ConstInteger:
		return strconv.FormatInt(c.Integer, 10)
	case ConstFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case ConstString:
		return strconv.Quote(c.Str)
	default:
		return "?"
	}
}

// UpvalueDesc describes, for one upvalue of a Prototype, where the
// closure that instantiates it should bind that upvalue from (spec
// §3.5, §4.6.3): the enclosing frame's slot (InStack) or the
// enclosing closure's own upvalue list (!InStack).
type UpvalueDesc struct {
	InStack bool
	Index   uint8
	Name    string // debug only
}

// LocalVar is a debug-only record of a local variable's live range.
type LocalVar struct {
	Name     string
	StartPC  int
	EndPC    int
}

// Prototype is the immutable, parser-produced description of one
// compiled function (spec §3.5).
type Prototype struct {
	Source         string
	LineDefined    int
	LastLineDefined int
	NumParams      int
	IsVararg       bool
	MaxStackSize   int

	Code      []Instruction
	Constants []Constant
	Upvalues  []UpvalueDesc
	Protos    []*Prototype

	// Debug arrays; optional for execution (spec §3.5).
	Lines    []int // one source line per Code entry
	Locals   []LocalVar
}

// LineFor returns the source line associated with instruction pc, or
// 0 if no line info was loaded.
func (p *Prototype) LineFor(pc int) int {
	if pc < 0 || pc >= len(p.Lines) {
		return 0
	}
	return p.Lines[pc]
}

// Disassemble renders p (and, recursively, its nested prototypes) in a
// luac-l-like textual form (spec §4.7), using Describe to drive operand
// formatting the same way a real disassembler would.
func (p *Prototype) Disassemble() string {
	var sb strings.Builder
	p.disassemble(&sb, 0)
	return sb.String()
}

func (p *Prototype) disassemble(sb *strings.Builder, depth int) {
	kind := "function"
	if depth == 0 {
		kind = "main"
	}
	fmt.Fprintf(sb, "%s <%s:%d,%d> (%d instructions)\n",
		kind, p.Source, p.LineDefined, p.LastLineDefined, len(p.Code))
	vararg := ""
	if p.IsVararg {
		vararg = "+"
	}
	fmt.Fprintf(sb, "%d%s params, %d slots, %d upvalues, %d locals, %d constants, %d functions\n",
		p.NumParams, vararg, p.MaxStackSize, len(p.Upvalues), len(p.Locals), len(p.Constants), len(p.Protos))

	for pc, instr := range p.Code {
		line := p.LineFor(pc)
		fmt.Fprintf(sb, "\t%d\t[%d]\t%s\t%s\n", pc+1, line, instr.OpCode(), formatOperands(instr))
	}

	fmt.Fprintf(sb, "constants (%d):\n", len(p.Constants))
	for i, c := range p.Constants {
		fmt.Fprintf(sb, "\t%d\t%s\n", i+1, c)
	}

	fmt.Fprintf(sb, "locals (%d):\n", len(p.Locals))
	for i, lv := range p.Locals {
		fmt.Fprintf(sb, "\t%d\t%s\t%d\t%d\n", i, lv.Name, lv.StartPC, lv.EndPC)
	}

	fmt.Fprintf(sb, "upvalues (%d):\n", len(p.Upvalues))
	for i, uv := range p.Upvalues {
		inStack := 0
		if uv.InStack {
			inStack = 1
		}
		fmt.Fprintf(sb, "\t%d\t%s\t%d\t%d\n", i, uv.Name, inStack, uv.Index)
	}

	for _, nested := range p.Protos {
		sb.WriteByte('\n')
		nested.disassemble(sb, depth+1)
	}
}

func formatOperands(i Instruction) string {
	d := Describe(i.OpCode())
	switch d.Mode {
	case ModeABC:
		return fmt.Sprintf("%d %s %s", i.A(), formatOperand(d.BArg, i.B()), formatOperand(d.CArg, i.C()))
	case ModeABx:
		return fmt.Sprintf("%d %d", i.A(), i.Bx())
	case ModeAsBx:
		return fmt.Sprintf("%d %d", i.A(), i.SBx())
	case ModeAx:
		return fmt.Sprintf("%d", i.Ax())
	default:
		return ""
	}
}

func formatOperand(kind OperandKind, v int) string {
	switch kind {
	case ArgUnused:
		return ""
	case ArgRK:
		if IsConstant(v) {
			return fmt.Sprintf("K(%d)", ConstIndex(v))
		}
		return fmt.Sprintf("R(%d)", v)
	default:
		return strconv.Itoa(v)
	}
}
