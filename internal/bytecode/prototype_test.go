package bytecode

import (
	"strings"
	"testing"
)

func simpleProto() *Prototype {
	return &Prototype{
		Source:       "test.lua",
		NumParams:    1,
		MaxStackSize: 2,
		Code: []Instruction{
			NewABC(OpAdd, 0, RK(0), RK(1)),
			NewABC(OpReturn, 0, 2, 0),
		},
		Constants: []Constant{IntConstant(1), IntConstant(2)},
		Lines:     []int{1, 2},
	}
}

func TestLineFor(t *testing.T) {
	p := simpleProto()
	if got := p.LineFor(0); got != 1 {
		t.Errorf("LineFor(0) = %d, want 1", got)
	}
	if got := p.LineFor(99); got != 0 {
		t.Errorf("LineFor(out of range) = %d, want 0", got)
	}
}

func TestDisassembleContainsOpcodesAndConstants(t *testing.T) {
	p := simpleProto()
	out := p.Disassemble()
	if !strings.Contains(out, "ADD") {
		t.Errorf("Disassemble() missing ADD:\n%s", out)
	}
	if !strings.Contains(out, "RETURN") {
		t.Errorf("Disassemble() missing RETURN:\n%s", out)
	}
	if !strings.Contains(out, "K(0)") {
		t.Errorf("Disassemble() missing RK constant operand rendering:\n%s", out)
	}
}

func TestDisassembleRecursesIntoNestedProtos(t *testing.T) {
	p := simpleProto()
	p.Protos = []*Prototype{simpleProto()}
	out := p.Disassemble()
	if strings.Count(out, "ADD") != 2 {
		t.Errorf("expected nested prototype to also disassemble, got:\n%s", out)
	}
}

func TestConstantString(t *testing.T) {
	if got := IntConstant(42).String(); got != "42" {
		t.Errorf("IntConstant(42).String() = %q, want 42", got)
	}
	if got := StringConstant("hi").String(); got != `"hi"` {
		t.Errorf("StringConstant(hi).String() = %q, want quoted", got)
	}
}
