package bytecode

import "testing"

func TestABCRoundTrip(t *testing.T) {
	i := NewABC(OpAdd, 1, 2, 3)
	if i.OpCode() != OpAdd {
		t.Errorf("OpCode() = %v, want ADD", i.OpCode())
	}
	if i.A() != 1 || i.B() != 2 || i.C() != 3 {
		t.Errorf("A/B/C = %d/%d/%d, want 1/2/3", i.A(), i.B(), i.C())
	}
}

func TestABxRoundTrip(t *testing.T) {
	i := NewABx(OpLoadK, 4, 200000)
	if i.OpCode() != OpLoadK {
		t.Errorf("OpCode() = %v, want LOADK", i.OpCode())
	}
	if i.A() != 4 || i.Bx() != 200000 {
		t.Errorf("A/Bx = %d/%d, want 4/200000", i.A(), i.Bx())
	}
}

func TestAsBxRoundTripNegative(t *testing.T) {
	i := NewAsBx(OpJmp, 0, -50)
	if i.SBx() != -50 {
		t.Errorf("SBx() = %d, want -50", i.SBx())
	}
}

func TestAsBxRoundTripPositive(t *testing.T) {
	i := NewAsBx(OpForLoop, 2, MaxArgSBx)
	if i.SBx() != MaxArgSBx {
		t.Errorf("SBx() = %d, want %d", i.SBx(), MaxArgSBx)
	}
}

func TestAxRoundTrip(t *testing.T) {
	i := NewAx(OpExtraArg, 12345)
	if i.OpCode() != OpExtraArg {
		t.Errorf("OpCode() = %v, want EXTRAARG", i.OpCode())
	}
	if i.Ax() != 12345 {
		t.Errorf("Ax() = %d, want 12345", i.Ax())
	}
}

func TestRKEncoding(t *testing.T) {
	rk := RK(5)
	if !IsConstant(rk) {
		t.Fatal("expected RK(5) to be a constant operand")
	}
	if ConstIndex(rk) != 5 {
		t.Errorf("ConstIndex(RK(5)) = %d, want 5", ConstIndex(rk))
	}
}

func TestRegisterOperandIsNotConstant(t *testing.T) {
	if IsConstant(10) {
		t.Error("plain register operand 10 incorrectly flagged as constant")
	}
}

func TestOpCodeString(t *testing.T) {
	if OpAdd.String() != "ADD" {
		t.Errorf("OpAdd.String() = %q, want ADD", OpAdd.String())
	}
}

func TestDescribeUnknownOpcode(t *testing.T) {
	d := Describe(OpCode(255))
	if d.Name != "" {
		t.Errorf("Describe(255).Name = %q, want empty", d.Name)
	}
}
