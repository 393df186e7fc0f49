package vm

import (
	"testing"

	"luavm/internal/value"
)

func TestPushAndToInteger(t *testing.T) {
	s := NewState()
	s.PushInteger(42)
	if got := s.ToInteger(1); got != 42 {
		t.Errorf("ToInteger(1) = %d, want 42", got)
	}
}

func TestPushValueDuplicatesTopOfStack(t *testing.T) {
	s := NewState()
	s.PushString("hi")
	s.PushValue(1)
	if s.GetTop() != 2 {
		t.Fatalf("GetTop() = %d, want 2", s.GetTop())
	}
	if got, _ := s.ToStringX(2); got != "hi" {
		t.Errorf("ToStringX(2) = %q, want hi", got)
	}
}

func TestArithViaAPI(t *testing.T) {
	s := NewState()
	s.PushInteger(4)
	s.PushInteger(5)
	if err := s.Arith(value.OpAdd); err != nil {
		t.Fatal(err)
	}
	if got := s.ToInteger(1); got != 9 {
		t.Errorf("ToInteger(1) = %d, want 9", got)
	}
}

func TestCompareViaAPI(t *testing.T) {
	s := NewState()
	s.PushInteger(1)
	s.PushInteger(2)
	lt, err := s.Compare(1, 2, value.CmpLT)
	if err != nil {
		t.Fatal(err)
	}
	if !lt {
		t.Error("Compare(1,2,CmpLT) = false, want true")
	}
}

func TestTableRoundTripViaAPI(t *testing.T) {
	s := NewState()
	s.NewTable()
	s.PushInteger(99)
	if err := s.SetField(1, "answer"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetField(1, "answer"); err != nil {
		t.Fatal(err)
	}
	if got := s.ToInteger(2); got != 99 {
		t.Errorf("GetField round trip = %d, want 99", got)
	}
}

func TestSetGlobalGetGlobal(t *testing.T) {
	s := NewState()
	s.PushString("hello")
	if err := s.SetGlobal("greeting"); err != nil {
		t.Fatal(err)
	}
	if s.GetTop() != 0 {
		t.Fatalf("GetTop() after SetGlobal = %d, want 0", s.GetTop())
	}
	s.GetGlobal("greeting")
	if got, _ := s.ToStringX(1); got != "hello" {
		t.Errorf("GetGlobal(greeting) = %q, want hello", got)
	}
}

func TestConcatViaAPI(t *testing.T) {
	s := NewState()
	s.PushString("a")
	s.PushString("b")
	s.PushString("c")
	if err := s.Concat(3); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.ToStringX(1); got != "abc" {
		t.Errorf("Concat(3) = %q, want abc", got)
	}
}

func TestLenViaAPI(t *testing.T) {
	s := NewState()
	s.PushString("abcd")
	if err := s.Len(1); err != nil {
		t.Fatal(err)
	}
	if got := s.ToInteger(2); got != 4 {
		t.Errorf("Len = %d, want 4", got)
	}
}

// TestGetSetTableRelativeIndex covers GetTable/SetTable's table
// operand resolved by a negative index: idx must be absolutized
// against the stack as it stood before the key/value pop, not after.
func TestGetSetTableRelativeIndex(t *testing.T) {
	s := NewState()
	s.NewTable()        // [1] table
	s.PushString("key") // [2] key
	s.PushInteger(42)   // [3] value
	if err := s.SetTable(-3); err != nil {
		t.Fatal(err)
	}
	if s.GetTop() != 1 {
		t.Fatalf("GetTop() after SetTable = %d, want 1", s.GetTop())
	}

	s.PushString("key") // [2] key
	if _, err := s.GetTable(-2); err != nil {
		t.Fatal(err)
	}
	if got := s.ToInteger(s.GetTop()); got != 42 {
		t.Errorf("GetTable(-2) = %d, want 42", got)
	}
}

func TestCreateTableSized(t *testing.T) {
	s := NewState()
	s.CreateTable(4, 0)
	if !s.IsTable(1) {
		t.Fatal("expected a table value after CreateTable")
	}
}
