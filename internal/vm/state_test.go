package vm

import (
	"testing"

	"luavm/internal/bytecode"
	"luavm/internal/value"
)

func TestLoadRejectsGarbage(t *testing.T) {
	s := NewState()
	if err := s.Load([]byte("not a chunk"), "garbage.luac"); err == nil {
		t.Fatal("expected LoadError for a non-chunk byte stream")
	}
	if s.GetTop() != 0 {
		t.Fatalf("GetTop() after failed Load = %d, want 0 (stack untouched)", s.GetTop())
	}
}

func TestRegisterAndInvokeDirectly(t *testing.T) {
	s := NewState()
	called := false
	s.Register("mark", func(args []value.Value) ([]value.Value, error) {
		called = true
		return nil, nil
	})
	global := s.Globals().Get(value.Str("mark"))
	if !global.IsClosure() {
		t.Fatal("expected Register to bind a closure into globals")
	}
	if _, err := s.invoke(global, nil); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("expected the registered host function to run")
	}
}

func TestCallPadsResultsWithNil(t *testing.T) {
	proto := &bytecode.Prototype{
		MaxStackSize: 1,
		Constants:    []bytecode.Constant{bytecode.IntConstant(1)},
		Code: []bytecode.Instruction{
			bytecode.NewABx(bytecode.OpLoadK, 0, 0),
			bytecode.NewABC(bytecode.OpReturn, 0, 2, 0),
		},
	}
	s := NewState()
	cl := value.NewLuaClosure(proto, nil)
	s.current().PushValue(value.FromClosure(cl))
	if err := s.Call(0, 3); err != nil {
		t.Fatal(err)
	}
	if s.GetTop() != 3 {
		t.Fatalf("GetTop() = %d, want 3 (padded with Nil)", s.GetTop())
	}
	if !s.IsNil(2) || !s.IsNil(3) {
		t.Error("expected padded results to be Nil")
	}
}

func TestCallOnNonFunctionErrors(t *testing.T) {
	s := NewState()
	s.PushInteger(5)
	if err := s.Call(0, -1); err == nil {
		t.Fatal("expected TypeError calling a non-function value")
	}
}
