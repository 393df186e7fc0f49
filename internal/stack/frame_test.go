package stack

import (
	"testing"

	"luavm/internal/bytecode"
	"luavm/internal/value"
)

func TestFrameGetSetAbsolute(t *testing.T) {
	f := NewFrame(nil, value.NewTable())
	f.Top = 4
	if err := f.Set(1, value.Int(7)); err != nil {
		t.Fatal(err)
	}
	if got := f.Get(1); got.AsInteger() != 7 {
		t.Errorf("Get(1) = %v, want 7", got)
	}
}

func TestFrameGetSetRelative(t *testing.T) {
	f := NewFrame(nil, value.NewTable())
	f.Top = 4
	must(t, f.Set(4, value.Str("top")))
	if got := f.Get(-1); got.AsString() != "top" {
		t.Errorf("Get(-1) = %v, want top (the top slot)", got)
	}
}

func TestFrameRegistryIndex(t *testing.T) {
	reg := value.NewTable()
	f := NewFrame(nil, reg)
	got := f.Get(RegistryIndex)
	if !got.IsTable() || got.AsTable() != reg {
		t.Errorf("Get(RegistryIndex) did not return the registry table")
	}
	if err := f.Set(RegistryIndex, value.Nil()); err == nil {
		t.Error("expected error assigning directly to the registry index")
	}
}

func TestFrameUpvalueIndex(t *testing.T) {
	uv := value.NewClosedUpvalue(value.Int(42))
	cl := value.NewLuaClosure(&bytecode.Prototype{MaxStackSize: 2}, []*value.Upvalue{uv})
	f := NewFrame(cl, value.NewTable())

	upvalIdx := RegistryIndex - 1
	if got := f.Get(upvalIdx); got.AsInteger() != 42 {
		t.Errorf("Get(upvalue 0) = %v, want 42", got)
	}
	must(t, f.Set(upvalIdx, value.Int(99)))
	if got := uv.Get(); got.AsInteger() != 99 {
		t.Errorf("upvalue not updated via Set, got %v", got)
	}
}

func TestFrameOutOfRangeGetReturnsNil(t *testing.T) {
	f := NewFrame(nil, value.NewTable())
	f.Top = 2
	if got := f.Get(50); !got.IsNil() {
		t.Errorf("Get(out of range) = %v, want nil", got)
	}
}

func TestFrameOutOfRangeSetErrors(t *testing.T) {
	f := NewFrame(nil, value.NewTable())
	f.Top = 2
	if err := f.Set(50, value.Int(1)); err == nil {
		t.Error("expected error setting out-of-range absolute index")
	}
}

// TestUpvalueOpenCloseLifecycle matches spec §8 scenario 4: an outer
// slot captured as an inner closure's upvalue observes writes through
// SETUPVAL until the slot is closed.
func TestUpvalueOpenCloseLifecycle(t *testing.T) {
	outer := NewFrame(nil, value.NewTable())
	outer.Top = 4

	uv := outer.FindOrCreateUpvalue(3)
	if !uv.IsOpen() {
		t.Fatal("expected a freshly created upvalue to be open")
	}

	*outer.Reg(3) = value.Int(10)
	if got := uv.Get(); got.AsInteger() != 10 {
		t.Fatalf("open upvalue did not observe the slot write, got %v", got)
	}

	uv.Set(value.Int(20))
	if got := outer.Slots[3]; got.AsInteger() != 20 {
		t.Fatalf("writing through the upvalue did not update the slot, got %v", got)
	}

	outer.CloseAllUpvalues()
	if uv.IsOpen() {
		t.Fatal("expected upvalue to be closed after CloseAllUpvalues")
	}
	*outer.Reg(3) = value.Int(999)
	if got := uv.Get(); got.AsInteger() != 20 {
		t.Fatalf("closed upvalue should not track further slot writes, got %v", got)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
