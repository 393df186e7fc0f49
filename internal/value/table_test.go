package value

import "testing"

func TestTableArrayPart(t *testing.T) {
	tbl := NewTable()
	if err := tbl.Set(Int(1), Str("a")); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Set(Int(2), Str("b")); err != nil {
		t.Fatal(err)
	}
	if got := tbl.Get(Int(1)); got.AsString() != "a" {
		t.Errorf("Get(1) = %v, want a", got)
	}
	if got := tbl.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestTableFloatKeyNormalizesToInteger(t *testing.T) {
	tbl := NewTable()
	if err := tbl.Set(Int(1), Str("x")); err != nil {
		t.Fatal(err)
	}
	if got := tbl.Get(Float(1.0)); got.AsString() != "x" {
		t.Errorf("Get(1.0) = %v, want x (same slot as Get(1))", got)
	}
}

func TestTableNilKeyErrors(t *testing.T) {
	tbl := NewTable()
	if err := tbl.Set(Nil(), Str("x")); err == nil {
		t.Fatal("expected error setting nil key")
	}
}

func TestTableNaNKeyErrors(t *testing.T) {
	tbl := NewTable()
	nan := Float(nanValue())
	if err := tbl.Set(nan, Str("x")); err == nil {
		t.Fatal("expected error setting NaN key")
	}
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}

// TestTableBorderWithHoles matches spec §8 scenario 5: after
// set_i(1,"a"); set_i(2,"b"); set_i(4,"d") the border is 2 or 4 (both
// valid); after set_i(3,"c") the unique border is 4.
func TestTableBorderWithHoles(t *testing.T) {
	tbl := NewTable()
	must(t, tbl.Set(Int(1), Str("a")))
	must(t, tbl.Set(Int(2), Str("b")))
	must(t, tbl.Set(Int(4), Str("d")))

	n := tbl.Len()
	if n != 2 && n != 4 {
		t.Fatalf("Len() = %d, want 2 or 4", n)
	}

	must(t, tbl.Set(Int(3), Str("c")))
	if got := tbl.Len(); got != 4 {
		t.Fatalf("Len() after filling hole = %d, want 4", got)
	}
}

func TestTableSetNilDeletes(t *testing.T) {
	tbl := NewTable()
	must(t, tbl.Set(Str("k"), Str("v")))
	must(t, tbl.Set(Str("k"), Nil()))
	if got := tbl.Get(Str("k")); !got.IsNil() {
		t.Errorf("Get(k) after delete = %v, want nil", got)
	}
}

func TestNewTableSized(t *testing.T) {
	tbl := NewTableSized(4, 2)
	must(t, tbl.Set(Int(1), Str("a")))
	if got := tbl.Get(Int(1)); got.AsString() != "a" {
		t.Errorf("Get(1) = %v, want a", got)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
