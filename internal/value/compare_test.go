package value

import "testing"

func TestLtNumeric(t *testing.T) {
	lt, err := Lt(Int(1), Float(1.5))
	if err != nil {
		t.Fatal(err)
	}
	if !lt {
		t.Error("Lt(1, 1.5) = false, want true")
	}
}

func TestLtString(t *testing.T) {
	lt, err := Lt(Str("a"), Str("b"))
	if err != nil {
		t.Fatal(err)
	}
	if !lt {
		t.Error("Lt(a, b) = false, want true")
	}
}

func TestLtMixedKindsErrors(t *testing.T) {
	if _, err := Lt(Int(1), Str("a")); err == nil {
		t.Fatal("expected comparison error for int < string")
	}
}

func TestLeEqual(t *testing.T) {
	le, err := Le(Int(3), Int(3))
	if err != nil {
		t.Fatal(err)
	}
	if !le {
		t.Error("Le(3, 3) = false, want true")
	}
}

// TestMixedIntFloatComparisonPreservesPrecision covers spec §4.3's
// precision rule: 9007199254740993 (2^53+1) has no exact float64
// representation and rounds to the same value as 9007199254740992.0,
// so a naive float promotion would wrongly call them equal.
func TestMixedIntFloatComparisonPreservesPrecision(t *testing.T) {
	big := Int(9007199254740993)
	f := Float(9007199254740992.0)

	if le, err := Le(big, f); err != nil || le {
		t.Errorf("Le(9007199254740993, 9007199254740992.0) = (%v, %v), want (false, nil)", le, err)
	}
	if lt, err := Lt(f, big); err != nil || !lt {
		t.Errorf("Lt(9007199254740992.0, 9007199254740993) = (%v, %v), want (true, nil)", lt, err)
	}
	if lt, err := Lt(big, f); err != nil || lt {
		t.Errorf("Lt(9007199254740993, 9007199254740992.0) = (%v, %v), want (false, nil)", lt, err)
	}
}

func TestLenString(t *testing.T) {
	got, err := Len(Str("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if got.AsInteger() != 5 {
		t.Errorf("Len(hello) = %d, want 5", got.AsInteger())
	}
}

func TestLenTable(t *testing.T) {
	tbl := NewTable()
	must(t, tbl.Set(Int(1), Str("a")))
	must(t, tbl.Set(Int(2), Str("b")))
	got, err := Len(FromTable(tbl))
	if err != nil {
		t.Fatal(err)
	}
	if got.AsInteger() != 2 {
		t.Errorf("Len(table) = %d, want 2", got.AsInteger())
	}
}

func TestLenTypeError(t *testing.T) {
	if _, err := Len(Int(5)); err == nil {
		t.Fatal("expected type error taking length of an integer")
	}
}

func TestConcatNumbersAndStrings(t *testing.T) {
	got, err := Concat(Str("n="), Int(5))
	if err != nil {
		t.Fatal(err)
	}
	if got.AsString() != "n=5" {
		t.Errorf("Concat(n=, 5) = %q, want n=5", got.AsString())
	}
}

func TestConcatTableErrors(t *testing.T) {
	if _, err := Concat(Str("x"), FromTable(NewTable())); err == nil {
		t.Fatal("expected concat error with a table operand")
	}
}
