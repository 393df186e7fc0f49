package vm

import (
	"testing"

	"luavm/internal/value"
)

func TestIndexReadsTable(t *testing.T) {
	tbl := value.NewTable()
	must(t, tbl.Set(value.Str("k"), value.Str("v")))
	got, err := index(value.FromTable(tbl), value.Str("k"))
	if err != nil {
		t.Fatal(err)
	}
	if got.AsString() != "v" {
		t.Errorf("index = %v, want v", got)
	}
}

func TestIndexNonTableErrors(t *testing.T) {
	if _, err := index(value.Int(1), value.Str("k")); err == nil {
		t.Fatal("expected TypeError indexing an integer")
	}
}

func TestNewindexWritesTable(t *testing.T) {
	tbl := value.NewTable()
	if err := newindex(value.FromTable(tbl), value.Str("k"), value.Int(5)); err != nil {
		t.Fatal(err)
	}
	if got := tbl.Get(value.Str("k")); got.AsInteger() != 5 {
		t.Errorf("Get(k) = %v, want 5", got)
	}
}

func TestNewindexNonTableErrors(t *testing.T) {
	if err := newindex(value.Str("x"), value.Str("k"), value.Int(1)); err == nil {
		t.Fatal("expected TypeError indexing a string")
	}
}

func TestDecodeFB(t *testing.T) {
	// Values below 8 are exact.
	for i := 0; i < 8; i++ {
		if decodeFB(i) != i {
			t.Errorf("decodeFB(%d) = %d, want %d", i, decodeFB(i), i)
		}
	}
	cases := []struct{ in, want int }{
		{8, 8},   // mantissa=0 exponent=1 -> (0+8)<<0
		{9, 9},   // mantissa=1 exponent=1 -> (1+8)<<0
		{16, 16}, // mantissa=0 exponent=2 -> (0+8)<<1
		{24, 32}, // mantissa=0 exponent=3 -> (0+8)<<2
	}
	for _, c := range cases {
		if got := decodeFB(c.in); got != c.want {
			t.Errorf("decodeFB(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
