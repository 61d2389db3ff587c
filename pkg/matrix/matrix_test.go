package matrix

import (
	"testing"
)

func TestNew(t *testing.T) {
	m := New(3)

	if m.Size() != 3 {
		t.Errorf("Size() = %d, want 3", m.Size())
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if m.At(i, j) != 0 {
				t.Errorf("At(%d,%d) = %v, want 0", i, j, m.At(i, j))
			}
		}
	}
}

func TestNew_InvalidSize(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("New(0) should panic")
		}
	}()
	New(0)
}

func TestSetAt(t *testing.T) {
	m := New(2)
	m.Set(0, 1, 3.5)
	m.Set(1, 0, -2)

	if m.At(0, 1) != 3.5 {
		t.Errorf("At(0,1) = %v, want 3.5", m.At(0, 1))
	}
	if m.At(1, 0) != -2 {
		t.Errorf("At(1,0) = %v, want -2", m.At(1, 0))
	}
	if m.At(0, 0) != 0 {
		t.Errorf("At(0,0) = %v, want 0", m.At(0, 0))
	}
}

func TestIdentity(t *testing.T) {
	m := Identity(4)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if m.At(i, j) != want {
				t.Errorf("At(%d,%d) = %v, want %v", i, j, m.At(i, j), want)
			}
		}
	}
}

func TestRandom_Deterministic(t *testing.T) {
	a := Random(5, 42)
	b := Random(5, 42)

	if !a.Equal(b, 0) {
		t.Error("Random with same seed should produce identical matrices")
	}

	c := Random(5, 43)
	if a.Equal(c, 0) {
		t.Error("Random with different seeds should produce different matrices")
	}
}

func TestEqual(t *testing.T) {
	a := New(2)
	b := New(2)
	a.Set(0, 0, 1.0)
	b.Set(0, 0, 1.0+1e-12)

	if !a.Equal(b, 1e-9) {
		t.Error("Equal() should tolerate differences below tol")
	}
	if a.Equal(b, 0) {
		t.Error("Equal() with zero tolerance should detect the difference")
	}
	if a.Equal(New(3), 1e-9) {
		t.Error("Equal() should reject different sizes")
	}
	if a.Equal(nil, 1e-9) {
		t.Error("Equal() should reject nil")
	}
}

func TestMultiply_Known(t *testing.T) {
	// | 1 2 |   | 5 6 |   | 19 22 |
	// | 3 4 | x | 7 8 | = | 43 50 |
	a := New(2)
	a.Set(0, 0, 1)
	a.Set(0, 1, 2)
	a.Set(1, 0, 3)
	a.Set(1, 1, 4)

	b := New(2)
	b.Set(0, 0, 5)
	b.Set(0, 1, 6)
	b.Set(1, 0, 7)
	b.Set(1, 1, 8)

	c := New(2)
	if err := Multiply(a, b, c); err != nil {
		t.Fatalf("Multiply() error = %v", err)
	}

	want := [2][2]float64{{19, 22}, {43, 50}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if c.At(i, j) != want[i][j] {
				t.Errorf("C[%d][%d] = %v, want %v", i, j, c.At(i, j), want[i][j])
			}
		}
	}
}

func TestMultiply_Identity(t *testing.T) {
	b := Random(4, 7)
	c := New(4)

	if err := Multiply(Identity(4), b, c); err != nil {
		t.Fatalf("Multiply() error = %v", err)
	}

	if !c.Equal(b, 0) {
		t.Error("I x B should equal B exactly")
	}
}

func TestMultiply_Errors(t *testing.T) {
	if err := Multiply(nil, New(2), New(2)); err == nil {
		t.Error("Multiply() with nil operand should fail")
	}
	if err := Multiply(New(2), New(3), New(2)); err == nil {
		t.Error("Multiply() with mismatched sizes should fail")
	}
}
