package symsolve_test

import (
	"errors"
	"testing"

	"github.com/njchilds90/symsolve"
)

func TestDifferentiate_Polynomial(t *testing.T) {
	// d/dx(x^2 + 3x + 5) = 2x + 3
	d, err := symsolve.Differentiate(symsolve.MustParse("x^2 + 3x + 5"), "x")
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "2*x + 3" {
		t.Errorf("want 2*x + 3, got %s", d)
	}
}

func TestDifferentiate_Table(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"5", "0"},
		{"x", "1"},
		{"y", "0"},
		{"sin(x)", "cos(x)"},
		{"cos(x)", "-sin(x)"},
		{"exp(x)", "exp(x)"},
		{"ln(x)", "1/x"},
		{"x^3", "3*x^2"},
		{"1/x", "-1/x^2"},
		{"sqrt(x)", "1/(2*sqrt(x))"},
		{"sin(2x)", "2*cos(2*x)"},
		{"exp(x^2)", "2*x*exp(x^2)"},
		{"x*sin(x)", "x*cos(x) + sin(x)"},
		{"2^x", "0.6931471806*2^x"},
		{"a*x^2 + b*x + c", "2*a*x + b"},
		{"atan(x)", "1/(x^2 + 1)"},
		{"f(y)", "0"},
	}
	for _, tc := range cases {
		d, err := symsolve.Differentiate(symsolve.MustParse(tc.src), "x")
		if err != nil {
			t.Errorf("d/dx %s: unexpected error %v", tc.src, err)
			continue
		}
		if d.String() != tc.want {
			t.Errorf("d/dx %s: want %s, got %s", tc.src, tc.want, d)
		}
	}
}

func TestDifferentiate_GeneralPower(t *testing.T) {
	// d/dx x^x = x^x * (ln(x) + 1)
	d, err := symsolve.Differentiate(symsolve.MustParse("x^x"), "x")
	if err != nil {
		t.Fatal(err)
	}
	at1 := symsolve.Substitute(d, "x", symsolve.N(1))
	if at1.String() != "1" {
		t.Errorf("d/dx x^x at 1: want 1, got %s (derivative %s)", at1, d)
	}
}

func TestDifferentiate_UnsupportedFunction(t *testing.T) {
	_, err := symsolve.Differentiate(symsolve.MustParse("gamma(x)"), "x")
	var uerr *symsolve.UnsupportedFunctionError
	if !errors.As(err, &uerr) {
		t.Fatalf("want UnsupportedFunctionError, got %v", err)
	}
	if uerr.Name != "gamma" {
		t.Errorf("want gamma, got %s", uerr.Name)
	}
}

func TestDiff_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Diff should panic on an unsupported function")
		}
	}()
	symsolve.Diff(symsolve.MustParse("gamma(x)"), "x")
}

func TestDiffN(t *testing.T) {
	d, err := symsolve.DiffN(symsolve.MustParse("x^4"), "x", 3)
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "24*x" {
		t.Errorf("want 24*x, got %s", d)
	}
	d0, err := symsolve.DiffN(symsolve.MustParse("x + x"), "x", 0)
	if err != nil {
		t.Fatal(err)
	}
	if d0.String() != "2*x" {
		t.Errorf("zeroth derivative: want 2*x, got %s", d0)
	}
}

func TestDiffN_Bounded(t *testing.T) {
	d, err := symsolve.DiffN(symsolve.MustParse("x^2"), "x", symsolve.MaxDiffOrder)
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "0" {
		t.Errorf("want 0, got %s", d)
	}
	for _, n := range []int{-1, symsolve.MaxDiffOrder + 1, 1 << 30} {
		if _, err := symsolve.DiffN(symsolve.MustParse("x^2"), "x", n); err == nil {
			t.Errorf("order %d: want an error", n)
		}
	}
}
