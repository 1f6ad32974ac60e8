package symsolve_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/njchilds90/symsolve"
)

func solveStrings(t *testing.T, src, v string) ([]string, error) {
	t.Helper()
	eq, err := symsolve.ParseEquation(src)
	if err != nil {
		t.Fatalf("%s: %v", src, err)
	}
	res, err := symsolve.Solve(eq, v)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(res.Solutions))
	for i, s := range res.Solutions {
		out[i] = s.String()
	}
	return out, nil
}

func TestSolve(t *testing.T) {
	cases := []struct {
		src  string
		want []string
	}{
		{"x^2 - 5x + 6 = 0", []string{"2", "3"}},
		{"2x + 4 = 0", []string{"-2"}},
		{"3x = 12", []string{"4"}},
		{"x^2 = 9", []string{"-3", "3"}},
		{"x^2 - 4x + 4 = 0", []string{"2"}},
		{"2x^2 + x = 1", []string{"-1", "1/2"}},
		{"x^2 = 2", []string{"-1.414213562", "1.414213562"}},
		{"(x - 1)(x + 2) = 0", []string{"-2", "1"}},
		{"x/2 + 1 = 3", []string{"4"}},
	}
	for _, tc := range cases {
		got, err := solveStrings(t, tc.src, "x")
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.src, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("%s: solutions mismatch (-want +got):\n%s", tc.src, diff)
		}
	}
}

func TestSolve_SymbolicLinear(t *testing.T) {
	got, err := solveStrings(t, "a*x + b = 0", "x")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"-b/a"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSolve_AllReals(t *testing.T) {
	eq, _ := symsolve.ParseEquation("2(x + 1) = 2x + 2")
	res, err := symsolve.Solve(eq, "x")
	if err != nil {
		t.Fatal(err)
	}
	if !res.AllReals {
		t.Errorf("want all reals, got %s", res)
	}
	if res.String() != "all real numbers" {
		t.Errorf("want 'all real numbers', got %s", res)
	}
}

// Cancelling x/x to 1 drops the x != 0 restriction.
func TestSolve_CancelledFactorIsAllReals(t *testing.T) {
	eq, _ := symsolve.ParseEquation("x/x = 1")
	res, err := symsolve.Solve(eq, "x")
	if err != nil {
		t.Fatal(err)
	}
	if !res.AllReals {
		t.Errorf("want all reals, got %s", res)
	}
}

func TestSolveResult_String(t *testing.T) {
	eq, _ := symsolve.ParseEquation("x^2 - 5x + 6 = 0")
	res, err := symsolve.Solve(eq, "x")
	if err != nil {
		t.Fatal(err)
	}
	if res.String() != "[2, 3]" {
		t.Errorf("want [2, 3], got %s", res)
	}
	if res.Variable != "x" {
		t.Errorf("want variable x, got %s", res.Variable)
	}
}

func TestSolve_Unsolvable(t *testing.T) {
	for _, src := range []string{
		"x + 1 = x",
		"x^2 + 1 = 0",
		"x^3 = 8",
		"sin(x) = 0",
		"1/x = 2",
		"2^x = 8",
		"x^2 + a = 0",
	} {
		_, err := solveStrings(t, src, "x")
		if !errors.Is(err, symsolve.ErrUnsolvable) {
			t.Errorf("%s: want ErrUnsolvable, got %v", src, err)
		}
	}
}

func TestSolve_ComplexRootsNote(t *testing.T) {
	_, err := solveStrings(t, "x^2 + 2x + 5 = 0", "x")
	if err == nil {
		t.Fatal("want an error")
	}
	if got := err.Error(); got != "equation cannot be solved: complex roots -1 ± 2i" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestSolve_ComplexRootsNoteHasNoNegativeZero(t *testing.T) {
	_, err := solveStrings(t, "x^2 + 1 = 0", "x")
	if err == nil {
		t.Fatal("want an error")
	}
	if got := err.Error(); got != "equation cannot be solved: complex roots 0 ± 1i" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestSolveQuadratic_Direct(t *testing.T) {
	roots, err := symsolve.SolveQuadratic(symsolve.N(1), symsolve.N(-3), symsolve.N(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 2 || roots[0].String() != "1" || roots[1].String() != "2" {
		t.Errorf("want [1 2], got %v", roots)
	}
}
