package symsolve_test

import (
	"errors"
	"testing"

	"github.com/njchilds90/symsolve"
)

func TestIntegrate_Table(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x^2", "x^3/3"},
		{"cos(x)", "sin(x)"},
		{"sin(x)", "-cos(x)"},
		{"exp(x)", "exp(x)"},
		{"1/x", "ln(|x|)"},
		{"x", "x^2/2"},
		{"5", "5*x"},
		{"y", "x*y"},
		{"3x^2 + 2x", "x^3 + x^2"},
		{"x^-2", "-1/x"},
		{"sqrt(x)", "2*x^(3/2)/3"},
		{"a*cos(x)", "a*sin(x)"},
		{"4/x", "4*ln(|x|)"},
		{"x^3 - 2x + 1", "x^4/4 - x^2 + x"},
	}
	for _, tc := range cases {
		got, err := symsolve.Integrate(symsolve.MustParse(tc.src), "x")
		if err != nil {
			t.Errorf("∫%s: unexpected error %v", tc.src, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("∫%s: want %s, got %s", tc.src, tc.want, got)
		}
	}
}

func TestIntegrate_NoRule(t *testing.T) {
	sources := []string{
		"x*sin(x)",
		"sin(2x)",
		"exp(x^2)",
		"ln(x)",
		"tan(x)",
		"x^x",
		"1/(x + 1)",
		"sin(x) + x*exp(x)",
	}
	for _, src := range sources {
		_, err := symsolve.Integrate(symsolve.MustParse(src), "x")
		if !errors.Is(err, symsolve.ErrNoRule) {
			t.Errorf("∫%s: want ErrNoRule, got %v", src, err)
		}
	}
}

// The derivative of every antiderivative gives back the integrand.
func TestIntegrate_DerivativeRecoversIntegrand(t *testing.T) {
	for _, src := range []string{"x^2", "cos(x)", "3x^2 + 2x", "x^-2", "a*exp(x)"} {
		e := symsolve.Simplify(symsolve.MustParse(src))
		anti, err := symsolve.Integrate(e, "x")
		if err != nil {
			t.Fatalf("∫%s: %v", src, err)
		}
		d, err := symsolve.Differentiate(anti, "x")
		if err != nil {
			t.Fatalf("d/dx %s: %v", anti, err)
		}
		if !d.Equal(e) {
			t.Errorf("d/dx ∫%s = %s, want %s", src, d, e)
		}
	}
}
