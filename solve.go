package symsolve

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Equation solving
// ============================================================

// SolveResult is the real solution set of an equation in one variable.
type SolveResult struct {
	Variable  string
	Solutions []Expr
	// AllReals is set when the equation holds identically.
	AllReals bool
}

func (r SolveResult) String() string {
	if r.AllReals {
		return "all real numbers"
	}
	parts := make([]string, len(r.Solutions))
	for i, s := range r.Solutions {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Solve finds the real roots of eq in varName. The residual LHS - RHS must
// be a polynomial of degree at most two; higher degrees, non-polynomial
// terms and complex roots fail with ErrUnsolvable.
func Solve(eq *Equation, varName string) (SolveResult, error) {
	res := eq.Residual()
	if IsUndefined(res) {
		return SolveResult{}, undefinedError(res)
	}
	coeffs, ok := PolyCoeffs(res, varName)
	if !ok {
		return SolveResult{}, fmt.Errorf("%w: %s is not a polynomial in %s", ErrUnsolvable, res, varName)
	}
	out := SolveResult{Variable: varName}
	coeff := func(d int) Expr {
		if c, ok := coeffs[d]; ok {
			return c
		}
		return N(0)
	}
	switch deg := polyDegree(coeffs); {
	case deg < 0:
		out.AllReals = true
		return out, nil
	case deg == 0:
		return SolveResult{}, fmt.Errorf("%w: %s = 0 has no solution", ErrUnsolvable, res)
	case deg == 1:
		out.Solutions = []Expr{SolveLinear(coeff(1), coeff(0))}
		return out, nil
	case deg == 2:
		roots, err := SolveQuadratic(coeff(2), coeff(1), coeff(0))
		if err != nil {
			return SolveResult{}, err
		}
		out.Solutions = roots
		return out, nil
	default:
		return SolveResult{}, fmt.Errorf("%w: degree %d exceeds 2", ErrUnsolvable, deg)
	}
}

// SolveLinear returns the root of a*x + b = 0. a must be non-zero.
func SolveLinear(a, b Expr) Expr {
	return MulOf(N(-1), b, PowOf(a, N(-1)))
}

// SolveQuadratic returns the real roots of a*x^2 + b*x + c = 0 in
// ascending order, one root when the discriminant vanishes. Coefficients
// must be numeric. Roots are exact when the discriminant is a perfect
// rational square.
func SolveQuadratic(a, b, c Expr) ([]Expr, error) {
	an, aok := a.Eval()
	bn, bok := b.Eval()
	cn, cok := c.Eval()
	if !aok || !bok || !cok {
		return nil, fmt.Errorf("%w: quadratic with symbolic coefficients", ErrUnsolvable)
	}
	if an.IsZero() {
		if bn.IsZero() {
			return nil, fmt.Errorf("%w: degenerate quadratic", ErrUnsolvable)
		}
		return []Expr{SolveLinear(bn, cn)}, nil
	}
	inexact := an.inexact || bn.inexact || cn.inexact

	// disc = b^2 - 4ac
	disc := new(big.Rat).Mul(bn.val, bn.val)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(an.val, cn.val)))
	twoA := numMul(N(2), an)
	negB := numNeg(bn)

	switch disc.Sign() {
	case -1:
		af, bf := an.Float64(), bn.Float64()
		df, _ := disc.Float64()
		re := -bf / (2 * af)
		if re == 0 {
			// drops the sign of -0
			re = 0
		}
		im := math.Abs(math.Sqrt(-df) / (2 * af))
		return nil, fmt.Errorf("%w: complex roots %g ± %gi", ErrUnsolvable, re, im)
	case 0:
		return []Expr{numDiv(negB, twoA)}, nil
	}

	var sq *Num
	if !inexact {
		if r, ok := exactRatPow(disc, big.NewRat(1, 2)); ok {
			sq = &Num{val: r}
		}
	}
	if sq == nil {
		df, _ := disc.Float64()
		sq = NFloat(math.Sqrt(df))
	}
	r1 := numDiv(numAdd(negB, sq), twoA)
	r2 := numDiv(numSub(negB, sq), twoA)
	roots := []*Num{r1, r2}
	sort.Slice(roots, func(i, j int) bool { return numCmp(roots[i], roots[j]) < 0 })
	return []Expr{roots[0], roots[1]}, nil
}
