package symsolve

import (
	"fmt"
	"math/big"
	"strings"
)

// ============================================================
// Limits
// ============================================================

// Infinity is the point symbol for limits at +∞; negate it for -∞.
var Infinity = S("oo")

// Limit computes lim_{varName -> point} expr.
//
// Direct substitution is tried first. If that is undefined because both
// numerator and denominator vanish (0/0), L'Hôpital's rule is applied
// exactly once before giving up with ErrIndeterminate. Points at infinity
// are resolved for rational functions by comparing leading terms.
func Limit(expr Expr, varName string, point Expr) (Expr, error) {
	e := Simplify(expr)
	point = Simplify(point)
	if sign := infinitySign(point); sign != 0 {
		return limitAtInfinity(e, varName, sign)
	}
	if IsUndefined(point) {
		return nil, undefinedError(point)
	}
	if r, ok := substituteDefined(e, varName, point); ok {
		return r, nil
	}

	num, den := SplitFraction(e)
	if isNumEqual(den, 1) {
		return nil, fmt.Errorf("%w: %s is undefined at %s = %s", ErrIndeterminate, e, varName, point)
	}
	numAt := Simplify(num.Sub(varName, point))
	denAt := Simplify(den.Sub(varName, point))
	if !isNumEqual(denAt, 0) {
		return nil, fmt.Errorf("%w: %s is undefined at %s = %s", ErrIndeterminate, e, varName, point)
	}
	if !isNumEqual(numAt, 0) {
		return nil, fmt.Errorf("%w: %s is unbounded as %s -> %s", ErrIndeterminate, e, varName, point)
	}

	dNum, err := Differentiate(num, varName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndeterminate, err)
	}
	dDen, err := Differentiate(den, varName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndeterminate, err)
	}
	ratio := Simplify(mul(dNum, pow(dDen, N(-1))))
	if r, ok := substituteDefined(ratio, varName, point); ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: 0/0 persists after one application of L'Hôpital's rule", ErrIndeterminate)
}

func substituteDefined(e Expr, varName string, point Expr) (Expr, bool) {
	r := Simplify(e.Sub(varName, point))
	if IsUndefined(r) {
		return nil, false
	}
	return r, true
}

// SplitFraction separates e into numerator and denominator. Factors with
// a negative numeric exponent form the denominator; the denominator is 1
// when there are none.
func SplitFraction(e Expr) (num, den Expr) {
	var numFactors, denFactors []Expr
	factors := []Expr{e}
	if m, ok := e.(*Mul); ok {
		factors = m.factors
	}
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsNegative() {
				denFactors = append(denFactors, Simplify(pow(p.base, numNeg(en))))
				continue
			}
		}
		if n, ok := f.(*Num); ok && !n.IsInteger() && !n.inexact {
			numFactors = append(numFactors, &Num{val: new(big.Rat).SetInt(n.val.Num())})
			denFactors = append(denFactors, &Num{val: new(big.Rat).SetInt(n.val.Denom())})
			continue
		}
		numFactors = append(numFactors, f)
	}
	return Simplify(mul(numFactors...)), Simplify(mul(denFactors...))
}

func infinitySign(point Expr) int {
	if s, ok := point.(*Sym); ok && isInfinityName(s.name) {
		return 1
	}
	if m, ok := point.(*Mul); ok && len(m.factors) == 2 {
		c, okC := m.factors[0].(*Num)
		s, okS := m.factors[1].(*Sym)
		if okC && okS && c.IsNegOne() && isInfinityName(s.name) {
			return -1
		}
	}
	return 0
}

func isInfinityName(name string) bool {
	switch strings.ToLower(name) {
	case "oo", "inf", "infinity":
		return true
	}
	return false
}

// limitAtInfinity compares the leading terms of a rational function.
func limitAtInfinity(e Expr, varName string, sign int) (Expr, error) {
	num, den := SplitFraction(e)
	nc, okN := PolyCoeffs(num, varName)
	dc, okD := PolyCoeffs(den, varName)
	if !okN || !okD {
		return nil, fmt.Errorf("%w: limits at infinity are only evaluated for rational functions", ErrIndeterminate)
	}
	dn, dd := polyDegree(nc), polyDegree(dc)
	if dd < 0 {
		return nil, fmt.Errorf("%w: denominator is identically zero", ErrIndeterminate)
	}
	switch {
	case dn < 0 || dn < dd:
		return N(0), nil
	case dn == dd:
		return Simplify(mul(nc[dn], pow(dc[dd], N(-1)))), nil
	}
	return nil, fmt.Errorf("%w: %s is unbounded as %s -> %s", ErrIndeterminate, e, varName, infinityString(sign))
}

func infinityString(sign int) string {
	if sign < 0 {
		return "-oo"
	}
	return "oo"
}
