package symsolve

import "sort"

// ============================================================
// Polynomial utilities
// ============================================================

// maxExpandPower bounds the integer powers of sums Expand multiplies out.
const maxExpandPower = 16

// Expand distributes products over sums and multiplies out small
// non-negative integer powers of sums.
func Expand(e Expr) Expr { return Simplify(expandExpr(Simplify(e))) }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		acc := expandExpr(v.factors[0])
		for _, f := range v.factors[1:] {
			acc = distribute(acc, expandExpr(f))
		}
		return acc
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = expandExpr(t)
		}
		return AddOf(terms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && !n.inexact {
			k := n.val.Num()
			if _, isSum := base.(*Add); isSum && k.IsInt64() && k.Int64() >= 0 && k.Int64() <= maxExpandPower {
				result := Expr(N(1))
				for i := int64(0); i < k.Int64(); i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
		return PowOf(base, v.exp)
	case *Func:
		args := make([]Expr, len(v.args))
		for i, a := range v.args {
			args[i] = expandExpr(a)
		}
		return FuncOf(v.name, args...)
	}
	return e
}

// distribute multiplies two expanded operands term by term. Terms of an
// expanded operand contain no sums, so their products need no further
// expansion.
func distribute(a, b Expr) Expr {
	at, bt := termsOf(a), termsOf(b)
	out := make([]Expr, 0, len(at)*len(bt))
	for _, x := range at {
		for _, y := range bt {
			out = append(out, MulOf(x, y))
		}
	}
	return AddOf(out...)
}

func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// PolyCoeffs returns the coefficients of expr viewed as a polynomial in
// varName, keyed by degree. Coefficients may contain other symbols. The
// second result is false when expr is not a polynomial in varName, for
// example when varName appears in a denominator, an exponent or a
// function argument.
func PolyCoeffs(expr Expr, varName string) (map[int]Expr, bool) {
	out := map[int][]Expr{}
	for _, t := range termsOf(Expand(expr)) {
		deg, coeff, ok := monomial(t, varName)
		if !ok {
			return nil, false
		}
		out[deg] = append(out[deg], coeff)
	}
	coeffs := make(map[int]Expr, len(out))
	for deg, parts := range out {
		c := AddOf(parts...)
		if isNumEqual(c, 0) {
			continue
		}
		coeffs[deg] = c
	}
	return coeffs, true
}

// monomial splits a term into c * varName^deg with c free of varName.
func monomial(t Expr, varName string) (int, Expr, bool) {
	factors := []Expr{t}
	if m, ok := t.(*Mul); ok {
		factors = m.factors
	}
	deg := 0
	var coeff []Expr
	for _, f := range factors {
		if !Contains(f, varName) {
			coeff = append(coeff, f)
			continue
		}
		d, ok := symPower(f, varName)
		if !ok {
			return 0, nil, false
		}
		deg += d
	}
	return deg, MulOf(coeff...), true
}

// symPower recognizes varName and varName^k for a non-negative integer k.
func symPower(f Expr, varName string) (int, bool) {
	switch v := f.(type) {
	case *Sym:
		return 1, v.name == varName
	case *Pow:
		sym, ok := v.base.(*Sym)
		n, isNum := v.exp.(*Num)
		if !ok || sym.name != varName || !isNum || !n.IsInteger() || n.inexact || n.IsNegative() {
			return 0, false
		}
		if !n.val.Num().IsInt64() {
			return 0, false
		}
		return int(n.val.Num().Int64()), true
	}
	return 0, false
}

// Degree returns the degree of expr in varName. The zero polynomial has
// degree -1. The second result is false when expr is not a polynomial in
// varName.
func Degree(expr Expr, varName string) (int, bool) {
	coeffs, ok := PolyCoeffs(expr, varName)
	if !ok {
		return 0, false
	}
	return polyDegree(coeffs), true
}

func polyDegree(coeffs map[int]Expr) int {
	deg := -1
	for d := range coeffs {
		if d > deg {
			deg = d
		}
	}
	return deg
}

// Collect groups the terms of expr by powers of varName. Non-polynomial
// input is returned simplified but otherwise unchanged.
func Collect(expr Expr, varName string) Expr {
	coeffs, ok := PolyCoeffs(expr, varName)
	if !ok {
		return Simplify(expr)
	}
	degs := make([]int, 0, len(coeffs))
	for d := range coeffs {
		degs = append(degs, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(degs)))
	terms := make([]Expr, 0, len(degs))
	x := S(varName)
	for _, d := range degs {
		terms = append(terms, MulOf(coeffs[d], PowOf(x, N(int64(d)))))
	}
	return AddOf(terms...)
}
