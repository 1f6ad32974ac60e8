package symsolve

import "fmt"

// ============================================================
// Differentiation
// ============================================================

// Differentiate returns d(expr)/d(varName), simplified. It fails only
// when a function without a derivative rule depends on varName.
func Differentiate(expr Expr, varName string) (Expr, error) {
	d, err := derive(expr, varName)
	if err != nil {
		return nil, err
	}
	return Simplify(d), nil
}

// Diff is Differentiate for callers that know every function in expr has
// a rule; it panics otherwise.
func Diff(expr Expr, varName string) Expr {
	d, err := Differentiate(expr, varName)
	if err != nil {
		panic("symsolve: " + err.Error())
	}
	return d
}

// MaxDiffOrder bounds the order DiffN accepts.
const MaxDiffOrder = 64

// DiffN applies Differentiate n times, stopping early once the result is 0.
func DiffN(expr Expr, varName string, n int) (Expr, error) {
	if n < 0 || n > MaxDiffOrder {
		return nil, fmt.Errorf("derivative order %d outside [0, %d]", n, MaxDiffOrder)
	}
	result := Simplify(expr)
	for i := 0; i < n; i++ {
		if isNumEqual(result, 0) {
			break
		}
		d, err := Differentiate(result, varName)
		if err != nil {
			return nil, err
		}
		result = d
	}
	return result, nil
}

func derive(e Expr, v string) (Expr, error) {
	switch t := e.(type) {
	case *Num:
		return N(0), nil
	case *Undefined:
		return t, nil
	case *Sym:
		if t.name == v {
			return N(1), nil
		}
		return N(0), nil
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			d, err := derive(term, v)
			if err != nil {
				return nil, err
			}
			terms[i] = d
		}
		return add(terms...), nil
	case *Mul:
		return deriveProduct(t, v)
	case *Pow:
		return derivePow(t, v)
	case *Func:
		return deriveFunc(t, v)
	}
	return N(0), nil
}

// deriveProduct applies the generalized product rule:
// d(f1*...*fn) = sum_i d(fi) * prod_{j != i} fj.
func deriveProduct(m *Mul, v string) (Expr, error) {
	terms := make([]Expr, 0, len(m.factors))
	for i, fi := range m.factors {
		if !Contains(fi, v) {
			continue
		}
		dfi, err := derive(fi, v)
		if err != nil {
			return nil, err
		}
		parts := make([]Expr, 0, len(m.factors))
		parts = append(parts, dfi)
		for j, fj := range m.factors {
			if j != i {
				parts = append(parts, fj)
			}
		}
		terms = append(terms, mul(parts...))
	}
	return add(terms...), nil
}

func derivePow(p *Pow, v string) (Expr, error) {
	if !Contains(p, v) {
		return N(0), nil
	}
	du, err := derive(p.base, v)
	if err != nil {
		return nil, err
	}
	if _, ok := p.exp.(*Num); ok {
		// n * u^(n-1) * du
		return mul(p.exp, pow(p.base, add(p.exp, N(-1))), du), nil
	}
	dv, err := derive(p.exp, v)
	if err != nil {
		return nil, err
	}
	if _, ok := p.base.(*Num); ok {
		// a^v * ln(a) * dv
		return mul(p, fn("ln", p.base), dv), nil
	}
	// u^v * (dv*ln(u) + v*du/u)
	logTerm := mul(dv, fn("ln", p.base))
	ratioTerm := mul(p.exp, du, pow(p.base, N(-1)))
	return mul(p, add(logTerm, ratioTerm)), nil
}

func deriveFunc(f *Func, v string) (Expr, error) {
	if !Contains(f, v) {
		return N(0), nil
	}
	if len(f.args) != 1 {
		return nil, &UnsupportedFunctionError{Name: f.name}
	}
	u := f.args[0]
	var outer Expr
	switch f.name {
	case "sin":
		outer = fn("cos", u)
	case "cos":
		outer = mul(N(-1), fn("sin", u))
	case "tan":
		outer = add(N(1), pow(fn("tan", u), N(2)))
	case "exp":
		outer = fn("exp", u)
	case "ln":
		outer = pow(u, N(-1))
	case "asin":
		outer = pow(add(N(1), mul(N(-1), pow(u, N(2)))), F(-1, 2))
	case "acos":
		outer = mul(N(-1), pow(add(N(1), mul(N(-1), pow(u, N(2)))), F(-1, 2)))
	case "atan":
		outer = pow(add(N(1), pow(u, N(2))), N(-1))
	case "sinh":
		outer = fn("cosh", u)
	case "cosh":
		outer = fn("sinh", u)
	case "tanh":
		outer = add(N(1), mul(N(-1), pow(fn("tanh", u), N(2))))
	case "abs":
		outer = mul(u, pow(fn("abs", u), N(-1)))
	default:
		return nil, &UnsupportedFunctionError{Name: f.name}
	}
	du, err := derive(u, v)
	if err != nil {
		return nil, err
	}
	return mul(outer, du), nil
}
