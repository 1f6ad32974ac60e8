package symsolve

import "fmt"

// ============================================================
// Integration (rule-based)
// ============================================================

// Integrate returns an antiderivative of expr with respect to varName,
// without the constant of integration. Only linearity, constant
// multiples, the power rule and the sin/cos/exp table are tried; any
// other form fails with ErrNoRule. No substitution or integration by
// parts is attempted.
func Integrate(expr Expr, varName string) (Expr, error) {
	e := Simplify(expr)
	if IsUndefined(e) {
		return nil, undefinedError(e)
	}
	r, err := integrate(e, varName)
	if err != nil {
		return nil, err
	}
	return Simplify(r), nil
}

func integrate(e Expr, v string) (Expr, error) {
	x := S(v)
	if !Contains(e, v) {
		return mul(e, x), nil
	}
	switch t := e.(type) {
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			r, err := integrate(term, v)
			if err != nil {
				return nil, err
			}
			terms[i] = r
		}
		return add(terms...), nil
	case *Mul:
		var consts, deps []Expr
		for _, f := range t.factors {
			if Contains(f, v) {
				deps = append(deps, f)
			} else {
				consts = append(consts, f)
			}
		}
		if len(consts) == 0 {
			return nil, noRule(e)
		}
		inner, err := integrate(mul(deps...), v)
		if err != nil {
			return nil, err
		}
		return mul(append(consts, inner)...), nil
	case *Sym:
		return mul(F(1, 2), pow(x, N(2))), nil
	case *Pow:
		sym, ok := t.base.(*Sym)
		n, isNum := t.exp.(*Num)
		if !ok || sym.name != v || !isNum {
			return nil, noRule(e)
		}
		if n.IsNegOne() {
			return fn("ln", fn("abs", x)), nil
		}
		next := numAdd(n, N(1))
		return mul(pow(x, next), pow(next, N(-1))), nil
	case *Func:
		if len(t.args) != 1 || !t.args[0].Equal(x) {
			return nil, noRule(e)
		}
		switch t.name {
		case "sin":
			return mul(N(-1), fn("cos", x)), nil
		case "cos":
			return fn("sin", x), nil
		case "exp":
			return fn("exp", x), nil
		}
	}
	return nil, noRule(e)
}

func noRule(e Expr) error {
	return fmt.Errorf("%w for %s", ErrNoRule, e.String())
}
