package symsolve

import (
	"fmt"
	"math/big"
	"strings"
)

// ============================================================
// Plain-text rendering
// ============================================================
//
// Output re-parses to an equal tree: sums print subtraction for negative
// terms, products print division for negative powers, and x^(1/2) prints
// as sqrt(x).

func (a *Add) String() string {
	var sb strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			sb.WriteString(t.String())
			continue
		}
		if neg, ok := negated(t); ok {
			sb.WriteString(" - ")
			if _, isAdd := neg.(*Add); isAdd {
				sb.WriteString("(" + neg.String() + ")")
			} else {
				sb.WriteString(neg.String())
			}
			continue
		}
		sb.WriteString(" + ")
		sb.WriteString(t.String())
	}
	return sb.String()
}

// negated returns -t when t carries a visible minus sign.
func negated(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			if c.IsNegOne() && !c.inexact {
				return mul(v.factors[1:]...), true
			}
			return &Mul{factors: append([]Expr{numNeg(c)}, v.factors[1:]...)}, true
		}
	}
	return nil, false
}

func (m *Mul) String() string {
	var num, den []string
	sign := ""
	factors := m.factors
	if c, ok := factors[0].(*Num); ok {
		factors = factors[1:]
		if c.IsNegative() {
			sign = "-"
			c = numAbs(c)
		}
		switch {
		case c.inexact:
			num = append(num, c.String())
		case c.val.IsInt():
			if !c.IsOne() {
				num = append(num, c.String())
			}
		default:
			if !isOneInt(c.val.Num()) {
				num = append(num, c.val.Num().String())
			}
			den = append(den, c.val.Denom().String())
		}
	}
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsNegative() && !en.inexact {
				den = append(den, powString(p.base, numNeg(en)))
				continue
			}
		}
		num = append(num, factorString(f))
	}
	numStr := "1"
	if len(num) > 0 {
		numStr = strings.Join(num, "*")
	}
	switch len(den) {
	case 0:
		return sign + numStr
	case 1:
		return sign + numStr + "/" + den[0]
	}
	return sign + numStr + "/(" + strings.Join(den, "*") + ")"
}

func isOneInt(i *big.Int) bool { return i.IsInt64() && i.Int64() == 1 }

func factorString(f Expr) string {
	switch v := f.(type) {
	case *Add, *Mul:
		return "(" + f.String() + ")"
	case *Num:
		if v.IsNegative() || (!v.val.IsInt() && !v.inexact) {
			return "(" + v.String() + ")"
		}
	}
	return f.String()
}

func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok && en.IsNegative() && !en.inexact {
		return "1/" + powString(p.base, numNeg(en))
	}
	return powString(p.base, p.exp)
}

func powString(base, exp Expr) string {
	if isNumEqual(exp, 1) {
		return baseString(base)
	}
	if en, ok := exp.(*Num); ok && !en.inexact && en.val.Cmp(big.NewRat(1, 2)) == 0 {
		return "sqrt(" + base.String() + ")"
	}
	return baseString(base) + "^" + expString(exp)
}

func baseString(base Expr) string {
	switch v := base.(type) {
	case *Sym, *Func, *Undefined:
		return base.String()
	case *Num:
		if v.IsInteger() && !v.IsNegative() && !v.inexact {
			return v.String()
		}
	}
	return "(" + base.String() + ")"
}

func expString(exp Expr) string {
	switch v := exp.(type) {
	case *Sym, *Func:
		return exp.String()
	case *Num:
		if v.IsInteger() && !v.IsNegative() && !v.inexact {
			return v.String()
		}
	}
	return "(" + exp.String() + ")"
}

func (f *Func) String() string {
	if f.name == "abs" && len(f.args) == 1 {
		return "|" + f.args[0].String() + "|"
	}
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.String()
	}
	return f.name + "(" + strings.Join(parts, ", ") + ")"
}

// ============================================================
// LaTeX rendering
// ============================================================

func (n *Num) LaTeX() string {
	if n.inexact || n.val.IsInt() {
		return n.String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (s *Sym) LaTeX() string { return s.name }

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			sb.WriteString(t.LaTeX())
			continue
		}
		if neg, ok := negated(t); ok {
			sb.WriteString(" - ")
			if _, isAdd := neg.(*Add); isAdd {
				sb.WriteString("\\left(" + neg.LaTeX() + "\\right)")
			} else {
				sb.WriteString(neg.LaTeX())
			}
			continue
		}
		sb.WriteString(" + ")
		sb.WriteString(t.LaTeX())
	}
	return sb.String()
}

func (m *Mul) LaTeX() string {
	var num, den []string
	sign := ""
	factors := m.factors
	if c, ok := factors[0].(*Num); ok {
		factors = factors[1:]
		if c.IsNegative() {
			sign = "-"
			c = numAbs(c)
		}
		switch {
		case c.inexact, c.val.IsInt():
			if !c.IsOne() || c.inexact {
				num = append(num, c.String())
			}
		default:
			if !isOneInt(c.val.Num()) {
				num = append(num, c.val.Num().String())
			}
			den = append(den, c.val.Denom().String())
		}
	}
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsNegative() && !en.inexact {
				den = append(den, (&Pow{base: p.base, exp: numNeg(en)}).latexBody())
				continue
			}
		}
		switch f.(type) {
		case *Add, *Mul:
			num = append(num, "\\left("+f.LaTeX()+"\\right)")
		default:
			num = append(num, f.LaTeX())
		}
	}
	numStr := "1"
	if len(num) > 0 {
		numStr = strings.Join(num, " ")
	}
	if len(den) == 0 {
		return sign + numStr
	}
	return sign + "\\frac{" + numStr + "}{" + strings.Join(den, " ") + "}"
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok && en.IsNegative() && !en.inexact {
		return "\\frac{1}{" + (&Pow{base: p.base, exp: numNeg(en)}).latexBody() + "}"
	}
	return p.latexBody()
}

func (p *Pow) latexBody() string {
	if isNumEqual(p.exp, 1) {
		return p.base.LaTeX()
	}
	if en, ok := p.exp.(*Num); ok && !en.inexact && en.val.Cmp(big.NewRat(1, 2)) == 0 {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (f *Func) LaTeX() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.LaTeX()
	}
	arg := strings.Join(parts, ", ")
	switch f.name {
	case "sin", "cos", "tan", "exp", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + arg + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + arg + "\\right)"
	case "acos":
		return "\\arccos\\left(" + arg + "\\right)"
	case "atan":
		return "\\arctan\\left(" + arg + "\\right)"
	case "abs":
		return "\\left|" + arg + "\\right|"
	}
	return "\\operatorname{" + f.name + "}\\left(" + arg + "\\right)"
}

// String renders e as plain text.
func String(e Expr) string { return e.String() }

// LaTeX renders e as LaTeX.
func LaTeX(e Expr) string { return e.LaTeX() }
