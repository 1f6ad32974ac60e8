package symsolve

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Simplifier
// ============================================================

// Simplify rewrites e into canonical form. Rules are applied bottom-up and
// the pass is repeated until nothing changes; every rule shrinks the tree
// or leaves it alone, so the loop is bounded by the tree size.
func Simplify(e Expr) Expr {
	limit := Size(e) + 4
	cur := e
	for i := 0; i < limit; i++ {
		next := simplifyOnce(cur)
		if next.Equal(cur) {
			return next
		}
		cur = next
	}
	return cur
}

func simplifyOnce(e Expr) Expr {
	switch v := e.(type) {
	case *Num, *Sym, *Undefined:
		return e
	case *Add:
		return simplifyAdd(v)
	case *Mul:
		return simplifyMul(v)
	case *Pow:
		return simplifyPow(simplifyOnce(v.base), simplifyOnce(v.exp))
	case *Func:
		args := make([]Expr, len(v.args))
		for i, a := range v.args {
			args[i] = simplifyOnce(a)
		}
		return simplifyFunc(v.name, args)
	}
	return e
}

func simplifyAdd(a *Add) Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := simplifyOnce(t)
		switch v := s.(type) {
		case *Undefined:
			return v
		case *Add:
			flat = append(flat, v.terms...)
		default:
			flat = append(flat, s)
		}
	}

	type group struct {
		coeff *Num
		rest  Expr
	}
	constant := N(0)
	groups := map[string]*group{}
	order := []string{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)
			continue
		}
		coeff, rest := splitCoeff(t)
		key := keyOf(rest)
		g, seen := groups[key]
		if !seen {
			g = &group{coeff: N(0), rest: rest}
			groups[key] = g
			order = append(order, key)
		}
		g.coeff = numAdd(g.coeff, coeff)
	}

	terms := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		if g.coeff.IsZero() {
			continue
		}
		terms = append(terms, scaleTerm(g.coeff, g.rest))
	}
	sortTerms(terms)
	if !constant.IsZero() || len(terms) == 0 {
		terms = append(terms, constant)
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return &Add{terms: terms}
}

func simplifyMul(m *Mul) Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := simplifyOnce(f)
		switch v := s.(type) {
		case *Undefined:
			return v
		case *Mul:
			flat = append(flat, v.factors...)
		default:
			flat = append(flat, s)
		}
	}

	type group struct {
		base Expr
		exps []Expr
	}
	coeff := N(1)
	groups := map[string]*group{}
	order := []string{}
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		base, exp := baseExp(f)
		key := keyOf(base)
		g, seen := groups[key]
		if !seen {
			g = &group{base: base}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	if coeff.IsZero() {
		return N(0)
	}

	factors := make([]Expr, 0, len(order))
	for _, key := range order {
		g := groups[key]
		exp := g.exps[0]
		if len(g.exps) > 1 {
			exp = simplifyOnce(add(g.exps...))
		}
		switch r := simplifyPow(g.base, exp).(type) {
		case *Num:
			coeff = numMul(coeff, r)
		case *Undefined:
			return r
		case *Mul:
			for _, ff := range r.factors {
				if n, ok := ff.(*Num); ok {
					coeff = numMul(coeff, n)
				} else {
					factors = append(factors, ff)
				}
			}
		default:
			factors = append(factors, r)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}
	sortFactors(factors)
	if len(factors) == 0 {
		return coeff
	}
	unit := coeff.IsOne() && !coeff.inexact
	// c*(a + b)*rest distributes c into the sum when it is the only one.
	if i := loneSum(factors); i >= 0 && !unit {
		sum := factors[i].(*Add)
		terms := make([]Expr, len(sum.terms))
		for j, t := range sum.terms {
			terms[j] = simplifyMul(&Mul{factors: []Expr{coeff, t}})
		}
		scaled := simplifyAdd(&Add{terms: terms})
		if len(factors) == 1 {
			return scaled
		}
		rest := append([]Expr(nil), factors...)
		rest[i] = scaled
		return simplifyMul(&Mul{factors: rest})
	}
	if unit {
		if len(factors) == 1 {
			return factors[0]
		}
		return &Mul{factors: factors}
	}
	return &Mul{factors: append([]Expr{coeff}, factors...)}
}

// loneSum returns the index of the only Add among factors, or -1 when there
// is none or more than one.
func loneSum(factors []Expr) int {
	idx := -1
	for i, f := range factors {
		if _, ok := f.(*Add); ok {
			if idx >= 0 {
				return -1
			}
			idx = i
		}
	}
	return idx
}

// simplifyPow applies power identities to already simplified operands.
func simplifyPow(base, exp Expr) Expr {
	if u, ok := base.(*Undefined); ok {
		return u
	}
	if u, ok := exp.(*Undefined); ok {
		return u
	}
	en, expIsNum := exp.(*Num)
	if expIsNum {
		// 0^0 is taken as 1 by convention.
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() {
			return base
		}
	}
	if bn, ok := base.(*Num); ok {
		if expIsNum {
			return foldPow(bn, en)
		}
		if bn.IsOne() {
			return N(1)
		}
	}
	if expIsNum && en.IsInteger() && !en.inexact {
		switch b := base.(type) {
		case *Pow:
			return simplifyPow(b.base, simplifyOnce(mul(b.exp, en)))
		case *Mul:
			parts := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				parts[i] = simplifyPow(f, en)
			}
			return simplifyMul(&Mul{factors: parts})
		}
	}
	return &Pow{base: base, exp: exp}
}

// foldPow evaluates b^e for numeric operands. Exact inputs give exact
// results whenever the power is rational.
func foldPow(b, e *Num) Expr {
	if b.IsZero() {
		switch {
		case e.IsNegative():
			return Undef("division by zero")
		case e.IsZero():
			return N(1)
		}
		return N(0)
	}
	if e.IsInteger() && !e.inexact {
		k := e.val.Num()
		if k.IsInt64() && k.Int64() >= -4096 && k.Int64() <= 4096 {
			return &Num{val: ratPowInt(b.val, k.Int64()), inexact: b.inexact}
		}
	}
	if b.IsOne() {
		return N(1)
	}
	if !e.inexact && !b.inexact {
		if r, ok := exactRatPow(b.val, e.val); ok {
			return &Num{val: r}
		}
	}
	bf, ef := b.Float64(), e.Float64()
	if bf < 0 {
		q := e.val.Denom()
		if e.inexact || q.Bit(0) == 0 {
			return Undef("even root of a negative number")
		}
		r := math.Pow(-bf, ef)
		if e.val.Num().Bit(0) == 1 {
			r = -r
		}
		return floatOrUndefined(r, "overflow")
	}
	return floatOrUndefined(math.Pow(bf, ef), "overflow")
}

func ratPowInt(r *big.Rat, k int64) *big.Rat {
	neg := k < 0
	if neg {
		k = -k
	}
	e := big.NewInt(k)
	num := new(big.Int).Exp(r.Num(), e, nil)
	den := new(big.Int).Exp(r.Denom(), e, nil)
	out := new(big.Rat).SetFrac(num, den)
	if neg {
		out.Inv(out)
	}
	return out
}

// exactRatPow returns b^(p/q) when both numerator and denominator of b
// are perfect q-th powers.
func exactRatPow(b, e *big.Rat) (*big.Rat, bool) {
	q := e.Denom()
	if !q.IsInt64() || q.Int64() > 64 {
		return nil, false
	}
	qi := q.Int64()
	num := new(big.Int).Set(b.Num())
	negative := num.Sign() < 0
	if negative {
		if qi%2 == 0 {
			return nil, false
		}
		num.Neg(num)
	}
	rn, ok := intRoot(num, qi)
	if !ok {
		return nil, false
	}
	rd, ok := intRoot(b.Denom(), qi)
	if !ok {
		return nil, false
	}
	if negative {
		rn.Neg(rn)
	}
	p := e.Num()
	if !p.IsInt64() || p.Int64() > 4096 || p.Int64() < -4096 {
		return nil, false
	}
	return ratPowInt(new(big.Rat).SetFrac(rn, rd), p.Int64()), true
}

// intRoot returns the exact non-negative q-th root of n, if any.
func intRoot(n *big.Int, q int64) (*big.Int, bool) {
	if q == 2 {
		r := new(big.Int).Sqrt(n)
		return r, new(big.Int).Mul(r, r).Cmp(n) == 0
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	if math.IsInf(f, 0) {
		return nil, false
	}
	guess := int64(math.Round(math.Pow(f, 1/float64(q))))
	qe := big.NewInt(q)
	for _, c := range []int64{guess - 1, guess, guess + 1} {
		if c < 0 {
			continue
		}
		r := big.NewInt(c)
		if new(big.Int).Exp(r, qe, nil).Cmp(n) == 0 {
			return r, true
		}
	}
	return nil, false
}

// simplifyFunc folds known functions of numbers and removes inverse pairs.
func simplifyFunc(name string, args []Expr) Expr {
	for _, a := range args {
		if u, ok := a.(*Undefined); ok {
			return u
		}
	}
	if len(args) == 1 {
		arg := args[0]
		if n, ok := arg.(*Num); ok {
			if r, ok := foldFunc(name, n); ok {
				return r
			}
		}
		switch name {
		case "ln":
			if inner, ok := arg.(*Func); ok && inner.name == "exp" && len(inner.args) == 1 {
				return inner.args[0]
			}
		case "exp":
			if inner, ok := arg.(*Func); ok && inner.name == "ln" && len(inner.args) == 1 {
				return inner.args[0]
			}
		case "abs":
			if inner, ok := arg.(*Func); ok && inner.name == "abs" {
				return inner
			}
			if m, ok := arg.(*Mul); ok {
				if c, ok := m.factors[0].(*Num); ok && c.IsNegative() {
					parts := append([]Expr{numAbs(c)}, m.factors[1:]...)
					return simplifyFunc("abs", []Expr{simplifyMul(&Mul{factors: parts})})
				}
			}
		}
	}
	return &Func{name: name, args: args}
}

func foldFunc(name string, n *Num) (Expr, bool) {
	v := n.Float64()
	switch name {
	case "sin":
		if n.IsZero() {
			return N(0), true
		}
		return floatOrUndefined(math.Sin(v), "sin overflow"), true
	case "cos":
		if n.IsZero() {
			return N(1), true
		}
		return floatOrUndefined(math.Cos(v), "cos overflow"), true
	case "tan":
		if n.IsZero() {
			return N(0), true
		}
		return floatOrUndefined(math.Tan(v), "tan overflow"), true
	case "exp":
		if n.IsZero() {
			return N(1), true
		}
		return floatOrUndefined(math.Exp(v), "exp overflow"), true
	case "ln":
		if n.IsOne() && !n.inexact {
			return N(0), true
		}
		if !n.IsPositive() {
			return Undef("logarithm of a non-positive number"), true
		}
		return floatOrUndefined(math.Log(v), "ln overflow"), true
	case "abs":
		return numAbs(n), true
	case "asin":
		if n.IsZero() {
			return N(0), true
		}
		if math.Abs(v) > 1 {
			return Undef("asin outside [-1, 1]"), true
		}
		return NFloat(math.Asin(v)), true
	case "acos":
		if n.IsOne() && !n.inexact {
			return N(0), true
		}
		if math.Abs(v) > 1 {
			return Undef("acos outside [-1, 1]"), true
		}
		return NFloat(math.Acos(v)), true
	case "atan":
		if n.IsZero() {
			return N(0), true
		}
		return NFloat(math.Atan(v)), true
	case "sinh":
		if n.IsZero() {
			return N(0), true
		}
		return floatOrUndefined(math.Sinh(v), "sinh overflow"), true
	case "cosh":
		if n.IsZero() {
			return N(1), true
		}
		return floatOrUndefined(math.Cosh(v), "cosh overflow"), true
	case "tanh":
		if n.IsZero() {
			return N(0), true
		}
		return NFloat(math.Tanh(v)), true
	}
	return nil, false
}

// ============================================================
// Simplifier helpers
// ============================================================

// splitCoeff separates the numeric coefficient of a term.
func splitCoeff(t Expr) (*Num, Expr) {
	m, ok := t.(*Mul)
	if !ok {
		return N(1), t
	}
	coeff := N(1)
	rest := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
		} else {
			rest = append(rest, f)
		}
	}
	if len(rest) == 1 {
		return coeff, rest[0]
	}
	return coeff, &Mul{factors: rest}
}

func scaleTerm(c *Num, rest Expr) Expr {
	if c.IsOne() && !c.inexact {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{c}, m.factors...)}
	}
	return &Mul{factors: []Expr{c, rest}}
}

func baseExp(f Expr) (Expr, Expr) {
	if p, ok := f.(*Pow); ok {
		return p.base, p.exp
	}
	return f, N(1)
}

// keyOf renders a structural key; exact values distinguish numbers.
func keyOf(e Expr) string {
	var sb strings.Builder
	writeKey(&sb, e)
	return sb.String()
}

func writeKey(sb *strings.Builder, e Expr) {
	switch v := e.(type) {
	case *Num:
		sb.WriteString("#")
		sb.WriteString(v.val.RatString())
		if v.inexact {
			sb.WriteString("~")
		}
	case *Sym:
		sb.WriteString(v.name)
	case *Add:
		writeKeyList(sb, "+", v.terms)
	case *Mul:
		writeKeyList(sb, "*", v.factors)
	case *Pow:
		writeKeyList(sb, "^", []Expr{v.base, v.exp})
	case *Func:
		writeKeyList(sb, v.name, v.args)
	case *Undefined:
		sb.WriteString("undefined")
	}
}

func writeKeyList(sb *strings.Builder, head string, items []Expr) {
	sb.WriteString(head)
	sb.WriteString("(")
	for i, it := range items {
		if i > 0 {
			sb.WriteString(",")
		}
		writeKey(sb, it)
	}
	sb.WriteString(")")
}

// termDegree orders sum terms: higher powers of symbols first.
func termDegree(t Expr) float64 {
	switch v := t.(type) {
	case *Sym:
		return 1
	case *Pow:
		if en, ok := v.exp.(*Num); ok {
			return en.Float64() * termDegree(v.base)
		}
		return termDegree(v.base)
	case *Mul:
		d := 0.0
		for _, f := range v.factors {
			d += termDegree(f)
		}
		return d
	}
	return 0
}

func sortTerms(terms []Expr) {
	type keyed struct {
		e   Expr
		deg float64
		key string
	}
	ks := make([]keyed, len(terms))
	for i, t := range terms {
		_, rest := splitCoeff(t)
		ks[i] = keyed{e: t, deg: termDegree(t), key: rest.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].deg != ks[j].deg {
			return ks[i].deg > ks[j].deg
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		terms[i] = ks[i].e
	}
}

// factorRank puts symbols and their powers first, function calls next and
// parenthesised sums last.
func factorRank(f Expr) int {
	base, _ := baseExp(f)
	switch base.(type) {
	case *Sym:
		return 0
	case *Func:
		return 1
	}
	return 2
}

func sortFactors(factors []Expr) {
	type keyed struct {
		e    Expr
		rank int
		key  string
	}
	ks := make([]keyed, len(factors))
	for i, f := range factors {
		ks[i] = keyed{e: f, rank: factorRank(f), key: f.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].rank != ks[j].rank {
			return ks[i].rank < ks[j].rank
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		factors[i] = ks[i].e
	}
}
