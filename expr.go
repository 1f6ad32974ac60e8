// Package symsolve is a rule-based symbolic math engine for Go.
//
// It parses algebraic text into immutable expression trees and rewrites
// them to simplify, differentiate, integrate, evaluate limits and solve
// polynomial equations of degree at most two.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat), decimals only where a fold is irrational
//   - Immutable trees: every transformation returns a new tree
//   - Deterministic simplification and stable output
//   - Failures are typed errors, never guessed values
package symsolve

import (
	"math"
	"math/big"
	"strconv"
)

// ============================================================
// Core Interface
// ============================================================

// Kind identifies the node variant of an Expr.
type Kind int

const (
	KindNum Kind = iota
	KindSym
	KindAdd
	KindMul
	KindPow
	KindFunc
	KindUndefined
)

func (k Kind) String() string {
	switch k {
	case KindNum:
		return "num"
	case KindSym:
		return "sym"
	case KindAdd:
		return "add"
	case KindMul:
		return "mul"
	case KindPow:
		return "pow"
	case KindFunc:
		return "func"
	case KindUndefined:
		return "undefined"
	}
	return "unknown"
}

// Expr is a node of an immutable expression tree. The set of
// implementations is closed; transformations switch over it exhaustively.
type Expr interface {
	String() string
	LaTeX() string
	// Sub replaces every occurrence of the symbol varName with value.
	// The result is not simplified.
	Sub(varName string, value Expr) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	Kind() Kind
	toJSON() map[string]interface{}
}

// ============================================================
// Num: exact rational or inexact decimal
// ============================================================

type Num struct {
	val     *big.Rat
	inexact bool
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

func F(p, q int64) *Num {
	if q == 0 {
		panic("symsolve: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat wraps a finite float64 as an inexact number.
func NFloat(f float64) *Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic("symsolve: NFloat of non-finite value")
	}
	return &Num{val: new(big.Rat).SetFloat64(f), inexact: true}
}

// floatOrUndefined folds a float result, mapping NaN and Inf to Undefined.
func floatOrUndefined(f float64, reason string) Expr {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Undef(reason)
	}
	return NFloat(f)
}

func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) Kind() Kind            { return KindNum }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsInexact() bool       { return n.inexact }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

func (n *Num) String() string {
	if n.inexact {
		return strconv.FormatFloat(n.Float64(), 'g', 10, 64)
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func numAdd(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Add(a.val, b.val), inexact: a.inexact || b.inexact}
}
func numSub(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Sub(a.val, b.val), inexact: a.inexact || b.inexact}
}
func numMul(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Mul(a.val, b.val), inexact: a.inexact || b.inexact}
}
func numNeg(a *Num) *Num { return &Num{val: new(big.Rat).Neg(a.val), inexact: a.inexact} }
func numAbs(a *Num) *Num { return &Num{val: new(big.Rat).Abs(a.val), inexact: a.inexact} }

// numDiv returns a/b; the caller guarantees b is non-zero.
func numDiv(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Quo(a.val, b.val), inexact: a.inexact || b.inexact}
}

func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym             { return &Sym{name: name} }
func (s *Sym) String() string        { return s.name }
func (s *Sym) Eval() (*Num, bool)    { return nil, false }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) Kind() Kind            { return KindSym }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

// add builds an unsimplified sum. Zero terms yield 0 so that an empty
// Add can never exist.
func add(terms ...Expr) Expr {
	switch len(terms) {
	case 0:
		return N(0)
	case 1:
		return terms[0]
	}
	return &Add{terms: append([]Expr(nil), terms...)}
}

// AddOf returns the simplified sum of terms.
func AddOf(terms ...Expr) Expr { return Simplify(add(terms...)) }

func (a *Add) Sub(varName string, value Expr) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Sub(varName, value)
	}
	return add(out...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && sameOperands(a.terms, o.terms)
}

func (a *Add) Kind() Kind    { return KindAdd }
func (a *Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func mul(factors ...Expr) Expr {
	switch len(factors) {
	case 0:
		return N(1)
	case 1:
		return factors[0]
	}
	return &Mul{factors: append([]Expr(nil), factors...)}
}

// MulOf returns the simplified product of factors.
func MulOf(factors ...Expr) Expr { return Simplify(mul(factors...)) }

func (m *Mul) Sub(varName string, value Expr) Expr {
	out := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		out[i] = f.Sub(varName, value)
	}
	return mul(out...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && sameOperands(m.factors, o.factors)
}

func (m *Mul) Kind() Kind      { return KindMul }
func (m *Mul) Factors() []Expr { return append([]Expr(nil), m.factors...) }

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func pow(base, exp Expr) Expr { return &Pow{base: base, exp: exp} }

// PowOf returns the simplified power base^exp.
func PowOf(base, exp Expr) Expr { return Simplify(pow(base, exp)) }

// SqrtOf is base^(1/2).
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func (p *Pow) Sub(varName string, value Expr) Expr {
	return pow(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if r, ok := foldPow(b, e).(*Num); ok {
		return r, true
	}
	return nil, false
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) Kind() Kind    { return KindPow }
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	args []Expr
}

func fn(name string, args ...Expr) Expr {
	return &Func{name: name, args: append([]Expr(nil), args...)}
}

func SinOf(arg Expr) Expr  { return Simplify(fn("sin", arg)) }
func CosOf(arg Expr) Expr  { return Simplify(fn("cos", arg)) }
func TanOf(arg Expr) Expr  { return Simplify(fn("tan", arg)) }
func ExpOf(arg Expr) Expr  { return Simplify(fn("exp", arg)) }
func LnOf(arg Expr) Expr   { return Simplify(fn("ln", arg)) }
func AbsOf(arg Expr) Expr  { return Simplify(fn("abs", arg)) }
func AsinOf(arg Expr) Expr { return Simplify(fn("asin", arg)) }
func AcosOf(arg Expr) Expr { return Simplify(fn("acos", arg)) }
func AtanOf(arg Expr) Expr { return Simplify(fn("atan", arg)) }
func SinhOf(arg Expr) Expr { return Simplify(fn("sinh", arg)) }
func CoshOf(arg Expr) Expr { return Simplify(fn("cosh", arg)) }
func TanhOf(arg Expr) Expr { return Simplify(fn("tanh", arg)) }

// FuncOf applies an arbitrary named function. Names without rules stay
// unevaluated.
func FuncOf(name string, args ...Expr) Expr { return Simplify(fn(name, args...)) }

func (f *Func) Sub(varName string, value Expr) Expr {
	out := make([]Expr, len(f.args))
	for i, a := range f.args {
		out[i] = a.Sub(varName, value)
	}
	return fn(f.name, out...)
}

func (f *Func) Eval() (*Num, bool) {
	args := make([]Expr, len(f.args))
	for i, a := range f.args {
		v, ok := a.Eval()
		if !ok {
			return nil, false
		}
		args[i] = v
	}
	if r, ok := simplifyFunc(f.name, args).(*Num); ok {
		return r, true
	}
	return nil, false
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	if !ok || f.name != o.name || len(f.args) != len(o.args) {
		return false
	}
	for i := range f.args {
		if !f.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

func (f *Func) Kind() Kind       { return KindFunc }
func (f *Func) FuncName() string { return f.name }
func (f *Func) Args() []Expr     { return append([]Expr(nil), f.args...) }

// Arg returns the first argument, or nil for a nullary call.
func (f *Func) Arg() Expr {
	if len(f.args) == 0 {
		return nil
	}
	return f.args[0]
}

// ============================================================
// Undefined: result of division by zero and out-of-domain folds
// ============================================================

// Undefined marks a subtree with no value, e.g. 1/0 or ln(0). Any node
// containing it simplifies to it.
type Undefined struct{ reason string }

func Undef(reason string) *Undefined       { return &Undefined{reason: reason} }
func (u *Undefined) String() string        { return "undefined" }
func (u *Undefined) LaTeX() string         { return `\text{undefined}` }
func (u *Undefined) Sub(string, Expr) Expr { return u }
func (u *Undefined) Eval() (*Num, bool)    { return nil, false }
func (u *Undefined) Equal(other Expr) bool { _, ok := other.(*Undefined); return ok }
func (u *Undefined) Kind() Kind            { return KindUndefined }
func (u *Undefined) Reason() string        { return u.reason }

// ============================================================
// Equation
// ============================================================

type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }

func (e *Equation) String() string { return e.LHS.String() + " = " + e.RHS.String() }
func (e *Equation) LaTeX() string  { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }

// Residual returns LHS - RHS simplified.
func (e *Equation) Residual() Expr {
	return Simplify(add(e.LHS, mul(N(-1), e.RHS)))
}

// ============================================================
// Tree helpers
// ============================================================

// sameOperands compares two operand lists as multisets.
func sameOperands(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, x := range a {
		for j, y := range b {
			if !used[j] && x.Equal(y) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// FreeSymbols returns the names of all symbols in e.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		for _, a := range v.args {
			collectSymbols(a, out)
		}
	}
}

// Contains reports whether the symbol varName occurs in e.
func Contains(e Expr, varName string) bool {
	switch v := e.(type) {
	case *Num, *Undefined:
		return false
	case *Sym:
		return v.name == varName
	case *Add:
		for _, t := range v.terms {
			if Contains(t, varName) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if Contains(f, varName) {
				return true
			}
		}
	case *Pow:
		return Contains(v.base, varName) || Contains(v.exp, varName)
	case *Func:
		for _, a := range v.args {
			if Contains(a, varName) {
				return true
			}
		}
	}
	return false
}

// Size counts the nodes of e.
func Size(e Expr) int {
	switch v := e.(type) {
	case *Add:
		n := 1
		for _, t := range v.terms {
			n += Size(t)
		}
		return n
	case *Mul:
		n := 1
		for _, f := range v.factors {
			n += Size(f)
		}
		return n
	case *Pow:
		return 1 + Size(v.base) + Size(v.exp)
	case *Func:
		n := 1
		for _, a := range v.args {
			n += Size(a)
		}
		return n
	}
	return 1
}

// IsUndefined reports whether e is the undefined marker.
func IsUndefined(e Expr) bool {
	_, ok := e.(*Undefined)
	return ok
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.val.Cmp(new(big.Rat).SetInt64(v)) == 0
}
