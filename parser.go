package symsolve

import (
	"math/big"
)

// Binding strength, low to high. Juxtaposition ("3x", "2(x+1)") binds like
// explicit multiplication.
const (
	precSum = iota + 1
	precProduct
	precUnary
	precPower
)

// Parse reads an expression. Subtraction and division are desugared:
// a-b is a + (-1)*b and a/b is a * b^-1. The returned tree is not
// simplified.
func Parse(src string) (Expr, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return parseTokens(toks, len(src))
}

// MustParse is like Parse but panics on error. For tests and examples.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic("symsolve: " + err.Error())
	}
	return e
}

// ParseEquation reads "lhs = rhs". Exactly one '=' is required.
func ParseEquation(src string) (*Equation, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	split := -1
	for i, t := range toks {
		if t.Kind != TokEquals {
			continue
		}
		if split >= 0 {
			return nil, &ParseError{Expected: "a single '='", Found: t.String(), Pos: t.Pos}
		}
		split = i
	}
	if split < 0 {
		return nil, &ParseError{Expected: "'='", Found: "end of input", Pos: len(src)}
	}
	lhs, err := parseTokens(toks[:split], toks[split].Pos)
	if err != nil {
		return nil, err
	}
	rhs, err := parseTokens(toks[split+1:], len(src))
	if err != nil {
		return nil, err
	}
	return Eq(lhs, rhs), nil
}

type parser struct {
	toks []Token
	pos  int
	end  int
}

func parseTokens(toks []Token, end int) (Expr, error) {
	p := &parser{toks: toks, end: end}
	e, err := p.parseBinary(precSum)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind != TokEOF {
		return nil, &ParseError{Expected: "end of input", Found: t.String(), Pos: t.Pos}
	}
	return e, nil
}

func (p *parser) peek() Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return Token{Kind: TokEOF, Pos: p.end}
}

func (p *parser) advance() Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

// infix reports the precedence of t as a binary operator. Tokens that can
// start an operand continue a product by juxtaposition.
func infix(t Token) (prec int, op string, ok bool) {
	switch t.Kind {
	case TokOperator:
		switch t.Text {
		case "+", "-":
			return precSum, t.Text, true
		case "*", "/":
			return precProduct, t.Text, true
		case "^":
			return precPower, t.Text, true
		}
	case TokNumber, TokIdent, TokLParen:
		return precProduct, "", true
	}
	return 0, "", false
}

func (p *parser) parseBinary(minPrec int) (Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, op, ok := infix(p.peek())
		if !ok || prec < minPrec {
			return lhs, nil
		}
		if op != "" {
			p.advance()
		}
		nextMin := prec + 1
		if op == "^" {
			nextMin = prec
		}
		rhs, err := p.parseBinary(nextMin)
		if err != nil {
			return nil, err
		}
		switch op {
		case "+":
			lhs = add(lhs, rhs)
		case "-":
			lhs = add(lhs, mul(N(-1), rhs))
		case "/":
			lhs = mul(lhs, pow(rhs, N(-1)))
		case "^":
			lhs = pow(lhs, rhs)
		default:
			lhs = mul(lhs, rhs)
		}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	t := p.peek()
	if t.Kind == TokOperator && (t.Text == "-" || t.Text == "+") {
		p.advance()
		operand, err := p.parseBinary(precUnary)
		if err != nil {
			return nil, err
		}
		if t.Text == "+" {
			return operand, nil
		}
		if n, ok := operand.(*Num); ok {
			return numNeg(n), nil
		}
		return mul(N(-1), operand), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.advance()
	switch t.Kind {
	case TokNumber:
		r, ok := new(big.Rat).SetString(t.Text)
		if !ok {
			return nil, &ParseError{Expected: "number", Found: t.String(), Pos: t.Pos}
		}
		return &Num{val: r}, nil
	case TokIdent:
		if lp := p.peek(); lp.Kind == TokLParen && lp.Pos == t.end() {
			p.advance()
			return p.parseCall(t)
		}
		return S(t.Text), nil
	case TokLParen:
		e, err := p.parseBinary(precSum)
		if err != nil {
			return nil, err
		}
		if rp := p.advance(); rp.Kind != TokRParen {
			return nil, &ParseError{Expected: "')'", Found: rp.String(), Pos: rp.Pos}
		}
		return e, nil
	case TokBar:
		e, err := p.parseBinary(precSum)
		if err != nil {
			return nil, err
		}
		if rb := p.advance(); rb.Kind != TokBar {
			return nil, &ParseError{Expected: "'|'", Found: rb.String(), Pos: rb.Pos}
		}
		return fn("abs", e), nil
	}
	return nil, &ParseError{Expected: "expression", Found: t.String(), Pos: t.Pos}
}

// parseCall reads the argument list after "name(".
func (p *parser) parseCall(name Token) (Expr, error) {
	var args []Expr
	for {
		arg, err := p.parseBinary(precSum)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t := p.advance()
		if t.Kind == TokRParen {
			break
		}
		if t.Kind != TokComma {
			return nil, &ParseError{Expected: "',' or ')'", Found: t.String(), Pos: t.Pos}
		}
	}
	switch {
	case name.Text == "sqrt" && len(args) == 1:
		return pow(args[0], F(1, 2)), nil
	case name.Text == "log" && len(args) == 1:
		return fn("ln", args[0]), nil
	case name.Text == "log" && len(args) == 2:
		return mul(fn("ln", args[0]), pow(fn("ln", args[1]), N(-1))), nil
	}
	return fn(name.Text, args...), nil
}
