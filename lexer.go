package symsolve

import (
	"fmt"
	"unicode/utf8"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokNumber TokenKind = iota
	TokIdent
	TokOperator
	TokLParen
	TokRParen
	TokComma
	TokEquals
	TokBar
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokNumber:
		return "number"
	case TokIdent:
		return "identifier"
	case TokOperator:
		return "operator"
	case TokLParen:
		return "'('"
	case TokRParen:
		return "')'"
	case TokComma:
		return "','"
	case TokEquals:
		return "'='"
	case TokBar:
		return "'|'"
	case TokEOF:
		return "end of input"
	}
	return "unknown"
}

// Token is one lexeme of an expression. Pos is the byte offset in the
// source text.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

func (t Token) String() string {
	if t.Kind == TokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Text)
}

// end is the byte offset just past the token.
func (t Token) end() int { return t.Pos + len(t.Text) }

// Tokenize splits src into tokens, left to right. Numbers match
// [0-9]+(\.[0-9]+)?, identifiers [A-Za-z_][A-Za-z0-9_]*; "**" is read as
// "^" and '|' delimits absolute values. Any other non-space character is
// a *LexError.
func Tokenize(src string) ([]Token, error) {
	var toks []Token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c):
			start := i
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			if i+1 < len(src) && src[i] == '.' && isDigit(src[i+1]) {
				i++
				for i < len(src) && isDigit(src[i]) {
					i++
				}
			}
			toks = append(toks, Token{Kind: TokNumber, Text: src[start:i], Pos: start})
		case isIdentStart(c):
			start := i
			for i < len(src) && (isIdentStart(src[i]) || isDigit(src[i])) {
				i++
			}
			toks = append(toks, Token{Kind: TokIdent, Text: src[start:i], Pos: start})
		case c == '*' && i+1 < len(src) && src[i+1] == '*':
			toks = append(toks, Token{Kind: TokOperator, Text: "^", Pos: i})
			i += 2
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
			toks = append(toks, Token{Kind: TokOperator, Text: string(c), Pos: i})
			i++
		case c == '(':
			toks = append(toks, Token{Kind: TokLParen, Text: "(", Pos: i})
			i++
		case c == ')':
			toks = append(toks, Token{Kind: TokRParen, Text: ")", Pos: i})
			i++
		case c == ',':
			toks = append(toks, Token{Kind: TokComma, Text: ",", Pos: i})
			i++
		case c == '=':
			toks = append(toks, Token{Kind: TokEquals, Text: "=", Pos: i})
			i++
		case c == '|':
			toks = append(toks, Token{Kind: TokBar, Text: "|", Pos: i})
			i++
		default:
			r, _ := utf8.DecodeRuneInString(src[i:])
			return nil, &LexError{Char: r, Offset: i}
		}
	}
	return toks, nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
