// Package intent routes a natural-language math question to an operation
// and pulls the operand text out of it. It knows nothing about expression
// trees; the text it extracts is handed to the symsolve parser untouched.
package intent

import (
	"regexp"
	"strings"
)

// Kind is the operation a question asks for.
type Kind int

const (
	Unhandled Kind = iota
	Solve
	Differentiate
	Integrate
	Limit
	Matrix
)

func (k Kind) String() string {
	switch k {
	case Solve:
		return "solve"
	case Differentiate:
		return "differentiate"
	case Integrate:
		return "integrate"
	case Limit:
		return "limit"
	case Matrix:
		return "matrix"
	}
	return "unhandled"
}

// Intent is the result of extraction. Only the fields relevant to Kind are
// set. An empty Var means the caller picks the default.
type Intent struct {
	Kind     Kind   `json:"kind"`
	Expr     string `json:"expr,omitempty"`
	Var      string `json:"var,omitempty"`
	Point    string `json:"point,omitempty"`
	Equation string `json:"equation,omitempty"`
}

// Extractor turns a question into an Intent. The bool reports whether the
// operand could be found; Kind is set either way.
type Extractor interface {
	Extract(question string) (Intent, bool)
}

// keywordRoutes is scanned in order; the first route with a matching
// keyword wins.
var keywordRoutes = []struct {
	kind     Kind
	keywords []string
}{
	{Solve, []string{"solve", "equation"}},
	{Differentiate, []string{"derivative", "differentiate"}},
	{Integrate, []string{"integral", "integrate"}},
	{Limit, []string{"limit"}},
	{Matrix, []string{"matrix"}},
}

// Classify lowercases the question and returns the first matching route.
func Classify(question string) Kind {
	q := strings.ToLower(question)
	for _, route := range keywordRoutes {
		for _, kw := range route.keywords {
			if strings.Contains(q, kw) {
				return route.kind
			}
		}
	}
	return Unhandled
}

// end matches the close of the operand: '?', '!', a sentence-ending period
// or the end of input.
const end = `\s*(?:[?!]|\.(?:\s|$)|$)`

// DerivativePattern captures the function and an optional variable.
var DerivativePattern = regexp.MustCompile(
	`(?i)(?:derivative of|differentiate)\s+(.+?)(?:\s+with respect to\s+([a-z]\w*))?` + end)

// IntegralPattern captures the integrand, an optional trailing d<var> and an
// optional "with respect to <var>". The d<var> may be glued to the integrand,
// as in 2xdx.
var IntegralPattern = regexp.MustCompile(
	`(?i)(?:integral of|integrate)\s+(.+?)(?:\s*d([a-z]))?(?:\s+with respect to\s+([a-z]\w*))?` + end)

// LimitPattern captures the function, the variable and the point.
var LimitPattern = regexp.MustCompile(
	`(?i)limit of\s+(.+?)\s+as\s+([a-z]\w*)\s*(?:approaches|goes to|tends to|->|→)\s*(.+?)` + end)

// SolveForPattern captures a trailing "for <var>".
var SolveForPattern = regexp.MustCompile(`(?i)\s+for\s+([a-z]\w*)\s*[?!.]*\s*$`)

// SolveForLeadPattern captures a leading "for <var>:" or "for <var>,".
var SolveForLeadPattern = regexp.MustCompile(`(?i)\bfor\s+([a-z]\w*)\s*[:,]`)

// RegexExtractor is the default Extractor. It classifies with Classify and
// applies one pattern per kind.
type RegexExtractor struct{}

// Default is the extractor used by Extract.
var Default Extractor = RegexExtractor{}

// Extract runs the default extractor.
func Extract(question string) (Intent, bool) { return Default.Extract(question) }

func (RegexExtractor) Extract(question string) (Intent, bool) {
	kind := Classify(question)
	in := Intent{Kind: kind}
	switch kind {
	case Solve:
		return extractEquation(question)
	case Differentiate:
		m := DerivativePattern.FindStringSubmatch(question)
		if m == nil || !mathOperand(m[1]) {
			return in, false
		}
		in.Expr = strings.TrimSpace(m[1])
		in.Var = firstNonEmpty(m[2], "x")
		return in, true
	case Integrate:
		m := IntegralPattern.FindStringSubmatch(question)
		if m == nil || !mathOperand(m[1]) {
			return in, false
		}
		in.Expr = strings.TrimSpace(m[1])
		in.Var = firstNonEmpty(m[3], m[2], "x")
		return in, true
	case Limit:
		m := LimitPattern.FindStringSubmatch(question)
		if m == nil || !mathOperand(m[1]) || !mathOperand(normalizePoint(m[3])) {
			return in, false
		}
		in.Expr = strings.TrimSpace(m[1])
		in.Var = m[2]
		in.Point = normalizePoint(m[3])
		return in, true
	case Matrix:
		return in, true
	}
	return in, false
}

func extractEquation(question string) (Intent, bool) {
	in := Intent{Kind: Solve}
	if strings.Count(question, "=") != 1 {
		return in, false
	}
	text := question
	if m := SolveForPattern.FindStringSubmatchIndex(text); m != nil {
		in.Var = text[m[2]:m[3]]
		text = text[:m[0]]
	} else if m := SolveForLeadPattern.FindStringSubmatchIndex(text); m != nil && m[1] <= strings.Index(text, "=") {
		in.Var = text[m[2]:m[3]]
		text = text[:m[0]] + " " + text[m[1]:]
	}
	i := strings.Index(text, "=")
	lhs := mathSuffix(strings.Fields(text[:i]))
	rhs := mathPrefix(strings.Fields(text[i+1:]))
	if lhs == "" || rhs == "" {
		return in, false
	}
	in.Equation = lhs + " = " + rhs
	return in, true
}

// mathSuffix keeps the trailing run of words that look like math.
func mathSuffix(words []string) string {
	start := len(words)
	for start > 0 && !isProse(words[start-1]) {
		start--
	}
	return trimPunct(strings.Join(words[start:], " "))
}

// mathPrefix keeps the leading run of words that look like math.
func mathPrefix(words []string) string {
	n := 0
	for n < len(words) && !isProse(words[n]) {
		n++
	}
	return trimPunct(strings.Join(words[:n], " "))
}

// mathOperand reports whether text is non-empty and free of English words.
// Juxtaposed words would otherwise parse as a product of symbols.
func mathOperand(text string) bool {
	words := strings.Fields(text)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if isProse(w) {
			return false
		}
	}
	return true
}

var functionNames = map[string]bool{
	"sin": true, "cos": true, "tan": true, "exp": true, "ln": true, "log": true,
	"sqrt": true, "abs": true, "asin": true, "acos": true, "atan": true,
	"sinh": true, "cosh": true, "tanh": true, "oo": true, "pi": true,
}

// isProse reports whether a word is an English word rather than part of an
// expression: two or more letters, no digits or operators, and not a known
// function or constant name.
func isProse(word string) bool {
	w := strings.ToLower(strings.TrimRight(word, ",:;?!."))
	if len(w) < 2 {
		return false
	}
	for _, r := range w {
		if (r < 'a' || r > 'z') && r != '\'' {
			return false
		}
	}
	return !functionNames[w]
}

func trimPunct(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimLeft(s, ",:;"), ",:;?!."))
}

func normalizePoint(p string) string {
	p = strings.TrimSpace(p)
	switch strings.ToLower(p) {
	case "∞", "+∞", "infinity", "+infinity":
		return "oo"
	case "-∞", "-infinity":
		return "-oo"
	}
	return p
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
