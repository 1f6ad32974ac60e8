// Package agent answers natural-language math questions. It routes the
// question through an intent.Extractor, runs the symsolve engine and turns
// every outcome, failures included, into display text with a fixed
// confidence.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/symsolve"
	"github.com/njchilds90/symsolve/intent"
)

// Outcome classifies how a question was answered.
type Outcome string

const (
	Solved    Outcome = "solved"
	Guidance  Outcome = "guidance"
	Reformat  Outcome = "reformat"
	Failed    Outcome = "failed"
	Unhandled Outcome = "unhandled"
)

// Response is the answer to one question.
type Response struct {
	Answer     string        `json:"answer"`
	Confidence float64       `json:"confidence"`
	Outcome    Outcome       `json:"outcome"`
	Intent     intent.Intent `json:"intent"`
	Result     string        `json:"result,omitempty"`
	LaTeX      string        `json:"latex,omitempty"`
}

const (
	fallbackText = "I'm not sure I understand your math question. Could you provide more details or specify what type of math problem you're trying to solve?"
	matrixText   = "For matrix operations, I would need the specific matrices and the operation you want to perform (addition, multiplication, determinant, inverse, etc.). Please provide these details."
)

var reformatText = map[intent.Kind]string{
	intent.Solve:         "I couldn't identify a clear equation to solve. Please format your equation as 'expression = expression'.",
	intent.Differentiate: "I couldn't identify a clear function to differentiate. Please specify the function after 'derivative of'.",
	intent.Integrate:     "I couldn't identify a clear function to integrate. Please specify the function after 'integral of'.",
	intent.Limit:         "I couldn't identify a clear limit problem. Please format as 'limit of [function] as [variable] approaches [value]'.",
}

var failureTask = map[intent.Kind]string{
	intent.Solve:         "trying to solve this equation",
	intent.Differentiate: "finding the derivative",
	intent.Integrate:     "finding the integral",
	intent.Limit:         "finding the limit",
}

// Agent composes responses. The zero value is not usable; call New.
type Agent struct {
	logger      *zap.Logger
	conf        Confidences
	extractor   intent.Extractor
	concurrency int
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger. Answers are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithConfidences replaces the per-outcome confidence scores.
func WithConfidences(c Confidences) Option {
	return func(a *Agent) { a.conf = c }
}

// WithExtractor replaces the question extractor.
func WithExtractor(e intent.Extractor) Option {
	return func(a *Agent) {
		if e != nil {
			a.extractor = e
		}
	}
}

// WithConcurrency bounds the number of questions AnswerAll works on at once.
func WithConcurrency(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

func New(opts ...Option) *Agent {
	a := &Agent{
		logger:      zap.NewNop(),
		conf:        DefaultConfidences(),
		extractor:   intent.Default,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Answer never fails: every error class becomes a low-confidence text.
func (a *Agent) Answer(question string) (resp Response) {
	in := intent.Intent{Kind: intent.Classify(question)}
	defer func() {
		if r := recover(); r != nil {
			resp = a.failure(in, fmt.Errorf("internal error: %v", r))
		}
		a.logger.Debug("answered question",
			zap.String("kind", resp.Intent.Kind.String()),
			zap.String("outcome", string(resp.Outcome)),
			zap.Float64("confidence", resp.Confidence))
	}()

	in, ok := a.extractor.Extract(question)
	switch {
	case in.Kind == intent.Unhandled:
		return Response{Answer: fallbackText, Confidence: a.conf.Unhandled, Outcome: Unhandled, Intent: in}
	case in.Kind == intent.Matrix:
		return Response{Answer: matrixText, Confidence: a.conf.Guidance, Outcome: Guidance, Intent: in}
	case !ok:
		return Response{Answer: reformatText[in.Kind], Confidence: a.conf.Reformat, Outcome: Reformat, Intent: in}
	}

	var err error
	switch in.Kind {
	case intent.Solve:
		resp, err = a.solve(in)
	case intent.Differentiate:
		resp, err = a.differentiate(in)
	case intent.Integrate:
		resp, err = a.integrate(in)
	case intent.Limit:
		resp, err = a.limit(in)
	}
	if err != nil {
		return a.failure(in, err)
	}
	resp.Intent = in
	resp.Confidence = a.conf.Solved
	resp.Outcome = Solved
	return resp
}

// AnswerAll answers questions concurrently. Results keep the input order.
// The only error is a cancelled context.
func (a *Agent) AnswerAll(ctx context.Context, questions []string) ([]Response, error) {
	out := make([]Response, len(questions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, q := range questions {
		if gctx.Err() != nil {
			break
		}
		i, q := i, q
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
				out[i] = a.Answer(q)
				return nil
			}
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, ctx.Err()
}

func (a *Agent) failure(in intent.Intent, err error) Response {
	task, ok := failureTask[in.Kind]
	if !ok {
		task = "answering this question"
	}
	if !IsEngineError(err) {
		a.logger.Warn("question failed outside the engine", zap.String("kind", in.Kind.String()), zap.Error(err))
	}
	return Response{
		Answer:     fmt.Sprintf("I encountered an error while %s: %v. Please check the format and try again.", task, err),
		Confidence: a.conf.Failed,
		Outcome:    Failed,
		Intent:     in,
	}
}

func (a *Agent) solve(in intent.Intent) (Response, error) {
	eq, err := symsolve.ParseEquation(in.Equation)
	if err != nil {
		return Response{}, err
	}
	eq = symsolve.Eq(symsolve.Simplify(eq.LHS), symsolve.Simplify(eq.RHS))
	v := in.Var
	if v == "" {
		v = DefaultVariable(eq)
	}
	res, err := symsolve.Solve(eq, v)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Answer: fmt.Sprintf("The solution to the equation %s is %s", eq, res),
		Result: res.String(),
		LaTeX:  solutionLaTeX(res),
	}, nil
}

func (a *Agent) differentiate(in intent.Intent) (Response, error) {
	f, err := parse(in.Expr)
	if err != nil {
		return Response{}, err
	}
	d, err := symsolve.Differentiate(f, in.Var)
	if err != nil {
		return Response{}, err
	}
	if err := defined(d); err != nil {
		return Response{}, err
	}
	return Response{
		Answer: fmt.Sprintf("The derivative of %s with respect to %s is %s", f, in.Var, d),
		Result: d.String(),
		LaTeX:  d.LaTeX(),
	}, nil
}

func (a *Agent) integrate(in intent.Intent) (Response, error) {
	f, err := parse(in.Expr)
	if err != nil {
		return Response{}, err
	}
	i, err := symsolve.Integrate(f, in.Var)
	if err != nil {
		return Response{}, err
	}
	if err := defined(i); err != nil {
		return Response{}, err
	}
	return Response{
		Answer: fmt.Sprintf("The integral of %s with respect to %s is %s + C", f, in.Var, i),
		Result: i.String(),
		LaTeX:  i.LaTeX() + " + C",
	}, nil
}

func (a *Agent) limit(in intent.Intent) (Response, error) {
	f, err := parse(in.Expr)
	if err != nil {
		return Response{}, err
	}
	point, err := parse(in.Point)
	if err != nil {
		return Response{}, err
	}
	l, err := symsolve.Limit(f, in.Var, point)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Answer: fmt.Sprintf("The limit of %s as %s approaches %s is %s", f, in.Var, point, l),
		Result: l.String(),
		LaTeX:  l.LaTeX(),
	}, nil
}

// DefaultVariable picks the unknown when the question names none: the only
// free symbol, else x when present, else the first name in sorted order.
func DefaultVariable(eq *symsolve.Equation) string {
	syms := symsolve.FreeSymbols(eq.Residual())
	if len(syms) == 1 {
		for name := range syms {
			return name
		}
	}
	if _, ok := syms["x"]; ok || len(syms) == 0 {
		return "x"
	}
	names := make([]string, 0, len(syms))
	for name := range syms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0]
}

func parse(src string) (symsolve.Expr, error) {
	e, err := symsolve.Parse(src)
	if err != nil {
		return nil, err
	}
	e = symsolve.Simplify(e)
	return e, defined(e)
}

func defined(e symsolve.Expr) error {
	if u, ok := e.(*symsolve.Undefined); ok {
		return fmt.Errorf("%w: %s", symsolve.ErrUndefined, u.Reason())
	}
	if symsolve.IsUndefined(e) {
		return symsolve.ErrUndefined
	}
	return nil
}

func solutionLaTeX(res symsolve.SolveResult) string {
	if res.AllReals {
		return res.Variable + ` \in \mathbb{R}`
	}
	parts := make([]string, len(res.Solutions))
	for i, s := range res.Solutions {
		parts[i] = res.Variable + " = " + s.LaTeX()
	}
	return strings.Join(parts, `,\; `)
}

// IsEngineError reports whether err came from the symsolve engine rather
// than from the agent itself.
func IsEngineError(err error) bool {
	var lex *symsolve.LexError
	var parseErr *symsolve.ParseError
	var unsupported *symsolve.UnsupportedFunctionError
	return errors.As(err, &lex) || errors.As(err, &parseErr) || errors.As(err, &unsupported) ||
		errors.Is(err, symsolve.ErrNoRule) || errors.Is(err, symsolve.ErrIndeterminate) ||
		errors.Is(err, symsolve.ErrUnsolvable) || errors.Is(err, symsolve.ErrUndefined)
}
