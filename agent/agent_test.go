package agent_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/njchilds90/symsolve"
	"github.com/njchilds90/symsolve/agent"
	"github.com/njchilds90/symsolve/intent"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAnswer_Solved(t *testing.T) {
	cases := []struct {
		question string
		result   string
		answer   string
	}{
		{
			"What is the derivative of x^2 + 1?",
			"2*x",
			"The derivative of x^2 + 1 with respect to x is 2*x",
		},
		{
			"Solve x^2 - 5x + 6 = 0",
			"[2, 3]",
			"The solution to the equation x^2 - 5*x + 6 = 0 is [2, 3]",
		},
		{
			"Solve 2x + 4 = 0",
			"[-2]",
			"The solution to the equation 2*x + 4 = 0 is [-2]",
		},
		{
			"What is the integral of x^2 dx?",
			"x^3/3",
			"The integral of x^2 with respect to x is x^3/3 + C",
		},
		{
			"Find the integral of cos(x)",
			"sin(x)",
			"The integral of cos(x) with respect to x is sin(x) + C",
		},
		{
			"What is the limit of (x^2 - 1)/(x - 1) as x approaches 1?",
			"2",
			"",
		},
		{
			"limit of 1/x as x approaches infinity",
			"0",
			"The limit of 1/x as x approaches oo is 0",
		},
		{
			"What is the integral of 2xdx?",
			"x^2",
			"",
		},
		{
			"solve for y: 3y = 9",
			"[3]",
			"",
		},
		{
			"differentiate sin(t) with respect to t",
			"cos(t)",
			"The derivative of sin(t) with respect to t is cos(t)",
		},
	}
	a := agent.New()
	for _, tc := range cases {
		t.Run(tc.question, func(t *testing.T) {
			resp := a.Answer(tc.question)
			require.Equal(t, agent.Solved, resp.Outcome, resp.Answer)
			assert.Equal(t, 0.9, resp.Confidence)
			assert.Equal(t, tc.result, resp.Result)
			assert.NotEmpty(t, resp.LaTeX)
			if tc.answer != "" {
				assert.Equal(t, tc.answer, resp.Answer)
			}
		})
	}
}

func TestAnswer_Unhandled(t *testing.T) {
	resp := agent.New().Answer("What's the capital of France?")
	assert.Equal(t, agent.Unhandled, resp.Outcome)
	assert.Equal(t, 0.3, resp.Confidence)
	assert.Equal(t, "I'm not sure I understand your math question. Could you provide more details or specify what type of math problem you're trying to solve?", resp.Answer)
	assert.Equal(t, intent.Unhandled, resp.Intent.Kind)
}

func TestAnswer_MatrixGuidance(t *testing.T) {
	resp := agent.New().Answer("What is the inverse of this matrix?")
	assert.Equal(t, agent.Guidance, resp.Outcome)
	assert.Equal(t, 0.7, resp.Confidence)
	assert.Contains(t, resp.Answer, "For matrix operations")
}

func TestAnswer_Reformat(t *testing.T) {
	cases := map[string]string{
		"How do I solve equations?":    "clear equation to solve",
		"what is a derivative?":        "clear function to differentiate",
		"integrals are hard":           "clear function to integrate",
		"what is a limit in calculus?": "limit of [function] as [variable] approaches [value]",
	}
	a := agent.New()
	for q, want := range cases {
		resp := a.Answer(q)
		assert.Equal(t, agent.Reformat, resp.Outcome, q)
		assert.Equal(t, 0.5, resp.Confidence, q)
		assert.Contains(t, resp.Answer, want, q)
	}
}

func TestAnswer_ProseOperandAsksToReformat(t *testing.T) {
	cases := map[string]string{
		"What is the integral of x^2 from 0 to 1?": "clear function to integrate",
		"derivative of x squared?":                 "clear function to differentiate",
		"derivative of x^3 at x equals 2?":         "clear function to differentiate",
		"limit of 1/x as x approaches zero":        "limit of [function] as [variable] approaches [value]",
	}
	a := agent.New()
	for q, want := range cases {
		resp := a.Answer(q)
		assert.Equal(t, agent.Reformat, resp.Outcome, q)
		assert.Equal(t, 0.5, resp.Confidence, q)
		assert.Contains(t, resp.Answer, want, q)
		assert.Empty(t, resp.Result, q)
	}
}

func TestAnswer_EngineFailuresDegrade(t *testing.T) {
	cases := map[string]string{
		"What is the derivative of (x^2?": "finding the derivative",
		"derivative of x @ 2":             "unexpected character",
		"derivative of gamma(x)":          "unsupported function",
		"integral of x*sin(x)":            "no integration rule",
		"limit of 1/x as x approaches 0":  "indeterminate",
		"solve x^2 + 1 = 0":               "complex roots",
		"solve x^3 = 8":                   "cannot be solved",
		"derivative of 1/0":               "undefined",
		"limit of x as x approaches )":    "expected",
		"Solve the equation: 2x + = 5":    "trying to solve this equation",
	}
	a := agent.New()
	for q, want := range cases {
		resp := a.Answer(q)
		assert.Equal(t, agent.Failed, resp.Outcome, q)
		assert.LessOrEqual(t, resp.Confidence, 0.5, q)
		assert.Contains(t, resp.Answer, want, q)
		assert.Contains(t, resp.Answer, "Please check the format and try again.", q)
	}
}

type panickingExtractor struct{}

func (panickingExtractor) Extract(string) (intent.Intent, bool) { panic("boom") }

func TestAnswer_RecoversFromPanic(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	a := agent.New(agent.WithExtractor(panickingExtractor{}), agent.WithLogger(zap.New(core)))

	var resp agent.Response
	require.NotPanics(t, func() { resp = a.Answer("derivative of x") })
	assert.Equal(t, agent.Failed, resp.Outcome)
	assert.Equal(t, 0.3, resp.Confidence)
	assert.Contains(t, resp.Answer, "internal error: boom")
	assert.Equal(t, 1, logs.FilterMessage("question failed outside the engine").Len())
}

func TestAnswer_LogsOutcome(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	a := agent.New(agent.WithLogger(zap.New(core)))
	a.Answer("derivative of x^3")

	entries := logs.FilterMessage("answered question").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "differentiate", fields["kind"])
	assert.Equal(t, "solved", fields["outcome"])
	assert.Equal(t, 0.9, fields["confidence"])
}

func TestAnswer_CustomConfidences(t *testing.T) {
	c := agent.DefaultConfidences()
	c.Solved = 0.95
	resp := agent.New(agent.WithConfidences(c)).Answer("derivative of x")
	assert.Equal(t, 0.95, resp.Confidence)
}

func TestDefaultVariable(t *testing.T) {
	cases := map[string]string{
		"2y = 6":      "y",
		"a*x + b = 0": "x",
		"2z + w = 0":  "w",
		"3 = 3":       "x",
		"x^2 = 4":     "x",
		"t^2 - t = 0": "t",
	}
	for src, want := range cases {
		eq, err := symsolve.ParseEquation(src)
		require.NoError(t, err)
		assert.Equal(t, want, agent.DefaultVariable(eq), src)
	}
}

func TestAnswer_SolveUsesDefaultVariable(t *testing.T) {
	resp := agent.New().Answer("solve 2y = 6")
	require.Equal(t, agent.Solved, resp.Outcome, resp.Answer)
	assert.Equal(t, "[3]", resp.Result)
	assert.Equal(t, "y = 3", resp.LaTeX)
}

func TestAnswerAll_PreservesOrder(t *testing.T) {
	questions := make([]string, 20)
	for i := range questions {
		questions[i] = fmt.Sprintf("derivative of x^%d", i+3)
	}
	out, err := agent.New(agent.WithConcurrency(3)).AnswerAll(context.Background(), questions)
	require.NoError(t, err)
	require.Len(t, out, len(questions))
	for i, resp := range out {
		assert.Equal(t, fmt.Sprintf("%d*x^%d", i+3, i+2), resp.Result, questions[i])
	}
}

func TestAnswerAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := agent.New().AnswerAll(ctx, []string{"derivative of x", "solve x = 1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfidences_Validate(t *testing.T) {
	require.NoError(t, agent.DefaultConfidences().Validate())

	bad := []agent.Confidences{
		{Solved: 1.2, Guidance: 0.7, Reformat: 0.5, Failed: 0.3, Unhandled: 0.3},
		{Solved: 0.9, Guidance: 0.7, Reformat: 0.6, Failed: 0.3, Unhandled: 0.3},
		{Solved: 0.9, Guidance: 0.7, Reformat: 0.5, Failed: 0.3, Unhandled: 0.8},
		{Solved: 0.9, Guidance: 0.7, Reformat: 0.2, Failed: 0.3, Unhandled: 0.3},
		{Solved: 0.9, Guidance: -0.1, Reformat: 0.5, Failed: 0.3, Unhandled: 0.3},
	}
	for _, c := range bad {
		assert.Error(t, c.Validate(), "%+v", c)
	}
}
