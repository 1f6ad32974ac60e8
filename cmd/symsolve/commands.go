package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/symsolve"
	"github.com/njchilds90/symsolve/agent"
	"github.com/njchilds90/symsolve/internal/config"
)

// app carries what PersistentPreRunE builds for the subcommands.
type app struct {
	configPath string
	verbose    bool
	asJSON     bool
	latex      bool

	cfg    *config.Config
	logger *zap.Logger
	agent  *agent.Agent
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "symsolve",
		Short: "Rule-based symbolic math: ask questions, simplify, differentiate, integrate, take limits, solve",
		Long: `symsolve routes natural-language math questions to a small symbolic engine
and answers with a fixed confidence score. The engine can also be driven
directly with the simplify, diff, integrate, limit and solve commands.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "symsolve.yaml", "Path to the YAML configuration")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print results as JSON")
	root.PersistentFlags().BoolVar(&a.latex, "latex", false, "Print expressions as LaTeX")

	root.AddCommand(
		a.askCmd(),
		a.simplifyCmd(),
		a.diffCmd(),
		a.integrateCmd(),
		a.limitCmd(),
		a.solveCmd(),
		a.batchCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger, err := cfg.BuildLogger(a.verbose)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.agent = agent.New(
		agent.WithLogger(logger.Named("agent")),
		agent.WithConfidences(cfg.Confidence),
		agent.WithConcurrency(cfg.Batch.Concurrency),
	)
	return nil
}

func (a *app) askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a natural-language math question",
		Example: `  symsolve ask "What is the derivative of x^2 + 1?"
  symsolve ask solve x^2 - 5x + 6 = 0`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := a.agent.Answer(strings.Join(args, " "))
			return a.printResponse(cmd.OutOrStdout(), resp)
		},
	}
}

func (a *app) simplifyCmd() *cobra.Command {
	var expand bool
	cmd := &cobra.Command{
		Use:   "simplify [expression]",
		Short: "Simplify an expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := parseArg(args)
			if err != nil {
				return err
			}
			if expand {
				return a.printExpr(cmd.OutOrStdout(), symsolve.Expand(e), "")
			}
			return a.printExpr(cmd.OutOrStdout(), e, "")
		},
	}
	cmd.Flags().BoolVar(&expand, "expand", false, "Multiply out products and integer powers of sums")
	return cmd
}

func (a *app) diffCmd() *cobra.Command {
	var v string
	var n int
	cmd := &cobra.Command{
		Use:   "diff [expression]",
		Short: "Differentiate an expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := parseArg(args)
			if err != nil {
				return err
			}
			if n < 1 {
				return fmt.Errorf("--n must be at least 1, got %d", n)
			}
			d, err := symsolve.DiffN(e, v, n)
			if err != nil {
				return err
			}
			return a.printExpr(cmd.OutOrStdout(), d, "")
		},
	}
	cmd.Flags().StringVar(&v, "var", "x", "Variable to differentiate with respect to")
	cmd.Flags().IntVarP(&n, "n", "n", 1, "Order of the derivative")
	return cmd
}

func (a *app) integrateCmd() *cobra.Command {
	var v string
	cmd := &cobra.Command{
		Use:   "integrate [expression]",
		Short: "Find an antiderivative",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := parseArg(args)
			if err != nil {
				return err
			}
			i, err := symsolve.Integrate(e, v)
			if err != nil {
				return err
			}
			return a.printExpr(cmd.OutOrStdout(), i, " + C")
		},
	}
	cmd.Flags().StringVar(&v, "var", "x", "Variable of integration")
	return cmd
}

func (a *app) limitCmd() *cobra.Command {
	var v, to string
	cmd := &cobra.Command{
		Use:   "limit [expression]",
		Short: "Evaluate a limit",
		Example: `  symsolve limit "(x^2 - 1)/(x - 1)" --to 1
  symsolve limit "1/x" --to oo`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := parseArg(args)
			if err != nil {
				return err
			}
			point, err := symsolve.Parse(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			l, err := symsolve.Limit(e, v, point)
			if err != nil {
				return err
			}
			return a.printExpr(cmd.OutOrStdout(), l, "")
		},
	}
	cmd.Flags().StringVar(&v, "var", "x", "Limit variable")
	cmd.Flags().StringVar(&to, "to", "0", "Point the variable approaches (oo for infinity)")
	return cmd
}

func (a *app) solveCmd() *cobra.Command {
	var v string
	cmd := &cobra.Command{
		Use:   "solve [equation]",
		Short: "Solve a linear or quadratic equation",
		Example: `  symsolve solve "x^2 - 5x + 6 = 0"
  symsolve solve "a*y + b = 0" --var y`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eq, err := symsolve.ParseEquation(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if v == "" {
				v = agent.DefaultVariable(eq)
			}
			res, err := symsolve.Solve(eq, v)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.asJSON {
				sols := make([]string, len(res.Solutions))
				for i, s := range res.Solutions {
					sols[i] = s.String()
				}
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"variable":  res.Variable,
					"solutions": sols,
					"all_reals": res.AllReals,
				})
			}
			fmt.Fprintf(out, "%s = %s\n", res.Variable, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&v, "var", "", "Unknown to solve for (default: the only free symbol, else x)")
	return cmd
}

func (a *app) batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [file]",
		Short: "Answer one question per line from a file (- for stdin)",
		Long: `Answers every non-empty line of the file concurrently, bounded by
batch.concurrency from the configuration. Lines starting with # are skipped.
Results are printed in input order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			questions, err := readQuestions(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if len(questions) == 0 {
				ancli.PrintWarn("no questions found in " + args[0] + "\n")
				return nil
			}
			responses, err := a.agent.AnswerAll(cmd.Context(), questions)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, resp := range responses {
				if a.asJSON {
					if err := a.printResponse(out, resp); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "Q: %s\n", questions[i])
				if err := a.printResponse(out, resp); err != nil {
					return err
				}
			}
			a.logger.Info("batch answered", zap.Int("questions", len(questions)))
			return nil
		},
	}
}

func readQuestions(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open batch file: %w", err)
		}
		defer f.Close()
		r = f
	}
	var questions []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}
	return questions, nil
}

func parseArg(args []string) (symsolve.Expr, error) {
	e, err := symsolve.Parse(strings.Join(args, " "))
	if err != nil {
		return nil, err
	}
	e = symsolve.Simplify(e)
	if u, ok := e.(*symsolve.Undefined); ok {
		return nil, fmt.Errorf("%w: %s", symsolve.ErrUndefined, u.Reason())
	}
	return e, nil
}

func (a *app) printExpr(out io.Writer, e symsolve.Expr, suffix string) error {
	if a.asJSON {
		return json.NewEncoder(out).Encode(map[string]interface{}{
			"result": symsolve.TreeOf(e),
			"string": e.String() + suffix,
			"latex":  e.LaTeX() + suffix,
		})
	}
	if a.latex {
		fmt.Fprintln(out, e.LaTeX()+suffix)
		return nil
	}
	fmt.Fprintln(out, e.String()+suffix)
	return nil
}

func (a *app) printResponse(out io.Writer, resp agent.Response) error {
	if a.asJSON {
		return json.NewEncoder(out).Encode(resp)
	}
	if a.latex && resp.LaTeX != "" {
		fmt.Fprintln(out, resp.LaTeX)
	} else {
		fmt.Fprintln(out, resp.Answer)
	}
	fmt.Fprintf(out, "confidence: %.2f\n", resp.Confidence)
	return nil
}
