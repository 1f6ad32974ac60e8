package symsolve

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ============================================================
// Tool interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Substitute replaces varName with value in expr and simplifies.
func Substitute(expr Expr, varName string, value Expr) Expr {
	return Simplify(expr.Sub(varName, value))
}

// HandleToolCall dispatches one tool request. Expression parameters accept
// either a JSON tree or source text such as "x^2 + 1". Engine failures
// are reported in ToolResponse.Error; HandleToolCall never panics on bad
// input.
func HandleToolCall(req ToolRequest) ToolResponse {
	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		switch val := v.(type) {
		case map[string]interface{}:
			return FromJSON(val)
		case string:
			e, err := Parse(val)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", key, err)
			}
			return Simplify(e), nil
		case float64:
			return Simplify(numberParam(val)), nil
		}
		return nil, fmt.Errorf("invalid type for param %s", key)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("param %s must be a non-empty string", key)
		}
		return s, nil
	}
	getInt := func(key string) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		n, ok := v.(float64)
		if !ok || n != float64(int(n)) {
			return 0, fmt.Errorf("param %s must be an integer", key)
		}
		return int(n), nil
	}
	getEquation := func() (*Equation, error) {
		if src, ok := req.Params["equation"].(string); ok {
			return ParseEquation(src)
		}
		lhs, err := getExpr("lhs")
		if err != nil {
			return nil, err
		}
		rhs := Expr(N(0))
		if _, ok := req.Params["rhs"]; ok {
			if rhs, err = getExpr("rhs"); err != nil {
				return nil, err
			}
		}
		return Eq(lhs, rhs), nil
	}
	respond := func(e Expr, err error) ToolResponse {
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if IsUndefined(e) {
			return ToolResponse{Error: undefinedError(e).Error()}
		}
		return ToolResponse{Result: e.toJSON(), LaTeX: LaTeX(e), String: String(e)}
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	switch req.Tool {
	case "parse":
		src, err := getString("source")
		if err != nil {
			return fail(err)
		}
		return respond(Parse(src))

	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(Simplify(e), nil)

	case "expand":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(Expand(e), nil)

	case "collect":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		return respond(Collect(e, v), nil)

	case "degree":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		d, ok := Degree(e, v)
		if !ok {
			return ToolResponse{Error: fmt.Sprintf("%s is not a polynomial in %s", e, v)}
		}
		return ToolResponse{Result: d, String: fmt.Sprint(d)}

	case "poly_coeffs":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		coeffs, ok := PolyCoeffs(e, v)
		if !ok {
			return ToolResponse{Error: fmt.Sprintf("%s is not a polynomial in %s", e, v)}
		}
		degs := make([]int, 0, len(coeffs))
		for d := range coeffs {
			degs = append(degs, d)
		}
		sort.Ints(degs)
		result := map[string]string{}
		parts := make([]string, 0, len(degs))
		for _, d := range degs {
			result[fmt.Sprint(d)] = coeffs[d].String()
			parts = append(parts, fmt.Sprintf("%d: %s", d, coeffs[d]))
		}
		return ToolResponse{Result: result, String: strings.Join(parts, ", ")}

	case "free_symbols":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		names := make([]string, 0)
		for name := range FreeSymbols(e) {
			names = append(names, name)
		}
		sort.Strings(names)
		return ToolResponse{Result: names, String: strings.Join(names, ", ")}

	case "substitute":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		val, err := getExpr("value")
		if err != nil {
			return fail(err)
		}
		return respond(Substitute(e, v, val), nil)

	case "latex":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: LaTeX(e), LaTeX: LaTeX(e), String: String(e)}

	case "diff":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		return respond(Differentiate(e, v))

	case "diffn":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		n, err := getInt("n")
		if err != nil {
			return fail(err)
		}
		if n < 0 {
			return ToolResponse{Error: "param n must be non-negative"}
		}
		return respond(DiffN(e, v, n))

	case "integrate":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		return respond(Integrate(e, v))

	case "limit":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		point, err := getExpr("point")
		if err != nil {
			return fail(err)
		}
		return respond(Limit(e, v, point))

	case "solve":
		eq, err := getEquation()
		if err != nil {
			return fail(err)
		}
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		res, err := Solve(eq, v)
		if err != nil {
			return fail(err)
		}
		strs := make([]string, len(res.Solutions))
		for i, s := range res.Solutions {
			strs[i] = String(s)
		}
		if res.AllReals {
			return ToolResponse{Result: map[string]interface{}{"all_reals": true}, String: res.String()}
		}
		return ToolResponse{Result: strs, String: strings.Join(strs, ", ")}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// numberParam converts a JSON number, keeping integers exact.
func numberParam(f float64) *Num {
	if f == float64(int64(f)) {
		return N(int64(f))
	}
	return NFloat(f)
}

// ============================================================
// MCP spec
// ============================================================

// MCPToolSpec returns the JSON schema of every tool HandleToolCall knows.
// Properties typed "expression" take a JSON tree object or source text.
func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("parse", "Parse source text into an expression tree (unsimplified)", []string{"source"}, map[string]string{"source": "string"}),
		ts("simplify", "Simplify a symbolic expression", []string{"expr"}, map[string]string{"expr": "expression"}),
		ts("expand", "Algebraically expand expression", []string{"expr"}, map[string]string{"expr": "expression"}),
		ts("collect", "Collect terms by powers of variable", []string{"expr", "var"}, map[string]string{"expr": "expression", "var": "string"}),
		ts("degree", "Polynomial degree in variable", []string{"expr", "var"}, map[string]string{"expr": "expression", "var": "string"}),
		ts("poly_coeffs", "Extract polynomial coefficients by degree", []string{"expr", "var"}, map[string]string{"expr": "expression", "var": "string"}),
		ts("free_symbols", "Return free symbol names", []string{"expr"}, map[string]string{"expr": "expression"}),
		ts("substitute", "Substitute var with value", []string{"expr", "var", "value"}, map[string]string{"expr": "expression", "var": "string", "value": "expression"}),
		ts("latex", "Convert to LaTeX", []string{"expr"}, map[string]string{"expr": "expression"}),
		ts("diff", "First derivative d/dvar", []string{"expr", "var"}, map[string]string{"expr": "expression", "var": "string"}),
		ts("diffn", "nth derivative. Requires n (int)", []string{"expr", "var", "n"}, map[string]string{"expr": "expression", "var": "string", "n": "integer"}),
		ts("integrate", "Rule-based antiderivative without the constant of integration", []string{"expr", "var"}, map[string]string{"expr": "expression", "var": "string"}),
		ts("limit", "lim_{var->point} expr; point may be oo or -oo", []string{"expr", "var", "point"}, map[string]string{"expr": "expression", "var": "string", "point": "expression"}),
		ts("solve", "Real roots of an equation of degree <= 2. Give equation (text) or lhs/rhs", []string{"var"}, map[string]string{"equation": "string", "lhs": "expression", "rhs": "expression", "var": "string"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		if typ == "expression" {
			properties[k] = map[string]interface{}{"type": []string{"object", "string"}}
			continue
		}
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
