package symsolve

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================
//
// Trees travel as nested objects tagged by "type":
//
//	{"type":"num","value":"3/4"}            exact rational
//	{"type":"num","value":"0.5","inexact":true}
//	{"type":"sym","name":"x"}
//	{"type":"add","terms":[...]}
//	{"type":"mul","factors":[...]}
//	{"type":"pow","base":{...},"exp":{...}}
//	{"type":"func","name":"sin","args":[...]}
//	{"type":"undefined","reason":"division by zero"}

func (n *Num) toJSON() map[string]interface{} {
	m := map[string]interface{}{"type": "num", "value": n.val.RatString()}
	if n.inexact {
		m["inexact"] = true
	}
	return m
}

func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}

func (a *Add) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "add", "terms": listJSON(a.terms)}
}

func (m *Mul) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "mul", "factors": listJSON(m.factors)}
}

func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}

func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "args": listJSON(f.args)}
}

func (u *Undefined) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "undefined", "reason": u.reason}
}

func listJSON(items []Expr) []map[string]interface{} {
	out := make([]map[string]interface{}, len(items))
	for i, it := range items {
		out[i] = it.toJSON()
	}
	return out
}

// ToJSON encodes e as a JSON tree.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// TreeOf returns the JSON-ready map form of e, as embedded in tool
// responses.
func TreeOf(e Expr) map[string]interface{} { return e.toJSON() }

// FromJSON decodes a tree produced by ToJSON (after json.Unmarshal into a
// map). The result is simplified.
func FromJSON(data map[string]interface{}) (Expr, error) {
	e, err := decodeTree(data)
	if err != nil {
		return nil, err
	}
	return Simplify(e), nil
}

func decodeTree(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := decodeTree(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subList := func(field string) ([]Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			e, err := decodeTree(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = e
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		val, err := subString("value")
		if err != nil {
			return nil, err
		}
		r, ok := new(big.Rat).SetString(val)
		if !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		inexact, _ := data["inexact"].(bool)
		return &Num{val: r, inexact: inexact}, nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "add":
		terms, err := subList("terms")
		if err != nil {
			return nil, err
		}
		return add(terms...), nil

	case "mul":
		factors, err := subList("factors")
		if err != nil {
			return nil, err
		}
		return mul(factors...), nil

	case "pow":
		base, err := subObj("base")
		if err != nil {
			return nil, err
		}
		exp, err := subObj("exp")
		if err != nil {
			return nil, err
		}
		return pow(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if _, single := data["arg"]; single {
			arg, err := subObj("arg")
			if err != nil {
				return nil, err
			}
			return fn(name, arg), nil
		}
		args, err := subList("args")
		if err != nil {
			return nil, err
		}
		return fn(name, args...), nil

	case "undefined":
		reason, _ := data["reason"].(string)
		return Undef(reason), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}
