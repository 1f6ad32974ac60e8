package symsolve_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/njchilds90/symsolve"
)

func decodeJSON(t *testing.T, s string) symsolve.Expr {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatal(err)
	}
	e, err := symsolve.FromJSON(m)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestJSON_RoundTrip(t *testing.T) {
	for _, src := range []string{"x^2 + 3*x - 1/2", "sin(x)*exp(-x)", "ln(|x|)", "a/b"} {
		e := symsolve.Simplify(symsolve.MustParse(src))
		s, err := symsolve.ToJSON(e)
		if err != nil {
			t.Fatal(err)
		}
		back := decodeJSON(t, s)
		if !back.Equal(e) {
			t.Errorf("%s: JSON round trip gave %s", src, back)
		}
	}
}

func TestJSON_InexactSurvives(t *testing.T) {
	e := symsolve.NFloat(0.1)
	s, err := symsolve.ToJSON(e)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s, `"inexact":true`) {
		t.Errorf("inexact flag missing from %s", s)
	}
	n, ok := decodeJSON(t, s).(*symsolve.Num)
	if !ok || !n.IsInexact() {
		t.Errorf("want an inexact number back, got %v", n)
	}
}

func TestJSON_Undefined(t *testing.T) {
	s, err := symsolve.ToJSON(symsolve.Undef("division by zero"))
	if err != nil {
		t.Fatal(err)
	}
	if s != `{"reason":"division by zero","type":"undefined"}` {
		t.Errorf("unexpected encoding %s", s)
	}
}

func TestJSON_LegacySingleArg(t *testing.T) {
	e := decodeJSON(t, `{"type":"func","name":"sin","arg":{"type":"sym","name":"x"}}`)
	if e.String() != "sin(x)" {
		t.Errorf("want sin(x), got %s", e)
	}
}

func TestFromJSON_Errors(t *testing.T) {
	cases := []string{
		`{}`,
		`{"type":""}`,
		`{"type":"bogus"}`,
		`{"type":"num","value":"abc"}`,
		`{"type":"sym"}`,
		`{"type":"add","terms":{}}`,
		`{"type":"mul","factors":[1]}`,
		`{"type":"pow","base":{"type":"sym","name":"x"}}`,
	}
	for _, c := range cases {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(c), &m); err != nil {
			t.Fatal(err)
		}
		if _, err := symsolve.FromJSON(m); err == nil {
			t.Errorf("%s: expected an error", c)
		}
	}
}

func TestFromJSON_Nil(t *testing.T) {
	if _, err := symsolve.FromJSON(nil); err == nil {
		t.Error("expected an error for nil input")
	}
}
