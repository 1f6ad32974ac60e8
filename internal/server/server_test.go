package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/njchilds90/symsolve"
	"github.com/njchilds90/symsolve/agent"
	"github.com/njchilds90/symsolve/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T, mutate func(*config.ServerConfig)) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig().Server
	if mutate != nil {
		mutate(&cfg)
	}
	ts := httptest.NewServer(New(cfg, agent.New(), nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestTool(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := post(t, ts.URL+"/tool", `{"tool":"diff","params":{"expr":"x^2 + 3x + 5","var":"x"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out symsolve.ToolResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Empty(t, out.Error)
	assert.Equal(t, "2*x + 3", out.String)
}

func TestTool_BadRequests(t *testing.T) {
	ts := newTestServer(t, func(c *config.ServerConfig) { c.MaxBodyBytes = 64 })
	cases := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"malformed", `{"tool":`, http.StatusBadRequest, "unexpected EOF"},
		{"unknown field", `{"tool":"simplify","bogus":1}`, http.StatusBadRequest, "unknown field"},
		{"trailing data", `{"tool":"simplify"} {}`, http.StatusBadRequest, "trailing data"},
		{"too large", `{"tool":"simplify","params":{"expr":"` + strings.Repeat("x+", 64) + `x"}}`, http.StatusRequestEntityTooLarge, "too large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/tool", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			var out map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Contains(t, out["error"], tc.want)
		})
	}
}

func TestTool_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/tool")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAsk(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := post(t, ts.URL+"/ask", `{"question":"What is the derivative of x^2 + 1?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out agent.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "The derivative of x^2 + 1 with respect to x is 2*x", out.Answer)
	assert.Equal(t, 0.9, out.Confidence)
	assert.Equal(t, agent.Solved, out.Outcome)
}

func TestAsk_Unhandled(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := post(t, ts.URL+"/ask", `{"question":"hello there"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out agent.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 0.3, out.Confidence)
}

func TestAsk_MissingQuestion(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := post(t, ts.URL+"/ask", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSchemaAndHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/schema")
	require.NoError(t, err)
	defer resp.Body.Close()
	var schema map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&schema))
	assert.Contains(t, schema, "tools")

	resp2, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Len(t, resp.Header.Get(RequestIDHeader), 36)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "abc-123", resp2.Header.Get(RequestIDHeader))
}

func TestMiddleware_RecoversPanic(t *testing.T) {
	s := New(config.DefaultConfig().Server, agent.New(), nil)
	h := s.middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	cfg := config.DefaultConfig().Server
	cfg.Addr = addr
	s := New(cfg, agent.New(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Post("http://"+addr+"/ask", "application/json", bytes.NewBufferString(`{"question":"solve 2x + 4 = 0"}`))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	http.DefaultClient.CloseIdleConnections()
}
