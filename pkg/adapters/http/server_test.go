package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/internal/testutils"
	pdhttp "github.com/aretw0/pushdown/pkg/adapters/http"
	"github.com/aretw0/pushdown/pkg/adapters/file"
	"github.com/aretw0/pushdown/pkg/adapters/memory"
	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/aretw0/pushdown/pkg/observability"
	"github.com/aretw0/pushdown/pkg/registry"
	"github.com/aretw0/pushdown/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *pdhttp.Server {
	t.Helper()
	loader, err := memory.NewLoader(testutils.BalancedParens())
	require.NoError(t, err)

	promReg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(promReg)
	require.NoError(t, err)

	reg := registry.NewRegistry(loader, registry.WithAutomatonOptions(func(name string) []pushdown.Option {
		return []pushdown.Option{pushdown.WithLifecycleHooks(metrics.Hooks(name))}
	}))
	mgr := session.NewManager(memory.NewStore(), reg.Stepper)

	return pdhttp.NewServer(reg, pdhttp.WithSessions(mgr), pdhttp.WithMetrics(promReg))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAutomataEndpoints(t *testing.T) {
	h := newServer(t).Routes()

	t.Run("List", func(t *testing.T) {
		w := do(t, h, "GET", "/automata", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"automata":["parens"]}`, w.Body.String())
	})

	t.Run("Get", func(t *testing.T) {
		w := do(t, h, "GET", "/automata/parens", "")
		require.Equal(t, http.StatusOK, w.Code)
		def, err := file.Decode(w.Body.Bytes(), file.FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, domain.State("q0"), def.InitialState)
		assert.Len(t, def.Transitions.Rules(), 4)
	})

	t.Run("Not Found", func(t *testing.T) {
		w := do(t, h, "GET", "/automata/missing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = do(t, h, "POST", "/automata/missing/accepts", `{"input":"()"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Accepts", func(t *testing.T) {
		w := do(t, h, "POST", "/automata/parens/accepts", `{"input":"(())"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"accepted":true}`, w.Body.String())

		w = do(t, h, "POST", "/automata/parens/accepts", `{"input":"(()"}`)
		require.Equal(t, http.StatusOK, w.Code)
		var resp pdhttp.AcceptsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Accepted)
		assert.NotEmpty(t, resp.Reason)
	})

	t.Run("Bad Body", func(t *testing.T) {
		w := do(t, h, "POST", "/automata/parens/accepts", `{`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = do(t, h, "POST", "/automata/parens/runs", `{"inputs":"()"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Oversized Input", func(t *testing.T) {
		t.Setenv(pushdown.EnvMaxInputSize, "4")
		w := do(t, h, "POST", "/automata/parens/accepts", `{"input":"((()))"}`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		w = do(t, h, "POST", "/sessions", `{"automaton":"parens","input":"((()))"}`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("Runs", func(t *testing.T) {
		w := do(t, h, "POST", "/automata/parens/runs", `{"input":"()"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Input          string `json:"input"`
			Accepted       bool   `json:"accepted"`
			Steps          int    `json:"steps"`
			Configurations []struct {
				State     string   `json:"state"`
				Remaining string   `json:"remaining"`
				Stack     []string `json:"stack"`
			} `json:"configurations"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Accepted)
		assert.Equal(t, 3, resp.Steps)
		require.Len(t, resp.Configurations, 4)
		assert.Equal(t, []string{"Z", "P"}, resp.Configurations[1].Stack)
		assert.Equal(t, "q0", resp.Configurations[3].State)
	})

	t.Run("Graph", func(t *testing.T) {
		w := do(t, h, "GET", "/automata/parens/graph", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "stateDiagram-v2")
		assert.NotContains(t, w.Body.String(), "classDef")

		w = do(t, h, "GET", "/automata/parens/graph?input=()", "")
		assert.Contains(t, w.Body.String(), "class q0 accepted")
	})

	t.Run("Metrics", func(t *testing.T) {
		w := do(t, h, "GET", "/metrics", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `pushdown_runs_total{automaton="parens",result="accepted"}`)
	})
}

func TestPutAutomaton(t *testing.T) {
	h := newServer(t).Routes()

	t.Run("YAML Definition", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/automata/copy", strings.NewReader(testutils.ParensYAML))
		req.Header.Set("Content-Type", "application/yaml")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = do(t, h, "GET", "/automata", "")
		assert.JSONEq(t, `{"automata":["copy","parens"]}`, w.Body.String())

		w = do(t, h, "POST", "/automata/copy/accepts", `{"input":"()()"}`)
		assert.JSONEq(t, `{"accepted":true}`, w.Body.String())
	})

	t.Run("Nondeterministic Definition", func(t *testing.T) {
		data, err := file.Encode(testutils.Nondeterministic(), file.FormatJSON)
		require.NoError(t, err)
		w := do(t, h, "PUT", "/automata/ambiguous", string(data))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w = do(t, h, "GET", "/automata/ambiguous", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Malformed Definition", func(t *testing.T) {
		w := do(t, h, "PUT", "/automata/broken", `{"states": 3, "bogus": true}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionEndpoints(t *testing.T) {
	h := newServer(t).Routes()

	w := do(t, h, "POST", "/sessions", `{"id":"s1","automaton":"parens","input":"()"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "/sessions/s1", w.Header().Get("Location"))

	w = do(t, h, "POST", "/sessions", `{"id":"s1","automaton":"parens","input":"()"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	var last pdhttp.StepResponse
	for i := 0; i < 3; i++ {
		w = do(t, h, "POST", "/sessions/s1/step", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &last))
	}
	assert.Equal(t, domain.StatusAccepted, last.Session.Status)
	assert.True(t, last.Outcome.Lambda)
	require.NotNil(t, last.Diff)
	require.NotNil(t, last.Diff.State)
	assert.Equal(t, domain.State("q0"), *last.Diff.State)

	w = do(t, h, "POST", "/sessions/s1/step", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, "GET", "/sessions/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"accepted"`)

	w = do(t, h, "DELETE", "/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, "GET", "/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", "/sessions", `{"automaton":"missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, "POST", "/sessions", `{"input":"()"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribeEvents(t *testing.T) {
	srv := newServer(t)
	h := srv.Routes()

	w := do(t, h, "POST", "/sessions", `{"id":"live","automaton":"parens","input":"("}`)
	require.Equal(t, http.StatusCreated, w.Code)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/sessions/live/events", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(wSub, reqSub)
	}()

	require.Eventually(t, func() bool {
		return srv.Streams.Subscribers("live") == 1
	}, time.Second, 10*time.Millisecond)

	w = do(t, h, "POST", "/sessions/live/step", "")
	require.Equal(t, http.StatusOK, w.Code)

	// Give the subscriber a moment to flush, then disconnect.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := wSub.Body.String()
	assert.Contains(t, body, "event: ping")
	assert.Contains(t, body, "event: step")
	assert.Contains(t, body, `"status":"running"`)
	assert.Equal(t, 0, srv.Streams.Subscribers("live"))
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrAutomatonNotFound, http.StatusNotFound},
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{&domain.NondeterminismError{State: "q"}, http.StatusUnprocessableEntity},
		{domain.ErrStepLimitExceeded, http.StatusUnprocessableEntity},
		{domain.ErrSessionFinished, http.StatusConflict},
		{pushdown.ErrInputTooLarge, http.StatusRequestEntityTooLarge},
		{pushdown.ErrInvalidUTF8, http.StatusBadRequest},
		{fmt.Errorf("failed to persist: %w", file.ErrInvalidName), http.StatusBadRequest},
		{bytes.ErrTooLarge, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pdhttp.StatusOf(tt.err), "%v", tt.err)
	}
}
