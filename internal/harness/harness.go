package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/roach88/stringsvc/internal/config"
	"github.com/roach88/stringsvc/internal/server"
	"github.com/roach88/stringsvc/internal/store"
	"github.com/roach88/stringsvc/internal/testutil"
)

// ClockStep is how far the wall clock advances per stored record.
const ClockStep = time.Second

// Harness is the test execution engine.
// It drives one server instance with deterministic clock and request ids.
type Harness struct {
	store   store.Store
	handler http.Handler
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh store for isolation.
//
// Execution flow:
// 1. Create the configured store backend and a server over it
// 2. Store setup values
// 3. Execute flow steps with expect validation
// 4. Evaluate assertions
// 5. Return result with pass/fail, trace, and errors
//
// The returned error reports problems running the scenario; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	clock := testutil.NewStepClock(testutil.Epoch, ClockStep)
	st, err := openStore(scenario.Backend, clock)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create store")
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		store: st,
		handler: server.New(st,
			server.WithLogger(logger),
			server.WithIDGenerator(testutil.NewSequentialIDGenerator("req")),
		),
		logger: logger,
	}

	result := NewResult()
	if err := h.executeSetup(scenario.Setup, result); err != nil {
		return nil, errors.Wrap(err, "failed to execute setup")
	}
	if err := h.executeFlow(scenario.Flow, result); err != nil {
		return nil, errors.Wrap(err, "failed to execute flow")
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   context.Background(),
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func openStore(backend string, clock store.Clock) (store.Store, error) {
	if backend == config.BackendSQLite {
		return store.OpenSQLite(clock)
	}
	return store.NewMemory(clock), nil
}

// executeSetup stores each setup value through the API.
func (h *Harness) executeSetup(setup []string, result *Result) error {
	for i, value := range setup {
		step := FlowStep{
			Request: "POST /strings",
			Body:    map[string]any{"value": value},
		}
		rec, _, err := h.send(step, result)
		if err != nil {
			return errors.Wrapf(err, "setup step %d", i)
		}
		if rec.Code != http.StatusCreated {
			return errors.Newf("setup step %d: storing %q returned %d: %s",
				i, value, rec.Code, strings.TrimSpace(rec.Body.String()))
		}
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses.
func (h *Harness) executeFlow(flow []FlowStep, result *Result) error {
	for i, step := range flow {
		rec, body, err := h.send(step, result)
		if err != nil {
			return errors.Wrapf(err, "flow step %d", i)
		}

		h.logger.Info("flow step completed",
			"step", i,
			"request", step.Request,
			"status", rec.Code,
		)

		if step.Expect == nil {
			continue
		}
		for _, msg := range checkExpect(step.Expect, rec, body) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Request, msg))
		}
	}
	return nil
}

// send issues one request and records it in the trace. The decoded JSON
// body is returned alongside the recorder; non-JSON bodies are returned
// as strings.
func (h *Harness) send(step FlowStep, result *Result) (*httptest.ResponseRecorder, any, error) {
	method, path, err := splitRequest(step.Request)
	if err != nil {
		return nil, nil, err
	}
	request := method + " " + path

	u := url.URL{Path: path}
	if len(step.Query) > 0 {
		q := url.Values{}
		for k, v := range step.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	target := u.RequestURI()

	var reqBody io.Reader = http.NoBody
	switch {
	case step.Body != nil:
		data, err := json.Marshal(step.Body)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to encode request body")
		}
		reqBody = bytes.NewReader(data)
	case step.Raw != "":
		reqBody = strings.NewReader(step.Raw)
	}

	req := httptest.NewRequest(method, target, reqBody)
	if step.Body != nil || step.Raw != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range step.Header {
		req.Header.Set(k, v)
	}

	result.AddRequestTrace(request, target)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	body := decodeBody(rec.Body.Bytes())
	result.AddResponseTrace(request, target, rec.Code, body)
	return rec, body, nil
}

func decodeBody(data []byte) any {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}

// checkExpect compares a response against an expect clause and returns
// one message per mismatch.
func checkExpect(expect *ExpectClause, rec *httptest.ResponseRecorder, body any) []string {
	var msgs []string
	if rec.Code != expect.Status {
		msgs = append(msgs, fmt.Sprintf("expected status %d, got %d (body %s)",
			expect.Status, rec.Code, strings.TrimSpace(rec.Body.String())))
	}
	for k, want := range expect.Header {
		if got := rec.Header().Get(k); got != want {
			msgs = append(msgs, fmt.Sprintf("expected header %s %q, got %q", k, want, got))
		}
	}
	if expect.Body != nil {
		want, err := normalize(expect.Body)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("invalid expected body: %v", err))
		} else if err := matchSubset("body", want, body); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}
