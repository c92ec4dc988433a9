package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/stringsvc/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		n := 0
		for _, event := range e.Trace {
			if event.Type == EventResponse {
				n++
				fmt.Fprintf(&buf, "  [%d] %s -> %d\n", n, event.Target, event.Status)
			}
		}
	}

	return buf.String()
}

// assertTraceContains checks that the trace contains a response to the
// request, with the given status when one is specified.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Type != EventResponse || event.Request != assertion.Request {
			continue
		}
		if assertion.Status == 0 || assertion.Status == event.Status {
			return nil
		}
	}

	expected := assertion.Request
	if assertion.Status != 0 {
		expected = fmt.Sprintf("%s with status %d", assertion.Request, assertion.Status)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that requests appear in the specified order.
// Requests don't need to be consecutive (intervening requests are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	// First position of each expected request, 1-indexed for readability
	positions := make(map[string]int)
	for i, event := range trace {
		if event.Type != EventRequest {
			continue
		}
		if _, seen := positions[event.Request]; !seen {
			positions[event.Request] = i + 1
		}
	}

	for _, request := range assertion.Requests {
		if positions[request] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all requests present: %v", assertion.Requests),
				Actual:   fmt.Sprintf("missing request: %s", request),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Requests); i++ {
		prev := assertion.Requests[i-1]
		curr := assertion.Requests[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("requests in order: %v", assertion.Requests),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks that the request was issued exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == EventRequest && event.Request == assertion.Request {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Request),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertFinalState checks the stored record for assertion.Value against
// assertion.Expect using subset semantics, or checks that it is absent.
func assertFinalState(ctx context.Context, st store.Store, assertion Assertion) error {
	rec, err := st.Get(ctx, assertion.Value)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if assertion.Absent {
			return nil
		}
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("record for %q", assertion.Value),
			Actual:   "record not found",
		}
	case err != nil:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("record for %q", assertion.Value),
			Actual:   fmt.Sprintf("store error: %v", err),
		}
	case assertion.Absent:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("no record for %q", assertion.Value),
			Actual:   fmt.Sprintf("record %s exists", rec.ID),
		}
	}

	actual, err := normalize(rec)
	if err != nil {
		return errors.Wrap(err, "encode record")
	}
	expected, err := normalize(assertion.Expect)
	if err != nil {
		return errors.Wrap(err, "invalid expected record")
	}
	if err := matchSubset("record", expected, actual); err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("record for %q matching %v", assertion.Value, assertion.Expect),
			Actual:   err.Error(),
		}
	}
	return nil
}

// normalize converts v to the generic form encoding/json decodes into, so
// YAML-decoded expectations and JSON-decoded responses compare equal.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// matchSubset checks that actual contains expected. Objects may carry
// extra keys; arrays must match in length and element by element.
func matchSubset(path string, expected, actual any) error {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return errors.Newf("%s: expected object, got %T", path, actual)
		}
		for _, key := range slices.Sorted(maps.Keys(exp)) {
			actVal, exists := act[key]
			if !exists {
				return errors.Newf("%s.%s: missing", path, key)
			}
			if err := matchSubset(path+"."+key, exp[key], actVal); err != nil {
				return err
			}
		}
		return nil
	case []any:
		act, ok := actual.([]any)
		if !ok {
			return errors.Newf("%s: expected array, got %T", path, actual)
		}
		if len(act) != len(exp) {
			return errors.Newf("%s: expected %d elements, got %d", path, len(exp), len(act))
		}
		for i := range exp {
			if err := matchSubset(fmt.Sprintf("%s[%d]", path, i), exp[i], act[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		if !assert.ObjectsAreEqual(expected, actual) {
			return errors.Newf("%s: expected %v, got %v", path, expected, actual)
		}
		return nil
	}
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides store access for final_state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var msgs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = errors.Newf("assertion[%d]: final_state requires store context", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = errors.Newf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}

	return msgs
}
