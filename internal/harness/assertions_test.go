package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stringsvc/internal/store"
	"github.com/roach88/stringsvc/internal/testutil"
)

func sampleTrace() []TraceEvent {
	r := NewResult()
	r.AddRequestTrace("POST /strings", "/strings")
	r.AddResponseTrace("POST /strings", "/strings", 201, nil)
	r.AddRequestTrace("GET /strings", "/strings?min_length=2")
	r.AddResponseTrace("GET /strings", "/strings?min_length=2", 200, nil)
	r.AddRequestTrace("POST /strings", "/strings")
	r.AddResponseTrace("POST /strings", "/strings", 409, nil)
	return r.Trace
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Request: "POST /strings"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Request: "POST /strings", Status: 409}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Request: "GET /strings", Status: 200}))

	err := assertTraceContains(trace, Assertion{Request: "POST /strings", Status: 422})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POST /strings with status 422")
	assert.Contains(t, err.Error(), "/strings?min_length=2 -> 200")

	assert.Error(t, assertTraceContains(trace, Assertion{Request: "DELETE /strings/x"}))
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Requests: []string{"POST /strings", "GET /strings"}}))

	err := assertTraceOrder(trace, Assertion{Requests: []string{"GET /strings", "POST /strings"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "should be before")

	err = assertTraceOrder(trace, Assertion{Requests: []string{"POST /strings", "GET /healthz"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing request: GET /healthz")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Request: "POST /strings", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Request: "GET /healthz", Count: 0}))

	err := assertTraceCount(trace, Assertion{Request: "GET /strings", Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 occurrences")
}

func TestAssertFinalState(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(testutil.NewFixedClock(testutil.Epoch))
	_, err := st.Insert(ctx, "noon")
	require.NoError(t, err)

	assert.NoError(t, assertFinalState(ctx, st, Assertion{
		Value: "noon",
		Expect: map[string]any{
			"created_at": "2025-01-01T00:00:00Z",
			"properties": map[string]any{"is_palindrome": true, "length": 4},
		},
	}))
	assert.NoError(t, assertFinalState(ctx, st, Assertion{Value: "moon", Absent: true}))

	err = assertFinalState(ctx, st, Assertion{Value: "noon", Absent: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exists")

	err = assertFinalState(ctx, st, Assertion{Value: "moon", Expect: map[string]any{"value": "moon"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record not found")

	err = assertFinalState(ctx, st, Assertion{
		Value:  "noon",
		Expect: map[string]any{"properties": map[string]any{"word_count": 2}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record.properties.word_count: expected 2, got 1")
}

func TestMatchSubset(t *testing.T) {
	actual := map[string]any{
		"count": float64(2),
		"data": []any{
			map[string]any{"value": "a", "extra": true},
			map[string]any{"value": "b"},
		},
	}

	tests := []struct {
		name     string
		expected any
		wantErr  string
	}{
		{"empty object", map[string]any{}, ""},
		{"scalar field", map[string]any{"count": float64(2)}, ""},
		{"nested subset", map[string]any{"data": []any{map[string]any{"value": "a"}, map[string]any{}}}, ""},
		{"wrong scalar", map[string]any{"count": float64(3)}, "body.count: expected 3, got 2"},
		{"missing key", map[string]any{"total": float64(2)}, "body.total: missing"},
		{"short array", map[string]any{"data": []any{map[string]any{}}}, "expected 1 elements, got 2"},
		{"element mismatch", map[string]any{"data": []any{map[string]any{}, map[string]any{"value": "c"}}}, "body.data[1].value"},
		{"type mismatch", map[string]any{"count": map[string]any{}}, "expected object"},
		{"array vs scalar", map[string]any{"count": []any{}}, "expected array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := matchSubset("body", tt.expected, actual)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalize(t *testing.T) {
	v, err := normalize(map[string]any{"n": 3, "list": []any{true, "x"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": float64(3), "list": []any{true, "x"}}, v)

	_, err = normalize(map[any]any{1: "x"})
	assert.Error(t, err)
}

func TestEvaluateAssertions(t *testing.T) {
	result := &Result{Pass: true, Trace: sampleTrace()}

	msgs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, Request: "POST /strings", Count: 2},
		{Type: AssertTraceCount, Request: "POST /strings", Count: 5},
		{Type: AssertFinalState, Value: "x", Absent: true},
		{Type: "bogus"},
	}, nil)

	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0], "trace_count")
	assert.Contains(t, msgs[1], "requires store context")
	assert.Contains(t, msgs[2], "unknown assertion type")
}
