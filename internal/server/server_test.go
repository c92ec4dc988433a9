package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stringsvc/internal/ir"
	"github.com/roach88/stringsvc/internal/phrase"
	"github.com/roach88/stringsvc/internal/store"
	"github.com/roach88/stringsvc/internal/testutil"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	st := store.NewMemory(testutil.NewStepClock(testutil.Epoch, time.Second))
	opts = append([]Option{WithIDGenerator(testutil.NewFixedIDGenerator(""))}, opts...)
	return New(st, opts...)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func create(t *testing.T, h http.Handler, value string) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"value": value})
	require.NoError(t, err)
	rec := do(t, h, http.MethodPost, "/strings", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func listValues(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	resp := decode[struct {
		Data  []ir.Record `json:"data"`
		Count int         `json:"count"`
	}](t, rec)
	out := make([]string, len(resp.Data))
	for i, r := range resp.Data {
		out[i] = r.Value
	}
	assert.Equal(t, len(out), resp.Count)
	return out
}

func TestCreate(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/strings", `{"value": "Racecar"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	want := `{
		"id": "af3fc2f418e443ecbb5b10f78551a235c64c81c8141b8a4e4eb0a6acb916f2d5",
		"value": "Racecar",
		"properties": {
			"length": 7,
			"is_palindrome": true,
			"unique_characters": 5,
			"word_count": 1,
			"sha256_hash": "af3fc2f418e443ecbb5b10f78551a235c64c81c8141b8a4e4eb0a6acb916f2d5",
			"character_frequency_map": {"R": 1, "a": 2, "c": 2, "e": 1, "r": 1}
		},
		"created_at": "2025-01-01T00:00:00Z"
	}`
	assert.JSONEq(t, want, rec.Body.String())
}

func TestCreate_Duplicate(t *testing.T) {
	s := newTestServer(t)
	create(t, s, "abc")

	rec := do(t, s, http.MethodPost, "/strings", `{"value":"abc"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"detail":"String already exists"}`, rec.Body.String())
}

func TestCreate_InvalidBodies(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"not json", "value=abc", http.StatusBadRequest},
		{"json array", `["abc"]`, http.StatusBadRequest},
		{"missing value", `{}`, http.StatusBadRequest},
		{"other field only", `{"text":"abc"}`, http.StatusBadRequest},
		{"null value", `{"value":null}`, http.StatusBadRequest},
		{"number value", `{"value":5}`, http.StatusUnprocessableEntity},
		{"bool value", `{"value":true}`, http.StatusUnprocessableEntity},
		{"array value", `{"value":["a"]}`, http.StatusUnprocessableEntity},
		{"object value", `{"value":{"a":1}}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := do(t, s, http.MethodPost, "/strings", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			body := decode[map[string]string](t, rec)
			assert.NotEmpty(t, body["detail"])
		})
	}
}

func TestCreate_EmptyString(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/strings", `{"value":""}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decode[ir.Record](t, rec)
	assert.Equal(t, ir.ID(""), got.ID)
	assert.Equal(t, 0, got.Properties.WordCount)
	assert.NotNil(t, got.Properties.CharacterFrequencyMap)
}

func TestGet(t *testing.T) {
	s := newTestServer(t)
	for _, v := range []string{"hello world", "a/b", "x?y"} {
		create(t, s, v)
	}

	tests := []struct {
		name   string
		target string
		value  string
	}{
		{"escaped space", "/strings/hello%20world", "hello world"},
		{"slash", "/strings/a/b", "a/b"},
		{"escaped slash", "/strings/a%2Fb", "a/b"},
		{"escaped question mark", "/strings/x%3Fy", "x?y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			got := decode[ir.Record](t, rec)
			assert.Equal(t, tt.value, got.Value)
			assert.Equal(t, ir.ID(tt.value), got.ID)
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newTestServer(t)
	create(t, s, "Abc")

	rec := do(t, s, http.MethodGet, "/strings/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"String does not exist"}`, rec.Body.String())
}

func TestDelete(t *testing.T) {
	s := newTestServer(t)
	create(t, s, "x")

	rec := do(t, s, http.MethodDelete, "/strings/x", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/strings/x", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/strings/x", "").Code)
}

func TestDelete_NaturalLanguagePathIsAValue(t *testing.T) {
	s := newTestServer(t)
	create(t, s, "filter-by-natural-language")

	rec := do(t, s, http.MethodDelete, "/strings/filter-by-natural-language", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestList(t *testing.T) {
	s := newTestServer(t)
	for _, v := range []string{"a", "ab", "aba", "noon noon", "Level"} {
		create(t, s, v)
	}

	tests := []struct {
		name        string
		query       string
		want        []string
		wantFilters string
	}{
		{"no filters", "", []string{"a", "ab", "aba", "noon noon", "Level"}, `{}`},
		{"conjunction", "min_length=2&is_palindrome=true", []string{"aba", "noon noon", "Level"},
			`{"min_length":2,"is_palindrome":true}`},
		{"not palindrome", "is_palindrome=false", []string{"ab"}, `{"is_palindrome":false}`},
		{"bool spelling", "is_palindrome=1&word_count=2", []string{"noon noon"},
			`{"is_palindrome":true,"word_count":2}`},
		{"length range", "min_length=2&max_length=3", []string{"ab", "aba"},
			`{"min_length":2,"max_length":3}`},
		{"contains is case sensitive", "contains_character=L", []string{"Level"},
			`{"contains_character":"L"}`},
		{"contains space", "contains_character=%20", []string{"noon noon"},
			`{"contains_character":" "}`},
		{"empty range", "min_length=5&max_length=1", []string{}, `{"min_length":5,"max_length":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/strings?"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			assert.Equal(t, tt.want, listValues(t, rec))

			resp := decode[map[string]json.RawMessage](t, rec)
			assert.JSONEq(t, tt.wantFilters, string(resp["filters_applied"]))
			assert.NotEqual(t, "null", string(resp["data"]))
		})
	}
}

func TestList_InvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bool", "is_palindrome=maybe"},
		{"empty bool", "is_palindrome="},
		{"min_length", "min_length=abc"},
		{"max_length float", "max_length=2.5"},
		{"word_count", "word_count=one"},
		{"contains two chars", "contains_character=ab"},
		{"contains empty", "contains_character="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := do(t, s, http.MethodGet, "/strings?"+tt.query, "")
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["detail"])
		})
	}
}

func TestList_MultiByteContains(t *testing.T) {
	s := newTestServer(t)
	create(t, s, "caf\u00e9")
	create(t, s, "cafe")

	rec := do(t, s, http.MethodGet, "/strings?contains_character="+url.QueryEscape("\u00e9"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"caf\u00e9"}, listValues(t, rec))
}

func TestNaturalLanguage(t *testing.T) {
	s := newTestServer(t)
	for _, v := range []string{"a", "aba", "racecar", "abcd", "step on no pets"} {
		create(t, s, v)
	}

	q := url.QueryEscape("Find palindromic strings longer than 3")
	rec := do(t, s, http.MethodGet, "/strings/filter-by-natural-language?query="+q, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, []string{"racecar", "step on no pets"}, listValues(t, rec))

	resp := decode[map[string]json.RawMessage](t, rec)
	assert.JSONEq(t, `{
		"original": "Find palindromic strings longer than 3",
		"parsed_filters": {"is_palindrome": true, "min_length": 4}
	}`, string(resp["interpreted_query"]))
}

func TestNaturalLanguage_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		detail string
	}{
		{"unparseable", "/strings/filter-by-natural-language?query=nonsense", http.StatusBadRequest,
			"Unable to parse natural language query"},
		{"empty query", "/strings/filter-by-natural-language?query=", http.StatusBadRequest,
			"Unable to parse natural language query"},
		{"missing query", "/strings/filter-by-natural-language", http.StatusUnprocessableEntity,
			`Missing "query" parameter`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := do(t, s, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.detail, decode[map[string]string](t, rec)["detail"])
		})
	}
}

func TestNaturalLanguage_HugeLengthMatchesNothing(t *testing.T) {
	memory := store.NewMemory(testutil.NewStepClock(testutil.Epoch, time.Second))
	sqlite, err := store.OpenSQLite(testutil.NewStepClock(testutil.Epoch, time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	for name, st := range map[string]store.Store{"memory": memory, "sqlite": sqlite} {
		t.Run(name, func(t *testing.T) {
			s := New(st)
			create(t, s, "racecar")

			q := url.QueryEscape("palindromes longer than 99999999999999999999")
			rec := do(t, s, http.MethodGet, "/strings/filter-by-natural-language?query="+q, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Empty(t, listValues(t, rec))

			resp := decode[map[string]json.RawMessage](t, rec)
			assert.JSONEq(t, `{
				"original": "palindromes longer than 99999999999999999999",
				"parsed_filters": {"is_palindrome": true, "min_length": 9223372036854775807}
			}`, string(resp["interpreted_query"]))
		})
	}
}

func TestNaturalLanguage_CachedParser(t *testing.T) {
	parser := phrase.NewCachedParser(4)
	s := newTestServer(t, WithParser(parser))
	create(t, s, "x")

	for i := 0; i < 3; i++ {
		rec := do(t, s, http.MethodGet, "/strings/filter-by-natural-language?query=single+word", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"x"}, listValues(t, rec))
	}
	assert.Equal(t, 1, parser.Len())
}

func TestSQLiteBackend(t *testing.T) {
	st, err := store.OpenSQLite(testutil.NewStepClock(testutil.Epoch, time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	s := New(st)

	for _, v := range []string{"a", "ab", "aba"} {
		create(t, s, v)
	}

	rec := do(t, s, http.MethodGet, "/strings?min_length=2&is_palindrome=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"aba"}, listValues(t, rec))

	rec = do(t, s, http.MethodPost, "/strings", `{"value":"ab"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodGet, "/strings/aba", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-01-01T00:00:02Z", decode[map[string]any](t, rec)["created_at"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	create(t, s, "one")
	create(t, s, "two")

	rec := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","records":2}`, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPut, "/strings", `{"value":"x"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWriteJSON_NoHTMLEscape(t *testing.T) {
	s := newTestServer(t)
	create(t, s, "<a&b>")

	rec := do(t, s, http.MethodGet, "/strings/"+url.PathEscape("<a&b>"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"value":"<a&b>"`)
}

func TestFailLogsServerErrors(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	rec := httptest.NewRecorder()
	s.fail(rec, httptest.NewRequest(http.MethodGet, "/strings", nil), io.ErrUnexpectedEOF)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "request failed")
	assert.Contains(t, buf.String(), "unexpected EOF")
}
