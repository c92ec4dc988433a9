package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/roach88/stringsvc/internal/filter"
	"github.com/roach88/stringsvc/internal/store"
)

// handleCreate handles POST /strings.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	value, err := decodeCreate(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	rec, err := s.store.Insert(r.Context(), value)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "string created", "id", shortID(rec.ID))
	s.respond(w, r, http.StatusCreated, rec)
}

func decodeCreate(body io.Reader) (string, error) {
	var req createRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return "", badRequest("Invalid request body: %v", err)
	}
	raw := bytes.TrimSpace(req.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", badRequest(`Missing "value" field`)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", unprocessable(`"value" must be a string`)
	}
	return value, nil
}

// handleGet handles GET /strings/{value...}.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), r.PathValue("value"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, rec)
}

// handleDelete handles DELETE /strings/{value...}.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("value")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleList handles GET /strings.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	set, err := parseFilterParams(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	recs, err := store.Filter(r.Context(), s.store, set)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.DebugContext(r.Context(), "strings listed", "filters", set, "count", len(recs))
	s.respond(w, r, http.StatusOK, listResponse{
		Data:           recs,
		Count:          len(recs),
		FiltersApplied: set,
	})
}

// handleNaturalLanguage handles GET /strings/filter-by-natural-language.
func (s *Server) handleNaturalLanguage(w http.ResponseWriter, r *http.Request) {
	values, ok := r.URL.Query()["query"]
	if !ok || len(values) == 0 {
		s.fail(w, r, unprocessable(`Missing "query" parameter`))
		return
	}
	query := values[0]

	set, err := s.parser.Parse(query)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	recs, err := store.Filter(r.Context(), s.store, set)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.DebugContext(r.Context(), "natural language query",
		"query", query,
		"filters", set,
		"count", len(recs))
	s.respond(w, r, http.StatusOK, naturalLanguageResponse{
		Data:  recs,
		Count: len(recs),
		InterpretedQuery: interpretedQuery{
			Original:      query,
			ParsedFilters: set,
		},
	})
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, healthResponse{Status: "ok", Records: len(recs)})
}

// parseFilterParams reads the optional listing constraints from the
// query string. Any malformed value is a 422.
func parseFilterParams(r *http.Request) (filter.Set, error) {
	q := r.URL.Query()
	var set filter.Set

	if v, ok := lookup(q, "is_palindrome"); ok {
		b, err := parseBool(v)
		if err != nil {
			return filter.Set{}, unprocessable("is_palindrome must be a boolean, got %q", v)
		}
		set.IsPalindrome = filter.Bool(b)
	}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"min_length", &set.MinLength},
		{"max_length", &set.MaxLength},
		{"word_count", &set.WordCount},
	} {
		v, ok := lookup(q, p.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return filter.Set{}, unprocessable("%s must be an integer, got %q", p.name, v)
		}
		*p.dst = filter.Int(n)
	}

	if v, ok := lookup(q, "contains_character"); ok {
		if utf8.RuneCountInString(v) != 1 {
			return filter.Set{}, unprocessable("contains_character must be a single character, got %q", v)
		}
		set.ContainsCharacter = filter.String(v)
	}

	return set, nil
}

// lookup returns the first value of key and whether the key was present.
func lookup(q map[string][]string, key string) (string, bool) {
	vs, ok := q[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// parseBool accepts the spellings common HTTP frameworks accept.
func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on", "t", "y":
		return true, nil
	case "false", "0", "no", "off", "f", "n":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

// shortID truncates an ID to 8 characters for logging
func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
