package phrase

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/cases"

	"github.com/roach88/stringsvc/internal/filter"
)

// ErrUnparseable is returned when a query contains no recognized phrase.
var ErrUnparseable = errors.New("unable to parse natural language query")

// Compiled at package init.
var (
	// Only the phrase is case-insensitive; the letter class stays ASCII so
	// case-folding equivalents such as U+212A KELVIN SIGN do not match.
	letterPattern = regexp.MustCompile(`(?i:containing the letter) ([a-zA-Z])`)

	longerThanPattern = regexp.MustCompile(`longer than (\d+)`)
)

// Parser turns a natural-language query into a filter set.
type Parser interface {
	Parse(query string) (filter.Set, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(query string) (filter.Set, error)

// Parse calls f.
func (f ParserFunc) Parse(query string) (filter.Set, error) { return f(query) }

// Default parses without caching.
var Default Parser = ParserFunc(Parse)

// Parse recognizes every known phrase in query.
func Parse(query string) (filter.Set, error) {
	var set filter.Set
	// Keyword phrases match under Unicode case folding. A Caser holds
	// state, so each call gets its own.
	q := cases.Fold().String(query)

	if strings.Contains(q, "single word") {
		set.WordCount = filter.Int(1)
	}
	if strings.Contains(q, "palindromic") || strings.Contains(q, "palindrome") {
		set.IsPalindrome = filter.Bool(true)
	}
	if m := longerThanPattern.FindStringSubmatch(q); m != nil {
		// m[1] is all digits, so Atoi fails only on overflow and then
		// returns math.MaxInt. No string is that long; the bound saturates.
		n, _ := strconv.Atoi(m[1])
		minLen := math.MaxInt
		if n < math.MaxInt {
			minLen = n + 1
		}
		set.MinLength = filter.Int(minLen)
	}
	if m := letterPattern.FindStringSubmatch(query); m != nil {
		set.ContainsCharacter = filter.String(m[1])
	}

	if set.IsEmpty() {
		return filter.Set{}, errors.Wrapf(ErrUnparseable, "query %q", query)
	}
	return set, nil
}
