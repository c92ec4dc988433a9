package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/stringsvc/internal/ir"
)

// Analyze computes the derived properties of value.
func Analyze(value string) ir.Properties {
	freq := Frequencies(value)
	return ir.Properties{
		Length:                utf8.RuneCountInString(value),
		IsPalindrome:          IsPalindrome(value),
		UniqueCharacters:      len(freq),
		WordCount:             WordCount(value),
		SHA256Hash:            ir.ID(value),
		CharacterFrequencyMap: freq,
	}
}

// IsSpace reports whether r separates words and is excluded from
// character counts.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// IsPalindrome reports whether value reads the same in both directions
// after lowercasing each rune. Whitespace is significant.
func IsPalindrome(value string) bool {
	runes := []rune(value)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		if unicode.ToLower(runes[i]) != unicode.ToLower(runes[j]) {
			return false
		}
	}
	return true
}

// WordCount counts the tokens separated by runs of whitespace.
func WordCount(value string) int {
	return len(strings.FieldsFunc(value, IsSpace))
}

// Frequencies counts each non-whitespace rune of value. The map is never
// nil so that it encodes as {} for blank input.
func Frequencies(value string) map[string]int {
	freq := make(map[string]int)
	for _, r := range value {
		if IsSpace(r) {
			continue
		}
		freq[string(r)]++
	}
	return freq
}
