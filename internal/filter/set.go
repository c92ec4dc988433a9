package filter

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/roach88/stringsvc/internal/ir"
)

// Set is a partial combination of listing constraints. A nil field is
// unconstrained. The JSON form omits nil fields, so an encoded Set lists
// exactly the constraints that were applied.
type Set struct {
	IsPalindrome      *bool   `json:"is_palindrome,omitempty"`
	MinLength         *int    `json:"min_length,omitempty"`
	MaxLength         *int    `json:"max_length,omitempty"`
	WordCount         *int    `json:"word_count,omitempty"`
	ContainsCharacter *string `json:"contains_character,omitempty"`
}

// ErrInvalidSet marks constraint values no record could be compared with.
var ErrInvalidSet = errors.New("invalid filter")

// Bool, Int and String return pointers for building Sets literally.
func Bool(b bool) *bool       { return &b }
func Int(n int) *int          { return &n }
func String(s string) *string { return &s }

// IsEmpty reports whether no constraint is set.
func (s Set) IsEmpty() bool {
	return s.IsPalindrome == nil &&
		s.MinLength == nil &&
		s.MaxLength == nil &&
		s.WordCount == nil &&
		s.ContainsCharacter == nil
}

// Clone returns a copy that shares no pointers with s.
func (s Set) Clone() Set {
	var out Set
	if s.IsPalindrome != nil {
		out.IsPalindrome = Bool(*s.IsPalindrome)
	}
	if s.MinLength != nil {
		out.MinLength = Int(*s.MinLength)
	}
	if s.MaxLength != nil {
		out.MaxLength = Int(*s.MaxLength)
	}
	if s.WordCount != nil {
		out.WordCount = Int(*s.WordCount)
	}
	if s.ContainsCharacter != nil {
		out.ContainsCharacter = String(*s.ContainsCharacter)
	}
	return out
}

// Validate checks that the constraint values are well formed.
// contains_character must be exactly one character.
func (s Set) Validate() error {
	if s.ContainsCharacter != nil {
		if n := utf8.RuneCountInString(*s.ContainsCharacter); n != 1 {
			return errors.Wrapf(ErrInvalidSet,
				"contains_character must be a single character, got %d", n)
		}
	}
	return nil
}

// Predicate lowers the set into a conjunction of predicates, one per
// present constraint, in a fixed order.
func (s Set) Predicate() And {
	var preds []Predicate
	if s.IsPalindrome != nil {
		preds = append(preds, Equals{Field: FieldIsPalindrome, Value: ir.IRBool(*s.IsPalindrome)})
	}
	if s.MinLength != nil {
		preds = append(preds, AtLeast{Field: FieldLength, Value: *s.MinLength})
	}
	if s.MaxLength != nil {
		preds = append(preds, AtMost{Field: FieldLength, Value: *s.MaxLength})
	}
	if s.WordCount != nil {
		preds = append(preds, Equals{Field: FieldWordCount, Value: ir.IRInt(*s.WordCount)})
	}
	if s.ContainsCharacter != nil {
		preds = append(preds, Contains{Field: FieldValue, Substring: *s.ContainsCharacter})
	}
	return And{Predicates: preds}
}

// LogValue implements slog.LogValuer.
func (s Set) LogValue() slog.Value {
	var attrs []slog.Attr
	if s.IsPalindrome != nil {
		attrs = append(attrs, slog.Bool("is_palindrome", *s.IsPalindrome))
	}
	if s.MinLength != nil {
		attrs = append(attrs, slog.Int("min_length", *s.MinLength))
	}
	if s.MaxLength != nil {
		attrs = append(attrs, slog.Int("max_length", *s.MaxLength))
	}
	if s.WordCount != nil {
		attrs = append(attrs, slog.Int("word_count", *s.WordCount))
	}
	if s.ContainsCharacter != nil {
		attrs = append(attrs, slog.String("contains_character", *s.ContainsCharacter))
	}
	return slog.GroupValue(attrs...)
}

// String renders the present constraints for CLI text output.
func (s Set) String() string {
	out := ""
	add := func(k string, v any) {
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%s=%v", k, v)
	}
	if s.IsPalindrome != nil {
		add("is_palindrome", *s.IsPalindrome)
	}
	if s.MinLength != nil {
		add("min_length", *s.MinLength)
	}
	if s.MaxLength != nil {
		add("max_length", *s.MaxLength)
	}
	if s.WordCount != nil {
		add("word_count", *s.WordCount)
	}
	if s.ContainsCharacter != nil {
		add("contains_character", fmt.Sprintf("%q", *s.ContainsCharacter))
	}
	if out == "" {
		return "(none)"
	}
	return out
}
