package filter

import "github.com/roach88/stringsvc/internal/ir"

// Field names a record attribute a predicate can reference.
type Field string

// Fields understood by Eval and the SQL compiler.
const (
	FieldValue        Field = "value"
	FieldLength       Field = "length"
	FieldWordCount    Field = "word_count"
	FieldIsPalindrome Field = "is_palindrome"
)

// Predicate is a condition on a single record.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Equals holds when the field equals a literal value.
//
//	Equals{Field: FieldWordCount, Value: ir.IRInt(1)}
type Equals struct {
	Field Field
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// AtLeast holds when an integer field is >= Value.
type AtLeast struct {
	Field Field
	Value int
}

func (AtLeast) predicateNode() {}

// AtMost holds when an integer field is <= Value.
type AtMost struct {
	Field Field
	Value int
}

func (AtMost) predicateNode() {}

// Contains holds when a string field contains Substring literally.
// The comparison is case-sensitive and the field is not whitespace
// stripped.
type Contains struct {
	Field     Field
	Substring string
}

func (Contains) predicateNode() {}

// And is a conjunction. An empty And is vacuously true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
