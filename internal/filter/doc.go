// Package filter evaluates listing constraints against stored records.
//
// A Set is the user-facing form: a partial combination of named,
// optional constraints, all of which must hold (logical AND). Absent
// fields are unconstrained. The same Set type is produced by the HTTP
// query string and by the natural-language phrase parser.
//
// Set.Predicate lowers a Set into a small predicate tree. The tree is the
// contract between the two evaluators:
//
//	[Set] → [Predicate tree] → Eval (in-process scan)
//	                         → querysql (SQLite WHERE clause)
//
// SEALED INTERFACES:
//
// Predicate is a sealed interface using the marker method pattern. Only
// types in this package implement it, so backends can switch
// exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case AtLeast:
//	case AtMost:
//	case Contains:
//	case And:
//	}
//
// Fields refer to record properties by their wire names (length,
// word_count, is_palindrome) or to the raw value (value).
package filter
