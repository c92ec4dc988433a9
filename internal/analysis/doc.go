// Package analysis derives the properties stored alongside every string.
//
// Analyze is a pure, total function: it never fails and has no side
// effects, so callers may run it before or after taking any store lock.
//
// # Character semantics
//
// All counts are over Unicode code points (runes), never bytes.
// Whitespace is the set unicode.IsSpace accepts plus the ASCII
// information separators U+001C..U+001F, which generic whitespace
// splitting also treats as separators. Character comparisons are exact
// and case-sensitive everywhere except the palindrome check, which folds
// each rune with the simple lowercase mapping before comparing.
package analysis
