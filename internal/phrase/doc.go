// Package phrase maps a fixed vocabulary of English phrases to filter sets.
//
// Recognized phrases (matched case-insensitively, combined conjunctively):
//
//	"single word"                  word_count = 1
//	"palindromic" / "palindrome"   is_palindrome = true
//	"longer than N"                min_length = N + 1
//	"containing the letter X"      contains_character = X (case kept)
//
// A query matching none of them fails with ErrUnparseable.
package phrase
