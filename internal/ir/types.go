package ir

import "time"

// Record is one stored string together with its analysis.
// Records are immutable once created; the store only inserts or removes
// whole records.
type Record struct {
	ID         string     `json:"id"`
	Value      string     `json:"value"`
	Properties Properties `json:"properties"`
	CreatedAt  time.Time  `json:"created_at"`

	// Seq is the store-assigned logical insertion number. It orders
	// listings and never leaves the process.
	Seq int64 `json:"-"`
}

// Properties holds the derived properties of a string value.
type Properties struct {
	Length                int            `json:"length"`
	IsPalindrome          bool           `json:"is_palindrome"`
	UniqueCharacters      int            `json:"unique_characters"`
	WordCount             int            `json:"word_count"`
	SHA256Hash            string         `json:"sha256_hash"`
	CharacterFrequencyMap map[string]int `json:"character_frequency_map"`
}

// Canonical converts the properties to an IRObject for canonical encoding.
func (p Properties) Canonical() IRObject {
	freq := make(IRObject, len(p.CharacterFrequencyMap))
	for ch, n := range p.CharacterFrequencyMap {
		freq[ch] = IRInt(n)
	}
	return IRObject{
		"length":                  IRInt(p.Length),
		"is_palindrome":           IRBool(p.IsPalindrome),
		"unique_characters":       IRInt(p.UniqueCharacters),
		"word_count":              IRInt(p.WordCount),
		"sha256_hash":             IRString(p.SHA256Hash),
		"character_frequency_map": freq,
	}
}

// Canonical converts the record to an IRObject for canonical encoding.
// CreatedAt is rendered in RFC 3339 with nanosecond precision in UTC.
func (r Record) Canonical() IRObject {
	return IRObject{
		"id":         IRString(r.ID),
		"value":      IRString(r.Value),
		"properties": r.Properties.Canonical(),
		"created_at": IRString(r.CreatedAt.UTC().Format(time.RFC3339Nano)),
	}
}
