package store

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// marshalFrequencies converts a frequency map to JSON TEXT for storage.
// Keys are written byte-for-byte; no Unicode normalization is applied, so
// single-rune keys round-trip exactly.
func marshalFrequencies(freq map[string]int) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(freq); err != nil {
		return "", errors.Wrap(err, "marshal character_frequency_map")
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalFrequencies parses JSON TEXT into a non-nil frequency map.
func unmarshalFrequencies(data string) (map[string]int, error) {
	freq := make(map[string]int)
	if data == "" || data == "{}" {
		return freq, nil
	}
	if err := json.Unmarshal([]byte(data), &freq); err != nil {
		return nil, errors.Wrap(err, "unmarshal character_frequency_map")
	}
	return freq, nil
}

// formatTime renders created_at for the TEXT column.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse created_at %q", s)
	}
	return t.UTC(), nil
}
