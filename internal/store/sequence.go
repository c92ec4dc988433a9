package store

import "sync/atomic"

// Sequence is a monotonic logical clock for insertion order.
//
// All records are stamped with a strictly increasing seq from it, so
// listing order never depends on wall-clock resolution.
//
// Thread-safety: Sequence is safe for concurrent use (atomic operations).
type Sequence struct {
	seq atomic.Int64
}

// Next returns the next sequence number and increments the counter.
// The zero value starts at 1. Concurrent calls never return the same value.
func (s *Sequence) Next() int64 {
	return s.seq.Add(1)
}
