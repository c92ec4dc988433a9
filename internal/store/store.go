package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/roach88/stringsvc/internal/filter"
	"github.com/roach88/stringsvc/internal/ir"
)

var (
	// ErrConflict is returned by Insert when the value is already stored.
	ErrConflict = errors.New("string already exists")

	// ErrNotFound is returned by Get and Delete when the value is absent.
	ErrNotFound = errors.New("string not found")
)

// Store is the record collection used by the API layer.
type Store interface {
	// Insert analyzes value and stores a new record for it.
	Insert(ctx context.Context, value string) (ir.Record, error)
	// Get returns the record for value.
	Get(ctx context.Context, value string) (ir.Record, error)
	// Delete removes the record for value.
	Delete(ctx context.Context, value string) error
	// List returns every record in insertion order.
	List(ctx context.Context) ([]ir.Record, error)
	Close() error
}

// Querier is implemented by backends that evaluate filter sets natively.
// Results must equal filter.Apply over List.
type Querier interface {
	Query(ctx context.Context, set filter.Set) ([]ir.Record, error)
}

// Clock supplies creation timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Filter lists the records in s matching set. Backends implementing
// Querier evaluate the set themselves; others are filtered in memory.
func Filter(ctx context.Context, s Store, set filter.Set) ([]ir.Record, error) {
	if q, ok := s.(Querier); ok {
		return q.Query(ctx, set)
	}
	recs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	matched, _ := filter.Apply(recs, set)
	return matched, nil
}

func newRecord(value string, props ir.Properties, seq int64, now time.Time) ir.Record {
	return ir.Record{
		ID:         props.SHA256Hash,
		Value:      value,
		Properties: props,
		CreatedAt:  now.UTC(),
		Seq:        seq,
	}
}
