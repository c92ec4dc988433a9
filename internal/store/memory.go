package store

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/stringsvc/internal/analysis"
	"github.com/roach88/stringsvc/internal/ir"
)

// Memory is a Store backed by a map.
// One RWMutex guards the map: mutations are exclusive, reads share.
type Memory struct {
	mu      sync.RWMutex
	records map[string]ir.Record
	seq     Sequence
	clock   Clock
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty memory store. A nil clock uses SystemClock.
func NewMemory(clock Clock) *Memory {
	if clock == nil {
		clock = SystemClock
	}
	return &Memory{
		records: make(map[string]ir.Record),
		clock:   clock,
	}
}

// Insert implements Store.
func (m *Memory) Insert(ctx context.Context, value string) (ir.Record, error) {
	if err := ctx.Err(); err != nil {
		return ir.Record{}, err
	}

	props := analysis.Analyze(value)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[props.SHA256Hash]; ok {
		return ir.Record{}, ErrConflict
	}
	rec := newRecord(value, props, m.seq.Next(), m.clock.Now())
	m.records[rec.ID] = rec
	return clone(rec), nil
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, value string) (ir.Record, error) {
	if err := ctx.Err(); err != nil {
		return ir.Record{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[ir.ID(value)]
	if !ok {
		return ir.Record{}, ErrNotFound
	}
	return clone(rec), nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := ir.ID(value)
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

// List implements Store.
func (m *Memory) List(ctx context.Context) ([]ir.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	out := make([]ir.Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, clone(rec))
	}
	m.mu.RUnlock()

	slices.SortFunc(out, compareRecords)
	return out, nil
}

// Close implements Store. The memory store holds no resources.
func (m *Memory) Close() error { return nil }

// compareRecords orders by seq, then id bytewise.
func compareRecords(a, b ir.Record) int {
	if a.Seq != b.Seq {
		if a.Seq < b.Seq {
			return -1
		}
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

// clone copies the frequency map so callers cannot mutate stored records.
func clone(rec ir.Record) ir.Record {
	rec.Properties.CharacterFrequencyMap = maps.Clone(rec.Properties.CharacterFrequencyMap)
	return rec
}
