// Package store holds string records keyed by the SHA-256 of their value.
//
// Two backends implement Store:
//   - Memory: a map guarded by one RWMutex (the default)
//   - SQLite: an in-memory SQLite database on a single connection
//
// Neither backend writes to disk, so no record survives a restart.
//
// # Critical Patterns
//
// Identity: a record's id is ir.ID(value). Get and Delete take the value
// and recompute the id.
//
// Logical ordering: every insert is stamped with a strictly increasing
// seq from a Sequence. List returns records ordered by seq ASC, id ASC
// COLLATE BINARY in both backends.
//
// Conflict detection: SQLite inserts use ON CONFLICT(id) DO NOTHING and
// report ErrConflict when no row was affected.
package store
