package store

import (
	"context"
	"database/sql"
	_ "embed"
	"strings"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/stringsvc/internal/analysis"
	"github.com/roach88/stringsvc/internal/filter"
	"github.com/roach88/stringsvc/internal/ir"
	"github.com/roach88/stringsvc/internal/querysql"
)

//go:embed schema.sql
var schemaSQL string

const table = "strings"

// recordColumns is the scan order used by scanRecord.
var recordColumns = []string{
	"id", "value", "length", "is_palindrome", "unique_characters",
	"word_count", "character_frequency_map", "created_at", "seq",
}

// SQLite is a Store backed by an in-memory SQLite database.
//
// The pool is limited to one connection: every connection to ":memory:"
// opens a separate database, and a single connection also serializes
// all statements.
type SQLite struct {
	db       *sql.DB
	seq      Sequence
	clock    Clock
	compiler *querysql.SQLCompiler
}

var (
	_ Store   = (*SQLite)(nil)
	_ Querier = (*SQLite)(nil)
)

// OpenSQLite creates a fresh in-memory database and applies the schema.
// A nil clock uses SystemClock.
func OpenSQLite(clock Clock) (*SQLite, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// A second connection would see an empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to apply pragmas")
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to apply schema")
	}

	return FromDB(db, clock), nil
}

// FromDB wraps an already prepared database. The schema must exist.
func FromDB(db *sql.DB, clock Clock) *SQLite {
	if clock == nil {
		clock = SystemClock
	}
	return &SQLite{
		db:       db,
		clock:    clock,
		compiler: querysql.NewSQLCompiler(),
	}
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Wrapf(err, "failed to execute %q", pragma)
		}
	}

	return nil
}

// Insert implements Store.
// ON CONFLICT(id) DO NOTHING leaves existing rows untouched; zero rows
// affected means the value was already stored.
func (s *SQLite) Insert(ctx context.Context, value string) (ir.Record, error) {
	props := analysis.Analyze(value)
	rec := newRecord(value, props, s.seq.Next(), s.clock.Now())

	freqJSON, err := marshalFrequencies(props.CharacterFrequencyMap)
	if err != nil {
		return ir.Record{}, errors.Wrap(err, "insert string")
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO strings
		(id, value, length, is_palindrome, unique_characters, word_count, character_frequency_map, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Value,
		props.Length,
		props.IsPalindrome,
		props.UniqueCharacters,
		props.WordCount,
		freqJSON,
		formatTime(rec.CreatedAt),
		rec.Seq,
	)
	if err != nil {
		return ir.Record{}, errors.Wrap(err, "insert string")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return ir.Record{}, errors.Wrap(err, "insert string: rows affected")
	}
	if n == 0 {
		return ir.Record{}, ErrConflict
	}
	return rec, nil
}

// Get implements Store. The lookup uses the primary key.
func (s *SQLite) Get(ctx context.Context, value string) (ir.Record, error) {
	query := "SELECT " + strings.Join(recordColumns, ", ") + " FROM strings WHERE id = ?"
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, ir.ID(value)))
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Record{}, ErrNotFound
	}
	if err != nil {
		return ir.Record{}, errors.Wrap(err, "get string")
	}
	return rec, nil
}

// Delete implements Store.
func (s *SQLite) Delete(ctx context.Context, value string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM strings WHERE id = ?", ir.ID(value))
	if err != nil {
		return errors.Wrap(err, "delete string")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete string: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List implements Store.
func (s *SQLite) List(ctx context.Context) ([]ir.Record, error) {
	return s.query(ctx, nil)
}

// Query implements Querier by compiling the set into a WHERE clause.
func (s *SQLite) Query(ctx context.Context, set filter.Set) ([]ir.Record, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if set.IsEmpty() {
		return s.query(ctx, nil)
	}
	return s.query(ctx, set.Predicate())
}

func (s *SQLite) query(ctx context.Context, pred filter.Predicate) ([]ir.Record, error) {
	sqlText, params, err := s.compiler.Compile(querysql.Query{
		Table:   table,
		Columns: recordColumns,
		Filter:  pred,
	})
	if err != nil {
		return nil, errors.Wrap(err, "query strings")
	}

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, errors.Wrap(err, "query strings")
	}
	defer rows.Close()

	out := []ir.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan string")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate strings")
	}
	return out, nil
}

// Close closes the database. The in-memory data is discarded.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (ir.Record, error) {
	var (
		rec       ir.Record
		freqJSON  string
		createdAt string
	)
	err := row.Scan(
		&rec.ID,
		&rec.Value,
		&rec.Properties.Length,
		&rec.Properties.IsPalindrome,
		&rec.Properties.UniqueCharacters,
		&rec.Properties.WordCount,
		&freqJSON,
		&createdAt,
		&rec.Seq,
	)
	if err != nil {
		return ir.Record{}, err
	}

	rec.Properties.SHA256Hash = rec.ID
	if rec.Properties.CharacterFrequencyMap, err = unmarshalFrequencies(freqJSON); err != nil {
		return ir.Record{}, err
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return ir.Record{}, err
	}
	return rec, nil
}
