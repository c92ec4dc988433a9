// Package querysql compiles filter predicate trees to parameterized
// SQLite queries.
//
// CRITICAL PATTERNS:
//
// Parameterized values: literal values are NEVER interpolated into SQL
// text; every value is bound through a ? placeholder.
//
// Allow-listed identifiers: field names map to columns through a fixed
// table, so a predicate can never inject an identifier.
//
// Deterministic ordering: every query ends with
// ORDER BY seq ASC, id COLLATE BINARY ASC, matching the in-memory
// backend's listing order.
package querysql
