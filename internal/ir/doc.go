// Package ir provides the record model shared by every stringsvc package.
//
// This package contains type definitions, the content-addressed identity
// hash and a canonical JSON encoder. All other internal packages import
// ir; ir imports nothing internal.
//
// Key design constraints:
//   - A record's ID is always the hex SHA-256 of its exact value bytes
//   - Values are stored exactly as submitted (no normalization)
//   - All JSON tags use snake_case
//   - Canonical JSON is for snapshots and fingerprints only, never identity
package ir
