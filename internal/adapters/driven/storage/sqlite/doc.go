// Package sqlite provides the persistent vector index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each chunk is stored with its text,
// source, metadata and embedding (little-endian float32 blob). Search is an exact
// cosine scan in insertion order, so equal scores keep the order records were added.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database lives at <persist_dir>/chatdocs.db (default data/loopdocs).
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
