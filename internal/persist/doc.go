// Package persist provides SQLite-backed snapshot storage for store
// collections.
//
// A collection is saved as one row per record, holding the record's id, its
// position in the sequence and its JSON body. Saving replaces the previous
// snapshot of that collection in a single transaction, so a reader never
// sees a half-written collection.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Records are removed with their collection
//
// The path ":memory:" opens a private in-memory database.
package persist
