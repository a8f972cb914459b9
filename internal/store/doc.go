// Package store provides the in-memory keyed reactive collection store.
//
// A Store holds named collections of records. Each collection is an ordered
// slice of record pointers living in a single store-wide table; callers reach
// a collection through its view handle:
//
//	st := store.New()
//	todos := store.View[todo.Todo](st, "todos")
//	a := todos.AddItem(todo.Todo{Text: "A"})
//	todos.UpdateItem(a.ID, func(d *todo.Todo) { d.Completed = true })
//
// # Copy-on-write
//
// Records are never modified in place. Every mutation works on drafts (deep
// copies) and reconciles them against the current records with package draft,
// so only the records a mutation actually changed get new pointers. A
// mutation that changes nothing returns the previous slice, and subscribers
// are not notified. Use Same to compare two sequences by identity.
//
// Callers must treat records and slices handed out by the store as
// read-only.
//
// # Identity
//
// Record ids are assigned by the store's IDGenerator when an item is added
// (UUIDv7 by default). Mutators cannot change an id.
//
// # Views
//
// View returns the same handle for the same key for the lifetime of the
// store. Asking for an existing key with a different record type panics.
//
// # Concurrency
//
// All methods are safe for concurrent use. Mutations are serialized by a
// single writer lock. Subscribers run after the lock is released, one
// notification at a time, in commit order and registration order. Normally
// they run on the mutating goroutine before the mutation returns. A
// subscriber may mutate the store; that change is delivered after the
// current notification.
package store
