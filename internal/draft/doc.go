// Package draft implements copy-on-write editing of Go values.
//
// A caller edits a deep copy (the draft) as if it were mutable, and Reconcile
// folds the draft back against the original so that every subvalue the edit
// did not change is the original subvalue itself:
//
//	next := draft.Produce(todo, func(d *Todo) { d.Completed = true })
//	// next != todo, but next.Tags shares its backing array with todo.Tags
//
//	same := draft.Produce(todo, func(d *Todo) { d.Completed = todo.Completed })
//	// same == todo (pointer identity), nothing was allocated for the result
//
// # Equality
//
// A subvalue counts as unchanged when it is structurally equal to the base
// (github.com/google/go-cmp). Assigning an equal value by value, including a
// freshly built nested struct or slice, is therefore a no-op. nil and empty
// slices or maps are distinct.
//
// # Limits
//
// Only exported struct fields are deep-copied and reconciled; unexported
// fields are copied shallowly. Values must be trees: cyclic pointer graphs are
// not supported by Clone. Functions and channels are shared as-is.
package draft
