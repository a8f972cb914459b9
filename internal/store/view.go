package store

import (
	"slices"

	"github.com/roach88/todokit/internal/draft"
)

// CollectionView is the handle for one named collection. It holds no data;
// every call reads or writes the store's table.
//
// Obtain views with View; construct no other way.
type CollectionView[T any, P Record[T]] struct {
	store *Store
	key   string
}

// Key returns the collection name.
func (v *CollectionView[T, P]) Key() string {
	return v.key
}

// Len returns the number of records in the collection.
func (v *CollectionView[T, P]) Len() int {
	return len(v.load())
}

// GetItems returns the current sequence. With filters, it returns a new
// slice of the records that satisfy every filter; records are shared.
func (v *CollectionView[T, P]) GetItems(filters ...func(P) bool) []P {
	items := v.load()
	if len(filters) == 0 {
		return items
	}

	out := make([]P, 0, len(items))
	for _, item := range items {
		if matchAll(item, filters) {
			out = append(out, item)
		}
	}
	return out
}

// FindItem returns the first record satisfying pred.
func (v *CollectionView[T, P]) FindItem(pred func(P) bool) (P, bool) {
	for _, item := range v.load() {
		if pred(item) {
			return item, true
		}
	}
	return nil, false
}

// AddItem appends a copy of data with a freshly generated id and returns the
// stored record. Any id already set on data is replaced.
func (v *CollectionView[T, P]) AddItem(data T) P {
	rec := P(draft.Clone(&data))

	v.mutate("add", func(cur []P) []P {
		rec.SetID(v.freshID(func(id string) bool {
			return indexOf[T, P](cur, id) >= 0
		}))
		next := make([]P, len(cur), len(cur)+1)
		copy(next, cur)
		return append(next, rec)
	})
	return rec
}

// UpdateItem applies mutator to a draft of the record with the given id and
// returns the resulting sequence. Only that record is replaced, and only if
// the mutator actually changed it; otherwise the current sequence is
// returned unchanged. Unknown ids are ignored.
func (v *CollectionView[T, P]) UpdateItem(id string, mutator func(draft P)) []P {
	return v.mutate("update", func(cur []P) []P {
		i := indexOf[T, P](cur, id)
		if i < 0 {
			return cur
		}
		next := produce[T, P](cur[i], mutator)
		if next == cur[i] {
			return cur
		}
		out := slices.Clone(cur)
		out[i] = next
		return out
	})
}

// UpdateItemsWhere applies mutator to a draft of every record satisfying
// pred. Records that do not match, or that the mutator leaves unchanged,
// keep their identity; if none changed the current sequence is returned.
func (v *CollectionView[T, P]) UpdateItemsWhere(pred func(P) bool, mutator func(draft P)) []P {
	return v.mutate("update_where", func(cur []P) []P {
		var out []P
		for i, item := range cur {
			if !pred(item) {
				continue
			}
			next := produce[T, P](item, mutator)
			if next == item {
				continue
			}
			if out == nil {
				out = slices.Clone(cur)
			}
			out[i] = next
		}
		if out == nil {
			return cur
		}
		return out
	})
}

// UpdateItems hands recipe a draft of the whole sequence: a new slice of
// deep-copied records. The recipe may edit records in place, reorder, drop
// or append them, and returns the slice to store.
//
// Returned records are matched to the current ones by id and reconciled, so
// unchanged records keep their identity. Records with an empty or repeated
// id get a generated one; an unknown non-empty id is kept. If the result is
// element-for-element identical to the current sequence, the current
// sequence is returned and nothing is notified.
func (v *CollectionView[T, P]) UpdateItems(recipe func(draft []P) []P) []P {
	return v.mutate("update_all", func(cur []P) []P {
		drafts := make([]P, len(cur))
		byID := make(map[string]P, len(cur))
		for i, item := range cur {
			drafts[i] = draft.Clone(item)
			byID[item.GetID()] = item
		}

		edited := recipe(drafts)

		out := make([]P, 0, len(edited))
		seen := make(map[string]bool, len(edited))
		claimed := make(map[string]bool, len(edited))
		for _, d := range edited {
			if d != nil {
				claimed[d.GetID()] = true
			}
		}
		taken := func(id string) bool {
			_, exists := byID[id]
			return exists || claimed[id] || seen[id]
		}
		for _, d := range edited {
			if d == nil {
				continue
			}
			id := d.GetID()
			if id == "" || seen[id] {
				d = draft.Clone(d)
				d.SetID(v.freshID(taken))
				id = d.GetID()
			}
			seen[id] = true

			if base, ok := byID[id]; ok {
				out = append(out, draft.Reconcile(base, d))
			} else {
				out = append(out, draft.Clone(d))
			}
		}

		if slices.Equal(cur, out) {
			return cur
		}
		return out
	})
}

// RemoveItem removes the record with the given id. Unknown ids are ignored.
func (v *CollectionView[T, P]) RemoveItem(id string) []P {
	return v.mutate("remove", func(cur []P) []P {
		i := indexOf[T, P](cur, id)
		if i < 0 {
			return cur
		}
		out := make([]P, 0, len(cur)-1)
		out = append(out, cur[:i]...)
		return append(out, cur[i+1:]...)
	})
}

// ClearItems empties the collection.
func (v *CollectionView[T, P]) ClearItems() []P {
	return v.mutate("clear", func(cur []P) []P {
		if len(cur) == 0 {
			return cur
		}
		return []P{}
	})
}

// Subscribe registers fn to be called with the new sequence after every
// mutation of this collection that changes it. fn is not called for the
// current state. The returned function unsubscribes; calling it more than
// once is harmless.
func (v *CollectionView[T, P]) Subscribe(fn func(items []P)) (unsubscribe func()) {
	return v.store.subscribe(v.key, func(items any) {
		typed, _ := items.(seq[P])
		fn([]P(typed))
	})
}

// load returns the current sequence.
func (v *CollectionView[T, P]) load() []P {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	items, _ := v.store.table[v.key].(seq[P])
	return []P(items)
}

// mutate runs fn against the current sequence under the writer lock. When fn
// returns a different sequence it is committed and subscribers are notified
// before mutate returns, unless a notification is already being delivered
// (see Store.publish).
func (v *CollectionView[T, P]) mutate(op string, fn func(cur []P) []P) []P {
	s := v.store
	s.writeMu.Lock()
	locked := true
	defer func() {
		if locked {
			s.writeMu.Unlock()
		}
	}()

	cur := v.load()
	next := fn(cur)
	if Same(cur, next) {
		s.logger.Debug("collection unchanged", "collection", v.key, "op", op)
		return cur
	}

	s.mu.Lock()
	s.table[v.key] = seq[P](next)
	subs := slices.Clone(s.subs[v.key])
	s.mu.Unlock()

	s.logger.Debug("collection updated",
		"collection", v.key,
		"op", op,
		"len", len(next),
		"subscribers", len(subs),
	)

	if len(subs) == 0 {
		return next
	}
	locked = false
	s.publish(notification{subs: subs, items: seq[P](next)})
	return next
}

// freshID returns the next generated id for which taken reports false.
// Generators restarted over restored records may hand out ids already in
// use; those are skipped.
func (v *CollectionView[T, P]) freshID(taken func(id string) bool) string {
	for {
		id := v.store.ids.Generate()
		if !taken(id) {
			return id
		}
	}
}

// produce runs mutator on a draft of item, keeping the original id.
func produce[T any, P Record[T]](item P, mutator func(draft P)) P {
	id := item.GetID()
	return draft.Produce(item, func(d P) {
		mutator(d)
		d.SetID(id)
	})
}

func indexOf[T any, P Record[T]](items []P, id string) int {
	return slices.IndexFunc(items, func(item P) bool {
		return item.GetID() == id
	})
}

func matchAll[P any](item P, filters []func(P) bool) bool {
	for _, f := range filters {
		if !f(item) {
			return false
		}
	}
	return true
}
