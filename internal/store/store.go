package store

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Record is the constraint for record types held by a Store: a pointer to a
// struct that carries a string id.
type Record[T any] interface {
	*T
	GetID() string
	SetID(id string)
}

// Store is the keyed reactive collection store.
// The zero value is not usable; construct with New.
type Store struct {
	// writeMu serializes mutations. It also guards queue and delivering.
	// It is not held while subscribers run.
	writeMu    sync.Mutex
	queue      []notification
	delivering bool

	// mu guards table, views and subs.
	mu    sync.RWMutex
	table map[string]collection
	views map[string]any // key -> *CollectionView[T, P]
	subs  map[string][]subscriber

	nextSub uint64
	ids     IDGenerator
	logger  *slog.Logger
}

// collection is a type-erased sequence held in the table.
type collection interface {
	len() int
}

// seq is the concrete table entry for records of type P.
type seq[P any] []P

func (s seq[P]) len() int { return len(s) }

type subscriber struct {
	id uint64
	fn func(items any)
}

// notification is one committed change waiting to be delivered.
type notification struct {
	subs  []subscriber
	items any
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the generator used for new record ids.
//
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// WithLogger sets the logger used for mutation diagnostics.
//
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		table:  make(map[string]collection),
		views:  make(map[string]any),
		subs:   make(map[string][]subscriber),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View returns the view handle for the collection named key, creating it on
// first use. The same handle is returned for the same key on every call.
//
// Panics if key was already bound to a different record type.
func View[T any, P Record[T]](s *Store, key string) *CollectionView[T, P] {
	s.mu.RLock()
	existing, ok := s.views[key]
	s.mu.RUnlock()
	if ok {
		return mustView[T, P](existing, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.views[key]; ok {
		return mustView[T, P](existing, key)
	}
	v := &CollectionView[T, P]{store: s, key: key}
	s.views[key] = v
	return v
}

func mustView[T any, P Record[T]](v any, key string) *CollectionView[T, P] {
	typed, ok := v.(*CollectionView[T, P])
	if !ok {
		panic(fmt.Sprintf("store: collection %q is bound to %T, not to records of type %T", key, v, P(nil)))
	}
	return typed
}

// Keys returns the names of collections that currently hold records, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.table))
	for k, items := range s.table {
		if items.len() > 0 {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Reset clears every collection. View handles and subscriptions survive;
// subscribers of collections that held records are notified with an empty
// sequence.
func (s *Store) Reset() {
	s.writeMu.Lock()

	s.mu.Lock()
	var batch []notification
	for k, items := range s.table {
		if items.len() > 0 && len(s.subs[k]) > 0 {
			batch = append(batch, notification{subs: slices.Clone(s.subs[k])})
		}
	}
	s.table = make(map[string]collection)
	s.mu.Unlock()

	s.logger.Debug("store reset", "notified", len(batch))
	s.publish(batch...)
}

// publish queues batch and delivers queued notifications in commit order.
// It must be called with writeMu held and returns with it released.
//
// Only one goroutine delivers at a time, and it does so without holding
// writeMu, so a subscriber may write to the store. Such a write commits at
// once; its notification is queued behind the one being delivered. A write
// from another goroutine that lands while delivery is in progress is
// delivered by the delivering goroutine.
func (s *Store) publish(batch ...notification) {
	s.queue = append(s.queue, batch...)
	if s.delivering {
		s.writeMu.Unlock()
		return
	}
	s.delivering = true
	s.writeMu.Unlock()

	done := false
	defer func() {
		if done {
			return
		}
		// A subscriber panicked: drop what is queued so later writes can
		// deliver again.
		s.writeMu.Lock()
		s.queue = nil
		s.delivering = false
		s.writeMu.Unlock()
	}()

	for {
		s.writeMu.Lock()
		if len(s.queue) == 0 {
			s.delivering = false
			s.writeMu.Unlock()
			done = true
			return
		}
		n := s.queue[0]
		s.queue = s.queue[1:]
		s.writeMu.Unlock()

		for _, sub := range n.subs {
			sub.fn(n.items)
		}
	}
}

// subscribe registers fn for key and returns its unsubscribe function.
func (s *Store) subscribe(key string, fn func(items any)) func() {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[key] = append(s.subs[key], subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs[key] = slices.DeleteFunc(slices.Clone(s.subs[key]), func(sub subscriber) bool {
				return sub.id == id
			})
		})
	}
}

// Same reports whether a and b are the same sequence, i.e. whether a
// mutation between reading a and reading b was a no-op. It compares slice
// identity, not contents.
func Same[P any](a, b []P) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
