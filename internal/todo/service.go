package todo

import (
	"strings"
	"time"

	"github.com/roach88/todokit/internal/store"
)

// Clock supplies creation and completion timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Service implements the todo operations on top of a store collection.
//
// Service holds no state of its own; every call goes through the "todos"
// view of the store it was built with. It is safe for concurrent use.
type Service struct {
	todos *store.CollectionView[Todo, *Todo]
	clock Clock
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for CreatedAt and CompletedAt.
//
// Default: time.Now in UTC.
func WithClock(c Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// NewService creates a Service over the "todos" collection of st.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{
		todos: store.View[Todo](st, Collection),
		clock: systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a new active todo. Text and tags are normalized before
// validation.
func (s *Service) Create(text string, tags ...string) (*Todo, error) {
	in := input{Text: normalizeText(text), Tags: normalizeTags(tags)}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	return s.todos.AddItem(Todo{
		Text:      in.Text,
		Completed: false,
		CreatedAt: s.clock.Now(),
		Tags:      in.Tags,
	}), nil
}

// Get returns the todo with exactly the given id.
func (s *Service) Get(id string) (*Todo, error) {
	t, ok := s.todos.FindItem(byID(id))
	if !ok {
		return nil, notFound(id)
	}
	return t, nil
}

// Resolve returns the todo whose id equals ref or, failing that, the single
// todo whose id starts with ref.
func (s *Service) Resolve(ref string) (*Todo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, invalidf("id must not be empty")
	}
	if t, ok := s.todos.FindItem(byID(ref)); ok {
		return t, nil
	}

	matches := s.todos.GetItems(func(t *Todo) bool {
		return strings.HasPrefix(t.ID, ref)
	})
	switch len(matches) {
	case 0:
		return nil, notFound(ref)
	case 1:
		return matches[0], nil
	default:
		return nil, ambiguous(ref, len(matches))
	}
}

// List returns the todos passing filter, optionally restricted to those
// carrying tag.
func (s *Service) List(filter Filter, tag string) []*Todo {
	if filter == FilterAll && tag == "" {
		return s.todos.GetItems()
	}
	filters := []func(*Todo) bool{filter.Match}
	if tag != "" {
		tag = strings.ToLower(normalizeText(tag))
		filters = append(filters, func(t *Todo) bool { return t.HasTag(tag) })
	}
	return s.todos.GetItems(filters...)
}

// Toggle flips the completion state of a todo. The flip reads the state
// being replaced, so concurrent toggles never cancel each other out.
func (s *Service) Toggle(id string) (*Todo, error) {
	now := s.clock.Now()
	return s.update(id, func(d *Todo) {
		setCompleted(d, !d.Completed, now)
	})
}

// SetCompleted sets the completion state of a todo. Setting the state it
// already has changes nothing.
func (s *Service) SetCompleted(id string, completed bool) (*Todo, error) {
	return s.update(id, s.completer(completed))
}

// Edit replaces the text of a todo. Editing to empty text removes the todo
// and returns (nil, nil).
func (s *Service) Edit(id, text string) (*Todo, error) {
	text = normalizeText(text)
	if text == "" {
		return nil, s.Remove(id)
	}
	if err := validateInput(input{Text: text}, "Text"); err != nil {
		return nil, err
	}
	return s.update(id, func(d *Todo) { d.Text = text })
}

// Retag replaces the tags of a todo.
func (s *Service) Retag(id string, tags ...string) (*Todo, error) {
	tags = normalizeTags(tags)
	if err := validateInput(input{Tags: tags}, "Tags"); err != nil {
		return nil, err
	}
	return s.update(id, func(d *Todo) { d.Tags = tags })
}

// Remove deletes a todo.
func (s *Service) Remove(id string) error {
	found := false
	s.todos.UpdateItems(func(draft []*Todo) []*Todo {
		kept := draft[:0]
		for _, t := range draft {
			if t.ID == id {
				found = true
				continue
			}
			kept = append(kept, t)
		}
		return kept
	})
	if !found {
		return notFound(id)
	}
	return nil
}

// ToggleAll marks every todo completed, or every todo active when all of
// them already are completed. It returns the resulting counters.
func (s *Service) ToggleAll() Stats {
	items := s.todos.GetItems()
	target := !(len(items) > 0 && Count(items).Active == 0)

	next := s.todos.UpdateItemsWhere(
		func(t *Todo) bool { return t.Completed != target },
		s.completer(target),
	)
	return Count(next)
}

// ClearCompleted removes every completed todo and returns how many were
// removed.
func (s *Service) ClearCompleted() int {
	before := s.todos.Len()
	next := s.todos.UpdateItems(func(draft []*Todo) []*Todo {
		kept := draft[:0]
		for _, t := range draft {
			if !t.Completed {
				kept = append(kept, t)
			}
		}
		return kept
	})
	return before - len(next)
}

// Stats returns the current counters.
func (s *Service) Stats() Stats {
	return Count(s.todos.GetItems())
}

// Restore replaces the whole collection with items, keeping their ids.
// Used when loading from persistence or importing an export.
func (s *Service) Restore(items []*Todo) []*Todo {
	return s.todos.UpdateItems(func([]*Todo) []*Todo {
		return items
	})
}

// Import normalizes and validates items the way Create does, then replaces
// the whole collection with them. An invalid item rejects the whole import
// and the error names its index.
func (s *Service) Import(items []*Todo) ([]*Todo, error) {
	clean := make([]*Todo, len(items))
	for i, t := range items {
		if t == nil {
			return nil, invalidf("todo %d: missing", i)
		}
		c := *t
		c.Text = normalizeText(c.Text)
		c.Tags = normalizeTags(c.Tags)
		if err := validateInput(input{Text: c.Text, Tags: c.Tags}); err != nil {
			return nil, invalidf("todo %d: %s", i, messageOf(err))
		}
		if !c.Completed {
			c.CompletedAt = nil
		}
		clean[i] = &c
	}
	return s.Restore(clean), nil
}

// Subscribe registers fn for every change of the todo list.
func (s *Service) Subscribe(fn func(items []*Todo)) (unsubscribe func()) {
	return s.todos.Subscribe(fn)
}

// completer returns a mutator that sets the completion state. It leaves a
// todo already in that state untouched.
func (s *Service) completer(completed bool) func(d *Todo) {
	now := s.clock.Now()
	return func(d *Todo) {
		setCompleted(d, completed, now)
	}
}

// setCompleted sets d.Completed, stamping CompletedAt with now or clearing
// it.
func setCompleted(d *Todo, completed bool, now time.Time) {
	if d.Completed == completed {
		return
	}
	d.Completed = completed
	if completed {
		d.CompletedAt = &now
	} else {
		d.CompletedAt = nil
	}
}

// update applies mutator to the todo with the given id. Not-found is
// decided inside the write, never by an earlier read.
func (s *Service) update(id string, mutator func(d *Todo)) (*Todo, error) {
	found := false
	items := s.todos.UpdateItem(id, func(d *Todo) {
		found = true
		mutator(d)
	})
	if !found {
		return nil, notFound(id)
	}
	for _, t := range items {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, notFound(id)
}

func byID(id string) func(*Todo) bool {
	return func(t *Todo) bool { return t.ID == id }
}
