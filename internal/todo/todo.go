// Package todo is the business-logic layer over the collection store: it maps
// user actions (create, toggle, edit, remove, ...) to store mutations and
// fills in default field values.
package todo

import (
	"time"
)

// Collection is the store key under which todos live.
const Collection = "todos"

// Todo is a single todo item.
type Todo struct {
	ID          string     `json:"id" yaml:"id"`
	Text        string     `json:"text" yaml:"text"`
	Completed   bool       `json:"completed" yaml:"completed"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// GetID returns the todo id.
func (t *Todo) GetID() string { return t.ID }

// SetID sets the todo id. Only the store calls this.
func (t *Todo) SetID(id string) { t.ID = id }

// HasTag reports whether the todo carries tag.
func (t *Todo) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// Filter selects todos by completion state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ValidFilters lists the accepted filter names.
var ValidFilters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter converts a filter name into a Filter. The empty string means
// FilterAll.
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range ValidFilters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", invalidf("unknown filter %q: must be one of %v", s, ValidFilters)
}

// Match reports whether t passes the filter.
func (f Filter) Match(t *Todo) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Stats are the completion counters shown alongside the list.
type Stats struct {
	Total     int `json:"total" yaml:"total"`
	Active    int `json:"active" yaml:"active"`
	Completed int `json:"completed" yaml:"completed"`
}

// Count computes Stats for items.
func Count(items []*Todo) Stats {
	s := Stats{Total: len(items)}
	for _, t := range items {
		if t.Completed {
			s.Completed++
		}
	}
	s.Active = s.Total - s.Completed
	return s
}
