// Package app is the composition root: it builds the one collection store a
// process uses, restores it from the database, and hands out the todo
// service built on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/todokit/internal/config"
	"github.com/roach88/todokit/internal/persist"
	"github.com/roach88/todokit/internal/store"
	"github.com/roach88/todokit/internal/todo"
)

// saveTimeout bounds one autosave.
const saveTimeout = 5 * time.Second

// App owns the store, the todo service and the optional database.
//
// Thread-safety: App methods are safe for concurrent use. Autosaves run on
// the goroutine delivering store notifications, one at a time and in commit
// order.
type App struct {
	store  *store.Store
	todos  *todo.Service
	db     *persist.Store
	logger *slog.Logger

	unsubscribe func()

	mu      sync.Mutex
	closed  bool
	saveErr error
}

// Option configures Open.
type Option func(*options)

type options struct {
	ids    store.IDGenerator
	clock  todo.Clock
	logger *slog.Logger
}

// WithIDGenerator overrides the store's id generator.
func WithIDGenerator(g store.IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// WithClock overrides the clock used for todo timestamps.
func WithClock(c todo.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open builds an App from cfg. A nil cfg means config.Default().
//
// When cfg.Database is set, the todo list is restored from it and every
// later change is saved back. Seed items from cfg are added when the list
// starts out empty.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	storeOpts := []store.Option{store.WithLogger(o.logger)}
	if o.ids != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(o.ids))
	}
	var todoOpts []todo.Option
	if o.clock != nil {
		todoOpts = append(todoOpts, todo.WithClock(o.clock))
	}

	st := store.New(storeOpts...)
	a := &App{
		store:  st,
		todos:  todo.NewService(st, todoOpts...),
		logger: o.logger,
	}

	if cfg.Database != "" {
		if err := a.restore(ctx, cfg.Database); err != nil {
			return nil, err
		}
		a.unsubscribe = a.todos.Subscribe(a.save)
	}

	if err := a.seed(cfg.Seed); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) restore(ctx context.Context, path string) error {
	db, err := persist.Open(path)
	if err != nil {
		return fmt.Errorf("open app: %w", err)
	}

	rows, err := db.LoadCollection(ctx, todo.Collection)
	if err != nil {
		db.Close()
		return fmt.Errorf("open app: restore: %w", err)
	}
	items, err := persist.DecodeRows[todo.Todo](rows)
	if err != nil {
		db.Close()
		return fmt.Errorf("open app: restore: %w", err)
	}

	if _, err := a.todos.Import(items); err != nil {
		db.Close()
		return fmt.Errorf("open app: restore: %w", err)
	}
	a.db = db
	a.logger.Info("todos restored", "database", path, "count", len(items))

	if keys, err := db.Collections(ctx); err != nil {
		a.logger.Warn("listing stored collections failed", "error", err)
	} else {
		a.logger.Debug("stored collections", "collections", keys)
	}
	return nil
}

func (a *App) seed(seeds []config.Seed) error {
	if len(seeds) == 0 || a.todos.Stats().Total > 0 {
		return nil
	}
	for _, s := range seeds {
		t, err := a.todos.Create(s.Text, s.Tags...)
		if err != nil {
			return fmt.Errorf("open app: seed %q: %w", s.Text, err)
		}
		if s.Completed {
			if _, err := a.todos.SetCompleted(t.ID, true); err != nil {
				return fmt.Errorf("open app: seed %q: %w", s.Text, err)
			}
		}
	}
	a.logger.Info("todos seeded", "count", len(seeds))
	return nil
}

// save writes the whole todo list. Called by the store after every change.
func (a *App) save(items []*todo.Todo) {
	err := a.saveItems(items)

	a.mu.Lock()
	a.saveErr = err
	a.mu.Unlock()

	if err != nil {
		a.logger.Error("autosave failed", "error", err, "count", len(items))
		return
	}
	a.logger.Debug("todos saved", "count", len(items))
}

func (a *App) saveItems(items []*todo.Todo) error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if len(items) == 0 {
		if err := a.db.DeleteCollection(ctx, todo.Collection); err != nil {
			return fmt.Errorf("autosave: %w", err)
		}
		return nil
	}

	rows, err := persist.EncodeRows(items)
	if err != nil {
		return fmt.Errorf("autosave: %w", err)
	}
	if err := a.db.SaveCollection(ctx, todo.Collection, rows); err != nil {
		return fmt.Errorf("autosave: %w", err)
	}
	return nil
}

// Todos returns the todo service.
//
// Panics if the App was not built by Open or has been closed.
func (a *App) Todos() *todo.Service {
	a.mustBeOpen("Todos")
	return a.todos
}

// Store returns the collection store.
//
// Panics if the App was not built by Open or has been closed.
func (a *App) Store() *store.Store {
	a.mustBeOpen("Store")
	return a.store
}

// Persistent reports whether changes are saved to a database.
func (a *App) Persistent() bool {
	return a != nil && a.db != nil
}

// Err returns the error of the most recent autosave, or nil if it succeeded.
func (a *App) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveErr
}

// Close stops autosaving and closes the database. It returns the last
// autosave error, if any, joined with the close error. Calling Close more
// than once is harmless.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	saveErr := a.saveErr
	a.mu.Unlock()

	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	var closeErr error
	if a.db != nil {
		closeErr = a.db.Close()
	}
	return errors.Join(saveErr, closeErr)
}

func (a *App) mustBeOpen(method string) {
	if a == nil || a.store == nil {
		panic(fmt.Sprintf("app: %s called on an App that was not built by app.Open", method))
	}
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		panic(fmt.Sprintf("app: %s called after Close; open a new App instead", method))
	}
}
