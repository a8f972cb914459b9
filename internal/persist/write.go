package persist

import (
	"context"
	"fmt"
)

// SaveCollection replaces the stored snapshot of a collection with rows, in
// order. Saving an empty slice keeps the collection, now empty.
func (s *Store) SaveCollection(ctx context.Context, name string, rows []Row) (err error) {
	if name == "" {
		return fmt.Errorf("save collection: empty collection name")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save collection %q: begin: %w", name, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (name, size) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET size = excluded.size
	`, name, len(rows))
	if err != nil {
		return fmt.Errorf("save collection %q: upsert: %w", name, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, name); err != nil {
		return fmt.Errorf("save collection %q: clear: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, position, body)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save collection %q: prepare: %w", name, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if row.ID == "" {
			err = fmt.Errorf("save collection %q: row %d has no id", name, i)
			return err
		}
		if _, err = stmt.ExecContext(ctx, name, row.ID, i, row.Body); err != nil {
			return fmt.Errorf("save collection %q: insert %q: %w", name, row.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("save collection %q: commit: %w", name, err)
	}
	return nil
}

// DeleteCollection removes a collection and its records. Unknown names are
// ignored.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete collection %q: %w", name, err)
	}
	return nil
}
