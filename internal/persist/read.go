package persist

import (
	"context"
	"fmt"
)

// LoadCollection returns the stored rows of a collection in saved order.
// Deterministic ordering: ORDER BY position ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the collection was never saved.
func (s *Store) LoadCollection(ctx context.Context, name string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, body
		FROM records
		WHERE collection = ?
		ORDER BY position ASC, id COLLATE BINARY ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Collections returns the names of all saved collections, sorted.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM collections ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return names, nil
}
