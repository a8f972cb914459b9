package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/todokit/internal/store"
)

// Row is one stored record: its id and JSON body.
type Row struct {
	ID   string
	Body string
}

// EncodeRows converts records to rows, keeping their order.
// Uses json.Encoder with HTML escaping disabled so text such as "<b>" is
// stored as typed.
func EncodeRows[T any, P store.Record[T]](items []P) ([]Row, error) {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		body, err := marshalBody(item)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", item.GetID(), err)
		}
		rows = append(rows, Row{ID: item.GetID(), Body: body})
	}
	return rows, nil
}

// DecodeRows parses rows into records. The row id wins over any id in the
// body.
func DecodeRows[T any, P store.Record[T]](rows []Row) ([]P, error) {
	items := make([]P, 0, len(rows))
	for _, row := range rows {
		item := P(new(T))
		if err := json.Unmarshal([]byte(row.Body), item); err != nil {
			return nil, fmt.Errorf("decode %q: %w", row.ID, err)
		}
		item.SetID(row.ID)
		items = append(items, item)
	}
	return items, nil
}

func marshalBody(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
