package db

import (
	"fmt"

	"github.com/baiirun/chew/internal/model"
	"github.com/baiirun/chew/internal/nutrition"
)

// Summary contains aggregated collection status.
type Summary struct {
	Collection string `json:"collection"`
	Items      int    `json:"items"`
	Done       int    `json:"done"`
	Remaining  int    `json:"remaining"`
	Total      int    `json:"total"`
	LastOrder  int    `json:"last_order"`
}

// ListCollections returns all collection names.
func (db *DB) ListCollections() ([]string, error) {
	rows, err := db.Query(`SELECT name FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CollectionSummary returns counts and the calorie total for a collection.
// The total goes through nutrition.Total so malformed stored values count
// as zero exactly as they do in memory.
func (db *DB) CollectionSummary(name string) (*Summary, error) {
	summary := &Summary{Collection: name}

	// Count by done flag
	rows, err := db.Query(`
		SELECT done, COUNT(*) FROM items
		WHERE collection = ?
		GROUP BY done`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var done bool
		var count int
		if err := rows.Scan(&done, &count); err != nil {
			return nil, fmt.Errorf("failed to scan item count: %w", err)
		}
		if done {
			summary.Done = count
		} else {
			summary.Remaining = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate counts: %w", err)
	}
	summary.Items = summary.Done + summary.Remaining

	pending, err := db.queryItems(`
		SELECT `+itemColumns+`
		FROM items WHERE collection = ? AND done = 0`, name)
	if err != nil {
		return nil, err
	}
	summary.Total = nutrition.Total(pending)

	err = db.QueryRow(`SELECT last_order FROM collections WHERE name = ?`, name).Scan(&summary.LastOrder)
	if err != nil {
		return nil, fmt.Errorf("collection not found: %s (use 'chew collections' to see collections)", name)
	}

	return summary, nil
}

// ListItems returns items of a collection filtered by done flag. A nil done
// returns every item.
func (db *DB) ListItems(name string, done *bool) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE collection = ?`
	args := []any{name}

	if done != nil {
		query += ` AND done = ?`
		args = append(args, *done)
	}
	query += ` ORDER BY ord ASC`

	return db.queryItems(query, args...)
}
