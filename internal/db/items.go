package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/baiirun/chew/internal/model"
)

const itemColumns = `id, title, food, count, cal, done, ord, created_at, updated_at`

// Store is the items of one collection. It implements collection.Store and
// collection.OrderKeeper.
type Store struct {
	db   *DB
	name string
}

// Namespace returns the store for the named collection, creating the
// collection if needed.
func (db *DB) Namespace(name string) (*Store, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if err := db.EnsureCollection(name); err != nil {
		return nil, err
	}
	return &Store{db: db, name: name}, nil
}

// Name returns the collection name.
func (s *Store) Name() string { return s.name }

// FetchAll returns every item in the collection ordered by order.
func (s *Store) FetchAll() ([]model.Item, error) {
	return s.db.queryItems(`
		SELECT `+itemColumns+`
		FROM items WHERE collection = ?
		ORDER BY ord ASC`, s.name)
}

// Save inserts the item or updates it in place. The order of an existing
// item is never changed.
func (s *Store) Save(item *model.Item) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO items (id, collection, title, food, count, cal, done, ord, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			food = excluded.food,
			count = excluded.count,
			cal = excluded.cal,
			done = excluded.done,
			updated_at = excluded.updated_at`,
		item.ID, s.name, item.Title, item.Food, item.Count, item.Cal,
		item.Done, item.Order, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE collections
		SET last_order = MAX(last_order, ?), updated_at = ?
		WHERE name = ?`,
		item.Order, time.Now(), s.name)
	if err != nil {
		return fmt.Errorf("failed to update last order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item: %w", err)
	}
	return nil
}

// Destroy removes an item from the collection.
func (s *Store) Destroy(id string) error {
	result, err := s.db.Exec(`DELETE FROM items WHERE id = ? AND collection = ?`, id, s.name)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item not found: %s (use 'chew list' to see entries)", id)
	}
	return nil
}

// LastOrder returns the highest order ever saved in the collection.
func (s *Store) LastOrder() (int, error) {
	var last int
	err := s.db.QueryRow(`SELECT last_order FROM collections WHERE name = ?`, s.name).Scan(&last)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get last order: %w", err)
	}
	return last, nil
}

// GetItem retrieves an item by ID from any collection.
func (db *DB) GetItem(id string) (*model.Item, error) {
	items, err := db.queryItems(`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("item not found: %s (use 'chew list' to see entries)", id)
	}
	return &items[0], nil
}

// queryItems is a helper to scan item rows.
func (db *DB) queryItems(query string, args ...any) ([]model.Item, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(
			&item.ID, &item.Title, &item.Food, &item.Count, &item.Cal,
			&item.Done, &item.Order, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
