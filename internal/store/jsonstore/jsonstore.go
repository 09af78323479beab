package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/baiirun/chew/internal/model"
)

// JSON-backed storage. One human-readable file per collection, named
// <collection>.json inside the store directory.
// No file locking; Collection serialises writers within one process.

type document struct {
	LastOrder int          `json:"last_order"`
	Items     []model.Item `json:"items"`
}

// Store keeps one collection in a JSON file. It implements
// collection.Store and collection.OrderKeeper.
type Store struct {
	path string
}

// New returns the store for the named collection under dir.
func New(dir, name string) (*Store, error) {
	if name == "" {
		return nil, errors.New("collection name is required")
	}
	if filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid collection name: %q", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Store{path: filepath.Join(dir, name+".json")}, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

func (s *Store) load() (document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document{}, nil
		}
		return document{}, fmt.Errorf("read file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return document{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// FetchAll returns every item in the file.
func (s *Store) FetchAll() ([]model.Item, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	if doc.Items == nil {
		return []model.Item{}, nil
	}
	return doc.Items, nil
}

// Save inserts or replaces the item with the same id. An existing item
// keeps its order.
func (s *Store) Save(item *model.Item) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(doc.Items, func(it model.Item) bool { return it.ID == item.ID })
	if i >= 0 {
		saved := *item
		saved.Order = doc.Items[i].Order
		doc.Items[i] = saved
	} else {
		for _, it := range doc.Items {
			if it.Order == item.Order {
				return fmt.Errorf("order %d already used by %s", item.Order, it.ID)
			}
		}
		doc.Items = append(doc.Items, *item)
	}
	doc.LastOrder = max(doc.LastOrder, item.Order)
	return s.write(doc)
}

// Destroy removes the item with the given id.
func (s *Store) Destroy(id string) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(doc.Items, func(it model.Item) bool { return it.ID == id })
	if i < 0 {
		return fmt.Errorf("item not found: %s (use 'chew list' to see entries)", id)
	}
	doc.Items = slices.Delete(doc.Items, i, i+1)
	return s.write(doc)
}

// LastOrder returns the highest order ever saved.
func (s *Store) LastOrder() (int, error) {
	doc, err := s.load()
	if err != nil {
		return 0, err
	}
	return doc.LastOrder, nil
}
