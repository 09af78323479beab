package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is given to an item created without a title.
const DefaultTitle = "empty todo..."

// Item is one logged line in a collection.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Food      string    `json:"food"`
	Count     string    `json:"count"`
	Cal       string    `json:"cal"`
	Done      bool      `json:"done"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerateID returns a short random id such as "fd-3f2a9c1b".
func GenerateID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "fd-" + hex[:8]
}

// ApplyDefaults fills the fields a new item must never leave blank.
func (i *Item) ApplyDefaults() {
	if i.ID == "" {
		i.ID = GenerateID()
	}
	if i.Title == "" {
		i.Title = DefaultTitle
	}
}
