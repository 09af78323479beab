// Package collection holds the ordered list of logged food entries.
//
// A Collection owns its items. Every mutation goes through a Store first and
// is applied in memory only once the store accepts it. Mutations are
// serialised by a single-writer lock, so callers may issue them from
// goroutines and still observe them one at a time in call order.
//
// After each mutation the ChangeFunc given to WithOnChange receives a
// snapshot of the items and fresh Stats.
package collection

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/baiirun/chew/internal/model"
	"github.com/baiirun/chew/internal/nutrition"
	"github.com/baiirun/chew/internal/parse"
)

var (
	// ErrNotFound is returned when an id or order number matches no item.
	ErrNotFound = errors.New("entry not found")
	// ErrEmptyLine is returned by Create for a blank line.
	ErrEmptyLine = errors.New("empty line")
)

// Store persists the items of one collection.
type Store interface {
	FetchAll() ([]model.Item, error)
	Save(item *model.Item) error
	Destroy(id string) error
}

// OrderKeeper is implemented by stores that remember the highest order ever
// issued, including orders of items since destroyed.
type OrderKeeper interface {
	LastOrder() (int, error)
}

// Stats summarises a collection.
type Stats struct {
	Done      int `json:"done"`
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
}

// ChangeFunc is called after every mutation, with the lock held. It must not
// call back into the Collection.
type ChangeFunc func(items []model.Item, stats Stats)

// Option configures a Collection.
type Option func(*Collection)

// WithLogger sets the logger used for parse traces and mutations.
func WithLogger(log *zap.Logger) Option {
	return func(c *Collection) { c.log = log }
}

// WithOnChange registers the change callback.
func WithOnChange(fn ChangeFunc) Option {
	return func(c *Collection) { c.onChange = fn }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Collection) { c.now = now }
}

// Collection is an ordered, persisted list of items.
type Collection struct {
	mu        sync.Mutex
	store     Store
	items     []model.Item // sorted by Order
	lastOrder int          // highest order ever issued
	onChange  ChangeFunc
	log       *zap.Logger
	now       func() time.Time
}

// New creates an empty collection backed by store. Call Fetch to load it.
func New(store Store, opts ...Option) *Collection {
	c := &Collection{
		store: store,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch replaces the in-memory items with the store's contents.
func (c *Collection) Fetch() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.store.FetchAll()
	if err != nil {
		c.log.Error("fetch failed", zap.Error(err))
		return fmt.Errorf("failed to fetch items: %w", err)
	}
	sortByOrder(items)

	last := 0
	if len(items) > 0 {
		last = items[len(items)-1].Order
	}
	if keeper, ok := c.store.(OrderKeeper); ok {
		stored, err := keeper.LastOrder()
		if err != nil {
			return fmt.Errorf("failed to read last order: %w", err)
		}
		last = max(last, stored)
	}

	c.items = items
	c.lastOrder = last
	c.log.Debug("fetched", zap.Int("items", len(items)), zap.Int("last_order", last))
	c.changed()
	return nil
}

// Create parses line and appends a new item for it.
func (c *Collection) Create(line string) (model.Item, error) {
	if strings.TrimSpace(line) == "" {
		return model.Item{}, ErrEmptyLine
	}

	entry := parse.Extract(line)
	c.log.Debug("parsed line",
		zap.String("line", line),
		zap.String("count", entry.CountValue()),
		zap.String("cal", entry.CalValue()),
		zap.String("food", entry.Food),
	)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	item := model.Item{
		Title:     line,
		Food:      entry.Food,
		Count:     entry.CountValue(),
		Cal:       entry.CalValue(),
		Order:     c.nextOrder(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	item.ApplyDefaults()

	if err := c.save(&item); err != nil {
		return model.Item{}, err
	}
	c.items = append(c.items, item)
	c.lastOrder = max(c.lastOrder, item.Order)
	c.log.Debug("created", zap.String("id", item.ID), zap.Int("order", item.Order))
	c.changed()
	return item, nil
}

// Toggle flips the done flag of the item with the given id.
func (c *Collection) Toggle(id string) (model.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return model.Item{}, NotFound(id)
	}
	item := c.items[i]
	item.Done = !item.Done
	item.UpdatedAt = c.now()
	if err := c.save(&item); err != nil {
		return model.Item{}, err
	}
	c.items[i] = item
	c.log.Debug("toggled", zap.String("id", id), zap.Bool("done", item.Done))
	c.changed()
	return item, nil
}

// ToggleAll sets done on every item.
func (c *Collection) ToggleAll(done bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for i := range c.items {
		if c.items[i].Done == done {
			continue
		}
		item := c.items[i]
		item.Done = done
		item.UpdatedAt = now
		if err := c.save(&item); err != nil {
			// Items already saved stay applied.
			c.changed()
			return err
		}
		c.items[i] = item
	}
	c.log.Debug("toggled all", zap.Bool("done", done))
	c.changed()
	return nil
}

// SetTitle replaces an item's title. An empty title destroys the item.
// The parsed fields are kept as they were.
func (c *Collection) SetTitle(id, title string) error {
	if strings.TrimSpace(title) == "" {
		return c.Destroy(id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return NotFound(id)
	}
	item := c.items[i]
	item.Title = title
	item.UpdatedAt = c.now()
	if err := c.save(&item); err != nil {
		return err
	}
	c.items[i] = item
	c.log.Debug("retitled", zap.String("id", id))
	c.changed()
	return nil
}

// Destroy removes the item with the given id. Its order is never reissued.
func (c *Collection) Destroy(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.destroy(id); err != nil {
		return err
	}
	c.changed()
	return nil
}

// ClearCompleted destroys every done item and reports how many went.
func (c *Collection) ClearCompleted() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cleared := 0
	for _, item := range c.done() {
		if err := c.destroy(item.ID); err != nil {
			c.changed()
			return cleared, err
		}
		cleared++
	}
	c.changed()
	return cleared, nil
}

// Lookup finds an item by id or, when ref is a number, by order.
func (c *Collection) Lookup(ref string) (model.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(ref); i >= 0 {
		return c.items[i], true
	}
	if order, err := strconv.Atoi(ref); err == nil {
		for _, item := range c.items {
			if item.Order == order {
				return item, true
			}
		}
	}
	return model.Item{}, false
}

// Len returns the number of items.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Items returns a copy of all items in order.
func (c *Collection) Items() []model.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Done returns the items marked done.
func (c *Collection) Done() []model.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done()
}

// Remaining returns every item that is not in Done, matched by id.
func (c *Collection) Remaining() []model.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining()
}

// NextOrder returns the order the next created item will get.
func (c *Collection) NextOrder() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextOrder()
}

// Total returns the calorie total of the items not done.
func (c *Collection) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return nutrition.Total(c.items)
}

// Stats returns the done and remaining counts and the total.
func (c *Collection) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats()
}

// Caller must hold c.mu for every method below.

func (c *Collection) done() []model.Item {
	var done []model.Item
	for _, item := range c.items {
		if item.Done {
			done = append(done, item)
		}
	}
	return done
}

func (c *Collection) remaining() []model.Item {
	done := make(map[string]struct{})
	for _, item := range c.done() {
		done[item.ID] = struct{}{}
	}
	var remaining []model.Item
	for _, item := range c.items {
		if _, ok := done[item.ID]; !ok {
			remaining = append(remaining, item)
		}
	}
	return remaining
}

// nextOrder takes the last item by order, so it does not depend on items
// being kept sorted, and never goes below the high-water mark.
func (c *Collection) nextOrder() int {
	last := c.lastOrder
	if len(c.items) > 0 {
		byOrder := slices.Clone(c.items)
		sortByOrder(byOrder)
		last = max(last, byOrder[len(byOrder)-1].Order)
	}
	return last + 1
}

func (c *Collection) stats() Stats {
	done := len(c.done())
	return Stats{
		Done:      done,
		Remaining: len(c.items) - done,
		Total:     nutrition.Total(c.items),
	}
}

func (c *Collection) index(id string) int {
	return slices.IndexFunc(c.items, func(item model.Item) bool { return item.ID == id })
}

func (c *Collection) save(item *model.Item) error {
	if err := c.store.Save(item); err != nil {
		c.log.Error("save failed", zap.String("id", item.ID), zap.Error(err))
		return fmt.Errorf("failed to save %s: %w", item.ID, err)
	}
	return nil
}

func (c *Collection) destroy(id string) error {
	i := c.index(id)
	if i < 0 {
		return NotFound(id)
	}
	if err := c.store.Destroy(id); err != nil {
		c.log.Error("destroy failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to destroy %s: %w", id, err)
	}
	c.lastOrder = max(c.lastOrder, c.items[i].Order)
	c.items = slices.Delete(c.items, i, i+1)
	c.log.Debug("destroyed", zap.String("id", id))
	return nil
}

func (c *Collection) changed() {
	if c.onChange == nil {
		return
	}
	c.onChange(slices.Clone(c.items), c.stats())
}

func sortByOrder(items []model.Item) {
	slices.SortStableFunc(items, func(a, b model.Item) int { return a.Order - b.Order })
}

// NotFound wraps ErrNotFound with the missing id or order and a hint.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s (use 'chew list' to see entries)", ErrNotFound, id)
}
