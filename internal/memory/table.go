package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

var _ types.Table[types.User] = (*Table[types.User])(nil)

// Table is an in-memory collection of records of one entity type.
// Every exported method runs under the table's lock; tables created by a
// Backend share the backend's lock.
type Table[T types.Record[T]] struct {
	name  string
	mu    *sync.RWMutex
	rows  map[string]T
	order []string
	newID func() string
	log   *journal
}

// TableOption configures a Table.
type TableOption func(*tableOptions)

type tableOptions struct {
	newID func() string
}

// WithIDGenerator replaces the UUID v7 generator used by Create.
func WithIDGenerator(fn func() string) TableOption {
	return func(o *tableOptions) { o.newID = fn }
}

// NewTable creates an empty standalone table guarded by its own lock.
func NewTable[T types.Record[T]](name string, opts ...TableOption) *Table[T] {
	return newTable[T](name, &sync.RWMutex{}, opts...)
}

func newTable[T types.Record[T]](name string, mu *sync.RWMutex, opts ...TableOption) *Table[T] {
	o := tableOptions{newID: types.NewID}
	for _, opt := range opts {
		opt(&o)
	}
	return &Table[T]{
		name:  name,
		mu:    mu,
		rows:  make(map[string]T),
		newID: o.newID,
	}
}

// Name returns the table name used in error messages.
func (t *Table[T]) Name() string { return t.name }

// Len returns the number of stored records.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// FindMany returns all records matching every filter, in insertion order.
func (t *Table[T]) FindMany(filters ...types.Filter) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.findMany(filters)
}

// FindOne returns the first record whose field key equals value.
func (t *Table[T]) FindOne(key string, value any) (T, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.findOne(key, value)
}

// Create stores rec under a freshly generated ID.
func (t *Table[T]) Create(rec T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.create(rec)
}

// Change applies fn to a copy of the record and stores the result.
func (t *Table[T]) Change(id string, fn func(*T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.change(id, fn)
}

// Delete removes the record with the given ID and returns it.
func (t *Table[T]) Delete(id string) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delete(id)
}

// The lowercase methods below assume the caller holds t.mu.

func (t *Table[T]) findMany(filters []types.Filter) ([]T, error) {
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	out := []T{}
	for _, id := range t.order {
		rec := t.rows[id]
		if types.MatchesAll(rec, filters) {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

func (t *Table[T]) findOne(key string, value any) (T, bool, error) {
	var zero T
	f := types.Eq(key, value)
	if err := f.Validate(); err != nil {
		return zero, false, err
	}
	if key == types.FieldID {
		id, ok := value.(string)
		if !ok {
			return zero, false, nil
		}
		rec, ok := t.rows[id]
		if !ok {
			return zero, false, nil
		}
		return rec.Clone(), true, nil
	}
	for _, id := range t.order {
		rec := t.rows[id]
		if types.Matches(rec, f) {
			return rec.Clone(), true, nil
		}
	}
	return zero, false, nil
}

func (t *Table[T]) create(rec T) (T, error) {
	var zero T
	id := t.newID()
	if id == "" {
		return zero, fmt.Errorf("%s: generated empty id", t.name)
	}
	if _, exists := t.rows[id]; exists {
		return zero, fmt.Errorf("%s %s: %w", t.name, id, types.ErrConflict)
	}
	stored := rec.WithID(id)
	t.rows[id] = stored
	t.order = append(t.order, id)
	t.log.record(func() { t.remove(id) })
	return stored.Clone(), nil
}

func (t *Table[T]) change(id string, fn func(*T) error) (T, error) {
	var zero T
	current, ok := t.rows[id]
	if !ok {
		return zero, fmt.Errorf("%s %s: %w", t.name, id, types.ErrNotFound)
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		return zero, err
	}
	next = next.WithID(id)
	t.rows[id] = next
	t.log.record(func() { t.rows[id] = current })
	return next.Clone(), nil
}

func (t *Table[T]) delete(id string) (T, error) {
	var zero T
	current, ok := t.rows[id]
	if !ok {
		return zero, fmt.Errorf("%s %s: %w", t.name, id, types.ErrNotFound)
	}
	pos := t.remove(id)
	t.log.record(func() { t.insertAt(pos, id, current) })
	return current.Clone(), nil
}

// seed stores rec under its own ID. Used for catalogs whose IDs are fixed.
func (t *Table[T]) seed(rec T) error {
	id := rec.EntityID()
	if _, exists := t.rows[id]; exists {
		return fmt.Errorf("%s %s: %w", t.name, id, types.ErrConflict)
	}
	t.rows[id] = rec.Clone()
	t.order = append(t.order, id)
	return nil
}

// remove drops id from the map and order slice and returns its position.
func (t *Table[T]) remove(id string) int {
	delete(t.rows, id)
	pos := slices.Index(t.order, id)
	if pos >= 0 {
		t.order = slices.Delete(t.order, pos, pos+1)
	}
	return pos
}

func (t *Table[T]) insertAt(pos int, id string, rec T) {
	t.rows[id] = rec
	if pos < 0 || pos > len(t.order) {
		t.order = append(t.order, id)
		return
	}
	t.order = slices.Insert(t.order, pos, id)
}
