package memory

import (
	"fmt"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// view exposes a Table without locking. It is handed to Backend callbacks,
// which already hold the backend lock.
type view[T types.Record[T]] struct {
	t        *Table[T]
	writable bool
}

func (v view[T]) FindMany(filters ...types.Filter) ([]T, error) {
	return v.t.findMany(filters)
}

func (v view[T]) FindOne(key string, value any) (T, bool, error) {
	return v.t.findOne(key, value)
}

func (v view[T]) Create(rec T) (T, error) {
	if err := v.check(); err != nil {
		var zero T
		return zero, err
	}
	return v.t.create(rec)
}

func (v view[T]) Change(id string, fn func(*T) error) (T, error) {
	if err := v.check(); err != nil {
		var zero T
		return zero, err
	}
	return v.t.change(id, fn)
}

func (v view[T]) Delete(id string) (T, error) {
	if err := v.check(); err != nil {
		var zero T
		return zero, err
	}
	return v.t.delete(id)
}

func (v view[T]) check() error {
	if !v.writable {
		return fmt.Errorf("%s: %w", v.t.name, types.ErrReadOnly)
	}
	return nil
}
