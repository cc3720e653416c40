package socialdb

import (
	"fmt"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// reader implements the lookups shared by every collection.
type reader[T types.Record[T]] struct {
	backend types.Backend
	pick    func(types.Tables) types.ReadTable[T]
	name    string
}

func pickUsers(tx types.Tables) types.ReadTable[types.User]       { return tx.Users }
func pickProfiles(tx types.Tables) types.ReadTable[types.Profile] { return tx.Profiles }
func pickPosts(tx types.Tables) types.ReadTable[types.Post]       { return tx.Posts }
func pickMemberTypes(tx types.Tables) types.ReadTable[types.MemberType] {
	return tx.MemberTypes
}

// FindMany returns the records matching every filter in insertion order.
// It never returns nil on success.
func (r reader[T]) FindMany(filters ...types.Filter) ([]T, error) {
	var out []T
	err := r.backend.View(func(tx types.Tables) error {
		var err error
		out, err = r.pick(tx).FindMany(filters...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindOne returns the first record whose field key equals value. The boolean
// is false when nothing matches.
func (r reader[T]) FindOne(key string, value any) (T, bool, error) {
	var (
		out   T
		found bool
	)
	err := r.backend.View(func(tx types.Tables) error {
		var err error
		out, found, err = r.pick(tx).FindOne(key, value)
		return err
	})
	return out, found, err
}

// Get returns the record with the given id or an error wrapping
// types.ErrNotFound.
func (r reader[T]) Get(id string) (T, error) {
	rec, found, err := r.FindOne(types.FieldID, id)
	if err != nil {
		return rec, err
	}
	if !found {
		return rec, fmt.Errorf("%s %s: %w", r.name, id, types.ErrNotFound)
	}
	return rec, nil
}

// writer runs a single-table write in its own Update.
func writer[T types.Record[T]](backend types.Backend, pick func(types.Tables) types.Table[T], fn func(types.Table[T]) (T, error)) (T, error) {
	var out T
	err := backend.Update(func(tx types.Tables) error {
		var err error
		out, err = fn(pick(tx))
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
