package memory

import (
	"fmt"
	"sync"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

var _ types.Backend = (*Backend)(nil)

// Table names used in error messages.
const (
	usersTable       = "users"
	profilesTable    = "profiles"
	postsTable       = "posts"
	memberTypesTable = "memberTypes"
)

// Backend implements types.Backend with tables held in process memory.
// All tables share mu, so a callback passed to Update observes and mutates
// every table as one atomic step.
type Backend struct {
	mu     sync.RWMutex
	closed bool

	users       *Table[types.User]
	profiles    *Table[types.Profile]
	posts       *Table[types.Post]
	memberTypes *Table[types.MemberType]
}

// NewBackend creates a backend whose MemberTypes table holds catalog.
// Options are applied to the Users, Profiles and Posts tables.
func NewBackend(catalog []types.MemberType, opts ...TableOption) (*Backend, error) {
	if err := types.ValidateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("member type catalog: %w", err)
	}
	b := &Backend{}
	b.users = newTable[types.User](usersTable, &b.mu, opts...)
	b.profiles = newTable[types.Profile](profilesTable, &b.mu, opts...)
	b.posts = newTable[types.Post](postsTable, &b.mu, opts...)
	b.memberTypes = newTable[types.MemberType](memberTypesTable, &b.mu)
	for _, m := range catalog {
		if err := b.memberTypes.seed(m); err != nil {
			return nil, fmt.Errorf("seeding member type %s: %w", m.ID, err)
		}
	}
	return b, nil
}

// View runs fn under the shared lock with read-only tables.
func (b *Backend) View(fn func(types.Tables) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return types.ErrBackendClosed
	}
	return fn(b.tables(false))
}

// Update runs fn under the exclusive lock. Writes made by fn are journaled
// and undone if fn returns an error or panics.
func (b *Backend) Update(fn func(types.Tables) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return types.ErrBackendClosed
	}

	j := &journal{}
	b.setJournal(j)
	committed := false
	defer func() {
		if !committed {
			j.rollback()
		}
		b.setJournal(nil)
	}()

	if err := fn(b.tables(true)); err != nil {
		return err
	}
	committed = true
	return nil
}

// Close marks the backend closed. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *Backend) tables(writable bool) types.Tables {
	return types.Tables{
		Users:       view[types.User]{t: b.users, writable: writable},
		Profiles:    view[types.Profile]{t: b.profiles, writable: writable},
		Posts:       view[types.Post]{t: b.posts, writable: writable},
		MemberTypes: view[types.MemberType]{t: b.memberTypes},
	}
}

func (b *Backend) setJournal(j *journal) {
	b.users.log = j
	b.profiles.log = j
	b.posts.log = j
}
