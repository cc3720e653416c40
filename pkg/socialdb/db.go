// Package socialdb is the public entry point to the entity store. It opens a
// storage backend from a types.Config and exposes one collection per entity
// kind, routing relationship-sensitive operations through the integrity
// engine and the subscription graph.
//
// Example:
//
//	db, err := socialdb.Open(types.Config{Backend: types.BackendMemory})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	u, err := db.Users().Create(types.CreateUser{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
package socialdb

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mesh-intelligence/socialdb/internal/integrity"
	"github.com/mesh-intelligence/socialdb/internal/memory"
	"github.com/mesh-intelligence/socialdb/internal/sqlite"
	"github.com/mesh-intelligence/socialdb/internal/subscription"
	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// DB owns a backend and the collections built over it.
type DB struct {
	backend types.Backend
	logger  *slog.Logger

	users       *Users
	profiles    *Profiles
	posts       *Posts
	memberTypes *MemberTypes
}

// Option configures Open.
type Option func(*options)

type options struct {
	logger *slog.Logger
	newID  func() string
}

// WithLogger sets the logger used for cascades and subscription changes.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIDGenerator replaces the UUID v7 generator used for new records.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// Open validates cfg, opens the backend it names and seeds the member type
// catalog.
func Open(cfg types.Config, opts ...Option) (*DB, error) {
	o := options{newID: types.NewID}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		backend types.Backend
		err     error
	)
	switch cfg.Backend {
	case types.BackendMemory:
		backend, err = memory.NewBackend(cfg.Catalog(), memory.WithIDGenerator(o.newID))
	case types.BackendSQLite:
		backend, err = sqlite.Open(cfg.Catalog(), sqlite.WithIDGenerator(o.newID))
	default:
		err = fmt.Errorf("%w: %s", types.ErrBackendUnknown, cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
	}
	o.logger.Debug("backend opened", "backend", cfg.Backend, "memberTypes", len(cfg.Catalog()))
	return newDB(backend, o.logger), nil
}

// New wraps an already opened backend. The DB takes ownership of it.
func New(backend types.Backend, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return newDB(backend, logger)
}

func newDB(backend types.Backend, logger *slog.Logger) *DB {
	engine := integrity.New(backend, logger)
	graph := subscription.New(backend, logger)
	return &DB{
		backend: backend,
		logger:  logger,
		users: &Users{
			reader: reader[types.User]{backend: backend, pick: pickUsers, name: "user"},
			engine: engine,
			graph:  graph,
		},
		profiles: &Profiles{
			reader: reader[types.Profile]{backend: backend, pick: pickProfiles, name: "profile"},
			engine: engine,
		},
		posts: &Posts{
			reader: reader[types.Post]{backend: backend, pick: pickPosts, name: "post"},
		},
		memberTypes: &MemberTypes{
			reader: reader[types.MemberType]{backend: backend, pick: pickMemberTypes, name: "member type"},
		},
	}
}

// Users returns the users collection.
func (db *DB) Users() *Users { return db.users }

// Profiles returns the profiles collection.
func (db *DB) Profiles() *Profiles { return db.profiles }

// Posts returns the posts collection.
func (db *DB) Posts() *Posts { return db.posts }

// MemberTypes returns the read-only member type catalog.
func (db *DB) MemberTypes() *MemberTypes { return db.memberTypes }

// Close releases the backend. Later calls on any collection return
// types.ErrBackendClosed.
func (db *DB) Close() error {
	return db.backend.Close()
}
