package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

var _ types.Backend = (*Backend)(nil)

// defaultDSN keeps the database in memory; it disappears when the single
// connection closes.
const defaultDSN = ":memory:"

// Backend implements types.Backend on a SQLite database. Every View and
// Update runs in its own transaction on the backend's only connection, and mu
// keeps writers exclusive of readers.
type Backend struct {
	mu     sync.RWMutex
	closed bool
	db     *sql.DB
	newID  func() string
}

// Option configures a Backend.
type Option func(*options)

type options struct {
	dsn   string
	newID func() string
}

// WithDSN overrides the data source name passed to the driver.
func WithDSN(dsn string) Option {
	return func(o *options) { o.dsn = dsn }
}

// WithIDGenerator replaces the UUID v7 generator used by Create.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// Open creates the schema on a fresh database and seeds catalog into the
// member_types table.
func Open(catalog []types.MemberType, opts ...Option) (*Backend, error) {
	o := options{dsn: defaultDSN, newID: types.NewID}
	for _, opt := range opts {
		opt(&o)
	}
	if err := types.ValidateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("member type catalog: %w", err)
	}

	db, err := sql.Open("sqlite", o.dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// An in-memory database exists per connection, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := seedMemberTypes(db, catalog); err != nil {
		db.Close()
		return nil, err
	}

	return &Backend{db: db, newID: o.newID}, nil
}

func applySchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// seedMemberTypes inserts the catalog in one transaction.
func seedMemberTypes(db *sql.DB, catalog []types.MemberType) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	mt := table[types.MemberType]{tx: tx, codec: memberTypeCodec}
	for _, m := range catalog {
		if err := mt.insert(m); err != nil {
			return fmt.Errorf("seeding member type %s: %w", m.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}
	return nil
}

// View runs fn in a transaction that is always rolled back.
func (b *Backend) View(fn func(types.Tables) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return types.ErrBackendClosed
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning read transaction: %w", err)
	}
	defer tx.Rollback()

	return fn(b.tables(tx, false))
}

// Update runs fn in a transaction, committing only if fn returns nil.
func (b *Backend) Update(fn func(types.Tables) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return types.ErrBackendClosed
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(b.tables(tx, true)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close closes the database, discarding its contents. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

func (b *Backend) tables(tx *sql.Tx, writable bool) types.Tables {
	return types.Tables{
		Users:       table[types.User]{tx: tx, codec: userCodec, newID: b.newID, writable: writable},
		Profiles:    table[types.Profile]{tx: tx, codec: profileCodec, newID: b.newID, writable: writable},
		Posts:       table[types.Post]{tx: tx, codec: postCodec, newID: b.newID, writable: writable},
		MemberTypes: table[types.MemberType]{tx: tx, codec: memberTypeCodec},
	}
}
