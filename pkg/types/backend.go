package types

import "errors"

// Tables bundles the collections visible inside a Backend critical section.
// The tables are only valid for the duration of the callback they were
// passed to.
type Tables struct {
	Users       Table[User]
	Profiles    Table[Profile]
	Posts       Table[Post]
	MemberTypes ReadTable[MemberType]
}

// Backend owns the store state and serialises access to it.
type Backend interface {
	// View runs fn with shared access. Writes attempted through the tables
	// handed to fn fail with ErrReadOnly.
	View(fn func(Tables) error) error

	// Update runs fn with exclusive access. If fn returns an error every
	// write it made is rolled back and the error is returned unchanged.
	Update(fn func(Tables) error) error

	// Close releases backend resources. Idempotent: multiple calls succeed.
	// After Close, View and Update return ErrBackendClosed.
	Close() error
}

// Backend lifecycle errors.
var (
	ErrBackendClosed = errors.New("backend is closed")
	ErrReadOnly      = errors.New("write attempted in a read-only view")
)
