package types

import "errors"

// Record is implemented by every entity stored in a Table. The type
// parameter is the entity type itself so WithID and Clone return concrete
// values rather than interfaces.
type Record[T any] interface {
	// EntityID returns the store-generated identity of the record.
	EntityID() string

	// WithID returns a copy of the record carrying the given identity.
	WithID(id string) T

	// Clone returns a deep copy; stored records never alias caller memory.
	Clone() T

	// Field returns the value of the field with the given JSON key.
	// The second result is false for unknown keys.
	Field(key string) (any, bool)
}

// ReadTable provides lookups over a single entity collection.
type ReadTable[T any] interface {
	// FindMany returns every record matching all filters, in insertion
	// order. With no filters it returns every record. An empty result is
	// an empty slice, never an error.
	FindMany(filters ...Filter) ([]T, error)

	// FindOne returns the first record whose field key equals value. The
	// boolean reports whether a record was found; absence is not an error.
	FindOne(key string, value any) (T, bool, error)
}

// Table provides uniform CRUD operations for a single entity type.
type Table[T any] interface {
	ReadTable[T]

	// Create assigns a fresh identity to rec, stores it and returns the
	// stored record. Any identity already present on rec is ignored.
	Create(rec T) (T, error)

	// Change applies fn to a copy of the record with the given ID and
	// stores the result. Returns ErrNotFound if no record has that ID.
	// If fn returns an error the record is left unchanged.
	Change(id string, fn func(*T) error) (T, error)

	// Delete removes the record with the given ID and returns it.
	// Returns ErrNotFound if no record has that ID.
	Delete(id string) (T, error)
}

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidFilter = errors.New("invalid filter")
)

// Integrity errors returned by composite operations.
var (
	ErrConflict         = errors.New("conflicting entity")
	ErrInvalidReference = errors.New("invalid reference")
	ErrSelfReference    = errors.New("user cannot reference itself")
	ErrNotSubscribed    = errors.New("user is not subscribed")
	ErrValidation       = errors.New("invalid payload")
)
