package types

import "errors"

// Config holds backend selection and the member type seed catalog.
type Config struct {
	Backend     string       `json:"backend" yaml:"backend"`
	MemberTypes []MemberType `json:"member_types,omitempty" yaml:"member_types,omitempty"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty        = errors.New("backend must not be empty")
	ErrBackendUnknown      = errors.New("unknown backend")
	ErrMemberTypeIDEmpty   = errors.New("member type id must not be empty")
	ErrMemberTypeDuplicate = errors.New("duplicate member type id")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return ValidateCatalog(c.MemberTypes)
}

// Catalog returns the configured member types, or the built-in catalog when
// none are configured.
func (c Config) Catalog() []MemberType {
	if len(c.MemberTypes) == 0 {
		return DefaultMemberTypes()
	}
	out := make([]MemberType, len(c.MemberTypes))
	copy(out, c.MemberTypes)
	return out
}
