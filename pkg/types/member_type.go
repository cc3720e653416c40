package types

import (
	"fmt"
	"strings"
)

// Built-in member type identifiers.
const (
	MemberTypeBasic    = "basic"
	MemberTypeBusiness = "business"
)

// MemberType is a membership plan. Member types are seeded when a backend
// is opened and are never created, changed or deleted afterwards.
type MemberType struct {
	ID              string  `json:"id" yaml:"id" mapstructure:"id"`
	Discount        float64 `json:"discount" yaml:"discount" mapstructure:"discount"`
	MonthPostsLimit int     `json:"monthPostsLimit" yaml:"month_posts_limit" mapstructure:"month_posts_limit"`
}

var _ Record[MemberType] = MemberType{}

func (m MemberType) EntityID() string { return m.ID }

func (m MemberType) WithID(id string) MemberType {
	m.ID = id
	return m
}

func (m MemberType) Clone() MemberType { return m }

func (m MemberType) Field(key string) (any, bool) {
	switch key {
	case FieldID:
		return m.ID, true
	case FieldDiscount:
		return m.Discount, true
	case FieldMonthPostsLimit:
		return m.MonthPostsLimit, true
	default:
		return nil, false
	}
}

// DefaultMemberTypes returns the built-in catalog used when configuration
// does not provide one.
func DefaultMemberTypes() []MemberType {
	return []MemberType{
		{ID: MemberTypeBasic, Discount: 0, MonthPostsLimit: 20},
		{ID: MemberTypeBusiness, Discount: 5, MonthPostsLimit: 100},
	}
}

// ValidateCatalog rejects catalogs with blank or duplicate IDs or negative limits.
func ValidateCatalog(catalog []MemberType) error {
	seen := make(map[string]bool, len(catalog))
	for _, m := range catalog {
		if strings.TrimSpace(m.ID) == "" {
			return ErrMemberTypeIDEmpty
		}
		if seen[m.ID] {
			return fmt.Errorf("%w: %s", ErrMemberTypeDuplicate, m.ID)
		}
		if m.MonthPostsLimit < 0 || m.Discount < 0 {
			return fmt.Errorf("%w: %s has negative limits", ErrValidation, m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}
