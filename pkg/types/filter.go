package types

import (
	"fmt"
	"reflect"
	"slices"
)

// FilterOp selects how a Filter compares a field with its value.
type FilterOp int

const (
	// OpEquals matches rows whose scalar field equals the value.
	OpEquals FilterOp = iota
	// OpInArray matches rows whose sequence field contains the value.
	OpInArray
)

func (op FilterOp) String() string {
	switch op {
	case OpEquals:
		return "equals"
	case OpInArray:
		return "inArray"
	default:
		return fmt.Sprintf("FilterOp(%d)", int(op))
	}
}

// Filter is a single lookup condition on a field named by its JSON key.
type Filter struct {
	Key   string
	Op    FilterOp
	Value any
}

// Eq returns an equality filter on a scalar field.
func Eq(key string, value any) Filter {
	return Filter{Key: key, Op: OpEquals, Value: value}
}

// In returns a membership filter testing whether a sequence field contains value.
func In(key string, value any) Filter {
	return Filter{Key: key, Op: OpInArray, Value: value}
}

// Validate rejects filters with an empty key or unknown operator.
func (f Filter) Validate() error {
	if f.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidFilter)
	}
	if f.Op != OpEquals && f.Op != OpInArray {
		return fmt.Errorf("%w: %s", ErrInvalidFilter, f.Op)
	}
	return nil
}

// Matches reports whether rec satisfies the filter. Unknown keys never
// match. An equality filter on a sequence field, or a membership filter on
// a scalar field, never matches.
func Matches[T Record[T]](rec T, f Filter) bool {
	v, ok := rec.Field(f.Key)
	if !ok {
		return false
	}
	switch f.Op {
	case OpEquals:
		return scalarEqual(v, f.Value)
	case OpInArray:
		seq, ok := v.([]string)
		if !ok {
			return false
		}
		s, ok := f.Value.(string)
		if !ok {
			return false
		}
		return slices.Contains(seq, s)
	default:
		return false
	}
}

// MatchesAll reports whether rec satisfies every filter.
func MatchesAll[T Record[T]](rec T, filters []Filter) bool {
	for _, f := range filters {
		if !Matches(rec, f) {
			return false
		}
	}
	return true
}

func scalarEqual(field, want any) bool {
	if field == nil || want == nil {
		return field == want
	}
	ft := reflect.TypeOf(field)
	if ft.Kind() == reflect.Slice || !ft.Comparable() {
		return false
	}
	if wt := reflect.TypeOf(want); !wt.Comparable() {
		return false
	}
	return field == want
}
