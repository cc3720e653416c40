package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// kind is the Go type a column maps to; filters compare only values of the
// column's kind.
type kind int

const (
	kindString kind = iota
	kindInt
	kindFloat
	kindBool
	kindList
)

// column maps an entity field key to its SQL column.
type column struct {
	key  string
	name string
	kind kind
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// codec describes how one entity type is stored. columns[0] is always the id.
type codec[T types.Record[T]] struct {
	table   string
	columns []column
	values  func(T) ([]any, error)
	scan    func(scanner) (T, error)
}

func (c *codec[T]) column(key string) (column, bool) {
	for _, col := range c.columns {
		if col.key == key {
			return col, true
		}
	}
	return column{}, false
}

var userCodec = &codec[types.User]{
	table: "users",
	columns: []column{
		{types.FieldID, "id", kindString},
		{types.FieldFirstName, "first_name", kindString},
		{types.FieldLastName, "last_name", kindString},
		{types.FieldEmail, "email", kindString},
		{types.FieldSubscribedToUserIDs, "subscribed_to_user_ids", kindList},
	},
	values: func(u types.User) ([]any, error) {
		subs, err := json.Marshal(u.Clone().SubscribedToUserIDs)
		if err != nil {
			return nil, fmt.Errorf("encoding subscriptions: %w", err)
		}
		return []any{u.ID, u.FirstName, u.LastName, u.Email, string(subs)}, nil
	},
	scan: func(s scanner) (types.User, error) {
		var u types.User
		var subs string
		if err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &subs); err != nil {
			return types.User{}, err
		}
		if err := json.Unmarshal([]byte(subs), &u.SubscribedToUserIDs); err != nil {
			return types.User{}, fmt.Errorf("decoding subscriptions of %s: %w", u.ID, err)
		}
		return u.Clone(), nil
	},
}

var profileCodec = &codec[types.Profile]{
	table: "profiles",
	columns: []column{
		{types.FieldID, "id", kindString},
		{types.FieldUserID, "user_id", kindString},
		{types.FieldMemberTypeID, "member_type_id", kindString},
		{types.FieldIsMale, "is_male", kindBool},
		{types.FieldAge, "age", kindInt},
	},
	values: func(p types.Profile) ([]any, error) {
		return []any{p.ID, p.UserID, p.MemberTypeID, boolToInt(p.IsMale), p.Age}, nil
	},
	scan: func(s scanner) (types.Profile, error) {
		var p types.Profile
		var isMale int
		if err := s.Scan(&p.ID, &p.UserID, &p.MemberTypeID, &isMale, &p.Age); err != nil {
			return types.Profile{}, err
		}
		p.IsMale = isMale != 0
		return p, nil
	},
}

var postCodec = &codec[types.Post]{
	table: "posts",
	columns: []column{
		{types.FieldID, "id", kindString},
		{types.FieldUserID, "user_id", kindString},
		{types.FieldTitle, "title", kindString},
		{types.FieldContent, "content", kindString},
	},
	values: func(p types.Post) ([]any, error) {
		return []any{p.ID, p.UserID, p.Title, p.Content}, nil
	},
	scan: func(s scanner) (types.Post, error) {
		var p types.Post
		if err := s.Scan(&p.ID, &p.UserID, &p.Title, &p.Content); err != nil {
			return types.Post{}, err
		}
		return p, nil
	},
}

var memberTypeCodec = &codec[types.MemberType]{
	table: "member_types",
	columns: []column{
		{types.FieldID, "id", kindString},
		{types.FieldDiscount, "discount", kindFloat},
		{types.FieldMonthPostsLimit, "month_posts_limit", kindInt},
	},
	values: func(m types.MemberType) ([]any, error) {
		return []any{m.ID, m.Discount, m.MonthPostsLimit}, nil
	},
	scan: func(s scanner) (types.MemberType, error) {
		var m types.MemberType
		if err := s.Scan(&m.ID, &m.Discount, &m.MonthPostsLimit); err != nil {
			return types.MemberType{}, err
		}
		return m, nil
	},
}

// sqlValue converts a filter value to a driver argument when its Go type
// matches the column kind. The second result is false on a mismatch, in
// which case the filter matches nothing.
func sqlValue(k kind, v any) (any, bool) {
	switch k {
	case kindString:
		s, ok := v.(string)
		return s, ok
	case kindInt:
		n, ok := v.(int)
		return n, ok
	case kindFloat:
		f, ok := v.(float64)
		return f, ok
	case kindBool:
		b, ok := v.(bool)
		return boolToInt(b), ok
	default:
		return nil, false
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
