package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	u := User{ID: idA, FirstName: "Ada", SubscribedToUserIDs: []string{idB}}
	p := Profile{ID: idC, UserID: idA, IsMale: false, Age: 36}

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"equals on id", Matches(u, Eq(FieldID, idA)), true},
		{"equals mismatch", Matches(u, Eq(FieldFirstName, "Grace")), false},
		{"unknown key never matches", Matches(u, Eq("nickname", "Ada")), false},
		{"inArray hit", Matches(u, In(FieldSubscribedToUserIDs, idB)), true},
		{"inArray miss", Matches(u, In(FieldSubscribedToUserIDs, idC)), false},
		{"equals on sequence field never matches", Matches(u, Eq(FieldSubscribedToUserIDs, idB)), false},
		{"inArray on scalar field never matches", Matches(u, In(FieldFirstName, "Ada")), false},
		{"equals on int field", Matches(p, Eq(FieldAge, 36)), true},
		{"equals on bool field", Matches(p, Eq(FieldIsMale, false)), true},
		{"equals with mismatched type", Matches(p, Eq(FieldAge, "36")), false},
		{"equals with slice value", Matches(p, Eq(FieldUserID, []string{idA})), false},
		{"all filters must match", MatchesAll(p, []Filter{Eq(FieldUserID, idA), Eq(FieldAge, 1)}), false},
		{"no filters match everything", MatchesAll(p, nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, Eq(FieldID, idA).Validate())
	assert.NoError(t, In(FieldSubscribedToUserIDs, idA).Validate())
	assert.ErrorIs(t, Filter{Op: OpEquals}.Validate(), ErrInvalidFilter)
	assert.ErrorIs(t, Filter{Key: FieldID, Op: FilterOp(9)}.Validate(), ErrInvalidFilter)
}
