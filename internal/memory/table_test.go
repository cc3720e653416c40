package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// sequentialIDs returns a generator producing predictable UUID-shaped IDs.
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("00000000-0000-7000-8000-%012d", n)
	}
}

func newUsers(t *testing.T) *Table[types.User] {
	t.Helper()
	return NewTable[types.User]("users", WithIDGenerator(sequentialIDs()))
}

func mustCreateUser(t *testing.T, tbl *Table[types.User], first string) types.User {
	t.Helper()
	u, err := tbl.Create(types.CreateUser{FirstName: first, LastName: "Test", Email: first + "@example.com"}.User())
	require.NoError(t, err)
	return u
}

func TestTableCreateAndFindOne(t *testing.T) {
	tbl := newUsers(t)

	created := mustCreateUser(t, tbl, "ada")
	require.NotEmpty(t, created.ID)
	assert.Equal(t, []string{}, created.SubscribedToUserIDs)

	got, found, err := tbl.FindOne(types.FieldID, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created, got)

	got, found, err = tbl.FindOne(types.FieldEmail, "ada@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, got.ID)
}

func TestTableCreateIgnoresSuppliedID(t *testing.T) {
	tbl := newUsers(t)
	u, err := tbl.Create(types.User{ID: "caller-chosen", FirstName: "x"})
	require.NoError(t, err)
	assert.NotEqual(t, "caller-chosen", u.ID)
}

func TestTableCreateRejectsDuplicateGeneratedID(t *testing.T) {
	tbl := NewTable[types.Post]("posts", WithIDGenerator(func() string { return "same" }))
	_, err := tbl.Create(types.Post{Title: "a"})
	require.NoError(t, err)

	_, err = tbl.Create(types.Post{Title: "b"})
	assert.ErrorIs(t, err, types.ErrConflict)
	assert.Equal(t, 1, tbl.Len())
}

func TestTableFindOneAbsent(t *testing.T) {
	tbl := newUsers(t)
	_, found, err := tbl.FindOne(types.FieldID, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = tbl.FindOne(types.FieldID, 42)
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = tbl.FindOne("", "x")
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestTableFindManyPreservesInsertionOrder(t *testing.T) {
	tbl := newUsers(t)
	a := mustCreateUser(t, tbl, "a")
	b := mustCreateUser(t, tbl, "b")
	c := mustCreateUser(t, tbl, "c")

	_, err := tbl.Change(a.ID, func(u *types.User) error {
		u.LastName = "Changed"
		return nil
	})
	require.NoError(t, err)
	_, err = tbl.Delete(b.ID)
	require.NoError(t, err)
	d := mustCreateUser(t, tbl, "d")

	all, err := tbl.FindMany()
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, u := range all {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{a.ID, c.ID, d.ID}, ids)
}

func TestTableFindManyFilters(t *testing.T) {
	tbl := newUsers(t)
	a := mustCreateUser(t, tbl, "a")
	b := mustCreateUser(t, tbl, "b")
	c := mustCreateUser(t, tbl, "c")

	for _, follower := range []string{a.ID, c.ID} {
		_, err := tbl.Change(follower, func(u *types.User) error { return u.SubscribeTo(b.ID) })
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		filters []types.Filter
		want    []string
	}{
		{"no filter returns all", nil, []string{a.ID, b.ID, c.ID}},
		{"equality", []types.Filter{types.Eq(types.FieldFirstName, "b")}, []string{b.ID}},
		{"membership", []types.Filter{types.In(types.FieldSubscribedToUserIDs, b.ID)}, []string{a.ID, c.ID}},
		{"combined", []types.Filter{types.In(types.FieldSubscribedToUserIDs, b.ID), types.Eq(types.FieldFirstName, "c")}, []string{c.ID}},
		{"nothing matches", []types.Filter{types.Eq(types.FieldEmail, "nobody")}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tbl.FindMany(tt.filters...)
			require.NoError(t, err)
			require.NotNil(t, got)
			ids := []string{}
			for _, u := range got {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestTableChange(t *testing.T) {
	tbl := newUsers(t)
	a := mustCreateUser(t, tbl, "a")

	t.Run("merges and returns the full record", func(t *testing.T) {
		email := "new@example.com"
		got, err := tbl.Change(a.ID, func(u *types.User) error {
			types.UserPatch{Email: &email}.Apply(u)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", got.Email)
		assert.Equal(t, a.FirstName, got.FirstName)
	})

	t.Run("cannot rewrite the id", func(t *testing.T) {
		got, err := tbl.Change(a.ID, func(u *types.User) error {
			u.ID = "other"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
	})

	t.Run("mutator error leaves record unchanged", func(t *testing.T) {
		before, _, _ := tbl.FindOne(types.FieldID, a.ID)
		_, err := tbl.Change(a.ID, func(u *types.User) error {
			u.FirstName = "partial"
			return types.ErrSelfReference
		})
		assert.ErrorIs(t, err, types.ErrSelfReference)
		after, _, _ := tbl.FindOne(types.FieldID, a.ID)
		assert.Equal(t, before, after)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := tbl.Change("missing", func(*types.User) error { return nil })
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestTableDelete(t *testing.T) {
	tbl := newUsers(t)
	a := mustCreateUser(t, tbl, "a")

	got, err := tbl.Delete(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, found, err := tbl.FindOne(types.FieldID, a.ID)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = tbl.Delete(a.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestTableReturnsCopies(t *testing.T) {
	tbl := newUsers(t)
	a := mustCreateUser(t, tbl, "a")
	b := mustCreateUser(t, tbl, "b")
	_, err := tbl.Change(a.ID, func(u *types.User) error { return u.SubscribeTo(b.ID) })
	require.NoError(t, err)

	got, _, err := tbl.FindOne(types.FieldID, a.ID)
	require.NoError(t, err)
	got.SubscribedToUserIDs[0] = "tampered"

	again, _, err := tbl.FindOne(types.FieldID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, again.SubscribedToUserIDs)
}
