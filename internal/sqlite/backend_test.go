package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/socialdb/internal/storetest"
	"github.com/mesh-intelligence/socialdb/pkg/types"
)

func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(types.DefaultMemberTypes())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBackendBehaviour(t *testing.T) {
	storetest.Run(t, func(t *testing.T) types.Backend { return setupBackend(t) })
}

func TestOpenRejectsBadCatalog(t *testing.T) {
	_, err := Open([]types.MemberType{{ID: ""}})
	assert.ErrorIs(t, err, types.ErrMemberTypeIDEmpty)
}

func TestOpenSeedsCustomCatalog(t *testing.T) {
	catalog := []types.MemberType{
		{ID: "gold", Discount: 12.5, MonthPostsLimit: 1000},
		{ID: "free", Discount: 0, MonthPostsLimit: 5},
	}
	b, err := Open(catalog)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	require.NoError(t, b.View(func(tx types.Tables) error {
		got, err := tx.MemberTypes.FindMany()
		require.NoError(t, err)
		assert.Equal(t, catalog, got)

		byDiscount, err := tx.MemberTypes.FindMany(types.Eq(types.FieldDiscount, 12.5))
		require.NoError(t, err)
		require.Len(t, byDiscount, 1)
		assert.Equal(t, "gold", byDiscount[0].ID)
		return nil
	}))
}

func TestSubscriptionsSurviveEncoding(t *testing.T) {
	b := setupBackend(t)
	var a, c types.User
	require.NoError(t, b.Update(func(tx types.Tables) error {
		var err error
		if a, err = tx.Users.Create(types.User{FirstName: "a"}); err != nil {
			return err
		}
		if c, err = tx.Users.Create(types.User{FirstName: "c"}); err != nil {
			return err
		}
		_, err = tx.Users.Change(a.ID, func(u *types.User) error { return u.SubscribeTo(c.ID) })
		return err
	}))

	require.NoError(t, b.View(func(tx types.Tables) error {
		got, found, err := tx.Users.FindOne(types.FieldID, a.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []string{c.ID}, got.SubscribedToUserIDs)

		other, _, err := tx.Users.FindOne(types.FieldID, c.ID)
		require.NoError(t, err)
		assert.NotNil(t, other.SubscribedToUserIDs)
		assert.Empty(t, other.SubscribedToUserIDs)
		return nil
	}))
}
