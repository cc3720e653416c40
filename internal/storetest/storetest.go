// Package storetest holds behaviour tests shared by every types.Backend
// implementation. Backends call Run from their own test files.
package storetest

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// Opener returns a fresh backend seeded with types.DefaultMemberTypes. The
// opener is responsible for closing it when the test ends.
type Opener func(t *testing.T) types.Backend

// Run executes the shared backend tests against backends produced by open.
func Run(t *testing.T, open Opener) {
	tests := []struct {
		name string
		fn   func(t *testing.T, b types.Backend)
	}{
		{"member types are seeded", testSeededCatalog},
		{"create then find one round trips", testRoundTrip},
		{"find many keeps insertion order", testInsertionOrder},
		{"filters", testFilters},
		{"change merges and keeps id", testChange},
		{"missing ids return ErrNotFound", testNotFound},
		{"failed update rolls back every table", testRollback},
		{"view tables are read only", testReadOnlyView},
		{"closed backend rejects calls", testClosed},
		{"concurrent writers", testConcurrentWriters},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open(t))
		})
	}
}

func update(t *testing.T, b types.Backend, fn func(tx types.Tables) error) {
	t.Helper()
	require.NoError(t, b.Update(fn))
}

func view(t *testing.T, b types.Backend, fn func(tx types.Tables) error) {
	t.Helper()
	require.NoError(t, b.View(fn))
}

func createUser(t *testing.T, b types.Backend, first string) types.User {
	t.Helper()
	var u types.User
	update(t, b, func(tx types.Tables) error {
		var err error
		u, err = tx.Users.Create(types.CreateUser{FirstName: first, LastName: "Tester", Email: first + "@example.com"}.User())
		return err
	})
	return u
}

func ids[T types.Record[T]](recs []T) []string {
	out := []string{}
	for _, r := range recs {
		out = append(out, r.EntityID())
	}
	return out
}

func testSeededCatalog(t *testing.T, b types.Backend) {
	view(t, b, func(tx types.Tables) error {
		all, err := tx.MemberTypes.FindMany()
		require.NoError(t, err)
		assert.Equal(t, types.DefaultMemberTypes(), all)

		basic, found, err := tx.MemberTypes.FindOne(types.FieldID, types.MemberTypeBasic)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 20, basic.MonthPostsLimit)

		_, found, err = tx.MemberTypes.FindOne(types.FieldID, "platinum")
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	})
}

func testRoundTrip(t *testing.T, b types.Backend) {
	u := createUser(t, b, "ada")
	assert.True(t, types.IsID(u.ID), "generated id %q is not a uuid", u.ID)

	var profile types.Profile
	var post types.Post
	update(t, b, func(tx types.Tables) error {
		var err error
		profile, err = tx.Profiles.Create(types.CreateProfile{UserID: u.ID, MemberTypeID: types.MemberTypeBasic, IsMale: true, Age: 36}.Profile())
		if err != nil {
			return err
		}
		post, err = tx.Posts.Create(types.CreatePost{UserID: u.ID, Title: "Notes", Content: "On the engine"}.Post())
		return err
	})

	view(t, b, func(tx types.Tables) error {
		gotUser, found, err := tx.Users.FindOne(types.FieldID, u.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, u, gotUser)

		gotProfile, found, err := tx.Profiles.FindOne(types.FieldID, profile.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, profile, gotProfile)

		gotPost, found, err := tx.Posts.FindOne(types.FieldID, post.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, post, gotPost)
		return nil
	})
}

func testInsertionOrder(t *testing.T, b types.Backend) {
	a := createUser(t, b, "a")
	bb := createUser(t, b, "b")
	c := createUser(t, b, "c")

	update(t, b, func(tx types.Tables) error {
		if _, err := tx.Users.Change(a.ID, func(u *types.User) error {
			u.Email = "changed@example.com"
			return nil
		}); err != nil {
			return err
		}
		_, err := tx.Users.Delete(bb.ID)
		return err
	})
	d := createUser(t, b, "d")

	view(t, b, func(tx types.Tables) error {
		all, err := tx.Users.FindMany()
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID, c.ID, d.ID}, ids(all))
		return nil
	})
}

func testFilters(t *testing.T, b types.Backend) {
	a := createUser(t, b, "a")
	target := createUser(t, b, "target")
	c := createUser(t, b, "c")

	update(t, b, func(tx types.Tables) error {
		for _, id := range []string{a.ID, c.ID} {
			if _, err := tx.Users.Change(id, func(u *types.User) error { return u.SubscribeTo(target.ID) }); err != nil {
				return err
			}
		}
		if _, err := tx.Profiles.Create(types.Profile{UserID: a.ID, MemberTypeID: types.MemberTypeBasic, IsMale: true, Age: 30}); err != nil {
			return err
		}
		_, err := tx.Profiles.Create(types.Profile{UserID: c.ID, MemberTypeID: types.MemberTypeBusiness, Age: 40})
		return err
	})

	view(t, b, func(tx types.Tables) error {
		followers, err := tx.Users.FindMany(types.In(types.FieldSubscribedToUserIDs, target.ID))
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID, c.ID}, ids(followers))

		both, err := tx.Users.FindMany(types.In(types.FieldSubscribedToUserIDs, target.ID), types.Eq(types.FieldFirstName, "c"))
		require.NoError(t, err)
		assert.Equal(t, []string{c.ID}, ids(both))

		none, err := tx.Users.FindMany(types.In(types.FieldSubscribedToUserIDs, a.ID))
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)

		unknown, err := tx.Users.FindMany(types.Eq("nickname", "a"))
		require.NoError(t, err)
		assert.Empty(t, unknown)

		seqEq, err := tx.Users.FindMany(types.Eq(types.FieldSubscribedToUserIDs, target.ID))
		require.NoError(t, err)
		assert.Empty(t, seqEq)

		scalarIn, err := tx.Users.FindMany(types.In(types.FieldFirstName, "a"))
		require.NoError(t, err)
		assert.Empty(t, scalarIn)

		males, err := tx.Profiles.FindMany(types.Eq(types.FieldIsMale, true))
		require.NoError(t, err)
		require.Len(t, males, 1)
		assert.Equal(t, a.ID, males[0].UserID)

		forty, err := tx.Profiles.FindMany(types.Eq(types.FieldAge, 40))
		require.NoError(t, err)
		require.Len(t, forty, 1)

		mismatched, err := tx.Profiles.FindMany(types.Eq(types.FieldAge, "40"))
		require.NoError(t, err)
		assert.Empty(t, mismatched)

		p, found, err := tx.Profiles.FindOne(types.FieldUserID, c.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, types.MemberTypeBusiness, p.MemberTypeID)

		_, err = tx.Users.FindMany(types.Filter{Op: types.OpEquals})
		assert.ErrorIs(t, err, types.ErrInvalidFilter)
		return nil
	})
}

func testChange(t *testing.T, b types.Backend) {
	u := createUser(t, b, "grace")
	var changed types.User
	update(t, b, func(tx types.Tables) error {
		var err error
		changed, err = tx.Users.Change(u.ID, func(rec *types.User) error {
			last := "Hopper"
			types.UserPatch{LastName: &last}.Apply(rec)
			rec.ID = "ignored"
			return nil
		})
		return err
	})
	assert.Equal(t, u.ID, changed.ID)
	assert.Equal(t, "Hopper", changed.LastName)
	assert.Equal(t, u.FirstName, changed.FirstName)

	view(t, b, func(tx types.Tables) error {
		got, found, err := tx.Users.FindOne(types.FieldID, u.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, changed, got)
		return nil
	})
}

func testNotFound(t *testing.T, b types.Backend) {
	const missing = "00000000-0000-7000-8000-000000000000"
	err := b.Update(func(tx types.Tables) error {
		_, err := tx.Posts.Change(missing, func(*types.Post) error { return nil })
		return err
	})
	assert.ErrorIs(t, err, types.ErrNotFound)

	err = b.Update(func(tx types.Tables) error {
		_, err := tx.Profiles.Delete(missing)
		return err
	})
	assert.ErrorIs(t, err, types.ErrNotFound)

	view(t, b, func(tx types.Tables) error {
		_, found, err := tx.Users.FindOne(types.FieldID, missing)
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	})
}

func testRollback(t *testing.T, b types.Backend) {
	u := createUser(t, b, "keep")
	boom := errors.New("boom")

	err := b.Update(func(tx types.Tables) error {
		if _, err := tx.Posts.Create(types.Post{UserID: u.ID, Title: "t", Content: "c"}); err != nil {
			return err
		}
		if _, err := tx.Users.Change(u.ID, func(rec *types.User) error {
			rec.FirstName = "mutated"
			return nil
		}); err != nil {
			return err
		}
		if _, err := tx.Users.Delete(u.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	view(t, b, func(tx types.Tables) error {
		users, err := tx.Users.FindMany()
		require.NoError(t, err)
		assert.Equal(t, []types.User{u}, users)

		posts, err := tx.Posts.FindMany()
		require.NoError(t, err)
		assert.Empty(t, posts)
		return nil
	})
}

func testReadOnlyView(t *testing.T, b types.Backend) {
	u := createUser(t, b, "ro")
	err := b.View(func(tx types.Tables) error {
		_, err := tx.Users.Delete(u.ID)
		return err
	})
	assert.ErrorIs(t, err, types.ErrReadOnly)

	view(t, b, func(tx types.Tables) error {
		_, found, err := tx.Users.FindOne(types.FieldID, u.ID)
		require.NoError(t, err)
		assert.True(t, found)
		return nil
	})
}

func testClosed(t *testing.T, b types.Backend) {
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.View(func(types.Tables) error { return nil }), types.ErrBackendClosed)
	assert.ErrorIs(t, b.Update(func(types.Tables) error { return nil }), types.ErrBackendClosed)
}

func testConcurrentWriters(t *testing.T, b types.Backend) {
	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- b.Update(func(tx types.Tables) error {
				_, err := tx.Posts.Create(types.Post{Title: "p", Content: "c"})
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	view(t, b, func(tx types.Tables) error {
		posts, err := tx.Posts.FindMany()
		require.NoError(t, err)
		assert.Len(t, posts, writers)
		return nil
	})
}
