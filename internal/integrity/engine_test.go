package integrity

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/socialdb/internal/memory"
	"github.com/mesh-intelligence/socialdb/internal/sqlite"
	"github.com/mesh-intelligence/socialdb/pkg/types"
)

var backends = []struct {
	name string
	open func() (types.Backend, error)
}{
	{"memory", func() (types.Backend, error) { return memory.NewBackend(types.DefaultMemberTypes()) }},
	{"sqlite", func() (types.Backend, error) { return sqlite.Open(types.DefaultMemberTypes()) }},
}

// eachBackend runs fn once per backend implementation.
func eachBackend(t *testing.T, fn func(t *testing.T, b types.Backend)) {
	t.Helper()
	for _, bk := range backends {
		t.Run(bk.name, func(t *testing.T) {
			b, err := bk.open()
			require.NoError(t, err)
			t.Cleanup(func() { b.Close() })
			fn(t, b)
		})
	}
}

func seedUser(t *testing.T, b types.Backend, name string, follows ...string) types.User {
	t.Helper()
	var u types.User
	require.NoError(t, b.Update(func(tx types.Tables) error {
		var err error
		u, err = tx.Users.Create(types.User{FirstName: name, LastName: "L", Email: name + "@example.com", SubscribedToUserIDs: follows})
		return err
	}))
	return u
}

func seedPost(t *testing.T, b types.Backend, userID, title string) types.Post {
	t.Helper()
	var p types.Post
	require.NoError(t, b.Update(func(tx types.Tables) error {
		var err error
		p, err = tx.Posts.Create(types.Post{UserID: userID, Title: title, Content: "body"})
		return err
	}))
	return p
}

func countProfiles(t *testing.T, b types.Backend) int {
	t.Helper()
	var n int
	require.NoError(t, b.View(func(tx types.Tables) error {
		all, err := tx.Profiles.FindMany()
		n = len(all)
		return err
	}))
	return n
}

func TestCreateProfile(t *testing.T) {
	eachBackend(t, func(t *testing.T, b types.Backend) {
		e := New(b, nil)
		u := seedUser(t, b, "u1")

		p, err := e.CreateProfile(types.CreateProfile{UserID: u.ID, MemberTypeID: types.MemberTypeBasic, Age: 30})
		require.NoError(t, err)
		assert.Equal(t, u.ID, p.UserID)
		assert.True(t, types.IsID(p.ID))

		_, err = e.CreateProfile(types.CreateProfile{UserID: u.ID, MemberTypeID: types.MemberTypeBusiness, Age: 31})
		assert.ErrorIs(t, err, types.ErrConflict)
		assert.Equal(t, 1, countProfiles(t, b))
	})
}

func TestCreateProfileRejects(t *testing.T) {
	const userID = "018f4e3a-0000-7000-8000-000000000001"
	tests := []struct {
		name    string
		in      types.CreateProfile
		wantErr error
	}{
		{"unknown member type", types.CreateProfile{UserID: userID, MemberTypeID: "platinum"}, types.ErrInvalidReference},
		{"missing member type", types.CreateProfile{UserID: userID}, types.ErrValidation},
		{"malformed user id", types.CreateProfile{UserID: "nope", MemberTypeID: types.MemberTypeBasic}, types.ErrValidation},
		{"negative age", types.CreateProfile{UserID: userID, MemberTypeID: types.MemberTypeBasic, Age: -1}, types.ErrValidation},
	}
	eachBackend(t, func(t *testing.T, b types.Backend) {
		e := New(b, nil)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := e.CreateProfile(tt.in)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, countProfiles(t, b))
			})
		}
	})
}

func TestChangeProfile(t *testing.T) {
	eachBackend(t, func(t *testing.T, b types.Backend) {
		e := New(b, nil)
		u := seedUser(t, b, "u1")
		p, err := e.CreateProfile(types.CreateProfile{UserID: u.ID, MemberTypeID: types.MemberTypeBasic, Age: 30})
		require.NoError(t, err)

		business := types.MemberTypeBusiness
		age := 31
		changed, err := e.ChangeProfile(p.ID, types.ProfilePatch{MemberTypeID: &business, Age: &age})
		require.NoError(t, err)
		assert.Equal(t, types.MemberTypeBusiness, changed.MemberTypeID)
		assert.Equal(t, 31, changed.Age)
		assert.Equal(t, u.ID, changed.UserID)

		bogus := "platinum"
		_, err = e.ChangeProfile(p.ID, types.ProfilePatch{MemberTypeID: &bogus})
		assert.ErrorIs(t, err, types.ErrInvalidReference)

		_, err = e.ChangeProfile("018f4e3a-0000-7000-8000-0000000000ff", types.ProfilePatch{Age: &age})
		assert.ErrorIs(t, err, types.ErrNotFound)

		require.NoError(t, b.View(func(tx types.Tables) error {
			got, _, err := tx.Profiles.FindOne(types.FieldID, p.ID)
			assert.Equal(t, changed, got)
			return err
		}))
	})
}

func TestDeleteUserCascade(t *testing.T) {
	eachBackend(t, func(t *testing.T, b types.Backend) {
		e := New(b, nil)
		victim := seedUser(t, b, "victim")
		other := seedUser(t, b, "other")
		fan := seedUser(t, b, "fan", victim.ID, other.ID)
		superfan := seedUser(t, b, "superfan", victim.ID)
		require.NoError(t, b.Update(func(tx types.Tables) error {
			_, err := tx.Users.Change(victim.ID, func(u *types.User) error { return u.SubscribeTo(other.ID) })
			return err
		}))

		p1 := seedPost(t, b, victim.ID, "first")
		kept := seedPost(t, b, other.ID, "kept")
		p2 := seedPost(t, b, victim.ID, "second")
		victimProfile, err := e.CreateProfile(types.CreateProfile{UserID: victim.ID, MemberTypeID: types.MemberTypeBasic})
		require.NoError(t, err)
		otherProfile, err := e.CreateProfile(types.CreateProfile{UserID: other.ID, MemberTypeID: types.MemberTypeBusiness})
		require.NoError(t, err)

		deleted, err := e.DeleteUserCascade(victim.ID)
		require.NoError(t, err)
		assert.Equal(t, victim.ID, deleted.ID)
		assert.Equal(t, []string{other.ID}, deleted.SubscribedToUserIDs)

		require.NoError(t, b.View(func(tx types.Tables) error {
			for _, id := range []string{p1.ID, p2.ID} {
				_, found, err := tx.Posts.FindOne(types.FieldID, id)
				require.NoError(t, err)
				assert.False(t, found)
			}
			posts, err := tx.Posts.FindMany()
			require.NoError(t, err)
			assert.Equal(t, []types.Post{kept}, posts)

			profiles, err := tx.Profiles.FindMany()
			require.NoError(t, err)
			assert.Equal(t, []types.Profile{otherProfile}, profiles)
			_, found, err := tx.Profiles.FindOne(types.FieldID, victimProfile.ID)
			require.NoError(t, err)
			assert.False(t, found)

			users, err := tx.Users.FindMany()
			require.NoError(t, err)
			require.Len(t, users, 3)
			assert.Equal(t, other, users[0])
			assert.Equal(t, fan.ID, users[1].ID)
			assert.Equal(t, []string{other.ID}, users[1].SubscribedToUserIDs)
			assert.Equal(t, superfan.ID, users[2].ID)
			assert.Empty(t, users[2].SubscribedToUserIDs)

			followers, err := tx.Users.FindMany(types.In(types.FieldSubscribedToUserIDs, victim.ID))
			require.NoError(t, err)
			assert.Empty(t, followers)
			return nil
		}))
	})
}

func TestDeleteUserCascadeNotFound(t *testing.T) {
	eachBackend(t, func(t *testing.T, b types.Backend) {
		e := New(b, nil)
		u := seedUser(t, b, "u")
		post := seedPost(t, b, "018f4e3a-0000-7000-8000-0000000000aa", "orphan")

		_, err := e.DeleteUserCascade("018f4e3a-0000-7000-8000-0000000000aa")
		assert.ErrorIs(t, err, types.ErrNotFound)

		require.NoError(t, b.View(func(tx types.Tables) error {
			users, err := tx.Users.FindMany()
			require.NoError(t, err)
			assert.Equal(t, []types.User{u}, users)
			_, found, err := tx.Posts.FindOne(types.FieldID, post.ID)
			require.NoError(t, err)
			assert.True(t, found, "a failed cascade must not delete posts")
			return nil
		}))
	})
}

// Readers running alongside a cascade must never observe a user whose posts
// or follower edges are only partly removed.
func TestDeleteUserCascadeIsAtomicForReaders(t *testing.T) {
	const posts = 25
	eachBackend(t, func(t *testing.T, b types.Backend) {
		e := New(b, nil)
		victim := seedUser(t, b, "victim")
		for i := 0; i < 10; i++ {
			seedUser(t, b, "fan", victim.ID)
		}
		for i := 0; i < posts; i++ {
			seedPost(t, b, victim.ID, "p")
		}

		var (
			wg      sync.WaitGroup
			done    atomic.Bool
			partial atomic.Int64
		)
		for r := 0; r < 4; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for !done.Load() {
					_ = b.View(func(tx types.Tables) error {
						_, userPresent, err := tx.Users.FindOne(types.FieldID, victim.ID)
						if err != nil {
							return err
						}
						owned, err := tx.Posts.FindMany(types.Eq(types.FieldUserID, victim.ID))
						if err != nil {
							return err
						}
						fans, err := tx.Users.FindMany(types.In(types.FieldSubscribedToUserIDs, victim.ID))
						if err != nil {
							return err
						}
						before := userPresent && len(owned) == posts && len(fans) == 10
						after := !userPresent && len(owned) == 0 && len(fans) == 0
						if !before && !after {
							partial.Add(1)
						}
						return nil
					})
				}
			}()
		}

		_, err := e.DeleteUserCascade(victim.ID)
		done.Store(true)
		wg.Wait()
		require.NoError(t, err)
		assert.Zero(t, partial.Load(), "readers observed an intermediate cascade state")
	})
}
