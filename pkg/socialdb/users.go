package socialdb

import (
	"github.com/mesh-intelligence/socialdb/internal/integrity"
	"github.com/mesh-intelligence/socialdb/internal/subscription"
	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// Users is the users collection. Delete cascades and the subscription
// methods keep follow edges consistent.
type Users struct {
	reader[types.User]
	engine *integrity.Engine
	graph  *subscription.Graph
}

func usersTable(tx types.Tables) types.Table[types.User] { return tx.Users }

// Create validates in and stores a new user with no subscriptions.
func (c *Users) Create(in types.CreateUser) (types.User, error) {
	if err := in.Validate(); err != nil {
		return types.User{}, err
	}
	return writer(c.backend, usersTable, func(t types.Table[types.User]) (types.User, error) {
		return t.Create(in.User())
	})
}

// Change applies patch to user id.
func (c *Users) Change(id string, patch types.UserPatch) (types.User, error) {
	if err := patch.Validate(); err != nil {
		return types.User{}, err
	}
	return writer(c.backend, usersTable, func(t types.Table[types.User]) (types.User, error) {
		return t.Change(id, func(u *types.User) error {
			patch.Apply(u)
			return nil
		})
	})
}

// Delete removes user id with its posts and profile and drops it from every
// follower's subscriptions.
func (c *Users) Delete(id string) (types.User, error) {
	return c.engine.DeleteUserCascade(id)
}

// SubscribeTo makes followerID follow targetID and returns the follower.
func (c *Users) SubscribeTo(followerID, targetID string) (types.User, error) {
	return c.graph.Subscribe(followerID, targetID)
}

// UnsubscribeFrom removes the follow edge from followerID to targetID.
func (c *Users) UnsubscribeFrom(followerID, targetID string) (types.User, error) {
	return c.graph.Unsubscribe(followerID, targetID)
}

// Followers returns the users following id.
func (c *Users) Followers(id string) ([]types.User, error) {
	return c.graph.Followers(id)
}

// Subscriptions returns the users id follows.
func (c *Users) Subscriptions(id string) ([]types.User, error) {
	return c.graph.Subscriptions(id)
}
