// Package subscription maintains the directed follow relation between users.
// Edges live on the follower's record as SubscribedToUserIDs.
package subscription

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// Graph applies subscribe and unsubscribe over the Users table of a Backend.
type Graph struct {
	backend types.Backend
	logger  *slog.Logger
}

// New returns a Graph over backend. A nil logger discards output.
func New(backend types.Backend, logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Graph{backend: backend, logger: logger}
}

// Subscribe makes followerID follow targetID and returns the follower.
// Subscribing to a user already followed returns the follower unchanged.
func (g *Graph) Subscribe(followerID, targetID string) (types.User, error) {
	var (
		follower types.User
		added    bool
	)
	err := g.backend.Update(func(tx types.Tables) error {
		current, err := loadPair(tx, followerID, targetID)
		if err != nil {
			return err
		}
		if current.IsSubscribedTo(targetID) {
			follower = current
			return nil
		}
		follower, err = tx.Users.Change(followerID, func(u *types.User) error {
			return u.SubscribeTo(targetID)
		})
		added = err == nil
		return err
	})
	if err != nil {
		return types.User{}, wrap("subscribe", followerID, targetID, err)
	}
	if added {
		g.logger.Info("subscribed", "follower", followerID, "target", targetID)
	}
	return follower, nil
}

// Unsubscribe removes the edge from followerID to targetID and returns the
// follower. It fails with ErrNotSubscribed when no such edge exists.
func (g *Graph) Unsubscribe(followerID, targetID string) (types.User, error) {
	var follower types.User
	err := g.backend.Update(func(tx types.Tables) error {
		if _, err := loadPair(tx, followerID, targetID); err != nil {
			return err
		}
		var err error
		follower, err = tx.Users.Change(followerID, func(u *types.User) error {
			return u.UnsubscribeFrom(targetID)
		})
		return err
	})
	if err != nil {
		return types.User{}, wrap("unsubscribe", followerID, targetID, err)
	}
	g.logger.Info("unsubscribed", "follower", followerID, "target", targetID)
	return follower, nil
}

// Followers returns the users that follow id, in insertion order.
func (g *Graph) Followers(id string) ([]types.User, error) {
	var followers []types.User
	err := g.backend.View(func(tx types.Tables) error {
		if _, err := load(tx, id); err != nil {
			return err
		}
		var err error
		followers, err = tx.Users.FindMany(types.In(types.FieldSubscribedToUserIDs, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return followers, nil
}

// Subscriptions returns the users id follows, in the order they were
// followed.
func (g *Graph) Subscriptions(id string) ([]types.User, error) {
	out := []types.User{}
	err := g.backend.View(func(tx types.Tables) error {
		u, err := load(tx, id)
		if err != nil {
			return err
		}
		for _, target := range u.SubscribedToUserIDs {
			followed, found, err := tx.Users.FindOne(types.FieldID, target)
			if err != nil {
				return err
			}
			if found {
				out = append(out, followed)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// loadPair checks both ends of an edge exist and are distinct, and returns
// the follower.
func loadPair(tx types.Tables, followerID, targetID string) (types.User, error) {
	follower, err := load(tx, followerID)
	if err != nil {
		return types.User{}, err
	}
	if _, err := load(tx, targetID); err != nil {
		return types.User{}, err
	}
	if followerID == targetID {
		return types.User{}, types.ErrSelfReference
	}
	return follower, nil
}

func load(tx types.Tables, id string) (types.User, error) {
	u, found, err := tx.Users.FindOne(types.FieldID, id)
	if err != nil {
		return types.User{}, err
	}
	if !found {
		return types.User{}, fmt.Errorf("user %s: %w", id, types.ErrNotFound)
	}
	return u, nil
}

func wrap(op, followerID, targetID string, err error) error {
	if errors.Is(err, types.ErrSelfReference) || errors.Is(err, types.ErrNotSubscribed) {
		return fmt.Errorf("%s %s -> %s: %w", op, followerID, targetID, err)
	}
	return err
}
