// Package integrity enforces the rules that span more than one table: one
// profile per user, member type references, and the user delete cascade.
//
// Every operation runs its checks and writes inside a single Backend.Update,
// so a failed rule leaves the store unchanged and concurrent readers see
// either the state before or the state after the operation.
package integrity

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// Engine applies cross-table rules over a Backend.
type Engine struct {
	backend types.Backend
	logger  *slog.Logger
}

// New returns an Engine over backend. A nil logger discards output.
func New(backend types.Backend, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{backend: backend, logger: logger}
}

// CreateProfile stores a new profile after checking that its member type
// exists and that the user has no profile yet.
func (e *Engine) CreateProfile(in types.CreateProfile) (types.Profile, error) {
	if err := in.Validate(); err != nil {
		return types.Profile{}, err
	}

	var created types.Profile
	err := e.backend.Update(func(tx types.Tables) error {
		if err := checkMemberType(tx, in.MemberTypeID); err != nil {
			return err
		}
		_, exists, err := tx.Profiles.FindOne(types.FieldUserID, in.UserID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("profile for user %s: %w", in.UserID, types.ErrConflict)
		}
		created, err = tx.Profiles.Create(in.Profile())
		return err
	})
	if err != nil {
		return types.Profile{}, err
	}
	e.logger.Info("profile created", "profile", created.ID, "user", created.UserID, "memberType", created.MemberTypeID)
	return created, nil
}

// ChangeProfile applies patch to profile id. A patch that names a member type
// must name one that exists.
func (e *Engine) ChangeProfile(id string, patch types.ProfilePatch) (types.Profile, error) {
	if err := patch.Validate(); err != nil {
		return types.Profile{}, err
	}

	var changed types.Profile
	err := e.backend.Update(func(tx types.Tables) error {
		if patch.MemberTypeID != nil {
			if err := checkMemberType(tx, *patch.MemberTypeID); err != nil {
				return err
			}
		}
		var err error
		changed, err = tx.Profiles.Change(id, func(p *types.Profile) error {
			patch.Apply(p)
			return nil
		})
		return err
	})
	if err != nil {
		return types.Profile{}, err
	}
	return changed, nil
}

// DeleteUserCascade removes user id together with its posts and profile and
// drops id from every other user's subscriptions. It returns the deleted user.
func (e *Engine) DeleteUserCascade(id string) (types.User, error) {
	var (
		deleted types.User
		res     cascadeResult
	)
	err := e.backend.Update(func(tx types.Tables) error {
		var err error
		deleted, res, err = deleteUser(tx, id)
		return err
	})
	if err != nil {
		return types.User{}, err
	}
	e.logger.Info("user deleted",
		"user", id,
		"posts", res.posts,
		"profile", res.profile,
		"followersPruned", res.followers)
	return deleted, nil
}

type cascadeResult struct {
	posts     int
	profile   bool
	followers int
}

func deleteUser(tx types.Tables, id string) (types.User, cascadeResult, error) {
	var res cascadeResult
	user, found, err := tx.Users.FindOne(types.FieldID, id)
	if err != nil {
		return types.User{}, res, err
	}
	if !found {
		return types.User{}, res, fmt.Errorf("user %s: %w", id, types.ErrNotFound)
	}

	posts, err := tx.Posts.FindMany(types.Eq(types.FieldUserID, id))
	if err != nil {
		return types.User{}, res, err
	}
	for _, p := range posts {
		if _, err := tx.Posts.Delete(p.ID); err != nil {
			return types.User{}, res, fmt.Errorf("deleting post %s of user %s: %w", p.ID, id, err)
		}
	}
	res.posts = len(posts)

	profiles, err := tx.Profiles.FindMany(types.Eq(types.FieldUserID, id))
	if err != nil {
		return types.User{}, res, err
	}
	for _, p := range profiles {
		if _, err := tx.Profiles.Delete(p.ID); err != nil {
			return types.User{}, res, fmt.Errorf("deleting profile %s of user %s: %w", p.ID, id, err)
		}
		res.profile = true
	}

	followers, err := tx.Users.FindMany(types.In(types.FieldSubscribedToUserIDs, id))
	if err != nil {
		return types.User{}, res, err
	}
	for _, f := range followers {
		if f.ID == id {
			continue
		}
		_, err := tx.Users.Change(f.ID, func(u *types.User) error {
			return u.UnsubscribeFrom(id)
		})
		if err != nil {
			return types.User{}, res, fmt.Errorf("pruning subscriptions of user %s: %w", f.ID, err)
		}
		res.followers++
	}

	if _, err := tx.Users.Delete(id); err != nil {
		return types.User{}, res, err
	}
	return user, res, nil
}

func checkMemberType(tx types.Tables, id string) error {
	_, found, err := tx.MemberTypes.FindOne(types.FieldID, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("member type %q: %w", id, types.ErrInvalidReference)
	}
	return nil
}
