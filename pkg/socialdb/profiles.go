package socialdb

import (
	"github.com/mesh-intelligence/socialdb/internal/integrity"
	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// Profiles is the profiles collection. Writes that touch the member type or
// the owning user go through the integrity engine.
type Profiles struct {
	reader[types.Profile]
	engine *integrity.Engine
}

// Create stores a profile for a user that has none, referencing an existing
// member type.
func (c *Profiles) Create(in types.CreateProfile) (types.Profile, error) {
	return c.engine.CreateProfile(in)
}

// Change applies patch to profile id.
func (c *Profiles) Change(id string, patch types.ProfilePatch) (types.Profile, error) {
	return c.engine.ChangeProfile(id, patch)
}

// Delete removes profile id.
func (c *Profiles) Delete(id string) (types.Profile, error) {
	return writer(c.backend, func(tx types.Tables) types.Table[types.Profile] { return tx.Profiles },
		func(t types.Table[types.Profile]) (types.Profile, error) {
			return t.Delete(id)
		})
}
