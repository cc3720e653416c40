package socialdb

import "github.com/mesh-intelligence/socialdb/pkg/types"

// Posts is the posts collection.
type Posts struct {
	reader[types.Post]
}

func postsTable(tx types.Tables) types.Table[types.Post] { return tx.Posts }

// Create stores a new post. The owning user is not checked for existence.
func (c *Posts) Create(in types.CreatePost) (types.Post, error) {
	if err := in.Validate(); err != nil {
		return types.Post{}, err
	}
	return writer(c.backend, postsTable, func(t types.Table[types.Post]) (types.Post, error) {
		return t.Create(in.Post())
	})
}

// Change applies patch to post id.
func (c *Posts) Change(id string, patch types.PostPatch) (types.Post, error) {
	if err := patch.Validate(); err != nil {
		return types.Post{}, err
	}
	return writer(c.backend, postsTable, func(t types.Table[types.Post]) (types.Post, error) {
		return t.Change(id, func(p *types.Post) error {
			patch.Apply(p)
			return nil
		})
	})
}

// Delete removes post id.
func (c *Posts) Delete(id string) (types.Post, error) {
	return writer(c.backend, postsTable, func(t types.Table[types.Post]) (types.Post, error) {
		return t.Delete(id)
	})
}

// MemberTypes is the read-only member type catalog.
type MemberTypes struct {
	reader[types.MemberType]
}
