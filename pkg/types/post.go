package types

// Post is a message authored by a user. The owning UserID is not checked
// against the Users table when the post is created.
type Post struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

var _ Record[Post] = Post{}

func (p Post) EntityID() string { return p.ID }

func (p Post) WithID(id string) Post {
	p.ID = id
	return p
}

func (p Post) Clone() Post { return p }

func (p Post) Field(key string) (any, bool) {
	switch key {
	case FieldID:
		return p.ID, true
	case FieldUserID:
		return p.UserID, true
	case FieldTitle:
		return p.Title, true
	case FieldContent:
		return p.Content, true
	default:
		return nil, false
	}
}

// CreatePost is the writable field set of a new Post.
type CreatePost struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (in CreatePost) Validate() error {
	return firstErr(
		checkUUID(FieldUserID, in.UserID),
		checkRequired(FieldTitle, in.Title),
		checkRequired(FieldContent, in.Content),
	)
}

// Post builds the record to insert.
func (in CreatePost) Post() Post {
	return Post{UserID: in.UserID, Title: in.Title, Content: in.Content}
}

// PostPatch is a partial update of a Post.
type PostPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

func (p PostPatch) Validate() error {
	return firstErr(
		checkOptional(FieldTitle, p.Title),
		checkOptional(FieldContent, p.Content),
	)
}

// Apply merges the patch into post.
func (p PostPatch) Apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
}
