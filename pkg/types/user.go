package types

import "slices"

// Field keys shared by the entity types, matching their JSON names.
const (
	FieldID                  = "id"
	FieldUserID              = "userId"
	FieldFirstName           = "firstName"
	FieldLastName            = "lastName"
	FieldEmail               = "email"
	FieldSubscribedToUserIDs = "subscribedToUserIds"
	FieldMemberTypeID        = "memberTypeId"
	FieldIsMale              = "isMale"
	FieldAge                 = "age"
	FieldTitle               = "title"
	FieldContent             = "content"
	FieldDiscount            = "discount"
	FieldMonthPostsLimit     = "monthPostsLimit"
)

// User is a member of the social graph. SubscribedToUserIDs lists, in
// subscription order, the users this user follows. It never contains the
// user's own ID and never contains duplicates.
type User struct {
	ID                  string   `json:"id"`
	FirstName           string   `json:"firstName"`
	LastName            string   `json:"lastName"`
	Email               string   `json:"email"`
	SubscribedToUserIDs []string `json:"subscribedToUserIds"`
}

var _ Record[User] = User{}

func (u User) EntityID() string { return u.ID }

func (u User) WithID(id string) User {
	c := u.Clone()
	c.ID = id
	return c
}

// Clone returns a deep copy with a non-nil subscription list.
func (u User) Clone() User {
	c := u
	c.SubscribedToUserIDs = make([]string, len(u.SubscribedToUserIDs))
	copy(c.SubscribedToUserIDs, u.SubscribedToUserIDs)
	return c
}

func (u User) Field(key string) (any, bool) {
	switch key {
	case FieldID:
		return u.ID, true
	case FieldFirstName:
		return u.FirstName, true
	case FieldLastName:
		return u.LastName, true
	case FieldEmail:
		return u.Email, true
	case FieldSubscribedToUserIDs:
		return slices.Clone(u.SubscribedToUserIDs), true
	default:
		return nil, false
	}
}

// IsSubscribedTo reports whether the user follows targetID.
func (u User) IsSubscribedTo(targetID string) bool {
	return slices.Contains(u.SubscribedToUserIDs, targetID)
}

// SubscribeTo appends targetID to the subscription list.
// Returns ErrSelfReference if targetID is the user's own ID.
// Idempotent: subscribing twice leaves a single entry.
func (u *User) SubscribeTo(targetID string) error {
	if targetID == u.ID {
		return ErrSelfReference
	}
	if u.IsSubscribedTo(targetID) {
		return nil
	}
	u.SubscribedToUserIDs = append(u.SubscribedToUserIDs, targetID)
	return nil
}

// UnsubscribeFrom removes targetID from the subscription list.
// Returns ErrSelfReference if targetID is the user's own ID and
// ErrNotSubscribed if the user does not follow targetID.
func (u *User) UnsubscribeFrom(targetID string) error {
	if targetID == u.ID {
		return ErrSelfReference
	}
	i := slices.Index(u.SubscribedToUserIDs, targetID)
	if i < 0 {
		return ErrNotSubscribed
	}
	u.SubscribedToUserIDs = slices.Delete(u.SubscribedToUserIDs, i, i+1)
	return nil
}

// CreateUser is the writable field set of a new User.
type CreateUser struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Validate checks that every field is present.
func (in CreateUser) Validate() error {
	return firstErr(
		checkRequired(FieldFirstName, in.FirstName),
		checkRequired(FieldLastName, in.LastName),
		checkRequired(FieldEmail, in.Email),
	)
}

// User builds the record to insert. The subscription list starts empty.
func (in CreateUser) User() User {
	return User{
		FirstName:           in.FirstName,
		LastName:            in.LastName,
		Email:               in.Email,
		SubscribedToUserIDs: []string{},
	}
}

// UserPatch is a partial update of a User. Nil fields are left unchanged.
// The subscription list is only changed through subscribe and unsubscribe.
type UserPatch struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// Validate rejects fields that are present but blank.
func (p UserPatch) Validate() error {
	return firstErr(
		checkOptional(FieldFirstName, p.FirstName),
		checkOptional(FieldLastName, p.LastName),
		checkOptional(FieldEmail, p.Email),
	)
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}
