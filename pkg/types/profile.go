package types

import "fmt"

// Profile holds per-user membership details. At most one Profile exists per
// UserID, and MemberTypeID names an existing MemberType when the profile is
// created.
type Profile struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	MemberTypeID string `json:"memberTypeId"`
	IsMale       bool   `json:"isMale"`
	Age          int    `json:"age"`
}

var _ Record[Profile] = Profile{}

func (p Profile) EntityID() string { return p.ID }

func (p Profile) WithID(id string) Profile {
	p.ID = id
	return p
}

func (p Profile) Clone() Profile { return p }

func (p Profile) Field(key string) (any, bool) {
	switch key {
	case FieldID:
		return p.ID, true
	case FieldUserID:
		return p.UserID, true
	case FieldMemberTypeID:
		return p.MemberTypeID, true
	case FieldIsMale:
		return p.IsMale, true
	case FieldAge:
		return p.Age, true
	default:
		return nil, false
	}
}

// CreateProfile is the writable field set of a new Profile.
type CreateProfile struct {
	UserID       string `json:"userId"`
	MemberTypeID string `json:"memberTypeId"`
	IsMale       bool   `json:"isMale"`
	Age          int    `json:"age"`
}

// Validate checks references are present and the age is not negative.
func (in CreateProfile) Validate() error {
	return firstErr(
		checkUUID(FieldUserID, in.UserID),
		checkRequired(FieldMemberTypeID, in.MemberTypeID),
		checkAge(in.Age),
	)
}

// Profile builds the record to insert.
func (in CreateProfile) Profile() Profile {
	return Profile{
		UserID:       in.UserID,
		MemberTypeID: in.MemberTypeID,
		IsMale:       in.IsMale,
		Age:          in.Age,
	}
}

// ProfilePatch is a partial update of a Profile. The owning user cannot change.
type ProfilePatch struct {
	MemberTypeID *string `json:"memberTypeId,omitempty"`
	IsMale       *bool   `json:"isMale,omitempty"`
	Age          *int    `json:"age,omitempty"`
}

func (p ProfilePatch) Validate() error {
	if err := checkOptional(FieldMemberTypeID, p.MemberTypeID); err != nil {
		return err
	}
	if p.Age != nil {
		return checkAge(*p.Age)
	}
	return nil
}

// Apply merges the patch into pr.
func (p ProfilePatch) Apply(pr *Profile) {
	if p.MemberTypeID != nil {
		pr.MemberTypeID = *p.MemberTypeID
	}
	if p.IsMale != nil {
		pr.IsMale = *p.IsMale
	}
	if p.Age != nil {
		pr.Age = *p.Age
	}
}

func checkAge(age int) error {
	if age < 0 {
		return fmt.Errorf("%w: age must not be negative", ErrValidation)
	}
	return nil
}
