package domain

import (
	"slices"
	"time"
)

// User is a member of the social graph. Thoughts holds back-references to
// documents owned by the Thought store; Friends is a set of User ids.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"  validate:"required,max=64"`
	Email     string    `json:"email"     validate:"required,email"`
	Thoughts  []string  `json:"thoughts"`
	Friends   []string  `json:"friends"`
	CreatedAt time.Time `json:"createdAt"`
}

// FriendCount is the size of the friend set.
func (u *User) FriendCount() int {
	return len(u.Friends)
}

// HasFriend reports whether id is in the friend set.
func (u *User) HasFriend(id string) bool {
	return slices.Contains(u.Friends, id)
}

// HasThought reports whether id is linked from this user.
func (u *User) HasThought(id string) bool {
	return slices.Contains(u.Thoughts, id)
}

// Clone returns a deep copy so callers never share slice backing arrays.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Thoughts = slices.Clone(u.Thoughts)
	c.Friends = slices.Clone(u.Friends)
	if c.Thoughts == nil {
		c.Thoughts = []string{}
	}
	if c.Friends == nil {
		c.Friends = []string{}
	}
	return &c
}

// UserPatch carries the mutable User fields. Nil fields are left untouched.
type UserPatch struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=64"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Email == nil
}

// Apply writes the patch onto u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}
