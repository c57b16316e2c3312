package domain

import (
	"slices"
	"time"
)

// MaxTextLength bounds Thought text and Reaction bodies, in characters.
const MaxTextLength = 280

// Reaction is embedded in its parent Thought and has no store address of its
// own. Username is a denormalized display name and is not checked against
// the User store.
type Reaction struct {
	ReactionID string    `json:"reactionId" validate:"required,max=64"`
	Body       string    `json:"body"       validate:"required,max=280"`
	Username   string    `json:"username"   validate:"required,max=64"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Thought is a short post authored by a User.
type Thought struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"    validate:"required"`
	Text      string     `json:"text"      validate:"required,max=280"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Reactions []Reaction `json:"reactions"`
}

// ReactionCount is the number of embedded reactions.
func (t *Thought) ReactionCount() int {
	return len(t.Reactions)
}

// ReactionIndex returns the position of the reaction with the given id, or -1.
func (t *Thought) ReactionIndex(reactionID string) int {
	return slices.IndexFunc(t.Reactions, func(r Reaction) bool {
		return r.ReactionID == reactionID
	})
}

// Clone returns a deep copy of the thought and its reactions.
func (t *Thought) Clone() *Thought {
	if t == nil {
		return nil
	}
	c := *t
	c.Reactions = slices.Clone(t.Reactions)
	if c.Reactions == nil {
		c.Reactions = []Reaction{}
	}
	return &c
}
