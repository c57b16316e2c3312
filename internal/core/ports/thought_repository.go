package ports

import (
	"context"
	"errors"

	"github.com/socialgraph/social-api/internal/core/domain"
)

// ErrEmptyFilter is returned by bulk deletes given a filter that would match
// the whole collection.
var ErrEmptyFilter = errors.New("refusing bulk operation with empty filter")

// ThoughtFilter selects thoughts. Set fields are combined with AND.
type ThoughtFilter struct {
	IDs    []string // optional: id in IDs (nil = no restriction, empty = match nothing)
	UserID string   // optional: authored by this user
}

// IsEmpty reports whether the filter places no restriction at all.
func (f ThoughtFilter) IsEmpty() bool {
	return f.IDs == nil && f.UserID == ""
}

// ThoughtRepository is the Thought document store. Reactions live inside the
// Thought document, so reaction changes are single-document updates.
type ThoughtRepository interface {
	// Create inserts t, assigning ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, t *domain.Thought) (*domain.Thought, error)
	FindByID(ctx context.Context, id string) (*domain.Thought, error)
	// FindMany returns matching thoughts, newest first.
	FindMany(ctx context.Context, filter ThoughtFilter) ([]*domain.Thought, error)
	UpdateText(ctx context.Context, id, text string) (*domain.Thought, error)
	// Delete removes the thought and returns the document as it was.
	Delete(ctx context.Context, id string) (*domain.Thought, error)
	// DeleteMany removes matching thoughts and returns the count removed.
	DeleteMany(ctx context.Context, filter ThoughtFilter) (int64, error)

	// PushReaction appends r unless a reaction with the same id exists, in
	// which case it returns a duplicate_key *domain.ValidationError.
	PushReaction(ctx context.Context, thoughtID string, r domain.Reaction) (*domain.Thought, error)
	// PullReaction removes the reaction with reactionID; absent is a no-op.
	PullReaction(ctx context.Context, thoughtID, reactionID string) (*domain.Thought, error)
}
