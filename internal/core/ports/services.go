package ports

import (
	"context"

	"github.com/socialgraph/social-api/internal/core/domain"
)

// CreateUserInput carries the fields of a new user.
type CreateUserInput struct {
	Username string
	Email    string
}

// UserDetail is a user with its thoughts and friends expanded. Dangling ids
// are omitted from the expansion.
type UserDetail struct {
	User     *domain.User
	Thoughts []*domain.Thought
	Friends  []*domain.User
}

// DeleteUserResult summarises the cascade performed by UserService.Delete.
type DeleteUserResult struct {
	UserID          string
	DeletedThoughts int64
	UnlinkedFriends int64
}

// UserService covers User CRUD and the user deletion cascade.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id string) (*UserDetail, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) (*DeleteUserResult, error)
}

// FriendService manages friend set membership.
type FriendService interface {
	AddFriend(ctx context.Context, userID, friendID string) (*domain.User, error)
	RemoveFriend(ctx context.Context, userID, friendID string) (*domain.User, error)
}

// CreateThoughtInput carries a new thought. IdempotencyKey is optional.
type CreateThoughtInput struct {
	UserID         string
	Text           string
	IdempotencyKey string
}

// ReactionInput carries a new reaction. ReactionID is optional.
type ReactionInput struct {
	ReactionID string
	Body       string
	Username   string
}

// ThoughtService covers Thought CRUD, the author-link and inverse-link
// protocols, and the reaction subdocument lifecycle.
type ThoughtService interface {
	List(ctx context.Context) ([]*domain.Thought, error)
	Get(ctx context.Context, id string) (*domain.Thought, error)
	// Create returns the author with the new thought id linked.
	Create(ctx context.Context, in CreateThoughtInput) (*domain.User, error)
	UpdateText(ctx context.Context, id, text string) (*domain.Thought, error)
	Delete(ctx context.Context, id string) error
	AddReaction(ctx context.Context, thoughtID string, in ReactionInput) (*domain.Thought, error)
	RemoveReaction(ctx context.Context, thoughtID, reactionID string) (*domain.Thought, error)
}
