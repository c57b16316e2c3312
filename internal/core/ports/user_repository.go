package ports

import (
	"context"

	"github.com/socialgraph/social-api/internal/core/domain"
)

// UserFilter selects users for FindMany. Zero value matches every user.
type UserFilter struct {
	IDs []string // optional: restrict to these ids (nil = no restriction)
}

// UserRepository is the User document store. Every method touches a single
// document atomically except FindMany and RemoveFriendEverywhere.
type UserRepository interface {
	// Create inserts u, assigning ID and CreatedAt. A taken username yields a
	// *domain.ValidationError with reason duplicate_key.
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindMany(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	// Update applies every field of patch or none of them.
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	// Delete removes the user and returns the document as it was.
	Delete(ctx context.Context, id string) (*domain.User, error)

	// PushThought appends thoughtID to the user's thoughts.
	PushThought(ctx context.Context, userID, thoughtID string) (*domain.User, error)
	// PullThought removes every occurrence of thoughtID from the user's thoughts.
	PullThought(ctx context.Context, userID, thoughtID string) (*domain.User, error)

	// AddFriend adds friendID with set semantics.
	AddFriend(ctx context.Context, userID, friendID string) (*domain.User, error)
	// RemoveFriend removes friendID; absent is a no-op.
	RemoveFriend(ctx context.Context, userID, friendID string) (*domain.User, error)
	// RemoveFriendEverywhere pulls friendID from every user's friend set and
	// returns how many users changed.
	RemoveFriendEverywhere(ctx context.Context, friendID string) (int64, error)
}
