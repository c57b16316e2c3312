// Package memory provides in-process implementations of the document store
// ports. Each repository guards its map with a mutex, giving the same
// single-document atomicity the MongoDB adapter relies on and nothing more.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/socialgraph/social-api/internal/core/domain"
	"github.com/socialgraph/social-api/internal/core/ports"
)

// UserRepository implements ports.UserRepository in memory.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	order []string
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usernameTaken(u.Username, "") {
		return nil, domain.NewDuplicateKeyError("username")
	}

	doc := u.Clone()
	if doc.ID == "" {
		doc.ID = domain.NewID()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	r.users[doc.ID] = doc
	r.order = append(r.order, doc.ID)
	return doc.Clone(), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) FindMany(_ context.Context, f ports.UserFilter) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.User{}
	for _, id := range r.order {
		if f.IDs != nil && !slices.Contains(f.IDs, id) {
			continue
		}
		out = append(out, r.users[id].Clone())
	}
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Username != nil && r.usernameTaken(*patch.Username, id) {
		return nil, domain.NewDuplicateKeyError("username")
	}
	patch.Apply(u)
	return u.Clone(), nil
}

func (r *UserRepository) Delete(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	delete(r.users, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return u.Clone(), nil
}

func (r *UserRepository) PushThought(_ context.Context, userID, thoughtID string) (*domain.User, error) {
	return r.mutate(userID, func(u *domain.User) {
		u.Thoughts = append(u.Thoughts, thoughtID)
	})
}

func (r *UserRepository) PullThought(_ context.Context, userID, thoughtID string) (*domain.User, error) {
	return r.mutate(userID, func(u *domain.User) {
		u.Thoughts = slices.DeleteFunc(u.Thoughts, func(s string) bool { return s == thoughtID })
	})
}

func (r *UserRepository) AddFriend(_ context.Context, userID, friendID string) (*domain.User, error) {
	return r.mutate(userID, func(u *domain.User) {
		if !u.HasFriend(friendID) {
			u.Friends = append(u.Friends, friendID)
		}
	})
}

func (r *UserRepository) RemoveFriend(_ context.Context, userID, friendID string) (*domain.User, error) {
	return r.mutate(userID, func(u *domain.User) {
		u.Friends = slices.DeleteFunc(u.Friends, func(s string) bool { return s == friendID })
	})
}

func (r *UserRepository) RemoveFriendEverywhere(_ context.Context, friendID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, u := range r.users {
		if u.HasFriend(friendID) {
			u.Friends = slices.DeleteFunc(u.Friends, func(s string) bool { return s == friendID })
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) mutate(id string, fn func(u *domain.User)) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	fn(u)
	return u.Clone(), nil
}

// usernameTaken must be called with r.mu held.
func (r *UserRepository) usernameTaken(username, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && u.Username == username {
			return true
		}
	}
	return false
}
