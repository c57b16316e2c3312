package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/socialgraph/social-api/internal/core/domain"
	"github.com/socialgraph/social-api/internal/core/ports"
)

type UserService struct {
	users    ports.UserRepository
	thoughts ports.ThoughtRepository
	validate StructValidator
	metrics  Metrics
	logger   zerolog.Logger
}

var _ ports.UserService = (*UserService)(nil)

func NewUserService(
	users ports.UserRepository,
	thoughts ports.ThoughtRepository,
	validate StructValidator,
	metrics Metrics,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		thoughts: thoughts,
		validate: validate,
		metrics:  orNop(metrics),
		logger:   logger,
	}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.FindMany(ctx, ports.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns the user with its thoughts and friends expanded in link order.
// Ids that no longer resolve are left out of the expansion.
func (s *UserService) Get(ctx context.Context, id string) (*ports.UserDetail, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	thoughts, err := s.thoughts.FindMany(ctx, ports.ThoughtFilter{IDs: nonNil(u.Thoughts)})
	if err != nil {
		return nil, fmt.Errorf("expand thoughts: %w", err)
	}
	friends, err := s.users.FindMany(ctx, ports.UserFilter{IDs: nonNil(u.Friends)})
	if err != nil {
		return nil, fmt.Errorf("expand friends: %w", err)
	}

	return &ports.UserDetail{
		User:     u,
		Thoughts: inOrder(u.Thoughts, thoughts, func(t *domain.Thought) string { return t.ID }),
		Friends:  inOrder(u.Friends, friends, func(f *domain.User) string { return f.ID }),
	}, nil
}

func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	u := &domain.User{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
	}
	if err := s.validate.Struct(u); err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	s.metrics.UserCreated()
	s.logger.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user created")
	return created, nil
}

// Update applies the patch as a whole. An empty patch returns the user
// unchanged.
func (s *UserService) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if patch.Username != nil {
		v := strings.TrimSpace(*patch.Username)
		patch.Username = &v
	}
	if patch.Email != nil {
		v := strings.TrimSpace(*patch.Email)
		patch.Email = &v
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.users.FindByID(ctx, id)
	}
	return s.users.Update(ctx, id, patch)
}

// Delete removes the user, then its thoughts, then every friend link to it.
// Only the first step can fail the call; later failures are logged and
// counted as protocol gaps.
func (s *UserService) Delete(ctx context.Context, id string) (*ports.DeleteUserResult, error) {
	u, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	res := &ports.DeleteUserResult{UserID: u.ID}

	if len(u.Thoughts) > 0 {
		n, err := s.thoughts.DeleteMany(ctx, ports.ThoughtFilter{IDs: u.Thoughts})
		if err != nil {
			s.gap(u.ID, "delete_thoughts", err)
		}
		res.DeletedThoughts += n
	}

	// Thoughts authored by the user but never linked to it.
	n, err := s.thoughts.DeleteMany(ctx, ports.ThoughtFilter{UserID: u.ID})
	if err != nil {
		s.gap(u.ID, "sweep_thoughts", err)
	}
	res.DeletedThoughts += n

	unlinked, err := s.users.RemoveFriendEverywhere(ctx, u.ID)
	if err != nil {
		s.gap(u.ID, "unlink_friends", err)
	}
	res.UnlinkedFriends = unlinked

	s.metrics.ThoughtsCascaded(res.DeletedThoughts)
	s.logger.Info().
		Str("user_id", u.ID).
		Int64("deleted_thoughts", res.DeletedThoughts).
		Int64("unlinked_friends", res.UnlinkedFriends).
		Msg("user deleted")
	return res, nil
}

func (s *UserService) gap(userID, step string, err error) {
	s.metrics.ProtocolGap(domain.ProtocolDeleteUser, step)
	s.logger.Warn().Err(err).
		Str("protocol", domain.ProtocolDeleteUser).
		Str("step", step).
		Str("user_id", userID).
		Msg("cascade step failed, user already deleted")
}

// nonNil turns a nil id list into an empty one, which a filter treats as
// "match nothing" rather than "no restriction".
func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// inOrder arranges docs in the order of ids, skipping ids with no document
// and repeating documents whose id is repeated.
func inOrder[T any](ids []string, docs []T, key func(T) string) []T {
	byID := make(map[string]T, len(docs))
	for _, d := range docs {
		byID[key(d)] = d
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
