package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/socialgraph/social-api/internal/core/domain"
	"github.com/socialgraph/social-api/internal/core/ports"
)

// FriendService maintains friend sets with set semantics: adding twice or
// removing an absent friend is a no-op.
type FriendService struct {
	users   ports.UserRepository
	mode    FriendshipMode
	metrics Metrics
	logger  zerolog.Logger
}

var _ ports.FriendService = (*FriendService)(nil)

func NewFriendService(users ports.UserRepository, mode FriendshipMode, metrics Metrics, logger zerolog.Logger) *FriendService {
	if mode == "" {
		mode = FriendshipDirectional
	}
	return &FriendService{users: users, mode: mode, metrics: orNop(metrics), logger: logger}
}

// Mode reports the configured friendship mode.
func (s *FriendService) Mode() FriendshipMode {
	return s.mode
}

// AddFriend adds friendID to userID's friends. In mutual mode the friend
// must exist and userID is added back; if the friend vanishes in between,
// the first link is undone unless it was already there before the call.
func (s *FriendService) AddFriend(ctx context.Context, userID, friendID string) (*domain.User, error) {
	if !domain.IsValidID(friendID) {
		return nil, domain.NewValidationError("friendId", "friendId must be a valid identifier")
	}
	if s.mode == FriendshipDirectional {
		return s.users.AddFriend(ctx, userID, friendID)
	}

	before, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, friendID); err != nil {
		return nil, err
	}
	u, err := s.users.AddFriend(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	if userID == friendID {
		return u, nil
	}
	if _, err := s.users.AddFriend(ctx, friendID, userID); err != nil {
		return nil, s.unlinkAdded(ctx, userID, friendID, before.HasFriend(friendID), err)
	}
	return u, nil
}

// unlinkAdded undoes the forward link after the reverse link failed. A link
// present before the call is left in place.
func (s *FriendService) unlinkAdded(ctx context.Context, userID, friendID string, preexisting bool, linkErr error) error {
	log := s.logger.With().
		Str("protocol", domain.ProtocolAddFriend).
		Str("user_id", userID).
		Str("friend_id", friendID).
		Logger()

	switch {
	case preexisting:
		log.Warn().Err(linkErr).Msg("reverse friend link failed, forward link predates the call and is kept")
	default:
		if _, err := s.users.RemoveFriend(ctx, userID, friendID); err != nil && !isNotFound(err) {
			s.metrics.Compensation(domain.ProtocolAddFriend, compensationFailed)
			log.Error().Err(err).AnErr("link_error", linkErr).Msg("compensation failed, one-sided friendship left")
			return &domain.ProtocolError{
				Protocol: domain.ProtocolAddFriend,
				Step:     "compensate",
				Partial:  fmt.Sprintf("user %s lists %s as friend", userID, friendID),
				Err:      err,
			}
		}
		s.metrics.Compensation(domain.ProtocolAddFriend, compensationOK)
		log.Warn().Err(linkErr).Msg("reverse friend link failed, forward link removed")
	}

	if isNotFound(linkErr) {
		return linkErr
	}
	return &domain.ProtocolError{
		Protocol: domain.ProtocolAddFriend,
		Step:     "link_reverse",
		Err:      linkErr,
	}
}

// RemoveFriend pulls friendID from userID's friends. In mutual mode userID is
// also pulled from friendID's friends; a failure there is logged and does
// not fail the call.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID string) (*domain.User, error) {
	u, err := s.users.RemoveFriend(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	if s.mode == FriendshipDirectional || userID == friendID {
		return u, nil
	}

	if _, err := s.users.RemoveFriend(ctx, friendID, userID); err != nil {
		step := "unlink_reverse"
		if isNotFound(err) {
			step = "friend_missing"
		}
		s.metrics.ProtocolGap(domain.ProtocolRemoveFriend, step)
		s.logger.Warn().Err(err).
			Str("protocol", domain.ProtocolRemoveFriend).
			Str("step", step).
			Str("user_id", userID).
			Str("friend_id", friendID).
			Msg("reverse friend link not removed")
	}
	return u, nil
}
