package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/socialgraph/social-api/internal/core/domain"
	"github.com/socialgraph/social-api/internal/core/ports"
)

type ThoughtService struct {
	users       ports.UserRepository
	thoughts    ports.ThoughtRepository
	idempotency IdempotencyStore
	validate    StructValidator
	metrics     Metrics
	logger      zerolog.Logger
}

var _ ports.ThoughtService = (*ThoughtService)(nil)

// NewThoughtService wires the thought protocols. idempotency may be nil, in
// which case Idempotency-Key values are ignored.
func NewThoughtService(
	users ports.UserRepository,
	thoughts ports.ThoughtRepository,
	idempotency IdempotencyStore,
	validate StructValidator,
	metrics Metrics,
	logger zerolog.Logger,
) *ThoughtService {
	return &ThoughtService{
		users:       users,
		thoughts:    thoughts,
		idempotency: idempotency,
		validate:    validate,
		metrics:     orNop(metrics),
		logger:      logger,
	}
}

func (s *ThoughtService) List(ctx context.Context) ([]*domain.Thought, error) {
	thoughts, err := s.thoughts.FindMany(ctx, ports.ThoughtFilter{})
	if err != nil {
		return nil, fmt.Errorf("list thoughts: %w", err)
	}
	return thoughts, nil
}

func (s *ThoughtService) Get(ctx context.Context, id string) (*domain.Thought, error) {
	return s.thoughts.FindByID(ctx, id)
}

// Create inserts the thought and links it to its author, returning the
// author. The author is checked before the insert; if it disappears before
// the link lands the thought is deleted again and ErrAuthorNotFound returned.
func (s *ThoughtService) Create(ctx context.Context, in ports.CreateThoughtInput) (*domain.User, error) {
	t := &domain.Thought{UserID: strings.TrimSpace(in.UserID), Text: strings.TrimSpace(in.Text)}
	if err := s.validate.Struct(t); err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" {
		if author, ok := s.replay(ctx, t.UserID, in.IdempotencyKey); ok {
			return author, nil
		}
	}

	if _, err := s.users.FindByID(ctx, t.UserID); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("create thought: find author: %w", err)
	}

	created, err := s.thoughts.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create thought: %w", err)
	}

	author, err := s.users.PushThought(ctx, created.UserID, created.ID)
	if err != nil {
		return nil, s.unlinkCreated(ctx, created, err)
	}

	s.metrics.ThoughtCreated()
	s.logger.Info().Str("thought_id", created.ID).Str("user_id", author.ID).Msg("thought created")

	if in.IdempotencyKey != "" {
		s.remember(ctx, created.UserID, in.IdempotencyKey, created.ID)
	}
	return author, nil
}

// unlinkCreated deletes a thought whose author link failed.
func (s *ThoughtService) unlinkCreated(ctx context.Context, t *domain.Thought, linkErr error) error {
	log := s.logger.With().
		Str("protocol", domain.ProtocolCreateThought).
		Str("thought_id", t.ID).
		Str("user_id", t.UserID).
		Logger()

	if _, err := s.thoughts.Delete(ctx, t.ID); err != nil && !isNotFound(err) {
		s.metrics.Compensation(domain.ProtocolCreateThought, compensationFailed)
		log.Error().Err(err).AnErr("link_error", linkErr).Msg("compensation failed, thought orphaned")
		return &domain.ProtocolError{
			Protocol: domain.ProtocolCreateThought,
			Step:     "compensate",
			Partial:  "orphan thought " + t.ID,
			Err:      err,
		}
	}
	s.metrics.Compensation(domain.ProtocolCreateThought, compensationOK)
	log.Warn().Err(linkErr).Msg("author link failed, thought removed")

	if isNotFound(linkErr) {
		return domain.ErrAuthorNotFound
	}
	return &domain.ProtocolError{
		Protocol: domain.ProtocolCreateThought,
		Step:     "link_author",
		Err:      linkErr,
	}
}

// replay returns the author of the thought a previous request from the same
// author with the same key created. Store errors, stale entries and entries
// naming another author fall through to a fresh create.
func (s *ThoughtService) replay(ctx context.Context, userID, key string) (*domain.User, bool) {
	if s.idempotency == nil {
		return nil, false
	}
	log := s.logger.With().Str("idempotency_key", key).Str("user_id", userID).Logger()

	thoughtID, found, err := s.idempotency.Lookup(ctx, userID, key)
	if err != nil {
		s.metrics.Idempotency("error")
		log.Warn().Err(err).Msg("idempotency lookup failed, creating anyway")
		return nil, false
	}
	if !found {
		s.metrics.Idempotency("miss")
		return nil, false
	}

	t, err := s.thoughts.FindByID(ctx, thoughtID)
	if err != nil {
		s.metrics.Idempotency("stale")
		log.Warn().Err(err).Str("thought_id", thoughtID).Msg("remembered thought unavailable, creating anyway")
		return nil, false
	}
	if t.UserID != userID {
		s.metrics.Idempotency("mismatch")
		log.Warn().Str("thought_id", thoughtID).Str("owner_id", t.UserID).Msg("remembered thought belongs to another author, creating anyway")
		return nil, false
	}
	author, err := s.users.FindByID(ctx, t.UserID)
	if err != nil {
		s.metrics.Idempotency("stale")
		log.Warn().Err(err).Str("thought_id", thoughtID).Msg("remembered author unavailable, creating anyway")
		return nil, false
	}

	s.metrics.Idempotency("hit")
	log.Info().Str("thought_id", thoughtID).Msg("idempotent replay")
	return author, true
}

func (s *ThoughtService) remember(ctx context.Context, userID, key, thoughtID string) {
	if s.idempotency == nil {
		return
	}
	stored, err := s.idempotency.Remember(ctx, userID, key, thoughtID)
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to set idempotency key")
	case !stored:
		s.logger.Warn().Str("idempotency_key", key).Str("thought_id", thoughtID).Msg("idempotency key claimed by a concurrent request")
	}
}

type textUpdate struct {
	Text string `json:"text" validate:"required,max=280"`
}

func (s *ThoughtService) UpdateText(ctx context.Context, id, text string) (*domain.Thought, error) {
	text = strings.TrimSpace(text)
	if err := s.validate.Struct(textUpdate{Text: text}); err != nil {
		return nil, err
	}
	return s.thoughts.UpdateText(ctx, id, text)
}

// Delete removes the thought and then unlinks it from its author. A missing
// author does not fail the call.
func (s *ThoughtService) Delete(ctx context.Context, id string) error {
	t, err := s.thoughts.Delete(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.users.PullThought(ctx, t.UserID, t.ID); err != nil {
		step := "unlink_author"
		if isNotFound(err) {
			step = "author_missing"
		}
		s.metrics.ProtocolGap(domain.ProtocolDeleteThought, step)
		s.logger.Warn().Err(err).
			Str("protocol", domain.ProtocolDeleteThought).
			Str("step", step).
			Str("thought_id", t.ID).
			Str("user_id", t.UserID).
			Msg("thought deleted but author link not removed")
		return nil
	}

	s.logger.Info().Str("thought_id", t.ID).Str("user_id", t.UserID).Msg("thought deleted")
	return nil
}

// AddReaction appends a reaction to the thought. A missing reactionId is
// generated; a reactionId already on the thought is rejected.
func (s *ThoughtService) AddReaction(ctx context.Context, thoughtID string, in ports.ReactionInput) (*domain.Thought, error) {
	r := domain.Reaction{
		ReactionID: strings.TrimSpace(in.ReactionID),
		Body:       strings.TrimSpace(in.Body),
		Username:   strings.TrimSpace(in.Username),
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	if r.ReactionID == "" {
		r.ReactionID = domain.NewReactionID()
	}
	if err := s.validate.Struct(r); err != nil {
		return nil, err
	}

	t, err := s.thoughts.PushReaction(ctx, thoughtID, r)
	if err != nil {
		return nil, err
	}
	s.metrics.ReactionAdded()
	return t, nil
}

// RemoveReaction pulls the reaction. An unknown reactionId leaves the
// thought unchanged.
func (s *ThoughtService) RemoveReaction(ctx context.Context, thoughtID, reactionID string) (*domain.Thought, error) {
	return s.thoughts.PullReaction(ctx, thoughtID, reactionID)
}
