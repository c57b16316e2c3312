package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/socialgraph/social-api/internal/core/domain"
	"github.com/socialgraph/social-api/internal/core/ports"
)

// ThoughtRepository implements ports.ThoughtRepository in memory.
type ThoughtRepository struct {
	mu       sync.RWMutex
	thoughts map[string]*domain.Thought
	order    []string
}

var _ ports.ThoughtRepository = (*ThoughtRepository)(nil)

func NewThoughtRepository() *ThoughtRepository {
	return &ThoughtRepository{thoughts: make(map[string]*domain.Thought)}
}

func (r *ThoughtRepository) Create(_ context.Context, t *domain.Thought) (*domain.Thought, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := t.Clone()
	if doc.ID == "" {
		doc.ID = domain.NewID()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = doc.CreatedAt
	r.thoughts[doc.ID] = doc
	r.order = append(r.order, doc.ID)
	return doc.Clone(), nil
}

func (r *ThoughtRepository) FindByID(_ context.Context, id string) (*domain.Thought, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.thoughts[id]
	if !ok {
		return nil, domain.ErrThoughtNotFound
	}
	return t.Clone(), nil
}

// FindMany returns matches newest first; equal timestamps keep the most
// recently inserted first.
func (r *ThoughtRepository) FindMany(_ context.Context, f ports.ThoughtFilter) ([]*domain.Thought, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Thought{}
	for i := len(r.order) - 1; i >= 0; i-- {
		t := r.thoughts[r.order[i]]
		if matches(t, f) {
			out = append(out, t.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b *domain.Thought) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *ThoughtRepository) UpdateText(_ context.Context, id, text string) (*domain.Thought, error) {
	return r.mutate(id, func(t *domain.Thought) error {
		t.Text = text
		t.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *ThoughtRepository) Delete(_ context.Context, id string) (*domain.Thought, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.thoughts[id]
	if !ok {
		return nil, domain.ErrThoughtNotFound
	}
	r.remove(id)
	return t.Clone(), nil
}

func (r *ThoughtRepository) DeleteMany(_ context.Context, f ports.ThoughtFilter) (int64, error) {
	if f.IsEmpty() {
		return 0, ports.ErrEmptyFilter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.thoughts {
		if matches(t, f) {
			r.remove(id)
			n++
		}
	}
	return n, nil
}

func (r *ThoughtRepository) PushReaction(_ context.Context, thoughtID string, reaction domain.Reaction) (*domain.Thought, error) {
	return r.mutate(thoughtID, func(t *domain.Thought) error {
		if t.ReactionIndex(reaction.ReactionID) >= 0 {
			return domain.NewDuplicateKeyError("reactionId")
		}
		t.Reactions = append(t.Reactions, reaction)
		return nil
	})
}

func (r *ThoughtRepository) PullReaction(_ context.Context, thoughtID, reactionID string) (*domain.Thought, error) {
	return r.mutate(thoughtID, func(t *domain.Thought) error {
		t.Reactions = slices.DeleteFunc(t.Reactions, func(x domain.Reaction) bool {
			return x.ReactionID == reactionID
		})
		return nil
	})
}

func (r *ThoughtRepository) mutate(id string, fn func(t *domain.Thought) error) (*domain.Thought, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.thoughts[id]
	if !ok {
		return nil, domain.ErrThoughtNotFound
	}
	draft := t.Clone()
	if err := fn(draft); err != nil {
		return nil, err
	}
	r.thoughts[id] = draft
	return draft.Clone(), nil
}

// remove must be called with r.mu held.
func (r *ThoughtRepository) remove(id string) {
	delete(r.thoughts, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
}

func matches(t *domain.Thought, f ports.ThoughtFilter) bool {
	if f.IDs != nil && !slices.Contains(f.IDs, t.ID) {
		return false
	}
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	return true
}
