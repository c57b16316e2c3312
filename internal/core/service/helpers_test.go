package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/socialgraph/social-api/internal/core/domain"
	"github.com/socialgraph/social-api/internal/core/ports"
	"github.com/socialgraph/social-api/internal/infrastructure/db/memory"
	"github.com/socialgraph/social-api/internal/pkg/validation"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

// faultUserRepo delegates to a real store unless a hook is set.
type faultUserRepo struct {
	ports.UserRepository
	pushThought      func(ctx context.Context, userID, thoughtID string) (*domain.User, error)
	pullThought      func(ctx context.Context, userID, thoughtID string) (*domain.User, error)
	addFriend        func(ctx context.Context, userID, friendID string) (*domain.User, error)
	removeFriend     func(ctx context.Context, userID, friendID string) (*domain.User, error)
	removeEverywhere error
}

func (r *faultUserRepo) PushThought(ctx context.Context, userID, thoughtID string) (*domain.User, error) {
	if r.pushThought != nil {
		return r.pushThought(ctx, userID, thoughtID)
	}
	return r.UserRepository.PushThought(ctx, userID, thoughtID)
}

func (r *faultUserRepo) PullThought(ctx context.Context, userID, thoughtID string) (*domain.User, error) {
	if r.pullThought != nil {
		return r.pullThought(ctx, userID, thoughtID)
	}
	return r.UserRepository.PullThought(ctx, userID, thoughtID)
}

func (r *faultUserRepo) AddFriend(ctx context.Context, userID, friendID string) (*domain.User, error) {
	if r.addFriend != nil {
		return r.addFriend(ctx, userID, friendID)
	}
	return r.UserRepository.AddFriend(ctx, userID, friendID)
}

func (r *faultUserRepo) RemoveFriend(ctx context.Context, userID, friendID string) (*domain.User, error) {
	if r.removeFriend != nil {
		return r.removeFriend(ctx, userID, friendID)
	}
	return r.UserRepository.RemoveFriend(ctx, userID, friendID)
}

func (r *faultUserRepo) RemoveFriendEverywhere(ctx context.Context, friendID string) (int64, error) {
	if r.removeEverywhere != nil {
		return 0, r.removeEverywhere
	}
	return r.UserRepository.RemoveFriendEverywhere(ctx, friendID)
}

type faultThoughtRepo struct {
	ports.ThoughtRepository
	deleteErr     error
	deleteManyErr error
}

func (r *faultThoughtRepo) Delete(ctx context.Context, id string) (*domain.Thought, error) {
	if r.deleteErr != nil {
		return nil, r.deleteErr
	}
	return r.ThoughtRepository.Delete(ctx, id)
}

func (r *faultThoughtRepo) DeleteMany(ctx context.Context, f ports.ThoughtFilter) (int64, error) {
	if r.deleteManyErr != nil {
		return 0, r.deleteManyErr
	}
	return r.ThoughtRepository.DeleteMany(ctx, f)
}

type recordingMetrics struct {
	mu            sync.Mutex
	usersCreated  int
	thoughts      int
	reactions     int
	cascaded      int64
	gaps          []string // protocol:step
	compensations []string // protocol:result
	idempotency   []string
}

func (m *recordingMetrics) UserCreated() { m.mu.Lock(); m.usersCreated++; m.mu.Unlock() }
func (m *recordingMetrics) ThoughtCreated() { m.mu.Lock(); m.thoughts++; m.mu.Unlock() }
func (m *recordingMetrics) ReactionAdded() { m.mu.Lock(); m.reactions++; m.mu.Unlock() }

func (m *recordingMetrics) ThoughtsCascaded(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cascaded += n
}

func (m *recordingMetrics) ProtocolGap(protocol, step string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gaps = append(m.gaps, protocol+":"+step)
}

func (m *recordingMetrics) Compensation(protocol, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compensations = append(m.compensations, protocol+":"+result)
}

func (m *recordingMetrics) Idempotency(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idempotency = append(m.idempotency, result)
}

type stubIdempotency struct {
	keys        map[string]string
	lookupErr   error
	rememberErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

// Entries are keyed "<userID>:<key>".
func (s *stubIdempotency) Lookup(_ context.Context, userID, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[userID+":"+key]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, userID, key, thoughtID string) (bool, error) {
	if s.rememberErr != nil {
		return false, s.rememberErr
	}
	if _, ok := s.keys[userID+":"+key]; ok {
		return false, nil
	}
	s.keys[userID+":"+key] = thoughtID
	return true, nil
}

// ---------------------------------------------------------------------------
// Helper: services over memory stores, with fault hooks in between.
// ---------------------------------------------------------------------------

type testEnv struct {
	userStore    *memory.UserRepository
	thoughtStore *memory.ThoughtRepository
	users        *faultUserRepo
	thoughts     *faultThoughtRepo
	idempotency  *stubIdempotency
	metrics      *recordingMetrics

	userSvc    *UserService
	thoughtSvc *ThoughtService
	friendSvc  *FriendService
}

func newTestEnv(t *testing.T, mode FriendshipMode) *testEnv {
	t.Helper()
	env := &testEnv{
		userStore:    memory.NewUserRepository(),
		thoughtStore: memory.NewThoughtRepository(),
		idempotency:  newStubIdempotency(),
		metrics:      &recordingMetrics{},
	}
	env.users = &faultUserRepo{UserRepository: env.userStore}
	env.thoughts = &faultThoughtRepo{ThoughtRepository: env.thoughtStore}

	v := validation.New()
	log := zerolog.Nop()
	env.userSvc = NewUserService(env.users, env.thoughts, v, env.metrics, log)
	env.thoughtSvc = NewThoughtService(env.users, env.thoughts, env.idempotency, v, env.metrics, log)
	env.friendSvc = NewFriendService(env.users, mode, env.metrics, log)
	return env
}

func (e *testEnv) mustCreateUser(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := e.userSvc.Create(context.Background(), ports.CreateUserInput{
		Username: username,
		Email:    username + "@x.com",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (e *testEnv) mustCreateThought(t *testing.T, userID, text string) string {
	t.Helper()
	u, err := e.thoughtSvc.Create(context.Background(), ports.CreateThoughtInput{UserID: userID, Text: text})
	if err != nil {
		t.Fatalf("create thought: %v", err)
	}
	return u.Thoughts[len(u.Thoughts)-1]
}

func (e *testEnv) thoughtCount(t *testing.T) int {
	t.Helper()
	all, err := e.thoughtStore.FindMany(context.Background(), ports.ThoughtFilter{})
	if err != nil {
		t.Fatalf("list thoughts: %v", err)
	}
	return len(all)
}

func strPtr(s string) *string { return &s }
