package service

import (
	"context"
	"errors"
	"testing"

	"github.com/socialgraph/social-api/internal/core/domain"
)

func TestFriendService_AddFriend_Idempotent(t *testing.T) {
	for _, mode := range []FriendshipMode{FriendshipDirectional, FriendshipMutual} {
		t.Run(string(mode), func(t *testing.T) {
			env := newTestEnv(t, mode)
			ctx := context.Background()
			alice := env.mustCreateUser(t, "alice")
			bob := env.mustCreateUser(t, "bob")

			var u *domain.User
			var err error
			for i := 0; i < 2; i++ {
				if u, err = env.friendSvc.AddFriend(ctx, alice.ID, bob.ID); err != nil {
					t.Fatalf("add %d: %v", i, err)
				}
			}
			if u.FriendCount() != 1 || !u.HasFriend(bob.ID) {
				t.Errorf("expected exactly one bob, got %v", u.Friends)
			}
		})
	}
}

func TestFriendService_RemoveFriend_Idempotent(t *testing.T) {
	for _, mode := range []FriendshipMode{FriendshipDirectional, FriendshipMutual} {
		t.Run(string(mode), func(t *testing.T) {
			env := newTestEnv(t, mode)
			ctx := context.Background()
			alice := env.mustCreateUser(t, "alice")
			bob := env.mustCreateUser(t, "bob")
			if _, err := env.friendSvc.AddFriend(ctx, alice.ID, bob.ID); err != nil {
				t.Fatalf("add: %v", err)
			}

			for i := 0; i < 2; i++ {
				u, err := env.friendSvc.RemoveFriend(ctx, alice.ID, bob.ID)
				if err != nil {
					t.Fatalf("remove %d: %v", i, err)
				}
				if u.HasFriend(bob.ID) {
					t.Errorf("remove %d: bob still listed", i)
				}
			}
		})
	}
}

func TestFriendService_Directional_OnlyActingUserChanges(t *testing.T) {
	env := newTestEnv(t, FriendshipDirectional)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "alice")
	bob := env.mustCreateUser(t, "bob")

	if _, err := env.friendSvc.AddFriend(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	b, _ := env.userStore.FindByID(ctx, bob.ID)
	if b.FriendCount() != 0 {
		t.Errorf("directional add must not touch bob, got %v", b.Friends)
	}

	// The friend is only format-checked.
	ghost := domain.NewID()
	u, err := env.friendSvc.AddFriend(ctx, alice.ID, ghost)
	if err != nil {
		t.Fatalf("expected unknown but well-formed friend accepted, got: %v", err)
	}
	if !u.HasFriend(ghost) {
		t.Errorf("expected ghost in friends, got %v", u.Friends)
	}
}

func TestFriendService_AddFriend_Errors(t *testing.T) {
	for _, mode := range []FriendshipMode{FriendshipDirectional, FriendshipMutual} {
		t.Run(string(mode), func(t *testing.T) {
			env := newTestEnv(t, mode)
			ctx := context.Background()
			alice := env.mustCreateUser(t, "alice")
			bob := env.mustCreateUser(t, "bob")

			if _, err := env.friendSvc.AddFriend(ctx, alice.ID, "not-an-id"); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error for malformed friendId, got: %v", err)
			}
			if _, err := env.friendSvc.AddFriend(ctx, domain.NewID(), bob.ID); !errors.Is(err, domain.ErrUserNotFound) {
				t.Errorf("expected ErrUserNotFound for missing user, got: %v", err)
			}
			if _, err := env.friendSvc.RemoveFriend(ctx, domain.NewID(), bob.ID); !errors.Is(err, domain.ErrUserNotFound) {
				t.Errorf("expected ErrUserNotFound on remove for missing user, got: %v", err)
			}
		})
	}
}

func TestFriendService_Mutual_BothSides(t *testing.T) {
	env := newTestEnv(t, FriendshipMutual)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "alice")
	bob := env.mustCreateUser(t, "bob")

	if _, err := env.friendSvc.AddFriend(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	b, _ := env.userStore.FindByID(ctx, bob.ID)
	if !b.HasFriend(alice.ID) {
		t.Errorf("mutual add must link bob back, got %v", b.Friends)
	}

	if _, err := env.friendSvc.RemoveFriend(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	b, _ = env.userStore.FindByID(ctx, bob.ID)
	if b.HasFriend(alice.ID) {
		t.Errorf("mutual remove must unlink bob too, got %v", b.Friends)
	}
}

func TestFriendService_Mutual_MissingFriend(t *testing.T) {
	env := newTestEnv(t, FriendshipMutual)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "alice")

	_, err := env.friendSvc.AddFriend(ctx, alice.ID, domain.NewID())
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
	a, _ := env.userStore.FindByID(ctx, alice.ID)
	if a.FriendCount() != 0 {
		t.Errorf("no link may be written, got %v", a.Friends)
	}
}

func TestFriendService_Mutual_FriendVanishes(t *testing.T) {
	env := newTestEnv(t, FriendshipMutual)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "alice")
	bob := env.mustCreateUser(t, "bob")
	env.users.addFriend = func(ctx context.Context, userID, friendID string) (*domain.User, error) {
		if userID == bob.ID {
			return nil, domain.ErrUserNotFound
		}
		return env.userStore.AddFriend(ctx, userID, friendID)
	}

	_, err := env.friendSvc.AddFriend(ctx, alice.ID, bob.ID)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
	a, _ := env.userStore.FindByID(ctx, alice.ID)
	if a.HasFriend(bob.ID) {
		t.Errorf("forward link must be compensated, got %v", a.Friends)
	}
	if len(env.metrics.compensations) != 1 || env.metrics.compensations[0] != "add_friend:ok" {
		t.Errorf("expected successful compensation, got %v", env.metrics.compensations)
	}
}

func TestFriendService_Mutual_FailedReverseKeepsExistingLink(t *testing.T) {
	env := newTestEnv(t, FriendshipMutual)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "alice")
	bob := env.mustCreateUser(t, "bob")
	if _, err := env.userStore.AddFriend(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("seed link: %v", err)
	}
	env.users.addFriend = func(ctx context.Context, userID, friendID string) (*domain.User, error) {
		if userID == bob.ID {
			return nil, domain.ErrUserNotFound
		}
		return env.userStore.AddFriend(ctx, userID, friendID)
	}

	_, err := env.friendSvc.AddFriend(ctx, alice.ID, bob.ID)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
	a, _ := env.userStore.FindByID(ctx, alice.ID)
	if !a.HasFriend(bob.ID) || a.FriendCount() != 1 {
		t.Errorf("link present before the call must survive, got %v", a.Friends)
	}
	if len(env.metrics.compensations) != 0 {
		t.Errorf("nothing to compensate, got %v", env.metrics.compensations)
	}
}

func TestFriendService_Mutual_CompensationFailure(t *testing.T) {
	env := newTestEnv(t, FriendshipMutual)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "alice")
	bob := env.mustCreateUser(t, "bob")
	env.users.addFriend = func(ctx context.Context, userID, friendID string) (*domain.User, error) {
		if userID == bob.ID {
			return nil, errors.New("write timeout")
		}
		return env.userStore.AddFriend(ctx, userID, friendID)
	}
	env.users.removeFriend = func(context.Context, string, string) (*domain.User, error) {
		return nil, errors.New("write timeout")
	}

	_, err := env.friendSvc.AddFriend(ctx, alice.ID, bob.ID)
	var pe *domain.ProtocolError
	if !errors.As(err, &pe) || pe.Step != "compensate" || pe.Partial == "" {
		t.Fatalf("expected compensate ProtocolError with partial state, got: %v", err)
	}
}

func TestFriendService_Mutual_RemoveWithMissingFriend(t *testing.T) {
	env := newTestEnv(t, FriendshipMutual)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "alice")
	ghost := domain.NewID()
	if _, err := env.userStore.AddFriend(ctx, alice.ID, ghost); err != nil {
		t.Fatalf("seed: %v", err)
	}

	u, err := env.friendSvc.RemoveFriend(ctx, alice.ID, ghost)
	if err != nil {
		t.Fatalf("expected success with warning, got: %v", err)
	}
	if u.HasFriend(ghost) {
		t.Errorf("ghost must be removed, got %v", u.Friends)
	}
	if len(env.metrics.gaps) != 1 || env.metrics.gaps[0] != "remove_friend:friend_missing" {
		t.Errorf("expected friend_missing gap, got %v", env.metrics.gaps)
	}
}

func TestFriendService_Mutual_SelfFriend(t *testing.T) {
	env := newTestEnv(t, FriendshipMutual)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "alice")

	u, err := env.friendSvc.AddFriend(ctx, alice.ID, alice.ID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if u.FriendCount() != 1 {
		t.Errorf("expected one self link, got %v", u.Friends)
	}
}

func TestParseFriendshipMode(t *testing.T) {
	cases := map[string]FriendshipMode{
		"":            FriendshipDirectional,
		"directional": FriendshipDirectional,
		" Mutual ":    FriendshipMutual,
	}
	for in, want := range cases {
		got, err := ParseFriendshipMode(in)
		if err != nil || got != want {
			t.Errorf("ParseFriendshipMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFriendshipMode("symmetric"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
