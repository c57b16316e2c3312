package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNotFoundErrors(t *testing.T) {
	for _, err := range []error{ErrUserNotFound, ErrThoughtNotFound, ErrAuthorNotFound} {
		if !errors.Is(fmt.Errorf("wrapped: %w", err), ErrNotFound) {
			t.Errorf("%v must match ErrNotFound", err)
		}
	}
	if errors.Is(ErrUserNotFound, ErrThoughtNotFound) {
		t.Error("user and thought not-found must stay distinguishable")
	}
}

func TestValidationError(t *testing.T) {
	err := error(NewDuplicateKeyError("username"))
	if !errors.Is(err, ErrValidation) {
		t.Fatal("duplicate key must match ErrValidation")
	}
	var ve *ValidationError
	if !errors.As(fmt.Errorf("create: %w", err), &ve) || ve.Reason != ReasonDuplicateKey {
		t.Fatalf("expected duplicate_key reason, got %v", err)
	}
	if !strings.Contains(err.Error(), "username already exists") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestProtocolError(t *testing.T) {
	cause := errors.New("timeout")
	err := &ProtocolError{Protocol: ProtocolCreateThought, Step: "compensate", Partial: "orphan thought t1", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("ProtocolError must unwrap to its cause")
	}
	if msg := err.Error(); !strings.Contains(msg, "create_thought: compensate") || !strings.Contains(msg, "orphan thought t1") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestIDs(t *testing.T) {
	id := NewID()
	if !IsValidID(id) {
		t.Errorf("generated id %q must be valid", id)
	}
	if IsValidID("xyz") || IsValidID("") {
		t.Error("malformed ids must be rejected")
	}
	if NewReactionID() == NewReactionID() {
		t.Error("reaction ids must be unique")
	}
}

func TestUserClone_Independent(t *testing.T) {
	u := &User{ID: "u1", Friends: []string{"u2"}}
	c := u.Clone()
	c.Friends[0] = "u3"

	if u.Friends[0] != "u2" {
		t.Error("clone must not share the friends backing array")
	}
	if c.Thoughts == nil {
		t.Error("clone must normalise nil thoughts to empty")
	}
}

func TestUserPatch(t *testing.T) {
	if !(UserPatch{}).IsEmpty() {
		t.Error("zero patch must be empty")
	}
	name := "bob"
	u := &User{Username: "alice", Email: "a@x.com"}
	UserPatch{Username: &name}.Apply(u)
	if u.Username != "bob" || u.Email != "a@x.com" {
		t.Errorf("unexpected user after patch: %+v", u)
	}
}

func TestThought_ReactionIndex(t *testing.T) {
	th := &Thought{Reactions: []Reaction{{ReactionID: "r1"}, {ReactionID: "r2"}}}
	if th.ReactionIndex("r2") != 1 || th.ReactionIndex("r9") != -1 {
		t.Error("unexpected reaction index")
	}
	if th.Clone().ReactionCount() != 2 {
		t.Error("clone must keep reactions")
	}
}
