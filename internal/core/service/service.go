// Package service implements the consistency coordinator: every operation
// that touches more than one document runs here as an ordered sequence of
// single-document store calls.
package service

import (
	"context"
	"fmt"
	"strings"
)

// StructValidator checks a struct against its `validate` tags and returns a
// *domain.ValidationError on constraint violations.
type StructValidator interface {
	Struct(i any) error
}

// IdempotencyStore maps a client-supplied key to the thought it created.
// Keys are scoped per author: the same key sent for two users names two
// independent entries.
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID, key string) (thoughtID string, found bool, err error)
	Remember(ctx context.Context, userID, key, thoughtID string) (stored bool, err error)
}

// Metrics receives protocol outcomes.
type Metrics interface {
	UserCreated()
	ThoughtCreated()
	ReactionAdded()
	ThoughtsCascaded(n int64)
	ProtocolGap(protocol, step string)
	Compensation(protocol, result string)
	Idempotency(result string)
}

type nopMetrics struct{}

func (nopMetrics) UserCreated() {}
func (nopMetrics) ThoughtCreated() {}
func (nopMetrics) ReactionAdded() {}
func (nopMetrics) ThoughtsCascaded(int64) {}
func (nopMetrics) ProtocolGap(string, string) {}
func (nopMetrics) Compensation(string, string) {}
func (nopMetrics) Idempotency(string) {}

func orNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

// FriendshipMode selects how friend links are maintained.
type FriendshipMode string

const (
	// FriendshipDirectional only changes the acting user's friend set.
	FriendshipDirectional FriendshipMode = "directional"
	// FriendshipMutual keeps both friend sets in step.
	FriendshipMutual FriendshipMode = "mutual"
)

// ParseFriendshipMode accepts "directional" or "mutual", case-insensitively.
func ParseFriendshipMode(s string) (FriendshipMode, error) {
	switch m := FriendshipMode(strings.ToLower(strings.TrimSpace(s))); m {
	case FriendshipDirectional, FriendshipMutual:
		return m, nil
	case "":
		return FriendshipDirectional, nil
	default:
		return "", fmt.Errorf("unknown friendship mode %q", s)
	}
}

// Compensation results.
const (
	compensationOK     = "ok"
	compensationFailed = "failed"
)
