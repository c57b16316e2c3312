package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/socialgraph/social-api/internal/core/domain"
)

type userDocument struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Username  string               `bson:"username"`
	Email     string               `bson:"email"`
	Thoughts  []primitive.ObjectID `bson:"thoughts"`
	Friends   []primitive.ObjectID `bson:"friends"`
	CreatedAt time.Time            `bson:"createdAt"`
}

type reactionDocument struct {
	ReactionID string    `bson:"reactionId"`
	Body       string    `bson:"body"`
	Username   string    `bson:"username"`
	CreatedAt  time.Time `bson:"createdAt"`
}

type thoughtDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
	Reactions []reactionDocument `bson:"reactions"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Email:     d.Email,
		Thoughts:  hexes(d.Thoughts),
		Friends:   hexes(d.Friends),
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func (d *thoughtDocument) toDomain() *domain.Thought {
	reactions := make([]domain.Reaction, len(d.Reactions))
	for i, r := range d.Reactions {
		reactions[i] = domain.Reaction{
			ReactionID: r.ReactionID,
			Body:       r.Body,
			Username:   r.Username,
			CreatedAt:  r.CreatedAt.UTC(),
		}
	}
	return &domain.Thought{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Text:      d.Text,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		Reactions: reactions,
	}
}

func toReactionDocument(r domain.Reaction) reactionDocument {
	return reactionDocument{
		ReactionID: r.ReactionID,
		Body:       r.Body,
		Username:   r.Username,
		CreatedAt:  bsonTime(r.CreatedAt),
	}
}

// objectIDs converts the valid ids and drops the rest: a malformed id can
// never match a stored document.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func hexes(oids []primitive.ObjectID) []string {
	out := make([]string, len(oids))
	for i, oid := range oids {
		out[i] = oid.Hex()
	}
	return out
}

// bsonTime truncates to the millisecond precision BSON dates store, so the
// value returned to callers equals the value read back later.
func bsonTime(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Truncate(time.Millisecond)
}
