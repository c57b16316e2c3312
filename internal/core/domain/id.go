package domain

import (
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewID returns a new User or Thought identifier: the hex form of a MongoDB
// ObjectID, so documents created by any store adapter share one id space.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed User or Thought identifier.
func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// NewReactionID returns an identifier for a Reaction. Reaction ids are scoped
// to their parent Thought and never used as store keys.
func NewReactionID() string {
	return uuid.NewString()
}
