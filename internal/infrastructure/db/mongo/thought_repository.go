package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/socialgraph/social-api/internal/core/domain"
	"github.com/socialgraph/social-api/internal/core/ports"
)

const collectionThoughts = "thoughts"

// ThoughtRepository implements ports.ThoughtRepository on the thoughts
// collection. Reactions are stored inline in the thought document.
type ThoughtRepository struct {
	col *mongo.Collection
}

var _ ports.ThoughtRepository = (*ThoughtRepository)(nil)

func NewThoughtRepository(db *mongo.Database) *ThoughtRepository {
	return &ThoughtRepository{col: db.Collection(collectionThoughts)}
}

// Create inserts a new thought document.
func (r *ThoughtRepository) Create(ctx context.Context, t *domain.Thought) (*domain.Thought, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	uid, err := primitive.ObjectIDFromHex(t.UserID)
	if err != nil {
		return nil, domain.NewValidationError("userId", "userId must be a valid identifier")
	}

	created := bsonTime(t.CreatedAt)
	doc := thoughtDocument{
		ID:        primitive.NewObjectID(),
		UserID:    uid,
		Text:      t.Text,
		CreatedAt: created,
		UpdatedAt: created,
		Reactions: make([]reactionDocument, 0, len(t.Reactions)),
	}
	for _, reaction := range t.Reactions {
		doc.Reactions = append(doc.Reactions, toReactionDocument(reaction))
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert thought: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a thought by id. Malformed ids are reported as not found.
func (r *ThoughtRepository) FindByID(ctx context.Context, id string) (*domain.Thought, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrThoughtNotFound
	}

	var doc thoughtDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrThoughtNotFound
		}
		return nil, fmt.Errorf("find thought: %w", err)
	}
	return doc.toDomain(), nil
}

// FindMany returns matching thoughts sorted by createdAt descending.
func (r *ThoughtRepository) FindMany(ctx context.Context, f ports.ThoughtFilter) ([]*domain.Thought, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, thoughtFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("find thoughts: %w", err)
	}
	var docs []thoughtDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode thoughts: %w", err)
	}

	out := make([]*domain.Thought, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *ThoughtRepository) UpdateText(ctx context.Context, id, text string) (*domain.Thought, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"text":      text,
		"updatedAt": bsonTime(time.Now()),
	}})
}

// Delete removes the thought and returns the deleted document.
func (r *ThoughtRepository) Delete(ctx context.Context, id string) (*domain.Thought, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrThoughtNotFound
	}

	var doc thoughtDocument
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrThoughtNotFound
		}
		return nil, fmt.Errorf("delete thought: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ThoughtRepository) DeleteMany(ctx context.Context, f ports.ThoughtFilter) (int64, error) {
	if f.IsEmpty() {
		return 0, ports.ErrEmptyFilter
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, thoughtFilter(f))
	if err != nil {
		return 0, fmt.Errorf("delete thoughts: %w", err)
	}
	return res.DeletedCount, nil
}

// PushReaction appends the reaction only when no element with the same
// reactionId exists; the guard lives in the filter so the check and the push
// are one atomic update.
func (r *ThoughtRepository) PushReaction(ctx context.Context, thoughtID string, reaction domain.Reaction) (*domain.Thought, error) {
	oid, err := primitive.ObjectIDFromHex(thoughtID)
	if err != nil {
		return nil, domain.ErrThoughtNotFound
	}

	filter := bson.M{
		"_id":                  oid,
		"reactions.reactionId": bson.M{"$ne": reaction.ReactionID},
	}
	update := bson.M{"$push": bson.M{"reactions": toReactionDocument(reaction)}}

	t, err := r.updateOne(ctx, filter, update)
	if !errors.Is(err, domain.ErrThoughtNotFound) {
		return t, err
	}

	// No match: either the thought is gone or the reaction id is taken.
	if _, findErr := r.FindByID(ctx, thoughtID); findErr != nil {
		return nil, findErr
	}
	return nil, domain.NewDuplicateKeyError("reactionId")
}

func (r *ThoughtRepository) PullReaction(ctx context.Context, thoughtID, reactionID string) (*domain.Thought, error) {
	return r.findOneAndUpdate(ctx, thoughtID, bson.M{
		"$pull": bson.M{"reactions": bson.M{"reactionId": reactionID}},
	})
}

// EnsureIndexes creates necessary indexes on the thoughts collection.
func (r *ThoughtRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *ThoughtRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*domain.Thought, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrThoughtNotFound
	}
	return r.updateOne(ctx, bson.M{"_id": oid}, update)
}

func (r *ThoughtRepository) updateOne(ctx context.Context, filter, update bson.M) (*domain.Thought, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc thoughtDocument
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrThoughtNotFound
		}
		return nil, fmt.Errorf("update thought: %w", err)
	}
	return doc.toDomain(), nil
}

func thoughtFilter(f ports.ThoughtFilter) bson.M {
	filter := bson.M{}
	if f.IDs != nil {
		filter["_id"] = bson.M{"$in": objectIDs(f.IDs)}
	}
	if f.UserID != "" {
		if uid, err := primitive.ObjectIDFromHex(f.UserID); err == nil {
			filter["userId"] = uid
		} else {
			// stored userIds are ObjectIDs, so a malformed one matches nothing
			filter["userId"] = f.UserID
		}
	}
	return filter
}
