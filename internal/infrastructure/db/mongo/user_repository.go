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

const collectionUsers = "users"

// UserRepository implements ports.UserRepository on the users collection.
type UserRepository struct {
	col *mongo.Collection
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

// Create inserts a new user document.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Username:  u.Username,
		Email:     u.Email,
		Thoughts:  objectIDs(u.Thoughts),
		Friends:   objectIDs(u.Friends),
		CreatedAt: bsonTime(u.CreatedAt),
	}
	if u.ID != "" {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return nil, domain.NewValidationError("id", "id must be a valid identifier")
		}
		doc.ID = oid
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewDuplicateKeyError("username")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a user by id. Malformed ids are reported as not found.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// FindMany returns users matching the filter in natural order.
func (r *UserRepository) FindMany(ctx context.Context, f ports.UserFilter) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.IDs != nil {
		filter["_id"] = bson.M{"$in": objectIDs(f.IDs)}
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]*domain.User, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

// Update sets every non-nil patch field in one atomic update.
func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	set := bson.M{}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

// Delete removes the user and returns the deleted document.
func (r *UserRepository) Delete(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var doc userDocument
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) PushThought(ctx context.Context, userID, thoughtID string) (*domain.User, error) {
	tid, err := primitive.ObjectIDFromHex(thoughtID)
	if err != nil {
		return nil, fmt.Errorf("push thought: invalid thought id %q", thoughtID)
	}
	return r.findOneAndUpdate(ctx, userID, bson.M{"$push": bson.M{"thoughts": tid}})
}

func (r *UserRepository) PullThought(ctx context.Context, userID, thoughtID string) (*domain.User, error) {
	tid, err := primitive.ObjectIDFromHex(thoughtID)
	if err != nil {
		return r.FindByID(ctx, userID)
	}
	return r.findOneAndUpdate(ctx, userID, bson.M{"$pull": bson.M{"thoughts": tid}})
}

// AddFriend uses $addToSet, so repeating it is a no-op.
func (r *UserRepository) AddFriend(ctx context.Context, userID, friendID string) (*domain.User, error) {
	fid, err := primitive.ObjectIDFromHex(friendID)
	if err != nil {
		return nil, domain.NewValidationError("friendId", "friendId must be a valid identifier")
	}
	return r.findOneAndUpdate(ctx, userID, bson.M{"$addToSet": bson.M{"friends": fid}})
}

func (r *UserRepository) RemoveFriend(ctx context.Context, userID, friendID string) (*domain.User, error) {
	fid, err := primitive.ObjectIDFromHex(friendID)
	if err != nil {
		return r.FindByID(ctx, userID)
	}
	return r.findOneAndUpdate(ctx, userID, bson.M{"$pull": bson.M{"friends": fid}})
}

func (r *UserRepository) RemoveFriendEverywhere(ctx context.Context, friendID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	fid, err := primitive.ObjectIDFromHex(friendID)
	if err != nil {
		return 0, nil
	}
	res, err := r.col.UpdateMany(ctx, bson.M{"friends": fid}, bson.M{"$pull": bson.M{"friends": fid}})
	if err != nil {
		return 0, fmt.Errorf("unlink friend: %w", err)
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates necessary indexes on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "friends", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// findOneAndUpdate applies update to the user with the given id and returns
// the document as it is after the update.
func (r *UserRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrUserNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.NewDuplicateKeyError("username")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}
