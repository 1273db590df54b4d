package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anonto42/nanogram/backend/internal/models"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	// CreateFollow returns a Conflict error when the edge already exists.
	CreateFollow(ctx context.Context, followerID, followingID string) error
	DeleteFollow(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)
	GetFollowersCount(ctx context.Context, userID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
	ListFollowerIDs(ctx context.Context, userID string, skip, limit int64) ([]string, error)
	ListFollowingIDs(ctx context.Context, userID string, skip, limit int64) ([]string, error)
}

// MongoFollowRepository implements FollowRepository for MongoDB
type MongoFollowRepository struct {
	collection *mongo.Collection
}

func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection(followsCollection)}
}

func (r *MongoFollowRepository) CreateFollow(ctx context.Context, followerID, followingID string) error {
	follow := models.Follow{
		ID:          primitive.NewObjectID(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := r.collection.InsertOne(ctx, follow)
	return translateErr(err, "follow")
}

func (r *MongoFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"follower_id": followerID, "following_id": followingID})
	if err != nil {
		return false, translateErr(err, "follow")
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == "" {
		return false, nil
	}
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"follower_id": followerID, "following_id": followingID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, translateErr(err, "follow")
	}
	return n > 0, nil
}

// GetFollowingIDs returns every id userID follows.
func (r *MongoFollowRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"following_id": 1})
	return r.collectIDs(ctx, bson.M{"follower_id": userID}, "following_id", opts)
}

func (r *MongoFollowRepository) GetFollowersCount(ctx context.Context, userID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"following_id": userID})
	return n, translateErr(err, "follow")
}

func (r *MongoFollowRepository) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"follower_id": userID})
	return n, translateErr(err, "follow")
}

func (r *MongoFollowRepository) ListFollowerIDs(ctx context.Context, userID string, skip, limit int64) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"follower_id": 1}).
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	return r.collectIDs(ctx, bson.M{"following_id": userID}, "follower_id", opts)
}

func (r *MongoFollowRepository) ListFollowingIDs(ctx context.Context, userID string, skip, limit int64) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"following_id": 1}).
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	return r.collectIDs(ctx, bson.M{"follower_id": userID}, "following_id", opts)
}

func (r *MongoFollowRepository) collectIDs(ctx context.Context, filter bson.M, field string, opts *options.FindOptions) ([]string, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateErr(err, "follow")
	}
	defer cursor.Close(ctx)

	ids := []string{}
	for cursor.Next(ctx) {
		if id, ok := cursor.Current.Lookup(field).StringValueOK(); ok {
			ids = append(ids, id)
		}
	}
	return ids, translateErr(cursor.Err(), "follow")
}
