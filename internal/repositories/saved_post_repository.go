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

// SavedPostRepository defines the interface for bookmark data operations
type SavedPostRepository interface {
	// SavePost returns a Conflict error when the post is already saved.
	SavePost(ctx context.Context, userID string, postID primitive.ObjectID) error
	UnsavePost(ctx context.Context, userID string, postID primitive.ObjectID) (bool, error)
	IsSaved(ctx context.Context, userID string, postID primitive.ObjectID) (bool, error)
	SavedPostIDs(ctx context.Context, userID string, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
	ListByUser(ctx context.Context, userID string, skip, limit int64) ([]models.SavedPost, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
}

// MongoSavedPostRepository implements SavedPostRepository for MongoDB
type MongoSavedPostRepository struct {
	collection *mongo.Collection
}

func NewMongoSavedPostRepository(db *mongo.Database) *MongoSavedPostRepository {
	return &MongoSavedPostRepository{collection: db.Collection(savedPostsCollection)}
}

func (r *MongoSavedPostRepository) SavePost(ctx context.Context, userID string, postID primitive.ObjectID) error {
	saved := models.SavedPost{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.collection.InsertOne(ctx, saved)
	return translateErr(err, "saved post")
}

func (r *MongoSavedPostRepository) UnsavePost(ctx context.Context, userID string, postID primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "post_id": postID})
	if err != nil {
		return false, translateErr(err, "saved post")
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoSavedPostRepository) IsSaved(ctx context.Context, userID string, postID primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "post_id": postID}, options.Count().SetLimit(1))
	if err != nil {
		return false, translateErr(err, "saved post")
	}
	return n > 0, nil
}

func (r *MongoSavedPostRepository) SavedPostIDs(ctx context.Context, userID string, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	return memberPostIDs(ctx, r.collection, userID, postIDs, "saved post")
}

// ListByUser lists saved entries, most recently saved first.
func (r *MongoSavedPostRepository) ListByUser(ctx context.Context, userID string, skip, limit int64) ([]models.SavedPost, error) {
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, translateErr(err, "saved post")
	}
	defer cursor.Close(ctx)

	saved := []models.SavedPost{}
	if err = cursor.All(ctx, &saved); err != nil {
		return nil, translateErr(err, "saved post")
	}
	return saved, nil
}

func (r *MongoSavedPostRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	return n, translateErr(err, "saved post")
}

func (r *MongoSavedPostRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, translateErr(err, "saved post")
	}
	return res.DeletedCount, nil
}
