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

// LikeRepository defines the interface for post like data operations
type LikeRepository interface {
	// CreateLike returns a Conflict error when the pair already exists.
	CreateLike(ctx context.Context, userID string, postID primitive.ObjectID) error
	// DeleteLike reports whether a record was removed.
	DeleteLike(ctx context.Context, userID string, postID primitive.ObjectID) (bool, error)
	HasLiked(ctx context.Context, userID string, postID primitive.ObjectID) (bool, error)
	CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	CountByPosts(ctx context.Context, postIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
	LikedPostIDs(ctx context.Context, userID string, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
}

// MongoLikeRepository implements LikeRepository for MongoDB
type MongoLikeRepository struct {
	collection *mongo.Collection
}

func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{collection: db.Collection(likesCollection)}
}

func (r *MongoLikeRepository) CreateLike(ctx context.Context, userID string, postID primitive.ObjectID) error {
	like := models.Like{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.collection.InsertOne(ctx, like)
	return translateErr(err, "like")
}

func (r *MongoLikeRepository) DeleteLike(ctx context.Context, userID string, postID primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "post_id": postID})
	if err != nil {
		return false, translateErr(err, "like")
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoLikeRepository) HasLiked(ctx context.Context, userID string, postID primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "post_id": postID}, options.Count().SetLimit(1))
	if err != nil {
		return false, translateErr(err, "like")
	}
	return n > 0, nil
}

func (r *MongoLikeRepository) CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"post_id": postID})
	return n, translateErr(err, "like")
}

func (r *MongoLikeRepository) CountByPosts(ctx context.Context, postIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	return countGrouped(ctx, r.collection, "post_id", postIDs, "like")
}

func (r *MongoLikeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	return memberPostIDs(ctx, r.collection, userID, postIDs, "like")
}

func (r *MongoLikeRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, translateErr(err, "like")
	}
	return res.DeletedCount, nil
}

// memberPostIDs returns which of postIDs have a (user_id, post_id) row in coll.
func memberPostIDs(ctx context.Context, coll *mongo.Collection, userID string, postIDs []primitive.ObjectID, resource string) (map[primitive.ObjectID]bool, error) {
	out := make(map[primitive.ObjectID]bool, len(postIDs))
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"post_id": 1})
	cursor, err := coll.Find(ctx, bson.M{"user_id": userID, "post_id": bson.M{"$in": postIDs}}, opts)
	if err != nil {
		return nil, translateErr(err, resource)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		PostID primitive.ObjectID `bson:"post_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, translateErr(err, resource)
	}
	for _, row := range rows {
		out[row.PostID] = true
	}
	return out, nil
}
