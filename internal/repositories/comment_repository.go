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

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	GetCommentsByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error)
	CountByPosts(ctx context.Context, postIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
	PostIDsForComments(ctx context.Context, commentIDs []primitive.ObjectID) (map[primitive.ObjectID]primitive.ObjectID, error)
	AddLike(ctx context.Context, commentID primitive.ObjectID, userID string) (*models.Comment, error)
	RemoveLike(ctx context.Context, commentID primitive.ObjectID, userID string) (*models.Comment, error)
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection(commentsCollection)}
}

func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()
	if comment.Likes == nil {
		comment.Likes = []string{}
	}
	_, err := r.collection.InsertOne(ctx, comment)
	return translateErr(err, "comment")
}

func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := toObjectID(id, "comment")
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment); err != nil {
		return nil, translateErr(err, "comment")
	}
	return &comment, nil
}

// GetCommentsByPost lists a post's comments, oldest first.
func (r *MongoCommentRepository) GetCommentsByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"post_id": postID}, findOptions)
	if err != nil {
		return nil, translateErr(err, "comment")
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, translateErr(err, "comment")
	}
	return comments, nil
}

type countRow struct {
	ID    primitive.ObjectID `bson:"_id"`
	Count int64              `bson:"count"`
}

// CountByPosts counts comments per post in one aggregation.
func (r *MongoCommentRepository) CountByPosts(ctx context.Context, postIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	return countGrouped(ctx, r.collection, "post_id", postIDs, "comment")
}

// PostIDsForComments resolves comment ids to their owning post in one query.
func (r *MongoCommentRepository) PostIDsForComments(ctx context.Context, commentIDs []primitive.ObjectID) (map[primitive.ObjectID]primitive.ObjectID, error) {
	out := make(map[primitive.ObjectID]primitive.ObjectID, len(commentIDs))
	if len(commentIDs) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "post_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": commentIDs}}, opts)
	if err != nil {
		return nil, translateErr(err, "comment")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID     primitive.ObjectID `bson:"_id"`
		PostID primitive.ObjectID `bson:"post_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, translateErr(err, "comment")
	}
	for _, row := range rows {
		out[row.ID] = row.PostID
	}
	return out, nil
}

// AddLike adds userID to the comment's like set and returns the updated comment.
func (r *MongoCommentRepository) AddLike(ctx context.Context, commentID primitive.ObjectID, userID string) (*models.Comment, error) {
	return r.updateLikes(ctx, commentID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// RemoveLike removes userID from the comment's like set and returns the updated comment.
func (r *MongoCommentRepository) RemoveLike(ctx context.Context, commentID primitive.ObjectID, userID string) (*models.Comment, error) {
	return r.updateLikes(ctx, commentID, bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *MongoCommentRepository) updateLikes(ctx context.Context, commentID primitive.ObjectID, update bson.M) (*models.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var comment models.Comment
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": commentID}, update, opts).Decode(&comment); err != nil {
		return nil, translateErr(err, "comment")
	}
	return &comment, nil
}

func (r *MongoCommentRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, translateErr(err, "comment")
	}
	return res.DeletedCount, nil
}

// countGrouped counts documents per value of field, restricted to ids.
func countGrouped(ctx context.Context, coll *mongo.Collection, field string, ids []primitive.ObjectID, resource string) (map[primitive.ObjectID]int64, error) {
	out := make(map[primitive.ObjectID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{field: bson.M{"$in": ids}}}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translateErr(err, resource)
	}
	defer cursor.Close(ctx)

	var rows []countRow
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, translateErr(err, resource)
	}
	for _, row := range rows {
		out[row.ID] = row.Count
	}
	return out, nil
}
