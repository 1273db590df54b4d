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

// FeedFilter selects the author population of a feed.
//
// With FollowedOnly set, a post matches when its author is in Following and
// is none of Excluded (home). Otherwise a post matches when its author is in
// neither Following nor Excluded (explore).
type FeedFilter struct {
	FollowedOnly bool
	Following    []string
	Excluded     []string
}

// Matches applies the filter to a single author id.
func (f FeedFilter) Matches(authorID string) bool {
	for _, id := range f.Excluded {
		if id == authorID {
			return false
		}
	}
	for _, id := range f.Following {
		if id == authorID {
			return f.FollowedOnly
		}
	}
	return !f.FollowedOnly
}

// BSON renders the filter as a posts query.
func (f FeedFilter) BSON() bson.M {
	if f.FollowedOnly {
		clauses := bson.A{bson.M{"author_id": bson.M{"$in": nonNil(f.Following)}}}
		for _, id := range f.Excluded {
			clauses = append(clauses, bson.M{"author_id": bson.M{"$ne": id}})
		}
		return bson.M{"$and": clauses}
	}

	nin := make([]string, 0, len(f.Following)+len(f.Excluded))
	nin = append(nin, f.Following...)
	nin = append(nin, f.Excluded...)
	if len(nin) == 0 {
		return bson.M{}
	}
	return bson.M{"author_id": bson.M{"$nin": nin}}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
	GetPostsByAuthor(ctx context.Context, authorID string, skip, limit int64) ([]models.Post, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
	FindFeed(ctx context.Context, filter FeedFilter, skip, limit int64) ([]models.Post, error)
	CountFeed(ctx context.Context, filter FeedFilter) (int64, error)
	SampleFeed(ctx context.Context, filter FeedFilter, size int) ([]models.Post, error)
	UpdateCaption(ctx context.Context, id primitive.ObjectID, caption string) (*models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection(postsCollection)}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, post)
	return translateErr(err, "post")
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := toObjectID(id, "post")
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post); err != nil {
		return nil, translateErr(err, "post")
	}
	return &post, nil
}

func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	posts := []models.Post{}
	if len(ids) == 0 {
		return posts, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translateErr(err, "post")
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, translateErr(err, "post")
	}
	return posts, nil
}

// GetPostsByAuthor lists a user's posts, newest first.
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID string, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.M{"author_id": authorID}, skip, limit)
}

func (r *MongoPostRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"author_id": authorID})
	return n, translateErr(err, "post")
}

func (r *MongoPostRepository) FindFeed(ctx context.Context, filter FeedFilter, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, filter.BSON(), skip, limit)
}

func (r *MongoPostRepository) CountFeed(ctx context.Context, filter FeedFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, filter.BSON())
	return n, translateErr(err, "post")
}

// SampleFeed draws a uniform random sample from the filtered population.
func (r *MongoPostRepository) SampleFeed(ctx context.Context, filter FeedFilter, size int) ([]models.Post, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter.BSON()}},
		{{Key: "$sample", Value: bson.M{"size": size}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translateErr(err, "post")
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, translateErr(err, "post")
	}
	return posts, nil
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, translateErr(err, "post")
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, translateErr(err, "post")
	}
	return posts, nil
}

// UpdateCaption sets the caption and returns the updated post.
func (r *MongoPostRepository) UpdateCaption(ctx context.Context, id primitive.ObjectID, caption string) (*models.Post, error) {
	update := bson.M{"$set": bson.M{"caption": caption, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post); err != nil {
		return nil, translateErr(err, "post")
	}
	return &post, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateErr(err, "post")
	}
	if res.DeletedCount == 0 {
		return translateErr(mongo.ErrNoDocuments, "post")
	}
	return nil
}
