package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anonto42/nanogram/backend/internal/models"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func indexPlan() []collectionIndexes {
	return []collectionIndexes{
		{postsCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		}},
		{commentsCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}}},
		}},
		{likesCollection, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "post_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "post_id", Value: 1}}},
		}},
		{followsCollection, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "follower_id", Value: 1}, {Key: "following_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "following_id", Value: 1}, {Key: "created_at", Value: -1}}},
		}},
		{savedPostsCollection, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "post_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "post_id", Value: 1}}},
		}},
		{notificationsCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
			{
				// one like_comment row per (recipient, actor, comment)
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "actor_id", Value: 1},
					{Key: "type", Value: 1},
					{Key: "entity_id", Value: 1},
				},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"type": string(models.NotificationLikeComment)}),
			},
		}},
	}
}

// EnsureIndexes creates the unique and query indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, plan := range indexPlan() {
		if _, err := db.Collection(plan.collection).Indexes().CreateMany(ctx, plan.models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", plan.collection, err)
		}
	}
	return nil
}
