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

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	// CreateIfAbsent inserts n unless a row with the same recipient, actor,
	// type and entity exists. It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, n *models.Notification) (bool, error)
	DeleteMatching(ctx context.Context, userID, actorID string, typ models.NotificationType, entityID string) (int64, error)
	DeleteByEntity(ctx context.Context, typ models.NotificationType, entityID string) (int64, error)
	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, id primitive.ObjectID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	DeleteNotification(ctx context.Context, userID string, id primitive.ObjectID) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection(notificationsCollection)}
}

func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	n.Read = false
	_, err := r.collection.InsertOne(ctx, n)
	return translateErr(err, "notification")
}

func (r *MongoNotificationRepository) CreateIfAbsent(ctx context.Context, n *models.Notification) (bool, error) {
	filter := bson.M{
		"user_id":   n.UserID,
		"actor_id":  n.ActorID,
		"type":      n.Type,
		"entity_id": n.EntityID,
	}
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	n.Read = false
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        n.ID,
		"read":       false,
		"created_at": n.CreatedAt,
	}}

	res, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// a concurrent upsert won the unique index
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, translateErr(err, "notification")
	}
	return res.UpsertedCount > 0, nil
}

func (r *MongoNotificationRepository) DeleteMatching(ctx context.Context, userID, actorID string, typ models.NotificationType, entityID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{
		"user_id":   userID,
		"actor_id":  actorID,
		"type":      typ,
		"entity_id": entityID,
	})
	if err != nil {
		return 0, translateErr(err, "notification")
	}
	return res.DeletedCount, nil
}

func (r *MongoNotificationRepository) DeleteByEntity(ctx context.Context, typ models.NotificationType, entityID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"type": typ, "entity_id": entityID})
	if err != nil {
		return 0, translateErr(err, "notification")
	}
	return res.DeletedCount, nil
}

// ListForUser returns up to limit notifications, newest first.
func (r *MongoNotificationRepository) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["read"] = false
	}
	findOptions := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, translateErr(err, "notification")
	}
	defer cursor.Close(ctx)

	list := []models.Notification{}
	if err = cursor.All(ctx, &list); err != nil {
		return nil, translateErr(err, "notification")
	}
	return list, nil
}

func (r *MongoNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	return n, translateErr(err, "notification")
}

// MarkRead sets read on a notification owned by userID. A notification owned
// by anyone else is reported as not found.
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, userID string, id primitive.ObjectID) (*models.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n models.Notification
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
		opts,
	).Decode(&n)
	if err != nil {
		return nil, translateErr(err, "notification")
	}
	return &n, nil
}

func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, translateErr(err, "notification")
	}
	return res.ModifiedCount, nil
}

func (r *MongoNotificationRepository) DeleteNotification(ctx context.Context, userID string, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return translateErr(err, "notification")
	}
	if res.DeletedCount == 0 {
		return translateErr(mongo.ErrNoDocuments, "notification")
	}
	return nil
}
