package repositories

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/anonto42/nanogram/backend/pkg/apperror"
)

// Collection names in the content database.
const (
	postsCollection         = "posts"
	commentsCollection      = "comments"
	likesCollection         = "likes"
	followsCollection       = "follows"
	savedPostsCollection    = "saved_posts"
	notificationsCollection = "notifications"
)

func toObjectID(id, resource string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.InvalidArgument(fmt.Sprintf("invalid %s id", resource))
	}
	return objID, nil
}

// toObjectIDs converts hex ids, silently skipping malformed entries.
func toObjectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, objID)
		}
	}
	return out
}

// translateErr maps driver errors onto apperror kinds.
func translateErr(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperror.NotFound(resource)
	case mongo.IsDuplicateKeyError(err):
		return &apperror.AppError{Kind: apperror.ErrConflict, Message: resource + " already exists", Err: err}
	default:
		return fmt.Errorf("%s store: %w", resource, err)
	}
}
