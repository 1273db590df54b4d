package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SavedPost represents a bookmarked/saved post by a user
type SavedPost struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"user_id"`
	PostID    primitive.ObjectID `json:"postId" bson:"post_id"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

type SaveToggleResult struct {
	Saved bool `json:"saved"`
}
