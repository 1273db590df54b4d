package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like represents a like on a post. (user_id, post_id) is unique.
type Like struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"user_id"`
	PostID    primitive.ObjectID `json:"postId" bson:"post_id"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

type LikeToggleResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

type CommentLikeToggleResult struct {
	Comment CommentView `json:"comment"`
}
