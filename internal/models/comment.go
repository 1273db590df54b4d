package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is stored in MongoDB with the ids of users who liked it embedded.
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PostID    primitive.ObjectID `json:"postId" bson:"post_id"`
	UserID    string             `json:"userId" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	Likes     []string           `json:"-" bson:"likes"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// LikedBy reports whether userID is in the comment's like set.
func (c *Comment) LikedBy(userID string) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CommentView is a comment joined with its author and like state.
type CommentView struct {
	ID         string      `json:"id"`
	PostID     string      `json:"postId"`
	Author     UserCompact `json:"author"`
	Text       string      `json:"text"`
	LikesCount int         `json:"likesCount"`
	LikedByMe  bool        `json:"likedByMe"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Text string `json:"text" validate:"max=2200"`
}
