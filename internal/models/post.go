package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AuthorID  string             `json:"authorId" bson:"author_id"`
	Image     string             `json:"image" bson:"image"`
	Caption   string             `json:"caption" bson:"caption"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// PostView is a post joined with its author and engagement counts.
type PostView struct {
	ID            string      `json:"id"`
	Author        UserCompact `json:"author"`
	Image         string      `json:"image"`
	Caption       string      `json:"caption"`
	CreatedAt     time.Time   `json:"createdAt"`
	LikesCount    int64       `json:"likesCount"`
	CommentsCount int64       `json:"commentsCount"`
	LikedByMe     bool        `json:"likedByMe"`
	SavedByMe     bool        `json:"savedByMe"`
}

// SampleItem is the lighter projection returned by the random explore sample.
type SampleItem struct {
	ID        string      `json:"id"`
	Author    UserCompact `json:"author"`
	Image     string      `json:"image"`
	Caption   string      `json:"caption"`
	CreatedAt time.Time   `json:"createdAt"`
}

// FeedPage is one page of a reverse-chronological feed.
type FeedPage struct {
	Items []PostView `json:"items"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Total int64      `json:"total"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Image   string `json:"image" validate:"required"`
	Caption string `json:"caption" validate:"max=2200"`
}

// UpdatePostRequest defines the request body for updating a post caption
type UpdatePostRequest struct {
	Caption string `json:"caption" validate:"max=2200"`
}
