package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow is a directed edge. (follower_id, following_id) is unique.
type Follow struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FollowerID  string             `json:"followerId" bson:"follower_id"`
	FollowingID string             `json:"followingId" bson:"following_id"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
}

// FollowToggleResult carries the target's fresh counts.
type FollowToggleResult struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}
