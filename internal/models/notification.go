package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationLike        NotificationType = "like"
	NotificationComment     NotificationType = "comment"
	NotificationLikeComment NotificationType = "like_comment"
	NotificationFollow      NotificationType = "follow"
)

// Notification is a fan-out record stored in MongoDB. EntityID holds a post
// id for like, a comment id for comment and like_comment, and the followed
// user's id for follow.
type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"user_id"`
	ActorID   string             `json:"actorId" bson:"actor_id"`
	Type      NotificationType   `json:"type" bson:"type"`
	EntityID  string             `json:"entityId" bson:"entity_id"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// NotificationSubject is what a notification points at. The set of
// implementations is closed: PostSubject, CommentSubject, UserSubject.
type NotificationSubject interface {
	notificationSubject()
}

type PostSubject struct {
	PostID string
}

type CommentSubject struct {
	PostID    string
	CommentID string
}

type UserSubject struct {
	UserID string
}

func (PostSubject) notificationSubject()    {}
func (CommentSubject) notificationSubject() {}
func (UserSubject) notificationSubject()    {}

// NotificationView is a notification resolved for display.
type NotificationView struct {
	ID        string
	Type      NotificationType
	EntityID  string
	Actor     UserCompact
	Read      bool
	CreatedAt time.Time
	Subject   NotificationSubject
}

type notificationJSON struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	EntityID  string           `json:"entityId"`
	Actor     UserCompact      `json:"actor"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
	PostID    string           `json:"postId,omitempty"`
	CommentID string           `json:"commentId,omitempty"`
}

func (v NotificationView) MarshalJSON() ([]byte, error) {
	out := notificationJSON{
		ID:        v.ID,
		Type:      v.Type,
		EntityID:  v.EntityID,
		Actor:     v.Actor,
		Read:      v.Read,
		CreatedAt: v.CreatedAt,
	}
	switch s := v.Subject.(type) {
	case PostSubject:
		out.PostID = s.PostID
	case CommentSubject:
		out.PostID = s.PostID
		out.CommentID = s.CommentID
	case UserSubject:
	}
	return json.Marshal(out)
}

type UnreadCount struct {
	Count int64 `json:"count"`
}

type MarkAllReadResult struct {
	Updated int64 `json:"updated"`
}

type DeleteNotificationResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
