package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/internal/repositories"
	"github.com/anonto42/nanogram/backend/pkg/apperror"
)

// NotificationListLimit caps how many notifications a list returns.
const NotificationListLimit = 100

// NotificationService resolves stored notifications into display views.
type NotificationService struct {
	notifications repositories.NotificationRepository
	comments      repositories.CommentRepository
	users         repositories.UserRepository
}

func NewNotificationService(
	notifications repositories.NotificationRepository,
	comments repositories.CommentRepository,
	users repositories.UserRepository,
) *NotificationService {
	return &NotificationService{notifications: notifications, comments: comments, users: users}
}

// List returns the viewer's newest notifications with actors joined and
// comment ids resolved to their post in one batch.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.NotificationView, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	list, err := s.notifications.ListForUser(ctx, userID, unreadOnly, NotificationListLimit)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, list)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (*models.UnreadCount, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	n, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UnreadCount{Count: n}, nil
}

// MarkRead marks one of the viewer's notifications read. Another user's
// notification is reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*models.NotificationView, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	id, err := parseNotificationID(notificationID)
	if err != nil {
		return nil, err
	}
	n, err := s.notifications.MarkRead(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	views, err := s.resolve(ctx, []models.Notification{*n})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (*models.MarkAllReadResult, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.MarkAllReadResult{Updated: n}, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) (*models.DeleteNotificationResult, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	id, err := parseNotificationID(notificationID)
	if err != nil {
		return nil, err
	}
	if err := s.notifications.DeleteNotification(ctx, userID, id); err != nil {
		return nil, err
	}
	return &models.DeleteNotificationResult{ID: notificationID, Deleted: true}, nil
}

func parseNotificationID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.InvalidArgument("invalid notification id")
	}
	return objID, nil
}

func (s *NotificationService) resolve(ctx context.Context, list []models.Notification) ([]models.NotificationView, error) {
	views := make([]models.NotificationView, 0, len(list))
	if len(list) == 0 {
		return views, nil
	}

	actorIDs := make([]string, 0, len(list))
	var commentIDs []primitive.ObjectID
	for _, n := range list {
		actorIDs = append(actorIDs, n.ActorID)
		if isCommentType(n.Type) {
			if id, err := primitive.ObjectIDFromHex(n.EntityID); err == nil {
				commentIDs = append(commentIDs, id)
			}
		}
	}

	actors, err := s.users.GetCompactByIDs(ctx, actorIDs)
	if err != nil {
		return nil, err
	}
	commentPosts, err := s.comments.PostIDsForComments(ctx, commentIDs)
	if err != nil {
		return nil, err
	}

	for _, n := range list {
		views = append(views, models.NotificationView{
			ID:        n.ID.Hex(),
			Type:      n.Type,
			EntityID:  n.EntityID,
			Actor:     authorOrStub(actors, n.ActorID),
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
			Subject:   subjectFor(n, commentPosts),
		})
	}
	return views, nil
}

func isCommentType(t models.NotificationType) bool {
	return t == models.NotificationComment || t == models.NotificationLikeComment
}

// subjectFor maps a notification to what it points at. A comment whose post
// can no longer be resolved keeps an empty post id.
func subjectFor(n models.Notification, commentPosts map[primitive.ObjectID]primitive.ObjectID) models.NotificationSubject {
	switch n.Type {
	case models.NotificationLike:
		return models.PostSubject{PostID: n.EntityID}
	case models.NotificationComment, models.NotificationLikeComment:
		subject := models.CommentSubject{CommentID: n.EntityID}
		if id, err := primitive.ObjectIDFromHex(n.EntityID); err == nil {
			if postID, ok := commentPosts[id]; ok {
				subject.PostID = postID.Hex()
			}
		}
		return subject
	case models.NotificationFollow:
		return models.UserSubject{UserID: n.EntityID}
	default:
		return nil
	}
}
