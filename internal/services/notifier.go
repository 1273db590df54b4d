package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/internal/repositories"
	"github.com/anonto42/nanogram/backend/pkg/logger"
	"github.com/anonto42/nanogram/backend/pkg/metrics"
)

// notifier writes notification side effects. The primary write has already
// succeeded when it runs, so a failure here is logged and never returned:
// a failed notification does not roll back the like, comment or follow.
type notifier struct {
	repo repositories.NotificationRepository
}

func newNotifier(repo repositories.NotificationRepository) *notifier {
	return &notifier{repo: repo}
}

// emit always inserts a new row. Self-actions are dropped.
func (n *notifier) emit(ctx context.Context, recipientID, actorID string, typ models.NotificationType, entityID string) {
	if recipientID == actorID {
		return
	}
	err := n.repo.CreateNotification(ctx, &models.Notification{
		UserID:   recipientID,
		ActorID:  actorID,
		Type:     typ,
		EntityID: entityID,
	})
	if err != nil {
		n.warn("emit", typ, entityID, err)
		return
	}
	metrics.NotificationsEmitted.WithLabelValues(string(typ)).Inc()
}

// emitOnce inserts unless an identical (recipient, actor, type, entity) row exists.
func (n *notifier) emitOnce(ctx context.Context, recipientID, actorID string, typ models.NotificationType, entityID string) {
	if recipientID == actorID {
		return
	}
	created, err := n.repo.CreateIfAbsent(ctx, &models.Notification{
		UserID:   recipientID,
		ActorID:  actorID,
		Type:     typ,
		EntityID: entityID,
	})
	if err != nil {
		n.warn("emit once", typ, entityID, err)
		return
	}
	if created {
		metrics.NotificationsEmitted.WithLabelValues(string(typ)).Inc()
	}
}

// retract removes rows previously created for (recipient, actor, type, entity).
func (n *notifier) retract(ctx context.Context, recipientID, actorID string, typ models.NotificationType, entityID string) {
	if _, err := n.repo.DeleteMatching(ctx, recipientID, actorID, typ, entityID); err != nil {
		n.warn("retract", typ, entityID, err)
	}
}

func (n *notifier) warn(op string, typ models.NotificationType, entityID string, err error) {
	logger.L().Warn("notification side effect failed",
		zap.String("op", op),
		zap.String("type", string(typ)),
		zap.String("entity_id", entityID),
		zap.Error(err),
	)
}
