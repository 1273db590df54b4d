package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nanogram/backend/internal/models"
)

type NotificationReader interface {
	List(ctx context.Context, userID string, unreadOnly bool) ([]models.NotificationView, error)
	UnreadCount(ctx context.Context, userID string) (*models.UnreadCount, error)
	MarkRead(ctx context.Context, userID, notificationID string) (*models.NotificationView, error)
	MarkAllRead(ctx context.Context, userID string) (*models.MarkAllReadResult, error)
	Delete(ctx context.Context, userID, notificationID string) (*models.DeleteNotificationResult, error)
}

// NotificationHandler serves the viewer's notification inbox.
type NotificationHandler struct {
	notifications NotificationReader
}

func NewNotificationHandler(notifications NotificationReader) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, auth RouteAuth) {
	n := g.Group("/notifications", auth.Required)
	n.GET("", h.GetNotifications)
	n.GET("/unread-count", h.GetUnreadCount)
	n.PATCH("/read-all", h.MarkAllAsRead)
	n.PATCH("/:id/read", h.MarkAsRead)
	n.DELETE("/:id", h.DeleteNotification)
}

// GetNotifications lists the newest notifications; ?unread=true filters to unread.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread"))
	list, err := h.notifications.List(c.Request().Context(), getUserIDFromContext(c), unreadOnly)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, list)
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notifications.UnreadCount(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, count)
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	n, err := h.notifications.MarkRead(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	res, err := h.notifications.MarkAllRead(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res)
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	res, err := h.notifications.Delete(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res)
}
