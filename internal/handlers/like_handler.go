package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nanogram/backend/internal/models"
)

type LikeToggler interface {
	ToggleLike(ctx context.Context, userID, postID string) (*models.LikeToggleResult, error)
	ToggleCommentLike(ctx context.Context, userID, commentID string) (*models.CommentLikeToggleResult, error)
}

// LikeHandler handles post and comment like toggles.
type LikeHandler struct {
	engagement LikeToggler
}

func NewLikeHandler(engagement LikeToggler) *LikeHandler {
	return &LikeHandler{engagement: engagement}
}

func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, auth RouteAuth) {
	g.POST("/posts/:id/like", h.TogglePostLike, auth.Required)
	g.POST("/comments/:id/like", h.ToggleCommentLike, auth.Required)
}

// TogglePostLike likes the post, or unlikes it when already liked.
func (h *LikeHandler) TogglePostLike(c echo.Context) error {
	res, err := h.engagement.ToggleLike(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res)
}

func (h *LikeHandler) ToggleCommentLike(c echo.Context) error {
	res, err := h.engagement.ToggleCommentLike(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res)
}
