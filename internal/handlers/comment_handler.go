package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nanogram/backend/internal/models"
)

type CommentCreator interface {
	CreateComment(ctx context.Context, userID, postID, text string) (*models.CommentView, error)
}

type CommentLister interface {
	ListByPost(ctx context.Context, viewerID, postID string, p models.Pagination) ([]models.CommentView, error)
}

// CommentHandler handles comment creation and listing.
type CommentHandler struct {
	creator CommentCreator
	lister  CommentLister
}

func NewCommentHandler(creator CommentCreator, lister CommentLister) *CommentHandler {
	return &CommentHandler{creator: creator, lister: lister}
}

func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, auth RouteAuth) {
	g.POST("/posts/:id/comments", h.CreateComment, auth.Required)
	g.GET("/posts/:id/comments", h.GetCommentsForPost, auth.Optional)
}

func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.creator.CreateComment(c.Request().Context(), getUserIDFromContext(c), c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, comment)
}

// GetCommentsForPost lists a post's comments, oldest first.
func (h *CommentHandler) GetCommentsForPost(c echo.Context) error {
	p := pagination(c, models.DefaultListLimit)
	comments, err := h.lister.ListByPost(c.Request().Context(), getUserIDFromContext(c), c.Param("id"), p)
	if err != nil {
		return err
	}
	return respondWithMeta(c, http.StatusOK, comments, pageMeta(p))
}
