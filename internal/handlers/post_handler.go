package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nanogram/backend/internal/models"
)

type PostManager interface {
	Create(ctx context.Context, userID, image, caption string) (*models.PostView, error)
	Get(ctx context.Context, viewerID, postID string) (*models.PostView, error)
	ListByUser(ctx context.Context, viewerID, userID string, p models.Pagination) (*models.FeedPage, error)
	UpdateCaption(ctx context.Context, userID, postID, caption string) (*models.PostView, error)
	Delete(ctx context.Context, userID, postID string) error
}

// PostHandler handles post CRUD.
type PostHandler struct {
	posts PostManager
}

func NewPostHandler(posts PostManager) *PostHandler {
	return &PostHandler{posts: posts}
}

func (h *PostHandler) RegisterPostRoutes(g *echo.Group, auth RouteAuth) {
	g.POST("/posts", h.CreatePost, auth.Required)
	g.GET("/posts/:id", h.GetPost, auth.Optional)
	g.PATCH("/posts/:id", h.UpdatePost, auth.Required)
	g.DELETE("/posts/:id", h.DeletePost, auth.Required)
	g.GET("/users/:id/posts", h.GetUserPosts, auth.Optional)
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.posts.Create(c.Request().Context(), getUserIDFromContext(c), req.Image, req.Caption)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, post)
}

func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.Get(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, post)
}

// UpdatePost changes the caption. Only the author may do this.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.posts.UpdateCaption(c.Request().Context(), getUserIDFromContext(c), c.Param("id"), req.Caption)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	id := c.Param("id")
	if err := h.posts.Delete(c.Request().Context(), getUserIDFromContext(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"id": id, "deleted": true})
}

func (h *PostHandler) GetUserPosts(c echo.Context) error {
	page, err := h.posts.ListByUser(c.Request().Context(), getUserIDFromContext(c), c.Param("id"), pagination(c, models.DefaultListLimit))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, page)
}
