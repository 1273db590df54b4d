package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nanogram/backend/internal/models"
)

type SaveToggler interface {
	ToggleSave(ctx context.Context, userID, postID string) (*models.SaveToggleResult, error)
}

type SavedLister interface {
	ListSaved(ctx context.Context, userID string, p models.Pagination) (*models.FeedPage, error)
}

// SavedPostHandler handles bookmarks.
type SavedPostHandler struct {
	toggler SaveToggler
	lister  SavedLister
}

func NewSavedPostHandler(toggler SaveToggler, lister SavedLister) *SavedPostHandler {
	return &SavedPostHandler{toggler: toggler, lister: lister}
}

func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group, auth RouteAuth) {
	g.POST("/posts/:id/save", h.ToggleSave, auth.Required)
	g.GET("/saved", h.GetSavedPosts, auth.Required)
}

func (h *SavedPostHandler) ToggleSave(c echo.Context) error {
	res, err := h.toggler.ToggleSave(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res)
}

// GetSavedPosts lists the viewer's saved posts, most recently saved first.
func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	page, err := h.lister.ListSaved(c.Request().Context(), getUserIDFromContext(c), pagination(c, models.DefaultListLimit))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, page)
}
