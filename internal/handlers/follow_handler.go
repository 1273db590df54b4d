package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nanogram/backend/internal/models"
)

type FollowToggler interface {
	ToggleFollow(ctx context.Context, followerID, targetID string) (*models.FollowToggleResult, error)
}

type FollowLister interface {
	Followers(ctx context.Context, userID string, p models.Pagination) ([]models.UserCompact, error)
	Following(ctx context.Context, userID string, p models.Pagination) ([]models.UserCompact, error)
}

// FollowHandler handles the follow graph.
type FollowHandler struct {
	toggler FollowToggler
	lister  FollowLister
}

func NewFollowHandler(toggler FollowToggler, lister FollowLister) *FollowHandler {
	return &FollowHandler{toggler: toggler, lister: lister}
}

func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, auth RouteAuth) {
	g.POST("/users/:id/follow", h.ToggleFollow, auth.Required)
	g.GET("/users/:id/followers", h.GetFollowers, auth.Optional)
	g.GET("/users/:id/following", h.GetFollowing, auth.Optional)
}

// ToggleFollow follows or unfollows the user and returns the target's counts.
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	res, err := h.toggler.ToggleFollow(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res)
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	p := pagination(c, models.DefaultListLimit)
	users, err := h.lister.Followers(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return err
	}
	return respondWithMeta(c, http.StatusOK, users, pageMeta(p))
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	p := pagination(c, models.DefaultListLimit)
	users, err := h.lister.Following(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return err
	}
	return respondWithMeta(c, http.StatusOK, users, pageMeta(p))
}
