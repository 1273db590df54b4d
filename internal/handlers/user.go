package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nanogram/backend/internal/models"
)

type ProfileManager interface {
	Me(ctx context.Context, userID string) (*models.User, error)
	GetByUsername(ctx context.Context, viewerID, username string) (*models.Profile, error)
	Update(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID, avatar string) (*models.User, error)
	Search(ctx context.Context, query string) ([]models.UserCompact, error)
}

// UserHandler handles the viewer's own profile and user lookup.
type UserHandler struct {
	profiles ProfileManager
}

func NewUserHandler(profiles ProfileManager) *UserHandler {
	return &UserHandler{profiles: profiles}
}

func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, auth RouteAuth) {
	g.GET("/me", h.GetMe, auth.Required)
	g.PATCH("/me", h.UpdateMe, auth.Required)
	g.PUT("/me/avatar", h.UpdateAvatar, auth.Required)
	g.GET("/users/search", h.SearchUsers, auth.Optional)
	g.GET("/users/by-username/:username", h.GetByUsername, auth.Optional)
}

func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := h.profiles.Me(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.profiles.Update(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	var req models.UpdateAvatarRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.profiles.UpdateAvatar(c.Request().Context(), getUserIDFromContext(c), req.Avatar)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

// SearchUsers matches ?q= against usernames and names.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	users, err := h.profiles.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, users)
}

func (h *UserHandler) GetByUsername(c echo.Context) error {
	profile, err := h.profiles.GetByUsername(c.Request().Context(), getUserIDFromContext(c), c.Param("username"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile)
}
