package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nanogram/backend/internal/models"
)

type FeedComposer interface {
	Home(ctx context.Context, viewerID string, p models.Pagination) (*models.FeedPage, error)
	Explore(ctx context.Context, viewerID string, p models.Pagination) (*models.FeedPage, error)
	ExploreSample(ctx context.Context, viewerID string, limit int) ([]models.SampleItem, error)
}

// FeedHandler serves the home and explore feeds.
type FeedHandler struct {
	feed FeedComposer
}

func NewFeedHandler(feed FeedComposer) *FeedHandler {
	return &FeedHandler{feed: feed}
}

func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, auth RouteAuth) {
	g.GET("/feed", h.GetHomeFeed, auth.Required)
	g.GET("/feed/explore", h.GetExploreFeed, auth.Optional)
	g.GET("/feed/explore/random", h.GetExploreSample, auth.Optional)
}

// GetHomeFeed returns posts from followed accounts, newest first.
func (h *FeedHandler) GetHomeFeed(c echo.Context) error {
	page, err := h.feed.Home(c.Request().Context(), getUserIDFromContext(c), pagination(c, models.DefaultFeedLimit))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, page)
}

// GetExploreFeed returns posts from accounts the viewer does not follow.
func (h *FeedHandler) GetExploreFeed(c echo.Context) error {
	page, err := h.feed.Explore(c.Request().Context(), getUserIDFromContext(c), pagination(c, models.DefaultFeedLimit))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, page)
}

func (h *FeedHandler) GetExploreSample(c echo.Context) error {
	limit := models.ClampLimit(c.QueryParam("limit"), models.DefaultSampleLimit)
	items, err := h.feed.ExploreSample(c.Request().Context(), getUserIDFromContext(c), limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"items": items})
}
