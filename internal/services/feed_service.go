package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/internal/repositories"
	"github.com/anonto42/nanogram/backend/pkg/apperror"
	"github.com/anonto42/nanogram/backend/pkg/logger"
	"github.com/anonto42/nanogram/backend/pkg/metrics"
)

// ResolveHouseAccount looks up the excluded system account by username.
// A missing account yields "" so feeds skip that exclusion.
func ResolveHouseAccount(ctx context.Context, users repositories.UserRepository, username string) (string, error) {
	if username == "" {
		return "", nil
	}
	u, err := users.GetUserByUsername(ctx, username)
	if errors.Is(err, apperror.ErrNotFound) {
		logger.L().Warn("house account not found, feeds will not exclude it", zap.String("username", username))
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// FeedService composes the home and explore feeds.
type FeedService struct {
	posts          repositories.PostRepository
	follows        repositories.FollowRepository
	users          repositories.UserRepository
	enricher       *PostEnricher
	houseAccountID string
}

func NewFeedService(
	posts repositories.PostRepository,
	follows repositories.FollowRepository,
	users repositories.UserRepository,
	enricher *PostEnricher,
	houseAccountID string,
) *FeedService {
	return &FeedService{
		posts:          posts,
		follows:        follows,
		users:          users,
		enricher:       enricher,
		houseAccountID: houseAccountID,
	}
}

// Home returns posts by accounts the viewer follows, excluding the viewer
// and the house account, newest first.
func (s *FeedService) Home(ctx context.Context, viewerID string, p models.Pagination) (*models.FeedPage, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	metrics.FeedRequests.WithLabelValues("home").Inc()

	following, err := s.follows.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(following) == 0 {
		return emptyPage(p), nil
	}

	filter := repositories.FeedFilter{
		FollowedOnly: true,
		Following:    following,
		Excluded:     s.excluded(viewerID),
	}
	return s.page(ctx, viewerID, filter, p)
}

// Explore returns posts by accounts the viewer does not follow and is not,
// excluding the house account. The viewer may be anonymous.
func (s *FeedService) Explore(ctx context.Context, viewerID string, p models.Pagination) (*models.FeedPage, error) {
	metrics.FeedRequests.WithLabelValues("explore").Inc()

	filter, err := s.exploreFilter(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, viewerID, filter, p)
}

// ExploreSample draws a random sample of the explore population.
func (s *FeedService) ExploreSample(ctx context.Context, viewerID string, limit int) ([]models.SampleItem, error) {
	metrics.FeedRequests.WithLabelValues("explore_sample").Inc()

	limit = models.NewPagination(1, limit, models.DefaultSampleLimit).Limit

	filter, err := s.exploreFilter(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.SampleFeed(ctx, filter, limit)
	if err != nil {
		return nil, err
	}

	authors, err := s.users.GetCompactByIDs(ctx, authorIDs(posts))
	if err != nil {
		return nil, err
	}
	items := make([]models.SampleItem, 0, len(posts))
	for _, post := range posts {
		a := authorOrStub(authors, post.AuthorID)
		items = append(items, models.SampleItem{
			ID:        post.ID.Hex(),
			Author:    models.UserCompact{ID: a.ID, Username: a.Username, Avatar: a.Avatar},
			Image:     post.Image,
			Caption:   post.Caption,
			CreatedAt: post.CreatedAt,
		})
	}
	return items, nil
}

func (s *FeedService) exploreFilter(ctx context.Context, viewerID string) (repositories.FeedFilter, error) {
	var following []string
	if viewerID != "" {
		ids, err := s.follows.GetFollowingIDs(ctx, viewerID)
		if err != nil {
			return repositories.FeedFilter{}, err
		}
		following = ids
	}
	return repositories.FeedFilter{Following: following, Excluded: s.excluded(viewerID)}, nil
}

// excluded lists the viewer and house account ids that resolved.
func (s *FeedService) excluded(viewerID string) []string {
	var ids []string
	if viewerID != "" {
		ids = append(ids, viewerID)
	}
	if s.houseAccountID != "" {
		ids = append(ids, s.houseAccountID)
	}
	return ids
}

func (s *FeedService) page(ctx context.Context, viewerID string, filter repositories.FeedFilter, p models.Pagination) (*models.FeedPage, error) {
	total, err := s.posts.CountFeed(ctx, filter)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.FindFeed(ctx, filter, p.Skip(), int64(p.Limit))
	if err != nil {
		return nil, err
	}
	items, err := s.enricher.Enrich(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}
	return &models.FeedPage{Items: items, Page: p.Page, Limit: p.Limit, Total: total}, nil
}

func emptyPage(p models.Pagination) *models.FeedPage {
	return &models.FeedPage{Items: []models.PostView{}, Page: p.Page, Limit: p.Limit, Total: 0}
}
