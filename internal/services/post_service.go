package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/internal/repositories"
	"github.com/anonto42/nanogram/backend/pkg/apperror"
	"github.com/anonto42/nanogram/backend/pkg/logger"
)

const maxCaptionLength = 2200

type PostService struct {
	posts         repositories.PostRepository
	users         repositories.UserRepository
	likes         repositories.LikeRepository
	comments      repositories.CommentRepository
	saved         repositories.SavedPostRepository
	notifications repositories.NotificationRepository
	enricher      *PostEnricher
}

func NewPostService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	likes repositories.LikeRepository,
	comments repositories.CommentRepository,
	saved repositories.SavedPostRepository,
	notifications repositories.NotificationRepository,
	enricher *PostEnricher,
) *PostService {
	return &PostService{
		posts:         posts,
		users:         users,
		likes:         likes,
		comments:      comments,
		saved:         saved,
		notifications: notifications,
		enricher:      enricher,
	}
}

func cleanCaption(caption string) (string, error) {
	caption = strings.TrimSpace(caption)
	if len([]rune(caption)) > maxCaptionLength {
		return "", apperror.InvalidArgument("caption must be at most 2200 characters")
	}
	return caption, nil
}

func (s *PostService) Create(ctx context.Context, userID, image, caption string) (*models.PostView, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	if image == "" {
		return nil, apperror.InvalidArgument("image is required")
	}
	caption, err := cleanCaption(caption)
	if err != nil {
		return nil, err
	}

	post := &models.Post{AuthorID: userID, Image: image, Caption: caption}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return s.enricher.EnrichOne(ctx, userID, post)
}

func (s *PostService) Get(ctx context.Context, viewerID, postID string) (*models.PostView, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichOne(ctx, viewerID, post)
}

// ListByUser returns a user's posts, newest first.
func (s *PostService) ListByUser(ctx context.Context, viewerID, userID string, p models.Pagination) (*models.FeedPage, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	total, err := s.posts.CountByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.GetPostsByAuthor(ctx, userID, p.Skip(), int64(p.Limit))
	if err != nil {
		return nil, err
	}
	items, err := s.enricher.Enrich(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}
	return &models.FeedPage{Items: items, Page: p.Page, Limit: p.Limit, Total: total}, nil
}

// ListSaved returns the viewer's saved posts, most recently saved first.
func (s *PostService) ListSaved(ctx context.Context, userID string, p models.Pagination) (*models.FeedPage, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	total, err := s.saved.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.saved.ListByUser(ctx, userID, p.Skip(), int64(p.Limit))
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(entries))
	for i, e := range entries {
		ids[i] = e.PostID
	}
	found, err := s.posts.GetPostsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Post, len(found))
	for _, post := range found {
		byID[post.ID] = post
	}
	// keep saved order, skip posts deleted since
	ordered := make([]models.Post, 0, len(found))
	for _, id := range ids {
		if post, ok := byID[id]; ok {
			ordered = append(ordered, post)
		}
	}

	items, err := s.enricher.Enrich(ctx, userID, ordered)
	if err != nil {
		return nil, err
	}
	return &models.FeedPage{Items: items, Page: p.Page, Limit: p.Limit, Total: total}, nil
}

func (s *PostService) loadOwned(ctx context.Context, userID, postID string) (*models.Post, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, apperror.Forbidden("only the author can modify this post")
	}
	return post, nil
}

func (s *PostService) UpdateCaption(ctx context.Context, userID, postID, caption string) (*models.PostView, error) {
	post, err := s.loadOwned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	caption, err = cleanCaption(caption)
	if err != nil {
		return nil, err
	}
	updated, err := s.posts.UpdateCaption(ctx, post.ID, caption)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichOne(ctx, userID, updated)
}

// Delete removes the post, then its likes, comments, saved entries and like
// notifications one after another. Cleanup failures are logged, not returned.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.loadOwned(ctx, userID, postID)
	if err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, post.ID); err != nil {
		return err
	}

	cascade := []struct {
		name string
		run  func() (int64, error)
	}{
		{"likes", func() (int64, error) { return s.likes.DeleteByPost(ctx, post.ID) }},
		{"comments", func() (int64, error) { return s.comments.DeleteByPost(ctx, post.ID) }},
		{"saved_posts", func() (int64, error) { return s.saved.DeleteByPost(ctx, post.ID) }},
		{"like_notifications", func() (int64, error) {
			return s.notifications.DeleteByEntity(ctx, models.NotificationLike, post.ID.Hex())
		}},
	}
	for _, step := range cascade {
		if _, err := step.run(); err != nil {
			logger.L().Warn("post delete cleanup failed",
				zap.String("step", step.name),
				zap.String("post_id", post.ID.Hex()),
				zap.Error(err),
			)
		}
	}
	return nil
}
