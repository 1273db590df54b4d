package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/internal/repositories"
	"github.com/anonto42/nanogram/backend/pkg/apperror"
)

func requireViewer(viewerID string) error {
	if viewerID == "" {
		return apperror.Unauthorized("authentication required")
	}
	return nil
}

// PostEnricher joins authors, counts and viewer flags onto posts using one
// batched query per relation.
type PostEnricher struct {
	users    repositories.UserRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	saved    repositories.SavedPostRepository
}

func NewPostEnricher(
	users repositories.UserRepository,
	likes repositories.LikeRepository,
	comments repositories.CommentRepository,
	saved repositories.SavedPostRepository,
) *PostEnricher {
	return &PostEnricher{users: users, likes: likes, comments: comments, saved: saved}
}

// Enrich builds views in the order of posts. Viewer flags stay false for an
// anonymous viewer.
func (e *PostEnricher) Enrich(ctx context.Context, viewerID string, posts []models.Post) ([]models.PostView, error) {
	views := make([]models.PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	ids := make([]primitive.ObjectID, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	authors, err := e.users.GetCompactByIDs(ctx, authorIDs(posts))
	if err != nil {
		return nil, err
	}
	likeCounts, err := e.likes.CountByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	commentCounts, err := e.comments.CountByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}

	liked := map[primitive.ObjectID]bool{}
	saved := map[primitive.ObjectID]bool{}
	if viewerID != "" {
		if liked, err = e.likes.LikedPostIDs(ctx, viewerID, ids); err != nil {
			return nil, err
		}
		if saved, err = e.saved.SavedPostIDs(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}

	for _, p := range posts {
		views = append(views, models.PostView{
			ID:            p.ID.Hex(),
			Author:        authorOrStub(authors, p.AuthorID),
			Image:         p.Image,
			Caption:       p.Caption,
			CreatedAt:     p.CreatedAt,
			LikesCount:    likeCounts[p.ID],
			CommentsCount: commentCounts[p.ID],
			LikedByMe:     liked[p.ID],
			SavedByMe:     saved[p.ID],
		})
	}
	return views, nil
}

// EnrichOne is Enrich for a single post.
func (e *PostEnricher) EnrichOne(ctx context.Context, viewerID string, post *models.Post) (*models.PostView, error) {
	views, err := e.Enrich(ctx, viewerID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func authorIDs(posts []models.Post) []string {
	seen := make(map[string]struct{}, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		seen[p.AuthorID] = struct{}{}
		ids = append(ids, p.AuthorID)
	}
	return ids
}

// authorOrStub falls back to an id-only projection for an unknown user.
func authorOrStub(authors map[string]models.UserCompact, id string) models.UserCompact {
	if a, ok := authors[id]; ok {
		return a
	}
	return models.UserCompact{ID: id}
}
