package services

import (
	"context"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/internal/repositories"
)

type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	users    repositories.UserRepository
}

func NewCommentService(
	comments repositories.CommentRepository,
	posts repositories.PostRepository,
	users repositories.UserRepository,
) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users}
}

// ListByPost returns a post's comments oldest first.
func (s *CommentService) ListByPost(ctx context.Context, viewerID, postID string, p models.Pagination) ([]models.CommentView, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.GetCommentsByPost(ctx, post.ID, p.Skip(), int64(p.Limit))
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.UserID)
	}
	authors, err := s.users.GetCompactByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		views = append(views, models.CommentView{
			ID:         c.ID.Hex(),
			PostID:     c.PostID.Hex(),
			Author:     authorOrStub(authors, c.UserID),
			Text:       c.Text,
			LikesCount: len(c.Likes),
			LikedByMe:  viewerID != "" && c.LikedBy(viewerID),
			CreatedAt:  c.CreatedAt,
		})
	}
	return views, nil
}
