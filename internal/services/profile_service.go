package services

import (
	"context"
	"strings"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/internal/repositories"
	"github.com/anonto42/nanogram/backend/pkg/apperror"
	"github.com/anonto42/nanogram/backend/pkg/sanitize"
)

const maxSearchResults = 20

type ProfileService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
	posts   repositories.PostRepository
}

func NewProfileService(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	posts repositories.PostRepository,
) *ProfileService {
	return &ProfileService{users: users, follows: follows, posts: posts}
}

func (s *ProfileService) Me(ctx context.Context, userID string) (*models.User, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	return s.users.GetUserByID(ctx, userID)
}

// GetByUsername returns a profile with counts and whether the viewer follows it.
func (s *ProfileService) GetByUsername(ctx context.Context, viewerID, username string) (*models.Profile, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.ToLower(username))
	if err != nil {
		return nil, err
	}
	followers, err := s.follows.GetFollowersCount(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.GetFollowingCount(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.CountByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	isFollowing := false
	if viewerID != "" && viewerID != user.ID {
		if isFollowing, err = s.follows.IsFollowing(ctx, viewerID, user.ID); err != nil {
			return nil, err
		}
	}
	return &models.Profile{
		User:           user.ToPublic(),
		FollowersCount: followers,
		FollowingCount: following,
		PostsCount:     posts,
		IsFollowing:    isFollowing,
	}, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if len([]rune(bio)) > 160 {
			return nil, apperror.InvalidArgument("bio must be at most 160 characters")
		}
		user.Bio = bio
	}
	if req.Website != nil {
		user.Website = strings.TrimSpace(*req.Website)
	}
	if req.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*req.Username))
		if username != user.Username {
			if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
				return nil, apperror.Conflict("username already taken")
			} else if !isNotFound(err) {
				return nil, err
			}
			user.Username = username
		}
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) UpdateAvatar(ctx context.Context, userID, avatar string) (*models.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(avatar) == "" {
		return nil, apperror.InvalidArgument("avatar is required")
	}
	user.Avatar = avatar
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Search matches username or name substrings, at most 20 results.
func (s *ProfileService) Search(ctx context.Context, query string) ([]models.UserCompact, error) {
	query = sanitize.SearchTerm(query)
	if query == "" {
		return []models.UserCompact{}, nil
	}
	users, err := s.users.SearchUsers(ctx, query, maxSearchResults)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserCompact, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToCompact())
	}
	return out, nil
}

func (s *ProfileService) Followers(ctx context.Context, userID string, p models.Pagination) ([]models.UserCompact, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.follows.ListFollowerIDs(ctx, userID, p.Skip(), int64(p.Limit))
	if err != nil {
		return nil, err
	}
	return s.compactInOrder(ctx, ids)
}

func (s *ProfileService) Following(ctx context.Context, userID string, p models.Pagination) ([]models.UserCompact, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.follows.ListFollowingIDs(ctx, userID, p.Skip(), int64(p.Limit))
	if err != nil {
		return nil, err
	}
	return s.compactInOrder(ctx, ids)
}

func (s *ProfileService) compactInOrder(ctx context.Context, ids []string) ([]models.UserCompact, error) {
	users, err := s.users.GetCompactByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserCompact, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
