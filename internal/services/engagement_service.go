package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/internal/repositories"
	"github.com/anonto42/nanogram/backend/pkg/apperror"
	"github.com/anonto42/nanogram/backend/pkg/metrics"
)

// EngagementService toggles likes, saves and follows, creates comments, and
// emits the matching notifications.
//
// Every toggle reads current state, then ensures the opposite state. A
// unique-index conflict on insert means a concurrent request already made the
// edge present; it is reported as the toggled-on result without a second
// notification. A delete that removes nothing likewise reports toggled-off.
type EngagementService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	likes    repositories.LikeRepository
	saved    repositories.SavedPostRepository
	follows  repositories.FollowRepository
	users    repositories.UserRepository
	notifier *notifier
}

func NewEngagementService(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	likes repositories.LikeRepository,
	saved repositories.SavedPostRepository,
	follows repositories.FollowRepository,
	users repositories.UserRepository,
	notifications repositories.NotificationRepository,
) *EngagementService {
	return &EngagementService{
		posts:    posts,
		comments: comments,
		likes:    likes,
		saved:    saved,
		follows:  follows,
		users:    users,
		notifier: newNotifier(notifications),
	}
}

// ensurePresent runs create and folds a Conflict into "already present".
// It reports whether this call created the record.
func ensurePresent(store string, create func() error) (bool, error) {
	err := create()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperror.ErrConflict) {
		metrics.StoreConflicts.WithLabelValues(store).Inc()
		return false, nil
	}
	return false, err
}

func recordToggle(action string, on bool) {
	result := "off"
	if on {
		result = "on"
	}
	metrics.EngagementToggles.WithLabelValues(action, result).Inc()
}

// ToggleLike likes or unlikes a post. A like notifies the post author on
// every like; unliking leaves earlier like notifications in place.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, postID string) (*models.LikeToggleResult, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likes.HasLiked(ctx, userID, post.ID)
	if err != nil {
		return nil, err
	}

	if liked {
		if _, err := s.likes.DeleteLike(ctx, userID, post.ID); err != nil {
			return nil, err
		}
	} else {
		created, err := ensurePresent("like", func() error {
			return s.likes.CreateLike(ctx, userID, post.ID)
		})
		if err != nil {
			return nil, err
		}
		if created {
			s.notifier.emit(ctx, post.AuthorID, userID, models.NotificationLike, post.ID.Hex())
		}
	}
	recordToggle("like", !liked)

	count, err := s.likes.CountByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &models.LikeToggleResult{Liked: !liked, LikesCount: count}, nil
}

// ToggleCommentLike likes or unlikes a comment. Unliking removes the
// like_comment notification; liking creates one only if none exists.
func (s *EngagementService) ToggleCommentLike(ctx context.Context, userID, commentID string) (*models.CommentLikeToggleResult, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	alreadyLiked := comment.LikedBy(userID)
	entityID := comment.ID.Hex()

	var updated *models.Comment
	if alreadyLiked {
		updated, err = s.comments.RemoveLike(ctx, comment.ID, userID)
		if err != nil {
			return nil, err
		}
		s.notifier.retract(ctx, comment.UserID, userID, models.NotificationLikeComment, entityID)
	} else {
		updated, err = s.comments.AddLike(ctx, comment.ID, userID)
		if err != nil {
			return nil, err
		}
		s.notifier.emitOnce(ctx, comment.UserID, userID, models.NotificationLikeComment, entityID)
	}
	recordToggle("comment_like", !alreadyLiked)

	authors, err := s.users.GetCompactByIDs(ctx, []string{updated.UserID})
	if err != nil {
		return nil, err
	}
	return &models.CommentLikeToggleResult{Comment: models.CommentView{
		ID:         entityID,
		PostID:     updated.PostID.Hex(),
		Author:     authorOrStub(authors, updated.UserID),
		Text:       updated.Text,
		LikesCount: len(updated.Likes),
		LikedByMe:  !alreadyLiked,
		CreatedAt:  updated.CreatedAt,
	}}, nil
}

// ToggleFollow follows or unfollows targetID and returns the target's counts.
func (s *EngagementService) ToggleFollow(ctx context.Context, followerID, targetID string) (*models.FollowToggleResult, error) {
	if err := requireViewer(followerID); err != nil {
		return nil, err
	}
	if followerID == targetID {
		return nil, apperror.InvalidArgument("you cannot follow yourself")
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return nil, err
	}

	following, err := s.follows.IsFollowing(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}

	if following {
		if _, err := s.follows.DeleteFollow(ctx, followerID, targetID); err != nil {
			return nil, err
		}
	} else {
		created, err := ensurePresent("follow", func() error {
			return s.follows.CreateFollow(ctx, followerID, targetID)
		})
		if err != nil {
			return nil, err
		}
		if created {
			s.notifier.emit(ctx, targetID, followerID, models.NotificationFollow, targetID)
		}
	}
	recordToggle("follow", !following)

	followers, err := s.follows.GetFollowersCount(ctx, targetID)
	if err != nil {
		return nil, err
	}
	followingCount, err := s.follows.GetFollowingCount(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return &models.FollowToggleResult{
		Following:      !following,
		FollowersCount: followers,
		FollowingCount: followingCount,
	}, nil
}

// ToggleSave bookmarks or un-bookmarks a post. No notification.
func (s *EngagementService) ToggleSave(ctx context.Context, userID, postID string) (*models.SaveToggleResult, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	saved, err := s.saved.IsSaved(ctx, userID, post.ID)
	if err != nil {
		return nil, err
	}
	if saved {
		if _, err := s.saved.UnsavePost(ctx, userID, post.ID); err != nil {
			return nil, err
		}
	} else if _, err := ensurePresent("saved_post", func() error {
		return s.saved.SavePost(ctx, userID, post.ID)
	}); err != nil {
		return nil, err
	}
	recordToggle("save", !saved)

	return &models.SaveToggleResult{Saved: !saved}, nil
}

// CreateComment adds a comment to a post and notifies the post author.
func (s *EngagementService) CreateComment(ctx context.Context, userID, postID, text string) (*models.CommentView, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.InvalidArgument("comment text is required")
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: post.ID,
		UserID: userID,
		Text:   text,
		Likes:  []string{},
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	s.notifier.emit(ctx, post.AuthorID, userID, models.NotificationComment, comment.ID.Hex())

	authors, err := s.users.GetCompactByIDs(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	return &models.CommentView{
		ID:         comment.ID.Hex(),
		PostID:     post.ID.Hex(),
		Author:     authorOrStub(authors, userID),
		Text:       comment.Text,
		LikesCount: 0,
		LikedByMe:  false,
		CreatedAt:  comment.CreatedAt,
	}, nil
}
