package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"bloggazers/internal/models"
	"bloggazers/internal/repository"

	"gorm.io/gorm"
)

// CommentService manages threaded comments on posts.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

// NewCommentService creates a new comment service.
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

// CreateCommentInput carries a new comment. ParentID nil means top-level.
type CreateCommentInput struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

// Create adds a comment to a post. A reply's parent must exist and belong to
// the same post.
func (s *CommentService) Create(ctx context.Context, authorID, postID uint, input CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if _, err := s.posts.GetByID(ctx, postID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	if input.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *input.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Comment", *input.ParentID)
			}
			return nil, models.NewInternalError(err)
		}
		if parent.PostID != postID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  input.Content,
		ParentID: input.ParentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

// ListTree returns a post's comments assembled into a forest, newest roots
// first.
func (s *CommentService) ListTree(ctx context.Context, postID uint, viewerID uint) ([]*models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}

	flat, err := s.comments.ListByPost(ctx, postID, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return BuildCommentTree(flat), nil
}

// Update applies the author's single allowed edit. A second edit is rejected
// no matter who asks.
func (s *CommentService) Update(ctx context.Context, actorID, commentID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Comment content is required")
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, models.NewInternalError(err)
	}
	if comment.AuthorID != actorID {
		return nil, models.NewForbiddenError("Only the author can edit this comment")
	}
	if comment.EditedAt != nil {
		return nil, models.NewConflictError("Comments can only be edited once")
	}

	now := time.Now()
	comment.Content = content
	comment.EditedAt = &now
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

// Delete removes a comment together with every reply beneath it. Only the
// comment's author or an admin may delete.
func (s *CommentService) Delete(ctx context.Context, actor *models.User, commentID uint) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return models.NewInternalError(err)
	}
	if comment.AuthorID != actor.ID && !actor.IsAdmin() {
		return models.NewForbiddenError("Only the author can delete this comment")
	}

	flat, err := s.comments.ListByPost(ctx, comment.PostID, 0)
	if err != nil {
		return models.NewInternalError(err)
	}
	ids := append([]uint{commentID}, DescendantIDs(flat, commentID)...)
	if err := s.comments.DeleteBatch(ctx, ids); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Like records the viewer's like on a comment; repeats are no-ops.
func (s *CommentService) Like(ctx context.Context, userID, commentID uint) error {
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return models.NewInternalError(err)
	}
	if err := s.comments.Like(ctx, userID, commentID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Unlike removes the viewer's like; repeats are no-ops.
func (s *CommentService) Unlike(ctx context.Context, userID, commentID uint) error {
	if err := s.comments.Unlike(ctx, userID, commentID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Count returns the total number of comments.
func (s *CommentService) Count(ctx context.Context) (int64, error) {
	count, err := s.comments.Count(ctx)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
