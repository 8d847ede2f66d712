package service

import (
	"context"
	"strings"

	"github.com/mrJackie7/coderdev-hub/internal/models"
	"github.com/mrJackie7/coderdev-hub/internal/repository"
	"github.com/mrJackie7/coderdev-hub/internal/validation"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	UserID string
	Text   string
}

type AddCommentInput struct {
	PostID string
	UserID string
	Text   string
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx)
}

func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// Create stores a post with a snapshot of the author's name and avatar.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	var check validation.Checker
	check.Required("text", in.Text, "Text is required")
	if err := check.Err(); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:   author.ID,
		Text:     strings.TrimSpace(in.Text),
		Name:     author.Name,
		Avatar:   author.Avatar,
		Likes:    []models.Like{},
		Comments: []models.Comment{},
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post. Only its author may do so.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("User not authorized")
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *PostService) Like(ctx context.Context, postID, userID string) ([]models.Like, error) {
	return s.postRepo.AddLike(ctx, postID, userID)
}

func (s *PostService) Unlike(ctx context.Context, postID, userID string) ([]models.Like, error) {
	return s.postRepo.RemoveLike(ctx, postID, userID)
}

// AddComment appends a comment carrying the commenter's name and avatar.
func (s *PostService) AddComment(ctx context.Context, in AddCommentInput) ([]models.Comment, error) {
	var check validation.Checker
	check.Required("text", in.Text, "Text is required")
	if err := check.Err(); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	return s.postRepo.AddComment(ctx, in.PostID, &models.Comment{
		UserID: author.ID,
		Text:   strings.TrimSpace(in.Text),
		Name:   author.Name,
		Avatar: author.Avatar,
	})
}

// RemoveComment deletes a comment. The comment's author and the post's
// author may both remove it.
func (s *PostService) RemoveComment(ctx context.Context, postID, commentID, userID string) ([]models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := post.FindComment(commentID)
	if comment == nil {
		return nil, models.NewNotFoundMessage("Comment does not exist")
	}
	if comment.UserID != userID && post.UserID != userID {
		return nil, models.NewForbiddenError("User not authorized")
	}
	return s.postRepo.RemoveComment(ctx, postID, commentID)
}
