package repository

import (
	"context"
	"fmt"

	"github.com/mrJackie7/coderdev-hub/internal/models"

	"gorm.io/gorm"
)

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository instance.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func errPostNotFound() *models.AppError {
	return models.NewNotFoundMessage("Post not found")
}

func (r *postRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.withRelations(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, notFoundOr(err, errPostNotFound())
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.withRelations(ctx).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPostNotFound()
		}
		return nil
	})
}

func (r *postRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Post{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("post_id IN (?)", owned).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN (?)", owned).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("user_id = ?", userID).Delete(&models.Post{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("delete posts by user: %w", err)
	}
	return deleted, nil
}

func (r *postRepository) ensureExists(ctx context.Context, postID string) error {
	var post models.Post
	err := r.db.WithContext(ctx).Select("id").Where("id = ?", postID).First(&post).Error
	return notFoundOr(err, errPostNotFound())
}

func (r *postRepository) likes(ctx context.Context, postID string) ([]models.Like, error) {
	likes := []models.Like{}
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at DESC").Find(&likes).Error
	return likes, err
}

func (r *postRepository) comments(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

func (r *postRepository) AddLike(ctx context.Context, postID, userID string) ([]models.Like, error) {
	if err := r.ensureExists(ctx, postID); err != nil {
		return nil, err
	}
	like := &models.Like{PostID: postID, UserID: userID}
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.NewAlreadyLikedError()
		}
		return nil, fmt.Errorf("like post: %w", err)
	}
	return r.likes(ctx, postID)
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID string) ([]models.Like, error) {
	if err := r.ensureExists(ctx, postID); err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return nil, fmt.Errorf("unlike post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotLikedError()
	}
	return r.likes(ctx, postID)
}

func (r *postRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) ([]models.Comment, error) {
	if err := r.ensureExists(ctx, postID); err != nil {
		return nil, err
	}
	comment.PostID = postID
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return r.comments(ctx, postID)
}

func (r *postRepository) RemoveComment(ctx context.Context, postID, commentID string) ([]models.Comment, error) {
	if err := r.ensureExists(ctx, postID); err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Where("id = ? AND post_id = ?", commentID, postID).Delete(&models.Comment{})
	if res.Error != nil {
		return nil, fmt.Errorf("remove comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundMessage("Comment does not exist")
	}
	return r.comments(ctx, postID)
}
