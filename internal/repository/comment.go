package repository

import (
	"context"
	"time"

	"github.com/streamhive/streamhive/internal/constants"
	"github.com/streamhive/streamhive/internal/model"
	ctxutil "github.com/streamhive/streamhive/pkg/context"
	"github.com/streamhive/streamhive/pkg/logger"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(comment)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create comment").
			Uint("video_id", comment.VideoID).
			Uint("owner_id", comment.OwnerID).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "Comment created successfully").
		Uint("comment_id", comment.ID).
		Uint("video_id", comment.VideoID).
		Duration(duration).
		Log()

	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id uint) (*model.Comment, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByID")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var comment model.Comment
	result := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&comment)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get comment by ID").
			Uint("comment_id", id).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &comment, nil
}

// ListByVideo returns a page of comments for one video, newest first.
func (r *CommentRepository) ListByVideo(ctx context.Context, videoID uint, params constants.PaginationParams) ([]model.Comment, int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ListByVideo")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("video_id = ?", videoID).
		Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count comments").
			Uint("video_id", videoID).
			Err(err).
			Log()
		return nil, 0, err
	}

	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("video_id = ?", videoID).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&comments).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch comments").
			Uint("video_id", videoID).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, 0, err
	}

	return comments, total, nil
}

func (r *CommentRepository) Update(ctx context.Context, id uint, content string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Update")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("content", content)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update comment").
			Uint("comment_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Delete")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Unscoped().Delete(&model.Comment{}, id)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete comment").
			Uint("comment_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Comment deleted successfully").
		Uint("comment_id", id).
		Log()

	return nil
}
