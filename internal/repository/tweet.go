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

type TweetRepository struct {
	db *gorm.DB
}

func NewTweetRepository(db *gorm.DB) *TweetRepository {
	return &TweetRepository{db: db}
}

func (r *TweetRepository) Create(ctx context.Context, tweet *model.Tweet) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(tweet)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create tweet").
			Uint("owner_id", tweet.OwnerID).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "Tweet created successfully").
		Uint("tweet_id", tweet.ID).
		Uint("owner_id", tweet.OwnerID).
		Duration(duration).
		Log()

	return nil
}

func (r *TweetRepository) GetByID(ctx context.Context, id uint) (*model.Tweet, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByID")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var tweet model.Tweet
	result := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&tweet)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get tweet by ID").
			Uint("tweet_id", id).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &tweet, nil
}

// ListByOwner returns a page of one user's tweets, newest first.
func (r *TweetRepository) ListByOwner(ctx context.Context, ownerID uint, params constants.PaginationParams) ([]model.Tweet, int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ListByOwner")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Tweet{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count tweets").
			Uint("owner_id", ownerID).
			Err(err).
			Log()
		return nil, 0, err
	}

	var tweets []model.Tweet
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&tweets).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch tweets").
			Uint("owner_id", ownerID).
			Err(err).
			Log()
		return nil, 0, err
	}

	return tweets, total, nil
}

func (r *TweetRepository) Update(ctx context.Context, id uint, content string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Update")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.Tweet{}).Where("id = ?", id).Update("content", content)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update tweet").
			Uint("tweet_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *TweetRepository) Delete(ctx context.Context, id uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Delete")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Unscoped().Delete(&model.Tweet{}, id)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete tweet").
			Uint("tweet_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Tweet deleted successfully").
		Uint("tweet_id", id).
		Log()

	return nil
}
