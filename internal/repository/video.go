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

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Create(ctx context.Context, video *model.Video) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(video)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create video").
			Uint("owner_id", video.OwnerID).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "Video created successfully").
		Uint("video_id", video.ID).
		Uint("owner_id", video.OwnerID).
		Duration(duration).
		Log()

	return nil
}

func (r *VideoRepository) GetByID(ctx context.Context, id uint) (*model.Video, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByID")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	var video model.Video

	result := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&video)
	duration := time.Since(start)

	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get video by ID").
			Uint("video_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &video, nil
}

// List returns videos visible to viewerID. Unpublished videos only
// surface for their owner; viewerID zero means anonymous.
func (r *VideoRepository) List(ctx context.Context, params constants.PaginationParams, ownerID uint, viewerID uint) ([]model.Video, int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "List")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()

	query := r.db.WithContext(ctx).Model(&model.Video{})

	if viewerID != 0 {
		query = query.Where("is_published = ? OR owner_id = ?", true, viewerID)
	} else {
		query = query.Where("is_published = ?", true)
	}

	if ownerID != 0 {
		query = query.Where("owner_id = ?", ownerID)
	}

	if params.Search != "" {
		searchPattern := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count videos").
			Err(err).
			Log()
		return nil, 0, err
	}

	sortBy := params.SortBy
	switch sortBy {
	case "views", "duration", "created_at", "title", "id":
	default:
		sortBy = "created_at"
	}

	var videos []model.Video
	err := query.Preload("Owner").
		Order(sortBy + " " + params.Order).
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&videos).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch videos").
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, 0, err
	}

	logger.DebugWithContext(ctx, "Videos retrieved successfully").
		Int64("total", total).
		Int("returned_count", len(videos)).
		Duration(time.Since(start)).
		Log()

	return videos, total, nil
}

// MediaIDsByOwner returns the storage object IDs of every video owned
// by ownerID, including unpublished ones. Used for media cleanup when
// an account is deleted.
func (r *VideoRepository) MediaIDsByOwner(ctx context.Context, ownerID uint) ([]string, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "MediaIDsByOwner")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var rows []struct {
		VideoID     string
		ThumbnailID string
	}
	err := r.db.WithContext(ctx).Model(&model.Video{}).
		Select("video_id", "thumbnail_id").
		Where("owner_id = ?", ownerID).
		Scan(&rows).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to list video media IDs").
			Uint("owner_id", ownerID).
			Err(err).
			Log()
		return nil, err
	}

	ids := make([]string, 0, len(rows)*2)
	for _, row := range rows {
		ids = append(ids, row.VideoID, row.ThumbnailID)
	}
	return ids, nil
}

// Update applies the given column changes
func (r *VideoRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Update")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).Updates(fields)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update video").
			Uint("video_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No video found to update").
			Uint("video_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	return nil
}

// IncrementViews bumps the view counter atomically.
func (r *VideoRepository) IncrementViews(ctx context.Context, id uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "IncrementViews")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.Video{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1"))
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to increment views").
			Uint("video_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

// Delete removes the video plus its comments, playlist memberships
// and watch entries in one transaction.
func (r *VideoRepository) Delete(ctx context.Context, id uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Delete")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("video_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&model.PlaylistVideo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&model.WatchEntry{}).Error; err != nil {
			return err
		}

		result := tx.Unscoped().Delete(&model.Video{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to delete video").
			Uint("video_id", id).
			Duration(duration).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Video deleted successfully").
		Uint("video_id", id).
		Duration(duration).
		Log()

	return nil
}
