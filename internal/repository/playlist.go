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

type PlaylistRepository struct {
	db *gorm.DB
}

func NewPlaylistRepository(db *gorm.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

func (r *PlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(playlist)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create playlist").
			Uint("owner_id", playlist.OwnerID).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "Playlist created successfully").
		Uint("playlist_id", playlist.ID).
		Uint("owner_id", playlist.OwnerID).
		Duration(duration).
		Log()

	return nil
}

func (r *PlaylistRepository) GetByID(ctx context.Context, id uint) (*model.Playlist, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByID")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var playlist model.Playlist
	result := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Joins("JOIN playlist_videos pv ON pv.video_id = videos.id").
				Order("pv.added_at ASC")
		}).
		Preload("Videos.Owner").
		Where("id = ?", id).
		First(&playlist)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get playlist by ID").
			Uint("playlist_id", id).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &playlist, nil
}

// ListByOwner returns a page of one user's playlists without their
// video contents.
func (r *PlaylistRepository) ListByOwner(ctx context.Context, ownerID uint, params constants.PaginationParams) ([]model.Playlist, int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ListByOwner")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Playlist{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count playlists").
			Uint("owner_id", ownerID).
			Err(err).
			Log()
		return nil, 0, err
	}

	var playlists []model.Playlist
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&playlists).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch playlists").
			Uint("owner_id", ownerID).
			Err(err).
			Log()
		return nil, 0, err
	}

	return playlists, total, nil
}

func (r *PlaylistRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Update")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.Playlist{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update playlist").
			Uint("playlist_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// AddVideo inserts a membership row. Re-adding the same video is a
// no-op thanks to the composite primary key conflict clause.
func (r *PlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "AddVideo")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	entry := model.PlaylistVideo{
		PlaylistID: playlistID,
		VideoID:    videoID,
		AddedAt:    time.Now(),
	}

	err := r.db.WithContext(ctx).
		Exec("INSERT INTO playlist_videos (playlist_id, video_id, added_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
			entry.PlaylistID, entry.VideoID, entry.AddedAt).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to add video to playlist").
			Uint("playlist_id", playlistID).
			Uint("video_id", videoID).
			Err(err).
			Log()
		return err
	}

	logger.DebugWithContext(ctx, "Video added to playlist").
		Uint("playlist_id", playlistID).
		Uint("video_id", videoID).
		Log()

	return nil
}

// RemoveVideo deletes a membership row. Removing a video that is not
// in the playlist reports not found.
func (r *PlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "RemoveVideo")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Delete(&model.PlaylistVideo{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to remove video from playlist").
			Uint("playlist_id", playlistID).
			Uint("video_id", videoID).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Delete removes the playlist and its membership rows. The videos
// themselves are untouched.
func (r *PlaylistRepository) Delete(ctx context.Context, id uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Delete")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&model.PlaylistVideo{}).Error; err != nil {
			return err
		}

		result := tx.Unscoped().Delete(&model.Playlist{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to delete playlist").
			Uint("playlist_id", id).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Playlist deleted successfully").
		Uint("playlist_id", id).
		Log()

	return nil
}
