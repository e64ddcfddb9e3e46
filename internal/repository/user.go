package repository

import (
	"context"
	"errors"
	"time"

	"github.com/streamhive/streamhive/internal/model"
	ctxutil "github.com/streamhive/streamhive/pkg/context"
	"github.com/streamhive/streamhive/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByID")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to get user by ID").
			Uint("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "User retrieved successfully").
		Uint("user_id", id).
		Duration(duration).
		Log()

	return &user, nil
}

// GetByUsername finds user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByUsername")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("username = ?", username).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get user by username").
			String("username", username).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

// GetByLogin finds user by username or email for credential checks.
func (r *UserRepository) GetByLogin(ctx context.Context, username, email string) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByLogin")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	var user model.User

	query := r.db.WithContext(ctx)
	switch {
	case username != "" && email != "":
		query = query.Where("username = ? OR email = ?", username, email)
	case username != "":
		query = query.Where("username = ?", username)
	default:
		query = query.Where("email = ?", email)
	}

	result := query.First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get user by login").
			String("username", username).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

// ExistsByUsernameOrEmail reports whether any user already holds
// either identifier.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ExistsByUsernameOrEmail")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var count int64
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to check user existence").
			String("username", username).
			Err(result.Error).
			Log()
		return false, result.Error
	}

	return count > 0, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", user.Username).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "User created successfully").
		String("username", user.Username).
		Uint("user_id", user.ID).
		Duration(duration).
		Log()

	return nil
}

// UpdateAccount updates mutable account fields
func (r *UserRepository) UpdateAccount(ctx context.Context, id uint, fields map[string]interface{}) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdateAccount")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user account").
			Uint("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No user found to update").
			Uint("user_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	return nil
}

// UpdatePassword updates user password
func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdatePassword")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password", hashedPassword)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user password").
			Uint("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "User password updated successfully").
		Uint("user_id", id).
		Duration(duration).
		Log()

	return nil
}

// UpdateLastLogin updates the last login timestamp
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdateLastLogin")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", time.Now())
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update last login").
			Uint("user_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

// SetRefreshToken stores the currently valid refresh token, or clears
// it when token is nil.
func (r *UserRepository) SetRefreshToken(ctx context.Context, id uint, token *string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "SetRefreshToken")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("refresh_token", token)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to set refresh token").
			Uint("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No user found to set refresh token").
			Uint("user_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	logger.DebugWithContext(ctx, "Refresh token updated").
		Uint("user_id", id).
		Bool("cleared", token == nil).
		Duration(duration).
		Log()

	return nil
}

// RotateRefreshToken swaps oldToken for newToken in one conditional
// UPDATE. RowsAffected is zero when the stored token no longer matches,
// which serializes concurrent refresh attempts: only the first caller
// with a given token wins.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, id uint, oldToken, newToken string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "RotateRefreshToken")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND refresh_token = ?", id, oldToken).
		Update("refresh_token", newToken)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to rotate refresh token").
			Uint("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "Refresh token rotation lost the race or token mismatch").
			Uint("user_id", id).
			Duration(duration).
			Log()
		return gorm.ErrRecordNotFound
	}

	logger.DebugWithContext(ctx, "Refresh token rotated successfully").
		Uint("user_id", id).
		Duration(duration).
		Log()

	return nil
}

// UpdateMedia replaces the avatar or cover URL plus its object ID.
func (r *UserRepository) UpdateMedia(ctx context.Context, id uint, fields map[string]interface{}) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdateMedia")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user media").
			Uint("user_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ChannelStats aggregates the published output of a channel.
func (r *UserRepository) ChannelStats(ctx context.Context, userID uint) (videoCount int64, totalViews int64, err error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ChannelStats")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	query := r.db.WithContext(ctx).Model(&model.Video{}).
		Where("owner_id = ? AND is_published = ?", userID, true)

	if err = query.Count(&videoCount).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count channel videos").
			Uint("user_id", userID).
			Err(err).
			Log()
		return 0, 0, err
	}

	row := r.db.WithContext(ctx).Model(&model.Video{}).
		Where("owner_id = ? AND is_published = ?", userID, true).
		Select("COALESCE(SUM(views), 0)").
		Row()
	if err = row.Scan(&totalViews); err != nil {
		logger.ErrorWithContext(ctx, "Failed to sum channel views").
			Uint("user_id", userID).
			Err(err).
			Log()
		return 0, 0, err
	}

	return videoCount, totalViews, nil
}

// AddWatchEntry appends a playback record to the user's history.
func (r *UserRepository) AddWatchEntry(ctx context.Context, userID, videoID uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "AddWatchEntry")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	entry := model.WatchEntry{
		UserID:    userID,
		VideoID:   videoID,
		WatchedAt: time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to record watch entry").
			Uint("user_id", userID).
			Uint("video_id", videoID).
			Err(err).
			Log()
		return err
	}

	return nil
}

// WatchHistory returns the user's playback records, newest first.
func (r *UserRepository) WatchHistory(ctx context.Context, userID uint, limit, offset int) ([]model.WatchEntry, int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "WatchHistory")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.WatchEntry{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.WatchEntry
	err := r.db.WithContext(ctx).
		Preload("Video").
		Preload("Video.Owner").
		Where("user_id = ?", userID).
		Order("watched_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch watch history").
			Uint("user_id", userID).
			Err(err).
			Log()
		return nil, 0, err
	}

	return entries, total, nil
}

// Delete hard-deletes the user and everything they own: videos (with
// the comments, playlist memberships and watch entries on those
// videos), their own comments, tweets, playlists and watch history.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Delete")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		videoIDs := tx.Model(&model.Video{}).Select("id").Where("owner_id = ?", id)
		playlistIDs := tx.Model(&model.Playlist{}).Select("id").Where("owner_id = ?", id)

		if err := tx.Unscoped().Where("video_id IN (?) OR owner_id = ?", videoIDs, id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id IN (?) OR playlist_id IN (?)", videoIDs, playlistIDs).Delete(&model.PlaylistVideo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id IN (?) OR user_id = ?", videoIDs, id).Delete(&model.WatchEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("owner_id = ?", id).Delete(&model.Playlist{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("owner_id = ?", id).Delete(&model.Tweet{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("owner_id = ?", id).Delete(&model.Video{}).Error; err != nil {
			return err
		}

		result := tx.Unscoped().Delete(&model.User{}, id)
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
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		logger.ErrorWithContext(ctx, "Failed to delete user").
			Uint("user_id", id).
			Duration(duration).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "User deleted successfully").
		Uint("user_id", id).
		Duration(duration).
		Log()

	return nil
}
