package service

import (
	"context"

	"github.com/streamhive/streamhive/internal/constants"
	"github.com/streamhive/streamhive/internal/model"
)

// Store interfaces decouple the services from gorm so tests can run
// against in-memory fakes. The repository package provides the real
// implementations.

type UserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByLogin(ctx context.Context, username, email string) (*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user *model.User) error
	UpdateAccount(ctx context.Context, id uint, fields map[string]interface{}) error
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
	UpdateLastLogin(ctx context.Context, id uint) error
	SetRefreshToken(ctx context.Context, id uint, token *string) error
	RotateRefreshToken(ctx context.Context, id uint, oldToken, newToken string) error
	UpdateMedia(ctx context.Context, id uint, fields map[string]interface{}) error
	ChannelStats(ctx context.Context, userID uint) (int64, int64, error)
	AddWatchEntry(ctx context.Context, userID, videoID uint) error
	WatchHistory(ctx context.Context, userID uint, limit, offset int) ([]model.WatchEntry, int64, error)
	Delete(ctx context.Context, id uint) error
}

type VideoStore interface {
	Create(ctx context.Context, video *model.Video) error
	GetByID(ctx context.Context, id uint) (*model.Video, error)
	List(ctx context.Context, params constants.PaginationParams, ownerID uint, viewerID uint) ([]model.Video, int64, error)
	MediaIDsByOwner(ctx context.Context, ownerID uint) ([]string, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	IncrementViews(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id uint) (*model.Comment, error)
	ListByVideo(ctx context.Context, videoID uint, params constants.PaginationParams) ([]model.Comment, int64, error)
	Update(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
}

type TweetStore interface {
	Create(ctx context.Context, tweet *model.Tweet) error
	GetByID(ctx context.Context, id uint) (*model.Tweet, error)
	ListByOwner(ctx context.Context, ownerID uint, params constants.PaginationParams) ([]model.Tweet, int64, error)
	Update(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
}

type PlaylistStore interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	GetByID(ctx context.Context, id uint) (*model.Playlist, error)
	ListByOwner(ctx context.Context, ownerID uint, params constants.PaginationParams) ([]model.Playlist, int64, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	AddVideo(ctx context.Context, playlistID, videoID uint) error
	RemoveVideo(ctx context.Context, playlistID, videoID uint) error
	Delete(ctx context.Context, id uint) error
}
