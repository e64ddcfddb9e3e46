package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/streamhive/streamhive/internal/constants"
	"github.com/streamhive/streamhive/internal/dto"
	apperrors "github.com/streamhive/streamhive/internal/errors"
	"github.com/streamhive/streamhive/internal/model"
	ctxutil "github.com/streamhive/streamhive/pkg/context"
	"github.com/streamhive/streamhive/pkg/logger"
	"gorm.io/gorm"
)

type PlaylistService struct {
	repoPlaylist PlaylistStore
	repoVideo    VideoStore
	repoUser     UserStore
}

func NewPlaylistService(repoPlaylist PlaylistStore, repoVideo VideoStore, repoUser UserStore) *PlaylistService {
	return &PlaylistService{
		repoPlaylist: repoPlaylist,
		repoVideo:    repoVideo,
		repoUser:     repoUser,
	}
}

func toPlaylistResponse(playlist *model.Playlist) *dto.PlaylistResponse {
	videos := make([]dto.VideoResponse, 0, len(playlist.Videos))
	for i := range playlist.Videos {
		videos = append(videos, *toVideoResponse(&playlist.Videos[i]))
	}

	return &dto.PlaylistResponse{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		Owner:       toOwnerResponse(&playlist.Owner),
		Videos:      videos,
		VideoCount:  len(videos),
		CreatedAt:   playlist.CreatedAt,
		UpdatedAt:   playlist.UpdatedAt,
	}
}

func (s *PlaylistService) Create(ctx context.Context, ownerID uint, req *dto.CreatePlaylistRequest) (*dto.PlaylistResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	playlist := &model.Playlist{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		OwnerID:     ownerID,
	}

	if err := s.repoPlaylist.Create(ctx, playlist); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create playlist").
			Uint("owner_id", ownerID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Playlist created").
		Uint("playlist_id", playlist.ID).
		Log()

	stored, err := s.repoPlaylist.GetByID(ctx, playlist.ID)
	if err != nil {
		return toPlaylistResponse(playlist), nil
	}
	return toPlaylistResponse(stored), nil
}

// Get returns one playlist with its videos in insertion order.
func (s *PlaylistService) Get(ctx context.Context, id uint) (*dto.PlaylistResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Get")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	playlist, err := s.repoPlaylist.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlaylistNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return toPlaylistResponse(playlist), nil
}

// ListByUser returns a page of one channel's playlists.
func (s *PlaylistService) ListByUser(ctx context.Context, username string, params constants.PaginationParams) ([]dto.PlaylistResponse, int64, int, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ListByUser")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	owner, err := s.repoUser.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, 0, apperrors.ErrUserNotFound
		}
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	playlists, total, err := s.repoPlaylist.ListByOwner(ctx, owner.ID, params)
	if err != nil {
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.PlaylistResponse, 0, len(playlists))
	for i := range playlists {
		res = append(res, *toPlaylistResponse(&playlists[i]))
	}

	pageTotal := int(math.Ceil(float64(total) / float64(params.Limit)))

	return res, total, pageTotal, nil
}

// Update renames or re-describes a playlist. Only the owner may update.
func (s *PlaylistService) Update(ctx context.Context, id, callerID uint, req *dto.UpdatePlaylistRequest) (*dto.PlaylistResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Update")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if _, err := loadOwned(ctx, s.repoPlaylist.GetByID, id, callerID, apperrors.ErrPlaylistNotFound); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		fields["description"] = strings.TrimSpace(req.Description)
	}
	if len(fields) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "nothing to update")
	}

	if err := s.repoPlaylist.Update(ctx, id, fields); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	updated, err := s.repoPlaylist.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Playlist updated").
		Uint("playlist_id", id).
		Log()

	return toPlaylistResponse(updated), nil
}

// AddVideo appends a video to a playlist. Re-adding an existing member
// is a no-op. Only the playlist owner may add.
func (s *PlaylistService) AddVideo(ctx context.Context, playlistID, videoID, callerID uint) (*dto.PlaylistResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "AddVideo")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if _, err := loadOwned(ctx, s.repoPlaylist.GetByID, playlistID, callerID, apperrors.ErrPlaylistNotFound); err != nil {
		return nil, err
	}

	video, err := s.repoVideo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVideoNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !video.IsPublished && video.OwnerID != callerID {
		return nil, apperrors.ErrVideoNotFound
	}

	if err := s.repoPlaylist.AddVideo(ctx, playlistID, videoID); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Video added to playlist").
		Uint("playlist_id", playlistID).
		Uint("video_id", videoID).
		Log()

	return s.Get(ctx, playlistID)
}

// RemoveVideo drops a video from a playlist. Only the playlist owner
// may remove.
func (s *PlaylistService) RemoveVideo(ctx context.Context, playlistID, videoID, callerID uint) (*dto.PlaylistResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "RemoveVideo")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if _, err := loadOwned(ctx, s.repoPlaylist.GetByID, playlistID, callerID, apperrors.ErrPlaylistNotFound); err != nil {
		return nil, err
	}

	if err := s.repoPlaylist.RemoveVideo(ctx, playlistID, videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrVideoNotFound, "video is not in this playlist")
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Video removed from playlist").
		Uint("playlist_id", playlistID).
		Uint("video_id", videoID).
		Log()

	return s.Get(ctx, playlistID)
}

// Delete removes a playlist and its memberships. The videos themselves
// are untouched. Only the owner may delete.
func (s *PlaylistService) Delete(ctx context.Context, id, callerID uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Delete")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if _, err := loadOwned(ctx, s.repoPlaylist.GetByID, id, callerID, apperrors.ErrPlaylistNotFound); err != nil {
		return err
	}

	if err := s.repoPlaylist.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPlaylistNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Playlist deleted").
		Uint("playlist_id", id).
		Log()

	return nil
}
