package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/streamhive/streamhive/internal/constants"
	"github.com/streamhive/streamhive/internal/dto"
	apperrors "github.com/streamhive/streamhive/internal/errors"
	"github.com/streamhive/streamhive/internal/model"
	ctxutil "github.com/streamhive/streamhive/pkg/context"
	"github.com/streamhive/streamhive/pkg/logger"
	"github.com/streamhive/streamhive/pkg/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VideoService struct {
	repoVideo VideoStore
	repoUser  UserStore
	media     storage.MediaStore
	cache     *CacheService
}

func NewVideoService(repoVideo VideoStore, repoUser UserStore, media storage.MediaStore, cache *CacheService) *VideoService {
	return &VideoService{
		repoVideo: repoVideo,
		repoUser:  repoUser,
		media:     media,
		cache:     cache,
	}
}

func toVideoResponse(video *model.Video) *dto.VideoResponse {
	res := &dto.VideoResponse{
		ID:           video.ID,
		Title:        video.Title,
		Description:  video.Description,
		VideoURL:     video.VideoURL,
		ThumbnailURL: video.ThumbnailURL,
		Duration:     video.Duration,
		Views:        video.Views,
		IsPublished:  video.IsPublished,
		Owner:        toOwnerResponse(&video.Owner),
		CreatedAt:    video.CreatedAt,
		UpdatedAt:    video.UpdatedAt,
	}

	if len(video.Metadata) > 0 {
		var meta map[string]any
		if err := json.Unmarshal(video.Metadata, &meta); err == nil {
			res.Metadata = meta
		}
	}

	return res
}

// Publish uploads the staged video and thumbnail files, then records
// the catalog entry. A failed thumbnail upload rolls back the stored
// video object.
func (s *VideoService) Publish(ctx context.Context, ownerID uint, req *dto.PublishVideoRequest, videoPath, thumbnailPath string, metadata map[string]any) (*dto.VideoResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Publish")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	logger.InfoWithContext(ctx, "Publishing video").
		Uint("owner_id", ownerID).
		String("title", req.Title).
		Log()

	videoObj, err := s.media.Upload(ctx, videoPath, storage.KindVideo)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrMediaUpload, err)
	}

	thumbObj, err := s.media.Upload(ctx, thumbnailPath, storage.KindThumbnail)
	if err != nil {
		_ = s.media.Delete(ctx, videoObj.PublicID)
		return nil, apperrors.WrapError(apperrors.ErrMediaUpload, err)
	}

	video := &model.Video{
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		VideoURL:     videoObj.URL,
		VideoID:      videoObj.PublicID,
		ThumbnailURL: thumbObj.URL,
		ThumbnailID:  thumbObj.PublicID,
		Duration:     req.Duration,
		IsPublished:  true,
	}

	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err == nil {
			video.Metadata = datatypes.JSON(raw)
		}
	}

	if err := s.repoVideo.Create(ctx, video); err != nil {
		_ = s.media.Delete(ctx, videoObj.PublicID, thumbObj.PublicID)
		logger.ErrorWithContext(ctx, "Failed to create video record").
			Uint("owner_id", ownerID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.invalidateOwnerChannel(ctx, ownerID)

	logger.InfoWithContext(ctx, "Video published successfully").
		Uint("video_id", video.ID).
		Uint("owner_id", ownerID).
		Log()

	stored, err := s.repoVideo.GetByID(ctx, video.ID)
	if err != nil {
		return toVideoResponse(video), nil
	}
	return toVideoResponse(stored), nil
}

// Get returns one video. Viewing a published video as an authenticated
// user bumps the view counter and appends a watch history entry.
// Unpublished videos are visible only to their owner.
func (s *VideoService) Get(ctx context.Context, id uint, viewerID uint) (*dto.VideoResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Get")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	video, err := s.repoVideo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVideoNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !video.IsPublished && video.OwnerID != viewerID {
		// Hidden videos are indistinguishable from absent ones.
		return nil, apperrors.ErrVideoNotFound
	}

	// The owner previewing their own catalog does not count as a view.
	if video.IsPublished && viewerID != 0 && viewerID != video.OwnerID {
		if err := s.repoVideo.IncrementViews(ctx, id); err == nil {
			video.Views++
		}
		if err := s.repoUser.AddWatchEntry(ctx, viewerID, id); err != nil {
			logger.WarnWithContext(ctx, "Failed to record watch history").
				Uint("user_id", viewerID).
				Uint("video_id", id).
				Err(err).
				Log()
		}
		s.invalidateVideo(ctx, id)
	}

	return toVideoResponse(video), nil
}

// GetCached serves the anonymous video detail view through the cache.
func (s *VideoService) GetCached(ctx context.Context, id uint) (*dto.VideoResponse, error) {
	if s.cache != nil {
		if video, hit := s.cache.GetVideo(ctx, id); hit {
			return video, nil
		}
	}

	res, err := s.Get(ctx, id, 0)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetVideo(ctx, id, res)
	}

	return res, nil
}

// List returns a page of videos visible to the viewer, optionally
// narrowed to one channel.
func (s *VideoService) List(ctx context.Context, params constants.PaginationParams, filter *dto.VideoFilter, viewerID uint) ([]dto.VideoResponse, int64, int, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "List")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	ownerID := uint(0)
	if filter != nil {
		ownerID = filter.OwnerID
		if ownerID == 0 && filter.Username != "" {
			owner, err := s.repoUser.GetByUsername(ctx, strings.ToLower(filter.Username))
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, 0, 0, apperrors.ErrUserNotFound
				}
				return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
			}
			ownerID = owner.ID
		}
	}

	videos, total, err := s.repoVideo.List(ctx, params, ownerID, viewerID)
	if err != nil {
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.VideoResponse, 0, len(videos))
	for i := range videos {
		res = append(res, *toVideoResponse(&videos[i]))
	}

	pageTotal := int(math.Ceil(float64(total) / float64(params.Limit)))

	return res, total, pageTotal, nil
}

// Update changes title/description and optionally swaps the thumbnail.
// Only the owner may update.
func (s *VideoService) Update(ctx context.Context, id, callerID uint, req *dto.UpdateVideoRequest, thumbnailPath string) (*dto.VideoResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Update")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	video, err := loadOwned(ctx, s.repoVideo.GetByID, id, callerID, apperrors.ErrVideoNotFound)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != "" {
		fields["title"] = strings.TrimSpace(req.Title)
	}
	if req.Description != "" {
		fields["description"] = strings.TrimSpace(req.Description)
	}

	var oldThumbID string
	if thumbnailPath != "" {
		thumbObj, err := s.media.Upload(ctx, thumbnailPath, storage.KindThumbnail)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrMediaUpload, err)
		}
		oldThumbID = video.ThumbnailID
		fields["thumbnail_url"] = thumbObj.URL
		fields["thumbnail_id"] = thumbObj.PublicID
	}

	if len(fields) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "nothing to update")
	}

	if err := s.repoVideo.Update(ctx, id, fields); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if oldThumbID != "" {
		if err := s.media.Delete(ctx, oldThumbID); err != nil {
			logger.WarnWithContext(ctx, "Failed to remove replaced thumbnail").
				Uint("video_id", id).
				Err(err).
				Log()
		}
	}

	s.invalidateVideo(ctx, id)

	updated, err := s.repoVideo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Video updated successfully").
		Uint("video_id", id).
		Log()

	return toVideoResponse(updated), nil
}

// TogglePublish flips visibility. Only the owner may toggle.
func (s *VideoService) TogglePublish(ctx context.Context, id, callerID uint) (*dto.VideoResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "TogglePublish")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	video, err := loadOwned(ctx, s.repoVideo.GetByID, id, callerID, apperrors.ErrVideoNotFound)
	if err != nil {
		return nil, err
	}

	newState := !video.IsPublished
	if err := s.repoVideo.Update(ctx, id, map[string]interface{}{"is_published": newState}); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	video.IsPublished = newState
	s.invalidateVideo(ctx, id)
	s.invalidateOwnerChannel(ctx, video.OwnerID)

	logger.InfoWithContext(ctx, "Video publish state toggled").
		Uint("video_id", id).
		Bool("is_published", newState).
		Log()

	return toVideoResponse(video), nil
}

// Delete removes the catalog entry, its dependents, and the stored
// media objects. Only the owner may delete.
func (s *VideoService) Delete(ctx context.Context, id, callerID uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Delete")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	video, err := loadOwned(ctx, s.repoVideo.GetByID, id, callerID, apperrors.ErrVideoNotFound)
	if err != nil {
		return err
	}

	if err := s.repoVideo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrVideoNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// The record is gone; object cleanup is best-effort.
	if err := s.media.Delete(ctx, video.VideoID, video.ThumbnailID); err != nil {
		logger.WarnWithContext(ctx, "Failed to remove media objects after video deletion").
			Uint("video_id", id).
			Err(err).
			Log()
	}

	s.invalidateVideo(ctx, id)
	s.invalidateOwnerChannel(ctx, video.OwnerID)

	logger.InfoWithContext(ctx, "Video deleted successfully").
		Uint("video_id", id).
		Log()

	return nil
}

func (s *VideoService) invalidateVideo(ctx context.Context, id uint) {
	if s.cache != nil {
		s.cache.InvalidateVideo(ctx, id)
	}
}

func (s *VideoService) invalidateOwnerChannel(ctx context.Context, ownerID uint) {
	if s.cache == nil {
		return
	}
	owner, err := s.repoUser.GetByID(ctx, ownerID)
	if err != nil {
		return
	}
	s.cache.InvalidateChannel(ctx, owner.Username)
}
