package service

import (
	"context"
	"fmt"
	"time"

	"github.com/streamhive/streamhive/internal/constants"
	"github.com/streamhive/streamhive/internal/dto"
	"github.com/streamhive/streamhive/pkg/logger"
	"github.com/streamhive/streamhive/pkg/redis"
	"go.uber.org/zap"
)

// Cache TTLs. Video details churn with view counts, channel profiles
// only on upload or profile edits.
const (
	videoCacheTTL   = 5 * time.Minute
	channelCacheTTL = 10 * time.Minute
)

// CacheService fronts Redis for the hot read paths. A nil client
// disables caching entirely; every method degrades to a miss.
type CacheService struct {
	redisClient *redis.Client
}

func NewCacheService(redisClient *redis.Client) *CacheService {
	return &CacheService{
		redisClient: redisClient,
	}
}

func (s *CacheService) videoKey(id uint) string {
	return fmt.Sprintf("%s%d", constants.CacheKeyVideo, id)
}

func (s *CacheService) channelKey(username string) string {
	return constants.CacheKeyChannel + username
}

// GetVideo loads a cached video detail view. Returns false on miss
// or any cache failure.
func (s *CacheService) GetVideo(ctx context.Context, id uint) (*dto.VideoResponse, bool) {
	if s.redisClient == nil {
		return nil, false
	}

	var video dto.VideoResponse
	hit, err := s.redisClient.GetJSON(ctx, s.videoKey(id), &video)
	if err != nil || !hit {
		return nil, false
	}

	logger.GetLogger().Debug("Video cache hit",
		zap.Uint("video_id", id),
	)

	return &video, true
}

// SetVideo caches a video detail view. Failures are logged and
// swallowed; the cache is never load-bearing.
func (s *CacheService) SetVideo(ctx context.Context, id uint, video *dto.VideoResponse) {
	if s.redisClient == nil || video == nil {
		return
	}

	if err := s.redisClient.SetJSON(ctx, s.videoKey(id), video, videoCacheTTL); err != nil {
		logger.GetLogger().Warn("Failed to cache video",
			zap.Uint("video_id", id),
			zap.Error(err),
		)
	}
}

// InvalidateVideo drops the cached view after any mutation.
func (s *CacheService) InvalidateVideo(ctx context.Context, id uint) {
	if s.redisClient == nil {
		return
	}

	if err := s.redisClient.Delete(ctx, s.videoKey(id)); err != nil {
		logger.GetLogger().Warn("Failed to invalidate video cache",
			zap.Uint("video_id", id),
			zap.Error(err),
		)
	}
}

// GetChannel loads a cached channel profile.
func (s *CacheService) GetChannel(ctx context.Context, username string) (*dto.ChannelProfileResponse, bool) {
	if s.redisClient == nil {
		return nil, false
	}

	var profile dto.ChannelProfileResponse
	hit, err := s.redisClient.GetJSON(ctx, s.channelKey(username), &profile)
	if err != nil || !hit {
		return nil, false
	}

	logger.GetLogger().Debug("Channel cache hit",
		zap.String("username", username),
	)

	return &profile, true
}

// SetChannel caches a channel profile.
func (s *CacheService) SetChannel(ctx context.Context, username string, profile *dto.ChannelProfileResponse) {
	if s.redisClient == nil || profile == nil {
		return
	}

	if err := s.redisClient.SetJSON(ctx, s.channelKey(username), profile, channelCacheTTL); err != nil {
		logger.GetLogger().Warn("Failed to cache channel profile",
			zap.String("username", username),
			zap.Error(err),
		)
	}
}

// InvalidateChannel drops the cached profile after profile or
// catalog mutations.
func (s *CacheService) InvalidateChannel(ctx context.Context, username string) {
	if s.redisClient == nil {
		return
	}

	if err := s.redisClient.Delete(ctx, s.channelKey(username)); err != nil {
		logger.GetLogger().Warn("Failed to invalidate channel cache",
			zap.String("username", username),
			zap.Error(err),
		)
	}
}
