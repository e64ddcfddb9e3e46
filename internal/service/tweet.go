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

type TweetService struct {
	repoTweet TweetStore
	repoUser  UserStore
}

func NewTweetService(repoTweet TweetStore, repoUser UserStore) *TweetService {
	return &TweetService{
		repoTweet: repoTweet,
		repoUser:  repoUser,
	}
}

func toTweetResponse(tweet *model.Tweet) *dto.TweetResponse {
	return &dto.TweetResponse{
		ID:        tweet.ID,
		Content:   tweet.Content,
		Owner:     toOwnerResponse(&tweet.Owner),
		CreatedAt: tweet.CreatedAt,
		UpdatedAt: tweet.UpdatedAt,
	}
}

func (s *TweetService) Create(ctx context.Context, ownerID uint, req *dto.CreateTweetRequest) (*dto.TweetResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	tweet := &model.Tweet{
		Content: strings.TrimSpace(req.Content),
		OwnerID: ownerID,
	}

	if err := s.repoTweet.Create(ctx, tweet); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create tweet").
			Uint("owner_id", ownerID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Tweet created").
		Uint("tweet_id", tweet.ID).
		Log()

	stored, err := s.repoTweet.GetByID(ctx, tweet.ID)
	if err != nil {
		return toTweetResponse(tweet), nil
	}
	return toTweetResponse(stored), nil
}

// ListByUser returns a page of one channel's tweets, newest first.
func (s *TweetService) ListByUser(ctx context.Context, username string, params constants.PaginationParams) ([]dto.TweetResponse, int64, int, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ListByUser")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	owner, err := s.repoUser.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, 0, apperrors.ErrUserNotFound
		}
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	tweets, total, err := s.repoTweet.ListByOwner(ctx, owner.ID, params)
	if err != nil {
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.TweetResponse, 0, len(tweets))
	for i := range tweets {
		res = append(res, *toTweetResponse(&tweets[i]))
	}

	pageTotal := int(math.Ceil(float64(total) / float64(params.Limit)))

	return res, total, pageTotal, nil
}

// Update edits tweet text. Only the author may update.
func (s *TweetService) Update(ctx context.Context, id, callerID uint, req *dto.UpdateTweetRequest) (*dto.TweetResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Update")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if _, err := loadOwned(ctx, s.repoTweet.GetByID, id, callerID, apperrors.ErrTweetNotFound); err != nil {
		return nil, err
	}

	if err := s.repoTweet.Update(ctx, id, strings.TrimSpace(req.Content)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTweetNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	updated, err := s.repoTweet.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Tweet updated").
		Uint("tweet_id", id).
		Log()

	return toTweetResponse(updated), nil
}

// Delete removes a tweet. Only the author may delete.
func (s *TweetService) Delete(ctx context.Context, id, callerID uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Delete")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if _, err := loadOwned(ctx, s.repoTweet.GetByID, id, callerID, apperrors.ErrTweetNotFound); err != nil {
		return err
	}

	if err := s.repoTweet.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTweetNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Tweet deleted").
		Uint("tweet_id", id).
		Log()

	return nil
}
