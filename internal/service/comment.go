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

type CommentService struct {
	repoComment CommentStore
	repoVideo   VideoStore
}

func NewCommentService(repoComment CommentStore, repoVideo VideoStore) *CommentService {
	return &CommentService{
		repoComment: repoComment,
		repoVideo:   repoVideo,
	}
}

func toCommentResponse(comment *model.Comment) *dto.CommentResponse {
	return &dto.CommentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		VideoID:   comment.VideoID,
		Owner:     toOwnerResponse(&comment.Owner),
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

// Create attaches a comment to a video. The video must exist and be
// visible to the commenter.
func (s *CommentService) Create(ctx context.Context, videoID, ownerID uint, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	video, err := s.repoVideo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVideoNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !video.IsPublished && video.OwnerID != ownerID {
		return nil, apperrors.ErrVideoNotFound
	}

	comment := &model.Comment{
		Content: strings.TrimSpace(req.Content),
		VideoID: videoID,
		OwnerID: ownerID,
	}

	if err := s.repoComment.Create(ctx, comment); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create comment").
			Uint("video_id", videoID).
			Uint("owner_id", ownerID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Comment created").
		Uint("comment_id", comment.ID).
		Uint("video_id", videoID).
		Log()

	stored, err := s.repoComment.GetByID(ctx, comment.ID)
	if err != nil {
		return toCommentResponse(comment), nil
	}
	return toCommentResponse(stored), nil
}

// ListByVideo returns a page of comments on one video, newest first.
func (s *CommentService) ListByVideo(ctx context.Context, videoID uint, params constants.PaginationParams, viewerID uint) ([]dto.CommentResponse, int64, int, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ListByVideo")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	video, err := s.repoVideo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, 0, apperrors.ErrVideoNotFound
		}
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !video.IsPublished && video.OwnerID != viewerID {
		return nil, 0, 0, apperrors.ErrVideoNotFound
	}

	comments, total, err := s.repoComment.ListByVideo(ctx, videoID, params)
	if err != nil {
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		res = append(res, *toCommentResponse(&comments[i]))
	}

	pageTotal := int(math.Ceil(float64(total) / float64(params.Limit)))

	return res, total, pageTotal, nil
}

// Update edits comment text. Only the author may update.
func (s *CommentService) Update(ctx context.Context, id, callerID uint, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Update")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if _, err := loadOwned(ctx, s.repoComment.GetByID, id, callerID, apperrors.ErrCommentNotFound); err != nil {
		return nil, err
	}

	if err := s.repoComment.Update(ctx, id, strings.TrimSpace(req.Content)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	updated, err := s.repoComment.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Comment updated").
		Uint("comment_id", id).
		Log()

	return toCommentResponse(updated), nil
}

// Delete removes a comment. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, id, callerID uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Delete")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if _, err := loadOwned(ctx, s.repoComment.GetByID, id, callerID, apperrors.ErrCommentNotFound); err != nil {
		return err
	}

	if err := s.repoComment.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCommentNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Comment deleted").
		Uint("comment_id", id).
		Log()

	return nil
}
