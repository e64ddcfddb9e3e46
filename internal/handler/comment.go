package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/streamhive/streamhive/internal/constants"
	"github.com/streamhive/streamhive/internal/dto"
	"github.com/streamhive/streamhive/internal/service"
	ctxutil "github.com/streamhive/streamhive/pkg/context"
	"github.com/streamhive/streamhive/pkg/logger"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create posts a comment on a video.
func (h *CommentHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Create")

	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid comment request").
			Err(err).
			Log()
		respondBadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Create(ctx, videoID, currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse(http.StatusCreated, comment, constants.MsgCreated))
}

// ListByVideo pages through a video's comments, newest first.
func (h *CommentHandler) ListByVideo(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "ListByVideo")

	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	params := constants.ParsePaginationParams(c)

	comments, total, pageTotal, err := h.commentService.ListByVideo(ctx, videoID, params, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK,
		constants.BuildListResponse(total, params.Page, pageTotal, comments), constants.MsgSuccess))
}

// Update edits the caller's own comment.
func (h *CommentHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Update")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Update(ctx, id, currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, comment, constants.MsgUpdated))
}

// Delete removes the caller's own comment.
func (h *CommentHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Delete")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(ctx, id, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, nil, constants.MsgDeleted))
}
