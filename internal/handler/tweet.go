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

type TweetHandler struct {
	tweetService *service.TweetService
}

func NewTweetHandler(tweetService *service.TweetService) *TweetHandler {
	return &TweetHandler{tweetService: tweetService}
}

// Create posts a channel update.
func (h *TweetHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Create")

	var req dto.CreateTweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid tweet request").
			Err(err).
			Log()
		respondBadRequest(c, err.Error())
		return
	}

	tweet, err := h.tweetService.Create(ctx, currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse(http.StatusCreated, tweet, constants.MsgCreated))
}

// ListByUser pages through one channel's updates.
func (h *TweetHandler) ListByUser(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "ListByUser")

	username := c.Param("username")
	if username == "" {
		respondBadRequest(c, gin.H{"username": "is required"})
		return
	}

	params := constants.ParsePaginationParams(c)

	tweets, total, pageTotal, err := h.tweetService.ListByUser(ctx, username, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK,
		constants.BuildListResponse(total, params.Page, pageTotal, tweets), constants.MsgSuccess))
}

// Update edits the caller's own tweet.
func (h *TweetHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Update")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	tweet, err := h.tweetService.Update(ctx, id, currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, tweet, constants.MsgUpdated))
}

// Delete removes the caller's own tweet.
func (h *TweetHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Delete")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.tweetService.Delete(ctx, id, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, nil, constants.MsgDeleted))
}
