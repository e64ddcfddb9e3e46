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

type PlaylistHandler struct {
	playlistService *service.PlaylistService
}

func NewPlaylistHandler(playlistService *service.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{playlistService: playlistService}
}

// Create builds an empty playlist.
func (h *PlaylistHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Create")

	var req dto.CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid playlist request").
			Err(err).
			Log()
		respondBadRequest(c, err.Error())
		return
	}

	playlist, err := h.playlistService.Create(ctx, currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse(http.StatusCreated, playlist, constants.MsgCreated))
}

// Get returns one playlist with its videos in insertion order.
func (h *PlaylistHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Get")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	playlist, err := h.playlistService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, playlist, constants.MsgSuccess))
}

// ListByUser pages through one channel's playlists.
func (h *PlaylistHandler) ListByUser(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "ListByUser")

	username := c.Param("username")
	if username == "" {
		respondBadRequest(c, gin.H{"username": "is required"})
		return
	}

	params := constants.ParsePaginationParams(c)

	playlists, total, pageTotal, err := h.playlistService.ListByUser(ctx, username, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK,
		constants.BuildListResponse(total, params.Page, pageTotal, playlists), constants.MsgSuccess))
}

// Update renames or re-describes the caller's playlist.
func (h *PlaylistHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Update")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	playlist, err := h.playlistService.Update(ctx, id, currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, playlist, constants.MsgUpdated))
}

// AddVideo appends a video to the caller's playlist.
func (h *PlaylistHandler) AddVideo(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "AddVideo")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	videoID, ok := parseIDParam(c, "videoId")
	if !ok {
		return
	}

	playlist, err := h.playlistService.AddVideo(ctx, id, videoID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, playlist, constants.MsgUpdated))
}

// RemoveVideo drops a video from the caller's playlist.
func (h *PlaylistHandler) RemoveVideo(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "RemoveVideo")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	videoID, ok := parseIDParam(c, "videoId")
	if !ok {
		return
	}

	playlist, err := h.playlistService.RemoveVideo(ctx, id, videoID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, playlist, constants.MsgUpdated))
}

// Delete removes the caller's playlist. The videos stay.
func (h *PlaylistHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Delete")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.playlistService.Delete(ctx, id, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, nil, constants.MsgDeleted))
}
