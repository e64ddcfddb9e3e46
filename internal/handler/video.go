package handler

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/streamhive/streamhive/internal/constants"
	"github.com/streamhive/streamhive/internal/dto"
	"github.com/streamhive/streamhive/internal/service"
	ctxutil "github.com/streamhive/streamhive/pkg/context"
	"github.com/streamhive/streamhive/pkg/logger"
)

type VideoHandler struct {
	videoService *service.VideoService
	stager       *UploadStager
}

func NewVideoHandler(videoService *service.VideoService, stager *UploadStager) *VideoHandler {
	return &VideoHandler{
		videoService: videoService,
		stager:       stager,
	}
}

// Publish accepts a multipart form with the video file, a thumbnail,
// the catalog fields, and an optional metadata JSON object.
func (h *VideoHandler) Publish(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Publish")

	var req dto.PublishVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid publish request").
			Err(err).
			Log()
		respondBadRequest(c, err.Error())
		return
	}

	var metadata map[string]any
	if raw := c.PostForm("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			respondBadRequest(c, gin.H{"metadata": "must be a JSON object"})
			return
		}
	}

	videoPath, err := h.stager.Stage(c, "video", true)
	if err != nil {
		respondError(c, err)
		return
	}
	thumbnailPath, err := h.stager.Stage(c, "thumbnail", true)
	if err != nil {
		os.Remove(videoPath)
		respondError(c, err)
		return
	}
	defer os.Remove(videoPath)
	defer os.Remove(thumbnailPath)

	video, err := h.videoService.Publish(ctx, currentUserID(c), &req, videoPath, thumbnailPath, metadata)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse(http.StatusCreated, video, "Video published successfully"))
}

// Get returns one video. Authenticated playback counts a view and
// records watch history; anonymous reads go through the cache.
func (h *VideoHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Get")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	viewerID := currentUserID(c)

	var (
		video *dto.VideoResponse
		err   error
	)
	if viewerID == 0 {
		video, err = h.videoService.GetCached(ctx, id)
	} else {
		video, err = h.videoService.Get(ctx, id, viewerID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, video, constants.MsgSuccess))
}

// List returns a page of videos, optionally filtered by channel and a
// title/description search term.
func (h *VideoHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "List")

	params := constants.ParsePaginationParams(c)

	var filter dto.VideoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	videos, total, pageTotal, err := h.videoService.List(ctx, params, &filter, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK,
		constants.BuildListResponse(total, params.Page, pageTotal, videos), constants.MsgSuccess))
}

// Update edits the catalog fields and optionally swaps the thumbnail.
func (h *VideoHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Update")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	thumbnailPath, err := h.stager.Stage(c, "thumbnail", false)
	if err != nil {
		respondError(c, err)
		return
	}
	if thumbnailPath != "" {
		defer os.Remove(thumbnailPath)
	}

	video, err := h.videoService.Update(ctx, id, currentUserID(c), &req, thumbnailPath)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, video, constants.MsgUpdated))
}

// TogglePublish flips a video between public and hidden.
func (h *VideoHandler) TogglePublish(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "TogglePublish")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	video, err := h.videoService.TogglePublish(ctx, id, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, video, constants.MsgUpdated))
}

// Delete removes a video with its comments, playlist memberships, and
// stored media.
func (h *VideoHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Delete")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.videoService.Delete(ctx, id, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, nil, constants.MsgDeleted))
}
