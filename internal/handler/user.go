package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/streamhive/streamhive/internal/constants"
	"github.com/streamhive/streamhive/internal/dto"
	"github.com/streamhive/streamhive/internal/service"
	ctxutil "github.com/streamhive/streamhive/pkg/context"
	"github.com/streamhive/streamhive/pkg/logger"
)

type UserHandler struct {
	userService *service.UserService
	stager      *UploadStager
}

func NewUserHandler(userService *service.UserService, stager *UploadStager) *UserHandler {
	return &UserHandler{
		userService: userService,
		stager:      stager,
	}
}

// Me returns the authenticated user's own account.
func (h *UserHandler) Me(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Me")

	user, err := h.userService.GetByID(ctx, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, user, constants.MsgSuccess))
}

// UpdateAccount changes full name and/or email.
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "UpdateAccount")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid account update request").
			Err(err).
			Log()
		respondBadRequest(c, err.Error())
		return
	}

	user, err := h.userService.UpdateAccount(ctx, currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, user, constants.MsgUpdated))
}

// UpdatePassword verifies the current password and stores a new one.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "UpdatePassword")

	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid password update request").
			Err(err).
			Log()
		respondBadRequest(c, err.Error())
		return
	}

	if err := h.userService.UpdatePassword(ctx, currentUserID(c), &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, nil, "Password updated successfully"))
}

// UpdateAvatar replaces the avatar image.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar")
}

// UpdateCover replaces the cover image.
func (h *UserHandler) UpdateCover(c *gin.Context) {
	h.updateImage(c, "cover")
}

func (h *UserHandler) updateImage(c *gin.Context, field string) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "updateImage")

	localPath, err := h.stager.Stage(c, field, true)
	if err != nil {
		respondError(c, err)
		return
	}
	defer os.Remove(localPath)

	var user *dto.UserResponse
	if field == "avatar" {
		user, err = h.userService.UpdateAvatar(ctx, currentUserID(c), localPath)
	} else {
		user, err = h.userService.UpdateCover(ctx, currentUserID(c), localPath)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, user, constants.MsgUpdated))
}

// ChannelProfile is the public channel view, keyed by username.
func (h *UserHandler) ChannelProfile(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "ChannelProfile")

	username := c.Param("username")
	if username == "" {
		respondBadRequest(c, gin.H{"username": "is required"})
		return
	}

	profile, err := h.userService.ChannelProfile(ctx, username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, profile, constants.MsgSuccess))
}

// WatchHistory lists the caller's playback history, newest first.
func (h *UserHandler) WatchHistory(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "WatchHistory")

	params := constants.ParsePaginationParams(c)

	entries, total, pageTotal, err := h.userService.WatchHistory(ctx, currentUserID(c), params.Limit, params.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK,
		constants.BuildListResponse(total, params.Page, pageTotal, entries), constants.MsgSuccess))
}

// DeleteAccount permanently removes the caller's account.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "DeleteAccount")

	if err := h.userService.DeleteAccount(ctx, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(constants.CookieAccessToken, "", -1, "/", "", false, true)
	c.SetCookie(constants.CookieRefreshToken, "", -1, "/", "", false, true)

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, nil, constants.MsgDeleted))
}
