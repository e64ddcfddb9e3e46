package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/streamhive/streamhive/internal/constants"
	apperrors "github.com/streamhive/streamhive/internal/errors"
)

// respondError maps a service error onto the uniform error envelope.
func respondError(c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
}

func respondBadRequest(c *gin.Context, details any) {
	c.JSON(400, constants.BuildErrorResponse(400, constants.MsgBadRequest, details))
}

// parseIDParam reads a positive numeric path parameter. A zero return
// means the caller already received a 400.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, gin.H{name: "must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}

// currentUserID reads the authenticated user set by the JWT
// middleware. Zero means anonymous.
func currentUserID(c *gin.Context) uint {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
