package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/streamhive/streamhive/internal/constants"
	ctxutil "github.com/streamhive/streamhive/pkg/context"
)

const requestTimeout = 30 * time.Second

// RequestContext seeds every request context with the metadata the
// structured logs expect: request ID, client IP, user agent, and a
// start time for duration fields. It also applies the request timeout.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, ctxutil.RequestIDKey, requestID)
		ctx = context.WithValue(ctx, ctxutil.ClientIPKey, c.ClientIP())
		ctx = context.WithValue(ctx, ctxutil.UserAgentKey, c.Request.UserAgent())
		ctx = context.WithValue(ctx, ctxutil.StartTimeKey, time.Now())

		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.HeaderXRequestID, requestID)

		c.Next()
	}
}
