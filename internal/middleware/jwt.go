package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/streamhive/streamhive/internal/constants"
	"github.com/streamhive/streamhive/internal/model"
	"github.com/streamhive/streamhive/internal/service"
	ctxutil "github.com/streamhive/streamhive/pkg/context"
	"github.com/streamhive/streamhive/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserLoader resolves a token subject to its account row. A valid
// signature alone is not enough: the account must still exist.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

type JWTMiddleware struct {
	jwtService *service.JWTService
	users      UserLoader
}

func NewJWTMiddleware(jwtService *service.JWTService, users UserLoader) *JWTMiddleware {
	return &JWTMiddleware{
		jwtService: jwtService,
		users:      users,
	}
}

// extractToken prefers the accessToken cookie and falls back to a
// Bearer Authorization header.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(constants.CookieAccessToken); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader(constants.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// lookupSubject loads the account behind validated claims. Credential
// fields are blanked before the user is handed to downstream code.
func (m *JWTMiddleware) lookupSubject(ctx context.Context, claims *service.AccessClaims) (*model.User, error) {
	user, err := m.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	sanitized := *user
	sanitized.Password = ""
	sanitized.RefreshToken = nil
	return &sanitized, nil
}

func setIdentity(c *gin.Context, user *model.User) {
	c.Set("user", user)
	c.Set("user_id", user.ID)
	c.Set("username", user.Username)
	c.Set("email", user.Email)
	c.Set("full_name", user.FullName)

	// Propagate identity into the request context so repository and
	// service logs carry it.
	ctx := c.Request.Context()
	ctx = context.WithValue(ctx, ctxutil.UserIDKey, user.ID)
	ctx = context.WithValue(ctx, ctxutil.UserLoginKey, user.Username)
	c.Request = c.Request.WithContext(ctx)
}

func rejectUnauthorized(c *gin.Context, reason string, err error) {
	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.GetLogger().Warn(reason, fields...)

	c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(
		http.StatusUnauthorized, constants.MsgUnauthorized, nil,
	))
	c.Abort()
}

// RequireAuth validates the access token, resolves its subject to a
// live account and sets the caller's identity in both gin and request
// contexts. Every rejection is the same 401; the logs say why.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			rejectUnauthorized(c, "Missing access token", nil)
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			rejectUnauthorized(c, "Invalid or expired access token", err)
			return
		}

		user, err := m.lookupSubject(c.Request.Context(), claims)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				rejectUnauthorized(c, "Token subject no longer exists", nil)
			} else {
				rejectUnauthorized(c, "Failed to resolve token subject", err)
			}
			return
		}

		setIdentity(c, user)

		logger.GetLogger().Debug("User authenticated",
			zap.Uint("user_id", user.ID),
			zap.String("username", user.Username),
			zap.String("path", c.Request.URL.Path),
		)

		c.Next()
	}
}

// OptionalAuth sets the caller's identity when a valid token for a
// live account is present and stays silent otherwise. Listing and
// detail endpoints use it so owners see their unpublished videos.
func (m *JWTMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		user, err := m.lookupSubject(c.Request.Context(), claims)
		if err != nil {
			c.Next()
			return
		}

		setIdentity(c, user)
		c.Next()
	}
}
