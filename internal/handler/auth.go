package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	appcfg "github.com/streamhive/streamhive/config"
	"github.com/streamhive/streamhive/internal/constants"
	"github.com/streamhive/streamhive/internal/dto"
	"github.com/streamhive/streamhive/internal/service"
	ctxutil "github.com/streamhive/streamhive/pkg/context"
	"github.com/streamhive/streamhive/pkg/logger"
)

type AuthHandler struct {
	userService *service.UserService
	stager      *UploadStager
	jwtCfg      appcfg.JWTConfig
	secureCookie bool
}

func NewAuthHandler(userService *service.UserService, stager *UploadStager, cfg *appcfg.Config) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		stager:      stager,
		jwtCfg:      cfg.JWT,
		secureCookie: cfg.App.Environment == "production",
	}
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetCookie(constants.CookieAccessToken, accessToken,
		int(h.jwtCfg.AccessExpiry.Seconds()), "/", "", h.secureCookie, true)
	c.SetCookie(constants.CookieRefreshToken, refreshToken,
		int(h.jwtCfg.RefreshExpiry.Seconds()), "/", "", h.secureCookie, true)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	c.SetCookie(constants.CookieAccessToken, "", -1, "/", "", h.secureCookie, true)
	c.SetCookie(constants.CookieRefreshToken, "", -1, "/", "", h.secureCookie, true)
}

// Register creates an account from a multipart form carrying the
// profile fields plus an avatar (required) and cover (optional).
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Register")

	var req dto.RegisterUserRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid registration request").
			Err(err).
			Log()
		respondBadRequest(c, err.Error())
		return
	}

	avatarPath, err := h.stager.Stage(c, "avatar", true)
	if err != nil {
		respondError(c, err)
		return
	}
	coverPath, err := h.stager.Stage(c, "cover", false)
	if err != nil {
		os.Remove(avatarPath)
		respondError(c, err)
		return
	}
	// The media store consumes staged files; these are no-ops on the
	// happy path and clean up when the service bails out early.
	defer os.Remove(avatarPath)
	defer func() {
		if coverPath != "" {
			os.Remove(coverPath)
		}
	}()

	user, err := h.userService.Register(ctx, &req, avatarPath, coverPath)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse(http.StatusCreated, user, "User registered successfully"))
}

// Login authenticates and opens a session. Tokens travel both in the
// body and as httpOnly cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Login")

	var req dto.UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid login request").
			Err(err).
			Log()
		respondBadRequest(c, err.Error())
		return
	}

	response, err := h.userService.Login(ctx, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookies(c, response.AccessToken, response.RefreshToken)

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, response, "Login successful"))
}

// RefreshToken rotates the session. The token may arrive in the JSON
// body or fall back to the refreshToken cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "RefreshToken")

	var req dto.RefreshTokenRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	presented := req.RefreshToken
	if presented == "" {
		if cookie, err := c.Cookie(constants.CookieRefreshToken); err == nil {
			presented = cookie
		}
	}

	response, err := h.userService.RefreshTokens(ctx, presented)
	if err != nil {
		h.clearSessionCookies(c)
		respondError(c, err)
		return
	}

	h.setSessionCookies(c, response.AccessToken, response.RefreshToken)

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, response, "Token refreshed successfully"))
}

// Logout revokes the session and drops the cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Logout")

	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(http.StatusUnauthorized, constants.MsgUnauthorized, nil))
		return
	}

	if err := h.userService.Logout(ctx, userID); err != nil {
		respondError(c, err)
		return
	}

	h.clearSessionCookies(c)

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, nil, "Logout successful"))
}
