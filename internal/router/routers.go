package router

import (
	"github.com/gin-gonic/gin"
	"github.com/streamhive/streamhive/config"
	"github.com/streamhive/streamhive/internal/handler"
	"github.com/streamhive/streamhive/internal/middleware"
)

type Router struct {
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	videoHandler    *handler.VideoHandler
	commentHandler  *handler.CommentHandler
	tweetHandler    *handler.TweetHandler
	playlistHandler *handler.PlaylistHandler
	healthHandler   *handler.HealthHandler

	jwtMw  *middleware.JWTMiddleware
	Config *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	user *handler.UserHandler,
	video *handler.VideoHandler,
	comment *handler.CommentHandler,
	tweet *handler.TweetHandler,
	playlist *handler.PlaylistHandler,
	health *handler.HealthHandler,
	jwtMw *middleware.JWTMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:     auth,
		userHandler:     user,
		videoHandler:    video,
		commentHandler:  comment,
		tweetHandler:    tweet,
		playlistHandler: playlist,
		healthHandler:   health,
		jwtMw:           jwtMw,
		Config:          cfg,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if !r.Config.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestContext())

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.BasicHealth)
		api.GET("/health/full", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(r.Config.RateLimit.Request, r.Config.RateLimit.Duration))

			r.authRoutes(v1)
			r.userRoutes(v1)
			r.videoRoutes(v1)
			r.commentRoutes(v1)
			r.tweetRoutes(v1)
			r.playlistRoutes(v1)
			r.channelRoutes(v1)
		}
	}

	return router
}
