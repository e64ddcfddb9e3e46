package router

import "github.com/gin-gonic/gin"

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	{
		// All account routes operate on the authenticated caller.
		users.Use(r.jwtMw.RequireAuth())
		{
			users.GET("/me", r.userHandler.Me)
			users.PATCH("/me", r.userHandler.UpdateAccount)
			users.PUT("/me/password", r.userHandler.UpdatePassword)
			users.PUT("/me/avatar", r.userHandler.UpdateAvatar)
			users.PUT("/me/cover", r.userHandler.UpdateCover)
			users.GET("/me/history", r.userHandler.WatchHistory)
			users.DELETE("/me", r.userHandler.DeleteAccount)
		}
	}
}

// channelRoutes expose the public channel surface, keyed by username.
func (r *Router) channelRoutes(version *gin.RouterGroup) {
	channels := version.Group("/channels")
	{
		channels.GET("/:username", r.userHandler.ChannelProfile)
		channels.GET("/:username/tweets", r.tweetHandler.ListByUser)
		channels.GET("/:username/playlists", r.playlistHandler.ListByUser)
	}
}
