package router

import "github.com/gin-gonic/gin"

func (r *Router) videoRoutes(version *gin.RouterGroup) {
	videos := version.Group("/videos")
	{
		// Reads are public but viewer-aware: owners see their own
		// unpublished videos when authenticated.
		videos.GET("", r.jwtMw.OptionalAuth(), r.videoHandler.List)
		videos.GET("/:id", r.jwtMw.OptionalAuth(), r.videoHandler.Get)
		videos.GET("/:id/comments", r.jwtMw.OptionalAuth(), r.commentHandler.ListByVideo)

		protected := videos.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("", r.videoHandler.Publish)
			protected.PATCH("/:id", r.videoHandler.Update)
			protected.PATCH("/:id/toggle-publish", r.videoHandler.TogglePublish)
			protected.DELETE("/:id", r.videoHandler.Delete)
			protected.POST("/:id/comments", r.commentHandler.Create)
		}
	}
}

func (r *Router) commentRoutes(version *gin.RouterGroup) {
	comments := version.Group("/comments")
	{
		comments.Use(r.jwtMw.RequireAuth())
		{
			comments.PATCH("/:id", r.commentHandler.Update)
			comments.DELETE("/:id", r.commentHandler.Delete)
		}
	}
}

func (r *Router) tweetRoutes(version *gin.RouterGroup) {
	tweets := version.Group("/tweets")
	{
		tweets.Use(r.jwtMw.RequireAuth())
		{
			tweets.POST("", r.tweetHandler.Create)
			tweets.PATCH("/:id", r.tweetHandler.Update)
			tweets.DELETE("/:id", r.tweetHandler.Delete)
		}
	}
}

func (r *Router) playlistRoutes(version *gin.RouterGroup) {
	playlists := version.Group("/playlists")
	{
		playlists.GET("/:id", r.playlistHandler.Get)

		protected := playlists.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("", r.playlistHandler.Create)
			protected.PATCH("/:id", r.playlistHandler.Update)
			protected.POST("/:id/videos/:videoId", r.playlistHandler.AddVideo)
			protected.DELETE("/:id/videos/:videoId", r.playlistHandler.RemoveVideo)
			protected.DELETE("/:id", r.playlistHandler.Delete)
		}
	}
}
