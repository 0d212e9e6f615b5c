package web

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(s.log), s.metrics.middleware())
	r.NoRoute(s.NotFound)

	// 页面
	r.GET("/", s.Index)
	r.GET("/posts", s.PostsList)
	r.GET("/posts/save", s.PostsSave)
	r.GET("/posts/feed", s.RSS)
	r.GET("/sitemap.xml", s.Sitemap)

	api := r.Group("/api/v1")
	{
		api.POST("/posts", s.CreatePost)
		api.PUT("/posts/:id", s.UpdatePost)
		api.GET("/posts/:id", s.GetPost)
	}

	r.GET("/healthz", s.Health)
	r.GET("/metrics", s.metrics.handler())
	return r
}
