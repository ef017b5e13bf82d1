package server

import (
	"net/http"

	"github.com/cyfeng16/depth-estimator/internal/api"
	"github.com/cyfeng16/depth-estimator/internal/app"

	"github.com/gin-gonic/gin"
)

func (s *Server) SetupRoutes(app *app.App) {
	// Health check endpoint
	s.ginEngine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The built-in demo page
	s.ginEngine.GET("/", handlerWrapper(app, api.Index))

	// Not an API, just a simple file server endpoint
	s.ginEngine.GET("/file/:filename", handlerWrapper(app, api.GetFile))

	apiV1 := s.ginEngine.Group("/api/v1")

	apiV1.POST("/estimate", handlerWrapper(app, api.EstimateDepth))
	apiV1.POST("/upload", handlerWrapper(app, api.UploadFileHandler))
	apiV1.GET("/models/status", handlerWrapper(app, api.GetModelStatus))
	apiV1.POST("/models/download", handlerWrapper(app, api.DownloadModels))
}

func handlerWrapper(app *app.App, f func(c *gin.Context)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("app", app)
		f(ctx)
	}
}
