package api

import (
	"net/http"

	"github.com/cyfeng16/depth-estimator/internal/app"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type ModelRequest struct {
	ModelIDs []string `json:"model_ids" msgpack:"model_ids"`
}

// DownloadModels fetches the requested model snapshots into the local
// cache. An empty list means the configured default model. The request
// body may be JSON or msgpack.
func DownloadModels(c *gin.Context) {
	var req ModelRequest
	contentType := c.ContentType()
	if contentType == "" {
		contentType = "application/json"
	}

	switch contentType {
	case "application/msgpack":
		if err := c.ShouldBindWith(&req, binding.MsgPack); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "failed to parse msgpack request body"})
			return
		}
	case "application/json":
		if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "failed to parse json request body"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "unsupported content type: " + contentType})
		return
	}

	app := c.MustGet("app").(*app.App)
	if len(req.ModelIDs) == 0 {
		req.ModelIDs = []string{app.Config().ModelID}
	}

	if err := app.Models().DownloadAll(c.Request.Context(), req.ModelIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetModelStatus reports per-model cache state. Without an explicit
// model_ids query the configured default and warmup models are checked.
func GetModelStatus(c *gin.Context) {
	app := c.MustGet("app").(*app.App)

	modelIDs := c.QueryArray("model_ids")
	if len(modelIDs) == 0 {
		modelIDs = append([]string{app.Config().ModelID}, app.Config().WarmupModels...)
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"data":   app.Models().Status(modelIDs),
	})
}
