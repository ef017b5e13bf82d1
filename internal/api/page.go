package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cyfeng16/depth-estimator/internal/templates"
)

// Index serves the built-in demo page. Static files placed in the public
// dir are served ahead of this handler, so an index.html there wins.
func Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(templates.IndexPage))
}
