package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyfeng16/depth-estimator/internal/app"
	"github.com/cyfeng16/depth-estimator/internal/types"
	"github.com/cyfeng16/depth-estimator/internal/utils/hashutil"

	"github.com/gin-gonic/gin"
)

// EstimateDepth accepts a multipart image upload, stores the original for
// display, runs depth estimation, and answers with URLs for both images.
// Estimation failures are reported in-band with a 200: the page renders
// them beside the original instead of as a transport error.
func EstimateDepth(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to parse request body"})
		return
	}

	content, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to open file"})
		return
	}
	defer content.Close()

	fileBytes, err := io.ReadAll(content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to read file"})
		return
	}
	if len(fileBytes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "empty file"})
		return
	}

	app := c.MustGet("app").(*app.App)
	cfg := app.Config()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".png"
	}

	// The inference worker reads its input from disk, so the upload is
	// written to the temp dir first under its content hash.
	imagePath := filepath.Join(cfg.TempDir, hashutil.Blake3Hash(fileBytes)+ext)
	if err := os.MkdirAll(cfg.TempDir, os.ModePerm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to store upload"})
		return
	}
	if err := os.WriteFile(imagePath, fileBytes, 0644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to store upload"})
		return
	}
	defer os.Remove(imagePath)

	// The original uploads in the background while inference runs.
	originalURL := make(chan string, 1)
	app.Uploader().UploadBytes(fileBytes, ext, false, originalURL)

	outcome := app.Estimation().Estimate(c.Request.Context(), imagePath)

	original, ok := <-originalURL
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to store original image"})
		return
	}

	if outcome.Failed() {
		c.JSON(http.StatusOK, types.EstimateResponse{
			Original: original,
			Error:    fmt.Sprintf("Error during estimation: %v", outcome.Err),
		})
		return
	}

	depthURL := make(chan string, 1)
	app.Uploader().UploadBytes(outcome.Depth, ".png", false, depthURL)

	depth, ok := <-depthURL
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to store depth rendering"})
		return
	}

	c.JSON(http.StatusOK, types.EstimateResponse{Original: original, Depth: depth})
}
