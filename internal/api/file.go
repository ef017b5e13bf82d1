package api

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/cyfeng16/depth-estimator/internal/app"
	"github.com/cyfeng16/depth-estimator/internal/config"
	"github.com/cyfeng16/depth-estimator/internal/types"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

func UploadFileHandler(c *gin.Context) {
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

	url := make(chan string, 1)
	app := c.MustGet("app").(*app.App)
	app.Uploader().UploadBytes(fileBytes, filepath.Ext(file.Filename), false, url)

	uploaded, ok := <-url
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to store file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"data":   types.UploadResponse{Url: uploaded},
	})
}

func GetFile(c *gin.Context) {
	filename := c.Param("filename")
	app := c.MustGet("app").(*app.App)

	storage := app.Storage()
	if app.Config().Filesystem == config.FilesystemLocal {
		file, err := storage.ResolveFile(filename, "", false)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "file not found"})
			return
		}

		c.File(file)
		return
	}

	file, err := storage.GetFile(filename)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "file not found"})
		return
	}

	content := file.Content.([]byte)
	c.Data(http.StatusOK, mimetype.Detect(content).String(), content)
}
