package fileuploader

import (
	"github.com/cyfeng16/depth-estimator/internal/services/filestorage"
	"github.com/cyfeng16/depth-estimator/internal/utils/hashutil"

	"github.com/gammazero/workerpool"
	"go.uber.org/zap"
)

type Uploader struct {
	wp          *workerpool.WorkerPool
	filestorage filestorage.FileStorage
	logger      *zap.Logger
}

func NewFileUploader(filestorage filestorage.FileStorage, maxWorkers int, logger *zap.Logger) *Uploader {
	return &Uploader{
		wp:          workerpool.New(maxWorkers),
		filestorage: filestorage,
		logger:      logger.Named("fileuploader"),
	}
}

func (w *Uploader) Stop() {
	w.wp.Stop()
}

// Upload queues a file for storage. The response channel receives the
// public URL on success and is closed either way, so receivers can tell a
// failed upload from a slow one.
func (w *Uploader) Upload(file filestorage.FileInfo, response chan string) {
	w.wp.Submit(func() {
		w.upload(file, response)
	})
}

// UploadBytes stores content under its blake3 hash, so repeat uploads of
// the same bytes land on the same name.
func (w *Uploader) UploadBytes(content []byte, extension string, isTemp bool, response chan string) {
	fileInfo := filestorage.NewFileInfo(hashutil.Blake3Hash(content), extension, content, isTemp)
	w.Upload(fileInfo, response)
}

func (w *Uploader) upload(file filestorage.FileInfo, response chan string) {
	defer close(response)

	if w.filestorage == nil {
		return
	}

	url, err := w.filestorage.Upload(file)
	if err != nil {
		w.logger.Error("Failed to upload file",
			zap.String("name", file.Name),
			zap.Error(err))
		return
	}

	response <- url
}
