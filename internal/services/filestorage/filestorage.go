package filestorage

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cyfeng16/depth-estimator/internal/config"
)

type FileKind string

const (
	FileKindBytes  FileKind = "bytes"
	FileKindStream FileKind = "stream"
)

var ErrUnknownFileKind = errors.New("unknown file kind")

// FileInfo describes a file to store. Content holds []byte for
// FileKindBytes and an io.Reader for FileKindStream.
type FileInfo struct {
	Name      string
	Extension string
	Content   any
	Kind      FileKind
	IsTemp    bool
}

type FileStorage interface {
	Upload(file FileInfo) (string, error)
	UploadMultiple(files []FileInfo) ([]string, error)
	GetFile(filename string) (*FileInfo, error)
	ResolveFile(filename string, subfolder string, isTemp bool) (string, error)
}

func NewFileInfo(name string, extension string, content []byte, isTemp bool) FileInfo {
	return FileInfo{
		Name:      name,
		Extension: extension,
		Content:   content,
		Kind:      FileKindBytes,
		IsTemp:    isTemp,
	}
}

func NewStreamFileInfo(name string, extension string, content io.Reader, isTemp bool) FileInfo {
	return FileInfo{
		Name:      name,
		Extension: extension,
		Content:   content,
		Kind:      FileKindStream,
		IsTemp:    isTemp,
	}
}

func NewFileStorage(cfg *config.Config) (FileStorage, error) {
	switch strings.ToLower(cfg.Filesystem) {
	case config.FilesystemLocal:
		return NewLocalFileStorage(cfg)
	case config.FilesystemS3:
		return NewS3FileStorage(cfg)
	}

	return nil, fmt.Errorf("invalid filesystem type %s", cfg.Filesystem)
}
