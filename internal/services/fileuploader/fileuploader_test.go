package fileuploader

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cyfeng16/depth-estimator/internal/services/filestorage"
	"github.com/cyfeng16/depth-estimator/internal/utils/hashutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStorage struct {
	mu      sync.Mutex
	uploads []filestorage.FileInfo
	fail    bool
}

func (f *fakeStorage) Upload(file filestorage.FileInfo) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return "", errors.New("storage offline")
	}

	f.uploads = append(f.uploads, file)
	return "http://0.0.0.0:45944/file/" + file.Name + file.Extension, nil
}

func (f *fakeStorage) UploadMultiple(files []filestorage.FileInfo) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStorage) GetFile(filename string) (*filestorage.FileInfo, error) {
	return nil, os.ErrNotExist
}

func (f *fakeStorage) ResolveFile(filename, subfolder string, isTemp bool) (string, error) {
	return "", os.ErrNotExist
}

func receiveURL(t *testing.T, response chan string) (string, bool) {
	t.Helper()

	select {
	case url, ok := <-response:
		return url, ok
	case <-time.After(2 * time.Second):
		t.Fatal("upload never completed")
		return "", false
	}
}

func TestUploadBytesNamesByHash(t *testing.T) {
	storage := &fakeStorage{}
	uploader := NewFileUploader(storage, 2, zap.NewNop())
	defer uploader.Stop()

	content := []byte("depth-map-png")
	response := make(chan string, 1)
	uploader.UploadBytes(content, ".png", false, response)

	url, ok := receiveURL(t, response)
	require.True(t, ok)
	assert.Equal(t, "http://0.0.0.0:45944/file/"+hashutil.Blake3Hash(content)+".png", url)

	require.Len(t, storage.uploads, 1)
	assert.Equal(t, filestorage.FileKindBytes, storage.uploads[0].Kind)
	assert.False(t, storage.uploads[0].IsTemp)
}

func TestUploadFailureClosesResponse(t *testing.T) {
	uploader := NewFileUploader(&fakeStorage{fail: true}, 1, zap.NewNop())
	defer uploader.Stop()

	response := make(chan string, 1)
	uploader.UploadBytes([]byte("content"), ".png", false, response)

	url, ok := receiveURL(t, response)
	assert.False(t, ok, "response channel should close without a URL")
	assert.Empty(t, url)
}

func TestUploadsDrainThroughPool(t *testing.T) {
	storage := &fakeStorage{}
	uploader := NewFileUploader(storage, 2, zap.NewNop())
	defer uploader.Stop()

	responses := make([]chan string, 4)
	for i := range responses {
		responses[i] = make(chan string, 1)
		uploader.UploadBytes([]byte{byte(i)}, ".png", false, responses[i])
	}

	for _, response := range responses {
		_, ok := receiveURL(t, response)
		assert.True(t, ok)
	}

	assert.Len(t, storage.uploads, 4)
}
