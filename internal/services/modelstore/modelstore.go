package modelstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cyfeng16/depth-estimator/internal/config"

	"github.com/cozy-creator/hf-hub/hub"
	"go.uber.org/zap"
)

type DownloadStatus string

const (
	StatusAbsent      DownloadStatus = "absent"
	StatusDownloading DownloadStatus = "downloading"
	StatusReady       DownloadStatus = "ready"
	StatusFailed      DownloadStatus = "failed"
)

var ErrDownloadFailed = errors.New("model download failed")

// Manager resolves model references against the local cache and downloads
// what is missing. Concurrent requests for the same model collapse into a
// single download.
type Manager struct {
	cfg       *config.Config
	hubClient *hub.Client
	logger    *zap.Logger
	board     *statusBoard
}

func NewManager(cfg *config.Config, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:       cfg,
		hubClient: hub.DefaultClient(),
		logger:    logger.Named("modelstore"),
		board:     newStatusBoard(),
	}
}

// CacheDir is the hub cache location snapshots are checked against.
func (m *Manager) CacheDir() string {
	return m.hubClient.CacheDir
}

// EnsureDownloaded makes sure modelID is present locally, downloading it
// when absent. It blocks until the model is ready or the download fails.
func (m *Manager) EnsureDownloaded(ctx context.Context, modelID string) error {
	source, err := ParseSource(modelID)
	if err != nil {
		return err
	}

	downloaded, err := m.isSourceDownloaded(source)
	if err != nil {
		return fmt.Errorf("failed to check cache for %s: %w", modelID, err)
	}
	if downloaded {
		m.board.markReady(modelID)
		return nil
	}

	if wait := m.board.begin(modelID); wait != nil {
		select {
		case err := <-wait:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.logger.Info("Downloading model", zap.String("model_id", modelID))
	err = m.downloadFromSource(source)
	m.board.finish(modelID, err)
	if err != nil {
		return fmt.Errorf("failed to download model %s: %w", modelID, err)
	}

	return nil
}

// DownloadAll fetches every listed model, fanning the downloads out in
// parallel and reporting the first failure.
func (m *Manager) DownloadAll(ctx context.Context, modelIDs []string) error {
	if len(modelIDs) == 0 {
		m.logger.Info("No models requested")
		return nil
	}

	var wg sync.WaitGroup
	errorChan := make(chan error, len(modelIDs))

	for _, modelID := range modelIDs {
		wg.Add(1)
		go func(modelID string) {
			defer wg.Done()

			downloaded, err := m.IsDownloaded(modelID)
			if err != nil {
				errorChan <- fmt.Errorf("failed to check if model %s is downloaded: %w", modelID, err)
				return
			}

			if downloaded {
				m.logger.Info("Model already downloaded", zap.String("model_id", modelID))
				return
			}

			if err := m.EnsureDownloaded(ctx, modelID); err != nil {
				errorChan <- err
			}
		}(modelID)
	}

	wg.Wait()
	close(errorChan)

	for err := range errorChan {
		if err != nil {
			return fmt.Errorf("error during model download: %w", err)
		}
	}

	return nil
}

func (m *Manager) IsDownloaded(modelID string) (bool, error) {
	source, err := ParseSource(modelID)
	if err != nil {
		return false, err
	}

	return m.isSourceDownloaded(source)
}

type ModelStatus struct {
	ModelID string         `json:"model_id"`
	Status  DownloadStatus `json:"status"`
}

// Status reports each model's state: in-flight downloads from the board,
// everything else from the cache on disk.
func (m *Manager) Status(modelIDs []string) []ModelStatus {
	statuses := make([]ModelStatus, 0, len(modelIDs))
	for _, modelID := range modelIDs {
		status := m.board.get(modelID)
		if status == StatusAbsent {
			if downloaded, err := m.IsDownloaded(modelID); err == nil && downloaded {
				status = StatusReady
			}
		}

		statuses = append(statuses, ModelStatus{ModelID: modelID, Status: status})
	}

	return statuses
}

// statusBoard tracks per-model download state and lets callers wait on a
// download another goroutine already started.
type statusBoard struct {
	mu      sync.Mutex
	status  map[string]DownloadStatus
	waiters map[string][]chan error
}

func newStatusBoard() *statusBoard {
	return &statusBoard{
		status:  make(map[string]DownloadStatus),
		waiters: make(map[string][]chan error),
	}
}

func (b *statusBoard) get(modelID string) DownloadStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	if status, ok := b.status[modelID]; ok {
		return status
	}

	return StatusAbsent
}

func (b *statusBoard) markReady(modelID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status[modelID] = StatusReady
}

// begin claims the download of modelID. It returns nil when the caller
// should perform the download itself, or a channel that resolves when the
// download already in flight completes.
func (b *statusBoard) begin(modelID string) <-chan error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.status[modelID] == StatusDownloading {
		ch := make(chan error, 1)
		b.waiters[modelID] = append(b.waiters[modelID], ch)
		return ch
	}

	b.status[modelID] = StatusDownloading
	return nil
}

func (b *statusBoard) finish(modelID string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.status[modelID] = StatusFailed
	} else {
		b.status[modelID] = StatusReady
	}

	var result error
	if err != nil {
		result = fmt.Errorf("%w: %s", ErrDownloadFailed, err)
	}
	for _, ch := range b.waiters[modelID] {
		ch <- result
		close(ch)
	}
	delete(b.waiters, modelID)
}
