package modelstore

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cozy-creator/hf-hub/hub/pipeline"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"go.uber.org/zap"
)

func (m *Manager) downloadFromSource(source *ModelSource) error {
	switch source.Type {
	case SourceHuggingface:
		return m.downloadHuggingFace(source.Location)
	case SourceDirect:
		return m.downloadDirect(source)
	case SourceFile:
		return verifyWeightsFile(source.Location)
	default:
		return fmt.Errorf("unsupported source type: %s", source.Type)
	}
}

func (m *Manager) downloadHuggingFace(repoID string) error {
	m.logger.Info("Downloading from HuggingFace", zap.String("repo_id", repoID))

	downloader := pipeline.NewDiffusionPipelineDownloader(m.hubClient)
	if _, err := downloader.Download(repoID, "", nil, nil); err != nil {
		return fmt.Errorf("failed to download model from HuggingFace: %w", err)
	}

	return nil
}

func (m *Manager) downloadDirect(source *ModelSource) error {
	m.logger.Info("Downloading from direct URL", zap.String("url", source.Location))

	destDir := m.directCachePath(source)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	filename := filenameFromURL(source.Location)
	if filename == "" {
		return fmt.Errorf("could not derive a filename from URL: %s", source.Location)
	}

	return m.downloadWithProgress(source.Location, filepath.Join(destDir, filename))
}

func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return ""
	}

	name := filepath.Base(parsed.Path)
	if name == "." || name == "/" {
		return ""
	}

	return name
}

func (m *Manager) downloadWithProgress(url, destPath string) error {
	tmpPath := destPath + ".tmp"

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 5 * time.Minute
	b.InitialInterval = 1 * time.Second
	b.MaxInterval = 30 * time.Second

	return backoff.Retry(func() error {
		return m.downloadWithResume(url, destPath, tmpPath)
	}, b)
}

func (m *Manager) downloadWithResume(url, destPath, tmpPath string) error {
	var initialSize int64
	if info, err := os.Stat(tmpPath); err == nil {
		initialSize = info.Size()
	}

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if initialSize > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", initialSize))
	}

	client := &http.Client{
		Timeout: 0, // downloads can run for a long time
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 60 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   60 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			IdleConnTimeout:       60 * time.Second,
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var totalSize int64
	if initialSize > 0 {
		if resp.StatusCode == http.StatusPartialContent {
			totalSize = initialSize + resp.ContentLength
		} else if resp.StatusCode == http.StatusOK {
			m.logger.Warn("Server doesn't support resume, starting download from beginning")
			initialSize = 0
		} else {
			return fmt.Errorf("resume failed with status %d", resp.StatusCode)
		}
	} else {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("download failed with status %d", resp.StatusCode)
		}
		totalSize = resp.ContentLength
	}

	flag := os.O_CREATE | os.O_WRONLY
	if initialSize > 0 {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}

	f, err := os.OpenFile(tmpPath, flag, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	progress := mpb.New(
		mpb.WithWidth(60),
		mpb.WithRefreshRate(180*time.Millisecond),
	)

	bar := progress.AddBar(totalSize,
		mpb.PrependDecorators(
			decor.Name(filepath.Base(destPath), decor.WC{W: 40, C: decor.DidentRight}),
			decor.CountersKibiByte("% .2f / % .2f"),
		),
		mpb.AppendDecorators(
			decor.EwmaETA(decor.ET_STYLE_GO, 90),
			decor.Name(" ] "),
			decor.EwmaSpeed(decor.UnitKiB, "% .2f", 60),
		),
	)

	if initialSize > 0 {
		bar.SetCurrent(initialSize)
	}

	downloadedSize := initialSize
	lastProgress := time.Now()

	reader := bar.ProxyReader(resp.Body)
	defer reader.Close()
	buf := make([]byte, 32*1024)

	for {
		n, err := reader.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write failed: %w", werr)
			}

			downloadedSize += int64(n)
			lastProgress = time.Now()
		} else if time.Since(lastProgress) > 2*time.Minute {
			return fmt.Errorf("download stalled for too long")
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
	}

	if totalSize > 0 && downloadedSize != totalSize {
		return fmt.Errorf("download size mismatch: expected %d, got %d", totalSize, downloadedSize)
	}

	if err := verifyWeightsFile(tmpPath); err != nil {
		return fmt.Errorf("failed to verify file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}

	return nil
}

// verifyWeightsFile sanity-checks a downloaded weights file: it must exist,
// carry a known extension, be at least 1MB, and be readable at both ends.
func verifyWeightsFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file does not exist: %w", err)
	}

	if info.Size() < 1024*1024 {
		return fmt.Errorf("file too small: %d bytes", info.Size())
	}

	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".tmp")))
	validExts := map[string]bool{
		".safetensors": true,
		".ckpt":        true,
		".pt":          true,
		".bin":         true,
		".onnx":        true,
	}
	if !validExts[ext] {
		return fmt.Errorf("invalid file extension: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 1024*1024)
	if _, err := f.Read(buf); err != nil {
		return fmt.Errorf("failed to read file start: %w", err)
	}
	if _, err := f.Seek(-1024*1024, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek file end: %w", err)
	}
	if _, err := f.Read(buf); err != nil {
		return fmt.Errorf("failed to read file end: %w", err)
	}

	return nil
}
