package modelstore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// repoFolderName converts "owner/repo" to "models--owner--repo", the hub
// cache layout.
func repoFolderName(repoID string) string {
	parts := append([]string{"models"}, strings.Split(repoID, "/")...)
	return strings.Join(parts, "--")
}

func (m *Manager) isSourceDownloaded(source *ModelSource) (bool, error) {
	switch source.Type {
	case SourceHuggingface:
		return m.isRepoDownloaded(source.Location), nil

	case SourceFile:
		if err := verifyWeightsFile(source.Location); err != nil {
			return false, fmt.Errorf("local file invalid or missing: %w", err)
		}
		return true, nil

	case SourceDirect:
		return anyValidWeightsInDir(m.directCachePath(source)), nil

	default:
		return false, fmt.Errorf("unsupported source type: %s", source.Type)
	}
}

// isRepoDownloaded checks the hub cache for a complete snapshot: the repo
// folder, a resolved main ref, the snapshot directory, and no interrupted
// blob downloads.
func (m *Manager) isRepoDownloaded(repoID string) bool {
	storageFolder := filepath.Join(m.hubClient.CacheDir, repoFolderName(repoID))
	if !pathExists(storageFolder) {
		return false
	}

	commitHash, err := os.ReadFile(filepath.Join(storageFolder, "refs", "main"))
	if err != nil {
		return false
	}

	snapshotPath := filepath.Join(storageFolder, "snapshots", strings.TrimSpace(string(commitHash)))
	if !pathExists(snapshotPath) {
		return false
	}

	blobFolder := filepath.Join(storageFolder, "blobs")
	if pathExists(blobFolder) {
		incomplete := false
		filepath.Walk(blobFolder, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && strings.HasSuffix(info.Name(), ".incomplete") {
				incomplete = true
				return filepath.SkipAll
			}
			return nil
		})
		if incomplete {
			return false
		}
	}

	return true
}

// directCachePath is where a direct-URL download lands, keyed by a short
// hash of the URL so distinct sources never collide.
func (m *Manager) directCachePath(source *ModelSource) string {
	h := sha256.Sum256([]byte(source.Location))
	urlHash := hex.EncodeToString(h[:])[:8]
	return filepath.Join(m.cfg.ModelsDir, "direct--"+urlHash)
}

func anyValidWeightsInDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if verifyWeightsFile(filepath.Join(dir, entry.Name())) == nil {
			return true
		}
	}

	return false
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
