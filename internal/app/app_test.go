package app

import (
	"path/filepath"
	"testing"

	"github.com/cyfeng16/depth-estimator/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	home := t.TempDir()
	return &config.Config{
		Host:        "0.0.0.0",
		Port:        45944,
		Environment: "test",
		HomeDir:     home,
		AssetsDir:   filepath.Join(home, "assets"),
		ModelsDir:   filepath.Join(home, "models"),
		TempDir:     filepath.Join(home, "temp"),
		ModelID:     config.DefaultModelID,
		Filesystem:  config.FilesystemLocal,
	}
}

func TestNewAppWiresServices(t *testing.T) {
	a, err := NewApp(newTestConfig(t),
		WithLogger(zap.NewNop()),
		WithFileStorage(),
		WithModelStore(),
		WithEstimation(),
	)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Config())
	assert.NotNil(t, a.Context())
	assert.NotNil(t, a.Storage())
	assert.NotNil(t, a.Uploader())
	assert.NotNil(t, a.Models())
	assert.NotNil(t, a.Estimation())
}

func TestNewAppFailsOnBadOption(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Filesystem = "ftp"

	_, err := NewApp(cfg, WithLogger(zap.NewNop()), WithFileStorage())
	assert.Error(t, err)
}

func TestEstimationRequiresModelStore(t *testing.T) {
	_, err := NewApp(newTestConfig(t), WithLogger(zap.NewNop()), WithEstimation())
	assert.Error(t, err)
}
