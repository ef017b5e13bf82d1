package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := ExpandPath("~/some/dir")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "some/dir"), expanded)
}

func TestExpandPathAbsoluteUnchanged(t *testing.T) {
	expanded, err := ExpandPath("/var/tmp/x")
	require.NoError(t, err)
	assert.Equal(t, "/var/tmp/x", expanded)
}

func TestExpandPathRelativeUnchanged(t *testing.T) {
	expanded, err := ExpandPath("relative/dir")
	require.NoError(t, err)
	assert.Equal(t, "relative/dir", expanded)
}
