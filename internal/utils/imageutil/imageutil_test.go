package imageutil

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 50), G: uint8(y * 50), B: 128, A: 255})
		}
	}

	return img
}

func TestEncodeDecodePNG(t *testing.T) {
	data, err := EncodePNG(testImage(4, 3))
	require.NoError(t, err)

	img, format, err := DecodeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
}

func TestEncodeJPEG(t *testing.T) {
	data, err := Encode(testImage(4, 3), "jpeg")
	require.NoError(t, err)

	_, format, err := DecodeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	_, err := Encode(testImage(2, 2), "exr")
	assert.Error(t, err)
}

func TestDecodeFile(t *testing.T) {
	data, err := EncodePNG(testImage(5, 2))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "test.png")
	require.NoError(t, os.WriteFile(path, data, 0644))

	img, format, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 5, img.Bounds().Dx())
}

func TestDecodeConfigFile(t *testing.T) {
	data, err := EncodePNG(testImage(7, 9))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "test.png")
	require.NoError(t, os.WriteFile(path, data, 0644))

	w, h, err := DecodeConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, w)
	assert.Equal(t, 9, h)
}

func TestDecodeFileMissing(t *testing.T) {
	_, _, err := DecodeFile(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}
