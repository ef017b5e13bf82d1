package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads an image in any registered raster format
// (png, jpeg, gif, bmp, tiff, webp).
func Decode(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}

func DecodeBytes(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}

func DecodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	return image.Decode(f)
}

// DecodeConfigFile returns the dimensions of the image at path without
// decoding the pixel data.
func DecodeConfigFile(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}

	return cfg.Width, cfg.Height, nil
}

func EncodePNG(img image.Image) ([]byte, error) {
	var output bytes.Buffer
	if err := png.Encode(&output, img); err != nil {
		return nil, err
	}

	return output.Bytes(), nil
}

func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var output bytes.Buffer
	options := &jpeg.Options{Quality: quality}
	if err := jpeg.Encode(&output, img, options); err != nil {
		return nil, err
	}

	return output.Bytes(), nil
}

// Encode serializes img in the requested format ("png", "jpg" or "jpeg").
func Encode(img image.Image, format string) ([]byte, error) {
	switch format {
	case "png":
		return EncodePNG(img)
	case "jpg", "jpeg":
		return EncodeJPEG(img, 90)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
