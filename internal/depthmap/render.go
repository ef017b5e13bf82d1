package depthmap

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
)

// Render colorizes the depth map through the palette. The result has the
// depth map's dimensions, one palette color per pixel.
func Render(dm *DepthMap, pal *Palette) *image.RGBA {
	levels := dm.Normalize()

	img := image.NewRGBA(image.Rect(0, 0, dm.width, dm.height))
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			img.SetRGBA(x, y, pal.At(levels[y*dm.width+x]))
		}
	}

	return img
}

// RenderResized renders the depth map and scales the result to
// width x height. Models often predict at a reduced resolution, so the
// rendering is brought back to the source image's size for display.
func RenderResized(dm *DepthMap, pal *Palette, width, height int) *image.RGBA {
	img := Render(dm, pal)
	if dm.width == width && dm.height == height {
		return img
	}

	return transform.Resize(img, width, height, transform.Linear)
}
