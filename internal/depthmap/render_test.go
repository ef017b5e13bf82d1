package depthmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func luminance(p *Palette, level uint8) int {
	c := p.At(level)
	return int(c.R) + int(c.G) + int(c.B)
}

func TestInfernoGradient(t *testing.T) {
	dark := luminance(Inferno, 0)
	mid := luminance(Inferno, 128)
	bright := luminance(Inferno, 255)

	assert.Less(t, dark, mid)
	assert.Less(t, mid, bright)
	assert.Less(t, dark, 32, "gradient should start near black")
	assert.Greater(t, bright, 600, "gradient should end bright")
}

func TestInfernoOpaque(t *testing.T) {
	for _, level := range []uint8{0, 1, 127, 254, 255} {
		assert.EqualValues(t, 255, Inferno.At(level).A)
	}
}

func TestRenderDimensions(t *testing.T) {
	dm, err := New(3, 2, []float32{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)

	img := Render(dm, Inferno)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	// Color lives entirely in the three RGB channels.
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.EqualValues(t, 255, img.RGBAAt(x, y).A)
		}
	}
}

func TestRenderMapsRangeEndpoints(t *testing.T) {
	dm, err := New(2, 1, []float32{1.5, 9})
	require.NoError(t, err)

	img := Render(dm, Inferno)
	assert.Equal(t, Inferno.At(0), img.RGBAAt(0, 0))
	assert.Equal(t, Inferno.At(255), img.RGBAAt(1, 0))
}

func TestRenderResized(t *testing.T) {
	dm, err := New(2, 2, []float32{0, 1, 2, 3})
	require.NoError(t, err)

	img := RenderResized(dm, Inferno, 8, 6)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestRenderResizedNoOp(t *testing.T) {
	dm, err := New(2, 2, []float32{0, 1, 2, 3})
	require.NoError(t, err)

	img := RenderResized(dm, Inferno, 2, 2)
	assert.Equal(t, Render(dm, Inferno), img)
}
