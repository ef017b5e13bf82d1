package depthmap

import (
	"fmt"
	"math"
)

// DepthMap holds a per-pixel scene depth estimate: one scalar per pixel,
// row-major, as produced by the inference worker.
type DepthMap struct {
	width  int
	height int
	values []float32
}

func New(width, height int, values []float32) (*DepthMap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid depth map dimensions: %dx%d", width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("depth map size mismatch: %dx%d needs %d values, got %d",
			width, height, width*height, len(values))
	}

	return &DepthMap{width: width, height: height, values: values}, nil
}

func (dm *DepthMap) Width() int {
	return dm.width
}

func (dm *DepthMap) Height() int {
	return dm.height
}

func (dm *DepthMap) At(x, y int) float32 {
	return dm.values[y*dm.width+x]
}

func (dm *DepthMap) Values() []float32 {
	return dm.values
}

// MinMax returns the smallest and largest depth values in the map.
func (dm *DepthMap) MinMax() (float32, float32) {
	min := float32(math.MaxFloat32)
	max := float32(-math.MaxFloat32)
	for _, v := range dm.values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	return min, max
}

// Normalize quantizes the map to 8-bit levels across its observed range.
// A flat map (max == min) quantizes to all zeros.
func (dm *DepthMap) Normalize() []uint8 {
	out := make([]uint8, len(dm.values))

	min, max := dm.MinMax()
	if max <= min {
		return out
	}

	scale := 255.0 / float64(max-min)
	for i, v := range dm.values {
		out[i] = uint8(math.Round(float64(v-min) * scale))
	}

	return out
}
