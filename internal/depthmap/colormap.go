package depthmap

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Anchor stops of the inferno gradient, dark to bright.
var infernoHex = []string{
	"#000004",
	"#1b0c41",
	"#4a0c6b",
	"#781c6d",
	"#a52c60",
	"#cf4446",
	"#ed6925",
	"#fb9b06",
	"#f7d03c",
	"#fcffa4",
}

// Palette is a 256-entry false-color lookup table.
type Palette [256]color.RGBA

// Inferno is the palette used for rendered depth maps: the inferno anchor
// stops interpolated in Lab space, so the gradient stays perceptually
// smooth.
var Inferno = newPalette(infernoHex)

func newPalette(stops []string) *Palette {
	anchors := make([]colorful.Color, len(stops))
	for i, h := range stops {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		anchors[i] = c
	}

	var p Palette
	segments := len(anchors) - 1
	for i := range p {
		pos := float64(i) / 255.0 * float64(segments)
		seg := int(pos)
		if seg >= segments {
			seg = segments - 1
		}

		c := anchors[seg].BlendLab(anchors[seg+1], pos-float64(seg)).Clamped()
		r, g, b := c.RGB255()
		p[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}

	return &p
}

// At maps an 8-bit depth level to its palette color.
func (p *Palette) At(level uint8) color.RGBA {
	return p[level]
}
