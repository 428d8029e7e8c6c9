package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/ar-hunt/scene"
)

// RGB is an 8-bit color used while shading cells
type RGB struct {
	R, G, B uint8
}

// Background is the viewport clear color (dim camera-feed gray)
var Background = RGB{26, 27, 38}

// FromScene unpacks a scene color
func FromScene(c scene.Color) RGB {
	r, g, b := c.RGB()
	return RGB{r, g, b}
}

// Scale multiplies every channel by f, saturating at 255
func (c RGB) Scale(f float32) RGB {
	return RGB{clamp(float32(c.R) * f), clamp(float32(c.G) * f), clamp(float32(c.B) * f)}
}

// Lerp blends from c to d by t in [0,1]
func Lerp(c, d RGB, t float32) RGB {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return d
	}
	return RGB{
		clamp(float32(c.R) + (float32(d.R)-float32(c.R))*t),
		clamp(float32(c.G) + (float32(d.G)-float32(c.G))*t),
		clamp(float32(c.B) + (float32(d.B)-float32(c.B))*t),
	}
}

// TCell converts to a tcell true color
func (c RGB) TCell() tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func clamp(v float32) uint8 {
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v)
}
