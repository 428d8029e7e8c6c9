package render

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/ar-hunt/scene"
)

// OverlayFunc supplies HUD rows drawn under the viewport each frame
type OverlayFunc func() []string

// TerminalRenderer draws projected meshes as colored cells on a tcell screen
type TerminalRenderer struct {
	screen  tcell.Screen
	hudRows int

	mu      sync.Mutex
	overlay OverlayFunc
}

// NewTerminalRenderer renders into screen, reserving hudRows at the bottom for the overlay
func NewTerminalRenderer(screen tcell.Screen, hudRows int) *TerminalRenderer {
	if hudRows < 0 {
		hudRows = 0
	}
	return &TerminalRenderer{screen: screen, hudRows: hudRows}
}

// SetOverlay replaces the HUD provider; safe from any goroutine
func (r *TerminalRenderer) SetOverlay(fn OverlayFunc) {
	r.mu.Lock()
	r.overlay = fn
	r.mu.Unlock()
}

// Render clears the screen, paints the scene far to near, draws the HUD and shows the frame
func (r *TerminalRenderer) Render(s *scene.Scene, cam Camera) error {
	w, h := r.screen.Size()
	viewH := h - r.hudRows
	if w <= 0 || viewH <= 0 {
		return nil
	}

	bg := tcell.StyleDefault.Background(Background.TCell())
	r.screen.Fill(' ', bg)

	for _, p := range Project(s, cam, w, viewH) {
		r.drawPrimitive(p)
	}

	r.mu.Lock()
	overlay := r.overlay
	r.mu.Unlock()
	if overlay != nil {
		r.drawHUD(overlay(), w, viewH, h)
	}

	r.screen.Show()
	return nil
}

func (r *TerminalRenderer) drawPrimitive(p Primitive) {
	glyph := glyphFor(p)
	color := Lerp(Background, p.Color, p.Alpha)
	style := tcell.StyleDefault.Foreground(color.TCell()).Background(Background.TCell())
	for y := p.Y0; y <= p.Y1; y++ {
		for x := p.X0; x <= p.X1; x++ {
			r.screen.SetContent(x, y, glyph, nil, style)
		}
	}
}

// glyphFor picks a cell glyph by shape; particles fade through lighter glyphs
func glyphFor(p Primitive) rune {
	switch p.Node.Mesh.Shape {
	case scene.ShapeBox:
		return '█'
	case scene.ShapeCylinder:
		return '▓'
	case scene.ShapeCone:
		return '▲'
	case scene.ShapeSphere:
		return '●'
	case scene.ShapeTorus:
		return 'o'
	case scene.ShapePoint:
		switch {
		case p.Alpha > 0.66:
			return '*'
		case p.Alpha > 0.33:
			return '+'
		default:
			return '·'
		}
	}
	return '?'
}

func (r *TerminalRenderer) drawHUD(lines []string, w, top, h int) {
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(200, 200, 210)).Background(tcell.ColorBlack)
	for y := top; y < h; y++ {
		for x := 0; x < w; x++ {
			r.screen.SetContent(x, y, ' ', nil, style)
		}
	}
	for i, line := range lines {
		y := top + i
		if y >= h {
			break
		}
		x := 1
		for _, ch := range line {
			if x >= w {
				break
			}
			r.screen.SetContent(x, y, ch, nil, style)
			x++
		}
	}
}
