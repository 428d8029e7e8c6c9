package anim

import (
	"github.com/chewxy/math32"
	"github.com/tanema/gween/ease"
)

// Easing selects the curve mapping linear progress to eased progress
type Easing uint8

const (
	Linear Easing = iota
	EaseOutCubic
	EaseOutExpo
)

var easingNames = [...]string{"linear", "ease-out-cubic", "ease-out-expo"}

func (e Easing) String() string {
	if int(e) < len(easingNames) {
		return easingNames[e]
	}
	return "unknown"
}

func (e Easing) fn() ease.TweenFunc {
	switch e {
	case EaseOutCubic:
		return ease.OutCubic
	case EaseOutExpo:
		return ease.OutExpo
	default:
		return ease.Linear
	}
}

// Apply maps progress p in [0,1] to eased progress
// Endpoints are pinned so 0 and 1 map exactly to 0 and 1 for every curve
func (e Easing) Apply(p float32) float32 {
	p = Clamp01(p)
	if p == 0 || p == 1 {
		return p
	}
	return e.fn()(p, 0, 1, 1)
}

// Clamp01 clamps v to [0,1], NaN maps to 0
func Clamp01(v float32) float32 {
	if math32.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp interpolates from a to b by t
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// SpinTarget returns the arrow end rotation: full turns followed by the settling angle
func SpinTarget(finalAngle float32, turns int) float32 {
	return float32(turns)*2*math32.Pi + finalAngle
}

// NormalizeAngle reduces a to [0, 2π)
func NormalizeAngle(a float32) float32 {
	a = math32.Mod(a, 2*math32.Pi)
	if a < 0 {
		a += 2 * math32.Pi
	}
	return a
}
