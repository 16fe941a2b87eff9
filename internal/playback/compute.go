package playback

import (
	"math"

	"scrollreel/internal/frames"
)

// Metrics is the geometry needed to place an element within the viewport.
// ElementTop is relative to the top of the viewport.
type Metrics struct {
	ViewportHeight float64
	ElementTop     float64
	ElementHeight  float64
}

// Progress reports how far the viewport has travelled across the element's
// on-screen range: 0 when the element's top touches the bottom of the
// viewport, 1 when its bottom touches the top.
func Progress(m Metrics) float64 {
	total := m.ViewportHeight + m.ElementHeight
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	return clamp01((m.ViewportHeight - m.ElementTop) / total)
}

// Ease reshapes p with the named curve. Unknown easings are linear.
func Ease(easing frames.Easing, p float64) float64 {
	p = clamp01(p)
	switch easing {
	case frames.EasingEaseIn:
		return p * p
	case frames.EasingEaseOut:
		return p * (2 - p)
	case frames.EasingEaseInOut:
		if p < 0.5 {
			return 2 * p * p
		}
		return -1 + (4-2*p)*p
	default:
		return p
	}
}

// Loop maps eased progress onto loopCount forward passes. Interior loop
// boundaries wrap to 0; the end of the final pass holds at 1.
func Loop(p float64, loopCount int) float64 {
	if loopCount < 1 {
		loopCount = 1
	}
	if p >= 1 {
		return 1
	}
	if p <= 0 {
		return 0
	}
	return math.Mod(p*float64(loopCount), 1)
}

// FrameIndex selects the 0-based frame for looped progress.
func FrameIndex(looped float64, frameCount int) int {
	if frameCount <= 0 {
		return 0
	}
	idx := int(math.Floor(looped * float64(frameCount)))
	if idx < 0 {
		return 0
	}
	if idx > frameCount-1 {
		return frameCount - 1
	}
	return idx
}

// ComputeFrame returns the frame to show for the given geometry.
func ComputeFrame(m Metrics, settings frames.Settings, frameCount int) int {
	settings = settings.Normalized()
	p := Ease(settings.Easing, Progress(m))
	return FrameIndex(Loop(p, settings.LoopCount), frameCount)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
