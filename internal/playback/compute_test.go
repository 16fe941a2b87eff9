package playback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrollreel/internal/frames"
	"scrollreel/internal/playback"
)

// at returns metrics whose progress is p for a 600px viewport and a 400px
// element.
func at(p float64) playback.Metrics {
	const vh, eh = 600.0, 400.0
	return playback.Metrics{ViewportHeight: vh, ElementHeight: eh, ElementTop: vh - p*(vh+eh)}
}

func linear(loops int) frames.Settings {
	return frames.Settings{Easing: frames.EasingLinear, LoopCount: loops}
}

func TestProgressRange(t *testing.T) {
	m := playback.Metrics{ViewportHeight: 800, ElementHeight: 200}

	m.ElementTop = 800
	assert.Equal(t, 0.0, playback.Progress(m), "top edge at viewport bottom")

	m.ElementTop = -200
	assert.Equal(t, 1.0, playback.Progress(m), "bottom edge at viewport top")

	m.ElementTop = 300
	assert.InDelta(t, 0.5, playback.Progress(m), 1e-9)

	m.ElementTop = 5000
	assert.Equal(t, 0.0, playback.Progress(m), "below the viewport clamps to 0")

	m.ElementTop = -5000
	assert.Equal(t, 1.0, playback.Progress(m), "above the viewport clamps to 1")

	assert.Equal(t, 0.0, playback.Progress(playback.Metrics{}), "empty range")
}

func TestEaseCurves(t *testing.T) {
	cases := []struct {
		easing frames.Easing
		p      float64
		want   float64
	}{
		{frames.EasingLinear, 0.3, 0.3},
		{frames.EasingEaseIn, 0.5, 0.25},
		{frames.EasingEaseOut, 0.5, 0.75},
		{frames.EasingEaseInOut, 0.25, 0.125},
		{frames.EasingEaseInOut, 0.75, 0.875},
		{"bounce", 0.4, 0.4},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, playback.Ease(tc.easing, tc.p), 1e-9, "%s(%v)", tc.easing, tc.p)
	}
	for _, e := range frames.Easings() {
		assert.Equal(t, 0.0, playback.Ease(e, 0), "%s(0)", e)
		assert.InDelta(t, 1.0, playback.Ease(e, 1), 1e-9, "%s(1)", e)
	}
}

func TestEaseIsMonotonic(t *testing.T) {
	for _, e := range frames.Easings() {
		prev := -1.0
		for i := 0; i <= 100; i++ {
			v := playback.Ease(e, float64(i)/100)
			require.GreaterOrEqual(t, v, prev, "%s not monotonic at %d", e, i)
			prev = v
		}
	}
}

func TestLoopBoundaries(t *testing.T) {
	assert.Equal(t, 0.0, playback.Loop(0.5, 2), "interior boundary wraps")
	assert.InDelta(t, 0.5, playback.Loop(0.25, 2), 1e-9)
	assert.Equal(t, 1.0, playback.Loop(1, 1), "end of traversal holds")
	assert.Equal(t, 1.0, playback.Loop(1, 3), "end of traversal holds")
	assert.InDelta(t, 0.4, playback.Loop(0.4, 0), 1e-9, "non-positive count acts as one")
}

func TestFrameIndexClamps(t *testing.T) {
	assert.Equal(t, 0, playback.FrameIndex(0, 10))
	assert.Equal(t, 9, playback.FrameIndex(1, 10))
	assert.Equal(t, 0, playback.FrameIndex(-0.2, 10))
	assert.Equal(t, 0, playback.FrameIndex(0.5, 0))
}

func TestComputeFrameLinearSingleLoop(t *testing.T) {
	assert.Equal(t, 0, playback.ComputeFrame(at(0), linear(1), 10))
	assert.Equal(t, 9, playback.ComputeFrame(at(0.95), linear(1), 10))
	assert.Equal(t, 9, playback.ComputeFrame(at(1), linear(1), 10))
	assert.Equal(t, 4, playback.ComputeFrame(at(0.45), linear(1), 10))
}

func TestComputeFrameLoopBoundaryResets(t *testing.T) {
	assert.Equal(t, 0, playback.ComputeFrame(at(0.5), linear(2), 10))
	assert.Equal(t, 9, playback.ComputeFrame(at(0.49), linear(2), 10))
	assert.Equal(t, 9, playback.ComputeFrame(at(1), linear(2), 10))
}

func TestComputeFrameAppliesEasing(t *testing.T) {
	settings := frames.Settings{Easing: frames.EasingEaseIn, LoopCount: 1}
	// 0.5² = 0.25 → frame 2 of 10.
	assert.Equal(t, 2, playback.ComputeFrame(at(0.5), settings, 10))
}

func TestComputeFrameNormalizesSettings(t *testing.T) {
	settings := frames.Settings{Easing: "wobble", LoopCount: 99}
	assert.Equal(t, playback.ComputeFrame(at(0.7), linear(1), 10), playback.ComputeFrame(at(0.7), settings, 10))
}
