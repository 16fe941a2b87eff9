package playback

import (
	"slices"

	"scrollreel/internal/frames"
)

// FrameSink displays a frame. The browser player swaps an image src.
type FrameSink interface {
	ShowFrame(index int, location string)
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(index int, location string)

// ShowFrame calls f.
func (f FrameSinkFunc) ShowFrame(index int, location string) { f(index, location) }

// Engine tracks the displayed frame for one animation instance.
type Engine struct {
	frames   []string
	settings frames.Settings
	current  int
	sink     FrameSink
}

// NewEngine returns an engine showing frame 0. It does not write to sink;
// the element's initial image is already the first frame.
func NewEngine(locations []string, settings frames.Settings, sink FrameSink) *Engine {
	return &Engine{
		frames:   slices.Clone(locations),
		settings: settings.Normalized(),
		sink:     sink,
	}
}

// Active reports whether the engine has frames to show.
func (e *Engine) Active() bool {
	return e != nil && len(e.frames) > 0
}

// Current returns the index last shown.
func (e *Engine) Current() int {
	return e.current
}

// Settings returns the normalized playback settings.
func (e *Engine) Settings() frames.Settings {
	return e.settings
}

// Update computes the frame for m and writes it to the sink only when it
// differs from the current frame.
func (e *Engine) Update(m Metrics) (int, bool) {
	if !e.Active() {
		return 0, false
	}
	idx := ComputeFrame(m, e.settings, len(e.frames))
	if idx == e.current {
		return idx, false
	}
	e.current = idx
	if e.sink != nil {
		e.sink.ShowFrame(idx, e.frames[idx])
	}
	return idx, true
}
