// Package playback maps scroll position to a frame index and drives a frame
// sink from it.
//
// The math (Progress, Ease, Loop, FrameIndex, ComputeFrame) is pure. Engine
// adds the one piece of state needed to skip redundant writes, and Gate arms
// an Engine only while its element is visible, collapsing bursts of scroll
// events into one update per rendered frame. Browser bindings live in
// cmd/scrollreel-player.
package playback
