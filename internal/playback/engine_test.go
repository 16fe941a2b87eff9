package playback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrollreel/internal/frames"
	"scrollreel/internal/playback"
)

type write struct {
	index    int
	location string
}

type recordingSink struct {
	writes []write
}

func (s *recordingSink) ShowFrame(index int, location string) {
	s.writes = append(s.writes, write{index, location})
}

func locations(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = frames.CanonicalName(i+1, "webp")
	}
	return out
}

func TestEngineStartsAtFirstFrameWithoutWriting(t *testing.T) {
	sink := &recordingSink{}
	engine := playback.NewEngine(locations(10), linear(1), sink)
	assert.Equal(t, 0, engine.Current())
	assert.Empty(t, sink.writes)

	idx, wrote := engine.Update(at(0))
	assert.Equal(t, 0, idx)
	assert.False(t, wrote, "frame 0 is already displayed")
	assert.Empty(t, sink.writes)
}

func TestEngineSuppressesRedundantWrites(t *testing.T) {
	sink := &recordingSink{}
	engine := playback.NewEngine(locations(10), linear(1), sink)

	idx, wrote := engine.Update(at(0.55))
	require.True(t, wrote)
	assert.Equal(t, 5, idx)

	idx, wrote = engine.Update(at(0.55))
	assert.False(t, wrote, "identical metrics must not write twice")
	assert.Equal(t, 5, idx)

	require.Len(t, sink.writes, 1)
	assert.Equal(t, write{5, "frame-006.webp"}, sink.writes[0])
}

func TestEngineWithoutFramesIsInert(t *testing.T) {
	sink := &recordingSink{}
	engine := playback.NewEngine(nil, linear(1), sink)
	assert.False(t, engine.Active())
	_, wrote := engine.Update(at(0.8))
	assert.False(t, wrote)
	assert.Empty(t, sink.writes)
}

func TestEngineCopiesLocations(t *testing.T) {
	locs := locations(3)
	var got []string
	engine := playback.NewEngine(locs, linear(1), playback.FrameSinkFunc(func(_ int, loc string) {
		got = append(got, loc)
	}))
	locs[2] = "mutated"
	engine.Update(at(1))
	assert.Equal(t, []string{"frame-003.webp"}, got)
}
