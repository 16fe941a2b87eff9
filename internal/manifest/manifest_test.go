package manifest_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrollreel/internal/frames"
	"scrollreel/internal/manifest"
	"scrollreel/internal/store"
)

func sampleAnimation() (*store.Animation, frames.List) {
	anim := &store.Animation{
		ID:         5,
		Title:      "Product spin",
		FrameCount: 2,
		Dimensions: frames.Dimensions{Width: 800, Height: 600},
		Settings:   frames.Settings{Easing: frames.EasingEaseOut, LoopCount: 2},
	}
	list := frames.FromEntries([]frames.Entry{
		{Ordinal: 4, Location: "5/frame-004.webp"},
		{Ordinal: 1, Location: "5/frame-001.webp"},
	})
	return anim, list
}

func TestBuildWriteRead(t *testing.T) {
	anim, list := sampleAnimation()
	m := manifest.Build(anim, list, func(loc string) string { return "https://cdn.test/frames/" + loc })

	require.Len(t, m.Frames, 2)
	assert.Equal(t, manifest.Frame{Ordinal: 1, File: "frame-001.webp", URL: "https://cdn.test/frames/5/frame-001.webp"}, m.Frames[0])

	var buf bytes.Buffer
	require.NoError(t, manifest.Write(&buf, m))
	assert.Contains(t, buf.String(), "loop_count: 2")
	assert.Contains(t, buf.String(), "easing: ease-out")

	got, err := manifest.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestReadRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"version":   "version: 2\ntitle: x\nsettings: {easing: linear, loop_count: 1}\n",
		"easing":    "version: 1\nsettings: {easing: bounce, loop_count: 1}\n",
		"loops":     "version: 1\nsettings: {easing: linear, loop_count: 11}\n",
		"duplicate": "version: 1\nsettings: {easing: linear, loop_count: 1}\nframes:\n  - {ordinal: 1, file: frame-001.png}\n  - {ordinal: 1, file: frame-001.jpg}\n",
		"mismatch":  "version: 1\nsettings: {easing: linear, loop_count: 1}\nframes:\n  - {ordinal: 2, file: frame-001.png}\n",
		"unknown":   "version: 1\nsettings: {easing: linear, loop_count: 1}\nextra: true\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := manifest.Read(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestPathsResolveRelativeToDir(t *testing.T) {
	anim, list := sampleAnimation()
	m := manifest.Build(anim, list, nil)
	assert.Empty(t, m.Frames[0].URL)
	assert.Equal(t, []string{
		filepath.Join("/tmp/export", "frame-001.webp"),
		filepath.Join("/tmp/export", "frame-004.webp"),
	}, m.Paths("/tmp/export"))
}
