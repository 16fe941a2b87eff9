// Package manifest describes an animation as a portable YAML document so it
// can be exported from one daemon and imported into another.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"scrollreel/internal/frames"
	"scrollreel/internal/store"
)

// Version is the manifest format written by Build.
const Version = 1

// Frame is one exported frame. File is the canonical file name; URL is
// where the frame can be downloaded from.
type Frame struct {
	Ordinal int    `yaml:"ordinal"`
	File    string `yaml:"file"`
	URL     string `yaml:"url,omitempty"`
}

// Manifest is the exported form of one animation.
type Manifest struct {
	Version    int               `yaml:"version"`
	Title      string            `yaml:"title"`
	Settings   frames.Settings   `yaml:"settings"`
	Dimensions frames.Dimensions `yaml:"dimensions"`
	Frames     []Frame           `yaml:"frames"`
}

// Build exports anim and its frames. url maps locations to public
// addresses; nil omits URLs.
func Build(anim *store.Animation, list frames.List, url func(string) string) Manifest {
	m := Manifest{
		Version:    Version,
		Title:      anim.Title,
		Settings:   anim.Settings.Normalized(),
		Dimensions: anim.Dimensions,
		Frames:     make([]Frame, 0, list.Len()),
	}
	for _, e := range list.Entries() {
		f := Frame{Ordinal: e.Ordinal, File: path.Base(e.Location)}
		if url != nil {
			f.URL = url(e.Location)
		}
		m.Frames = append(m.Frames, f)
	}
	return m
}

// Write encodes m as YAML.
func Write(w io.Writer, m Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return enc.Close()
}

// Read decodes and validates a manifest.
func Read(r io.Reader) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return Manifest{}, errors.New("manifest is empty")
		}
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks the version and that every frame has a unique ordinal
// matching its file name.
func (m Manifest) Validate() error {
	if m.Version != Version {
		return fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	if !m.Settings.Easing.Valid() {
		return fmt.Errorf("unknown easing %q", m.Settings.Easing)
	}
	if !frames.ValidLoopCount(m.Settings.LoopCount) {
		return fmt.Errorf("loop count %d out of range", m.Settings.LoopCount)
	}
	seen := make(map[int]bool, len(m.Frames))
	for _, f := range m.Frames {
		if f.Ordinal < 1 {
			return fmt.Errorf("frame %q: ordinal %d out of range", f.File, f.Ordinal)
		}
		if seen[f.Ordinal] {
			return fmt.Errorf("duplicate ordinal %d", f.Ordinal)
		}
		seen[f.Ordinal] = true
		parsed, err := frames.ParseOrdinal(f.File)
		if err != nil {
			return fmt.Errorf("frame %q: %s", f.File, frames.MessageOf(err))
		}
		if parsed != f.Ordinal {
			return fmt.Errorf("frame %q: name says %d but ordinal is %d", f.File, parsed, f.Ordinal)
		}
	}
	return nil
}

// Paths resolves frame files relative to dir, in ordinal order as listed.
func (m Manifest) Paths(dir string) []string {
	out := make([]string, 0, len(m.Frames))
	for _, f := range m.Frames {
		out = append(out, filepath.Join(dir, filepath.FromSlash(f.File)))
	}
	return out
}
