package api

import (
	"scrollreel/internal/frames"
	"scrollreel/internal/store"
)

// FromAnimation converts a stored animation to its API representation.
func FromAnimation(anim *store.Animation) Animation {
	if anim == nil {
		return Animation{}
	}
	dto := Animation{
		ID:         anim.ID,
		Title:      anim.Title,
		FrameCount: anim.FrameCount,
		Width:      anim.Dimensions.Width,
		Height:     anim.Dimensions.Height,
		Easing:     string(anim.Settings.Easing),
		LoopCount:  anim.Settings.LoopCount,
	}
	if !anim.CreatedAt.IsZero() {
		dto.CreatedAt = anim.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !anim.UpdatedAt.IsZero() {
		dto.UpdatedAt = anim.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromAnimations converts a slice of stored animations.
func FromAnimations(anims []*store.Animation) []Animation {
	out := make([]Animation, 0, len(anims))
	for _, anim := range anims {
		out = append(out, FromAnimation(anim))
	}
	return out
}

// FrameRefs lists frames in display order with their public URLs.
func FrameRefs(list frames.List, url func(string) string) []FrameRef {
	out := make([]FrameRef, 0, list.Len())
	for _, e := range list.Entries() {
		out = append(out, FrameRef{Ordinal: e.Ordinal, URL: url(e.Location)})
	}
	return out
}

// FromHealth converts store diagnostics.
func FromHealth(h store.DatabaseHealth) HealthResponse {
	return HealthResponse{
		DBPath:           h.DBPath,
		DatabaseExists:   h.DatabaseExists,
		DatabaseReadable: h.DatabaseReadable,
		SchemaVersion:    h.SchemaVersion,
		IntegrityCheck:   h.IntegrityCheck,
		Animations:       h.Animations,
		Frames:           h.Frames,
		DriftedCounts:    h.DriftedCounts,
		Error:            h.Error,
	}
}

// Dimensions returns the animation's dimensions as a frames value.
func (a Animation) Dimensions() frames.Dimensions {
	return frames.Dimensions{Width: a.Width, Height: a.Height}
}

// DisplayTitle returns the title or a placeholder for untitled animations.
func (a Animation) DisplayTitle() string {
	if a.Title == "" {
		return "(untitled)"
	}
	return a.Title
}
