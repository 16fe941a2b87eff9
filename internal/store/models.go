package store

import (
	"time"

	"scrollreel/internal/frames"
)

// Animation is one stored animation with its derived frame metadata.
type Animation struct {
	ID         int64
	Title      string
	FrameCount int
	Dimensions frames.Dimensions
	Settings   frames.Settings
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayTitle returns the title or a placeholder for untitled animations.
func (a Animation) DisplayTitle() string {
	if a.Title == "" {
		return "(untitled)"
	}
	return a.Title
}

// FrameRecord is what PutFrame persists for one ordinal.
type FrameRecord struct {
	Ordinal    int
	Location   string
	SourceName string
	Dimensions frames.Dimensions
	SizeBytes  int64
}

// FrameChange reports the animation metadata after a frame mutation.
// Previous holds the entry that was replaced or removed, if any.
type FrameChange struct {
	FrameCount int
	Dimensions frames.Dimensions
	Previous   *frames.Entry
}

// SettingsUpdate carries optional setting changes. Nil fields are left alone.
type SettingsUpdate struct {
	Easing    *string
	LoopCount *int
}

// SettingsResult is the outcome of UpdateSettings. Rejected lists the fields
// whose values were invalid and therefore left unchanged.
type SettingsResult struct {
	Animation *Animation
	Rejected  []string
}

// Stats summarizes the database contents.
type Stats struct {
	Animations int
	Frames     int
}

// DatabaseHealth captures diagnostic information about the animation database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	IntegrityCheck   bool
	Animations       int
	Frames           int
	DriftedCounts    []int64
	Error            string
}
