package store

import (
	"database/sql"
	"errors"
	"time"

	"scrollreel/internal/frames"
)

const animationColumns = "id, title, frame_count, width, height, easing, loop_count, created_at, updated_at"

func scanAnimation(scanner interface{ Scan(dest ...any) error }) (*Animation, error) {
	var (
		id         int64
		title      sql.NullString
		frameCount int
		width      int
		height     int
		easing     sql.NullString
		loopCount  sql.NullInt64
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &title, &frameCount, &width, &height, &easing, &loopCount, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	anim := &Animation{
		ID:         id,
		Title:      title.String,
		FrameCount: frameCount,
		Dimensions: frames.Dimensions{Width: width, Height: height},
		Settings: frames.Settings{
			Easing:    frames.Easing(easing.String),
			LoopCount: int(loopCount.Int64),
		}.Normalized(),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		anim.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		anim.UpdatedAt = updated
	}
	return anim, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// timestampLayout is fixed-width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timestampNow() string {
	return time.Now().UTC().Format(timestampLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
