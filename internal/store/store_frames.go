package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"scrollreel/internal/frames"
)

// Frames returns the animation's frame list, ordinal-ascending.
func (s *Store) Frames(ctx context.Context, animationID int64) (frames.List, error) {
	ctx = ensureContext(ctx)
	anim, err := s.GetAnimation(ctx, animationID)
	if err != nil {
		return frames.List{}, err
	}
	if anim == nil {
		return frames.List{}, ErrAnimationNotFound
	}

	rows, err := s.db.QueryContext(ctx, `SELECT ordinal, location FROM frames WHERE animation_id = ? ORDER BY ordinal`, animationID)
	if err != nil {
		return frames.List{}, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()

	var entries []frames.Entry
	for rows.Next() {
		var e frames.Entry
		if err := rows.Scan(&e.Ordinal, &e.Location); err != nil {
			return frames.List{}, fmt.Errorf("scan frame: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return frames.List{}, err
	}
	return frames.FromEntries(entries), nil
}

// Frame returns one frame entry, or nil, nil when the ordinal is absent.
func (s *Store) Frame(ctx context.Context, animationID int64, ordinal int) (*frames.Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT ordinal, location FROM frames WHERE animation_id = ? AND ordinal = ?`, animationID, ordinal)
	var e frames.Entry
	err := row.Scan(&e.Ordinal, &e.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get frame: %w", err)
	}
	return &e, nil
}

// PutFrame upserts the frame at rec.Ordinal, then recomputes frame_count and
// records rec.Dimensions as the animation's dimensions. A replaced entry is
// reported in Previous; its file is left for the caller.
func (s *Store) PutFrame(ctx context.Context, animationID int64, rec FrameRecord) (FrameChange, error) {
	if rec.Ordinal < 1 {
		return FrameChange{}, fmt.Errorf("put frame: ordinal %d out of range", rec.Ordinal)
	}
	ctx = ensureContext(ctx)
	var change FrameChange
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		change = FrameChange{}
		if err := requireAnimation(ctx, tx, animationID); err != nil {
			return err
		}

		var prev string
		err := tx.QueryRowContext(ctx, `SELECT location FROM frames WHERE animation_id = ? AND ordinal = ?`, animationID, rec.Ordinal).Scan(&prev)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("lookup frame: %w", err)
		default:
			change.Previous = &frames.Entry{Ordinal: rec.Ordinal, Location: prev}
		}

		now := timestampNow()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO frames (animation_id, ordinal, location, source_name, width, height, size_bytes, created_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT(animation_id, ordinal) DO UPDATE SET
                location = excluded.location,
                source_name = excluded.source_name,
                width = excluded.width,
                height = excluded.height,
                size_bytes = excluded.size_bytes,
                created_at = excluded.created_at`,
			animationID, rec.Ordinal, rec.Location, nullableString(rec.SourceName),
			rec.Dimensions.Width, rec.Dimensions.Height, rec.SizeBytes, now,
		); err != nil {
			return fmt.Errorf("upsert frame: %w", err)
		}

		count, err := countFrames(ctx, tx, animationID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE animations SET frame_count = ?, width = ?, height = ?, updated_at = ? WHERE id = ?`,
			count, rec.Dimensions.Width, rec.Dimensions.Height, now, animationID,
		); err != nil {
			return fmt.Errorf("update frame metadata: %w", err)
		}
		change.FrameCount = count
		change.Dimensions = rec.Dimensions
		return nil
	})
	if err != nil {
		return FrameChange{}, err
	}
	return change, nil
}

// RemoveFrame deletes exactly the frame at ordinal and recomputes frame_count.
// Remaining ordinals are not renumbered and dimensions are left unchanged.
func (s *Store) RemoveFrame(ctx context.Context, animationID int64, ordinal int) (FrameChange, error) {
	ctx = ensureContext(ctx)
	var change FrameChange
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		change = FrameChange{}
		if err := requireAnimation(ctx, tx, animationID); err != nil {
			return err
		}

		var location string
		err := tx.QueryRowContext(ctx, `SELECT location FROM frames WHERE animation_id = ? AND ordinal = ?`, animationID, ordinal).Scan(&location)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFrameNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup frame: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM frames WHERE animation_id = ? AND ordinal = ?`, animationID, ordinal); err != nil {
			return fmt.Errorf("delete frame: %w", err)
		}
		count, err := countFrames(ctx, tx, animationID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE animations SET frame_count = ?, updated_at = ? WHERE id = ?`, count, timestampNow(), animationID); err != nil {
			return fmt.Errorf("update frame count: %w", err)
		}

		var width, height int
		if err := tx.QueryRowContext(ctx, `SELECT width, height FROM animations WHERE id = ?`, animationID).Scan(&width, &height); err != nil {
			return fmt.Errorf("read dimensions: %w", err)
		}
		change.FrameCount = count
		change.Dimensions = frames.Dimensions{Width: width, Height: height}
		change.Previous = &frames.Entry{Ordinal: ordinal, Location: location}
		return nil
	})
	if err != nil {
		return FrameChange{}, err
	}
	return change, nil
}

func countFrames(ctx context.Context, tx *sql.Tx, animationID int64) (int, error) {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM frames WHERE animation_id = ?`, animationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count frames: %w", err)
	}
	return count, nil
}
