package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"scrollreel/internal/frames"
)

// CreateAnimation inserts an empty animation with the given title and settings.
func (s *Store) CreateAnimation(ctx context.Context, title string, settings frames.Settings) (*Animation, error) {
	settings = settings.Normalized()
	timestamp := timestampNow()

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO animations (title, frame_count, width, height, easing, loop_count, created_at, updated_at)
         VALUES (?, 0, 0, 0, ?, ?, ?, ?)`,
		title,
		string(settings.Easing),
		settings.LoopCount,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert animation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetAnimation(ctx, id)
}

// GetAnimation fetches an animation by identifier. It returns nil, nil when
// the animation does not exist.
func (s *Store) GetAnimation(ctx context.Context, id int64) (*Animation, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+animationColumns+` FROM animations WHERE id = ?`, id)
	anim, err := scanAnimation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get animation: %w", err)
	}
	return anim, nil
}

// ListAnimations returns all animations, most recently updated first.
func (s *Store) ListAnimations(ctx context.Context) ([]*Animation, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+animationColumns+` FROM animations ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list animations: %w", err)
	}
	defer rows.Close()

	var out []*Animation
	for rows.Next() {
		anim, err := scanAnimation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan animation: %w", err)
		}
		out = append(out, anim)
	}
	return out, rows.Err()
}

// UpdateTitle renames an animation.
func (s *Store) UpdateTitle(ctx context.Context, id int64, title string) error {
	res, err := s.execWithRetry(ctx, `UPDATE animations SET title = ?, updated_at = ? WHERE id = ?`, title, timestampNow(), id)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAnimationNotFound
	}
	return nil
}

// UpdateSettings applies each provided setting independently. Invalid values
// are reported in Rejected and the stored value is left unchanged.
func (s *Store) UpdateSettings(ctx context.Context, id int64, update SettingsUpdate) (SettingsResult, error) {
	var (
		result  SettingsResult
		sets    []string
		args    []any
		applied bool
	)
	if update.Easing != nil {
		if easing, err := frames.ParseEasing(*update.Easing); err == nil {
			sets = append(sets, "easing = ?")
			args = append(args, string(easing))
			applied = true
		} else {
			result.Rejected = append(result.Rejected, "easing")
		}
	}
	if update.LoopCount != nil {
		if frames.ValidLoopCount(*update.LoopCount) {
			sets = append(sets, "loop_count = ?")
			args = append(args, *update.LoopCount)
			applied = true
		} else {
			result.Rejected = append(result.Rejected, "loopCount")
		}
	}

	if applied {
		query := "UPDATE animations SET "
		for _, set := range sets {
			query += set + ", "
		}
		query += "updated_at = ? WHERE id = ?"
		args = append(args, timestampNow(), id)
		if _, err := s.execWithRetry(ctx, query, args...); err != nil {
			return result, fmt.Errorf("update settings: %w", err)
		}
	}

	anim, err := s.GetAnimation(ctx, id)
	if err != nil {
		return result, err
	}
	if anim == nil {
		return result, ErrAnimationNotFound
	}
	result.Animation = anim
	return result, nil
}

// DeleteAnimation removes an animation and its frame rows. It returns the
// locations of the removed frames so the caller can clean up files.
func (s *Store) DeleteAnimation(ctx context.Context, id int64) ([]string, error) {
	var locations []string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		locations = locations[:0]
		if err := requireAnimation(ctx, tx, id); err != nil {
			return err
		}
		rows, err := tx.QueryContext(ctx, `SELECT location FROM frames WHERE animation_id = ? ORDER BY ordinal`, id)
		if err != nil {
			return fmt.Errorf("list frame locations: %w", err)
		}
		for rows.Next() {
			var loc string
			if err := rows.Scan(&loc); err != nil {
				rows.Close()
				return err
			}
			locations = append(locations, loc)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM frames WHERE animation_id = ?`, id); err != nil {
			return fmt.Errorf("delete frames: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM animations WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete animation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func requireAnimation(ctx context.Context, tx *sql.Tx, id int64) error {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM animations WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAnimationNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup animation: %w", err)
	}
	return nil
}
