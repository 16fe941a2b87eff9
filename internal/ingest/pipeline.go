package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"scrollreel/internal/blobstore"
	"scrollreel/internal/config"
	"scrollreel/internal/frames"
	"scrollreel/internal/imaging"
	"scrollreel/internal/logging"
	"scrollreel/internal/services"
	"scrollreel/internal/store"
	"scrollreel/internal/validation"
)

// Outcome reports whether every best-effort step succeeded.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeDegraded Outcome = "degraded"
)

// Result describes a successful ingest.
type Result struct {
	Entry      frames.Entry
	FrameURL   string
	FrameCount int
	Width      int
	Height     int
	Replaced   bool
	Outcome    Outcome
	Warnings   []string
}

// DeleteResult describes a successful frame deletion.
type DeleteResult struct {
	Ordinal    int
	FrameCount int
	Outcome    Outcome
	Warnings   []string
}

// AnimationDeleteResult describes a removed animation.
type AnimationDeleteResult struct {
	FramesRemoved int
	Outcome       Outcome
	Warnings      []string
}

// Pipeline coordinates the validator, blob storage, and the frame store.
type Pipeline struct {
	store   *store.Store
	blobs   *blobstore.Store
	limits  validation.Limits
	uniform bool
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[int64]*semaphore.Weighted
}

// New constructs a Pipeline from configuration.
func New(cfg *config.Config, st *store.Store, blobs *blobstore.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:   st,
		blobs:   blobs,
		limits:  validation.Limits{MaxBytes: cfg.Ingest.MaxFrameBytes},
		uniform: cfg.Ingest.EnforceUniformDimensions,
		logger:  logging.NewComponentLogger(logger, "ingest"),
		locks:   make(map[int64]*semaphore.Weighted),
	}
}

// URL returns the public address of a stored frame.
func (p *Pipeline) URL(location string) string {
	return p.blobs.URL(location)
}

// Limits returns the validation limits applied to uploads.
func (p *Pipeline) Limits() validation.Limits {
	return p.limits
}

func (p *Pipeline) lockFor(animationID int64) *semaphore.Weighted {
	p.mu.Lock()
	defer p.mu.Unlock()
	sem, ok := p.locks[animationID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		p.locks[animationID] = sem
	}
	return sem
}

func (p *Pipeline) acquire(ctx context.Context, animationID int64) (func(), error) {
	sem := p.lockFor(animationID)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for animation %d: %w", animationID, err)
	}
	return func() { sem.Release(1) }, nil
}

func (p *Pipeline) forget(animationID int64) {
	p.mu.Lock()
	delete(p.locks, animationID)
	p.mu.Unlock()
}

// Ingest validates one upload and stores it as the frame its name
// identifies. An existing frame with the same ordinal is replaced.
func (p *Pipeline) Ingest(ctx context.Context, animationID int64, up validation.Upload) (Result, error) {
	ctx = services.WithOperation(services.WithAnimationID(ctx, animationID), "ingest")
	logger := logging.WithContext(ctx, p.logger)

	release, err := p.acquire(ctx, animationID)
	if err != nil {
		return Result{}, err
	}
	defer release()

	anim, err := p.requireAnimation(ctx, animationID)
	if err != nil {
		return Result{}, err
	}

	checked, err := validation.Validate(up, p.limits)
	if err != nil {
		logger.Info("upload rejected",
			logging.String(logging.FieldEventType, "frame_rejected"),
			logging.String("file", frames.BaseName(up.FileName)),
			logging.String("reason", string(frames.KindOf(err))),
		)
		return Result{}, err
	}

	ordinal, err := frames.ParseOrdinal(up.FileName)
	if err != nil {
		logger.Info("upload rejected",
			logging.String(logging.FieldEventType, "frame_rejected"),
			logging.String("file", frames.BaseName(up.FileName)),
			logging.String("reason", string(frames.KindOf(err))),
		)
		return Result{}, err
	}
	logger = logger.With(logging.Int(logging.FieldOrdinal, ordinal))

	result := Result{Outcome: OutcomeOK}

	dims, err := probe(up.Content)
	if errors.Is(err, errRewind) {
		return Result{}, frames.NewError(frames.KindPersistence, err, "could not read %q", frames.BaseName(up.FileName))
	}
	if err != nil {
		result.degrade(fmt.Sprintf("could not read dimensions of %q; stored as unknown", frames.BaseName(up.FileName)))
		logging.WarnWithContext(logger, "frame dimension probe failed", "frame_probe_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "re-export the frame with a standard encoder"),
			logging.String(logging.FieldImpact, "embed aspect ratio is unknown until another frame is uploaded"),
		)
		dims = frames.Dimensions{}
	}

	existing, err := p.store.Frame(ctx, animationID, ordinal)
	if err != nil {
		return Result{}, frames.NewError(frames.KindPersistence, err, "could not read frame %d", ordinal)
	}

	// Replacing the only frame leaves nothing to stay uniform with.
	soleReplacement := anim.FrameCount == 1 && existing != nil
	if p.uniform && !soleReplacement && dims.Known() && anim.FrameCount > 0 && anim.Dimensions.Known() && dims != anim.Dimensions {
		return Result{}, frames.NewError(frames.KindDimensionMismatch, nil,
			"%q is %s but this animation's frames are %s", frames.BaseName(up.FileName), dims, anim.Dimensions)
	}

	name := frames.CanonicalName(ordinal, checked.Extension)

	location, written, err := p.blobs.Write(animationID, name, up.Content)
	if err != nil {
		logging.ErrorWithContext(logger, "frame write failed", "frame_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check frames_dir permissions and free space"),
		)
		return Result{}, frames.NewError(frames.KindPersistence, err, "could not save %q", frames.BaseName(up.FileName))
	}

	change, err := p.store.PutFrame(ctx, animationID, store.FrameRecord{
		Ordinal:    ordinal,
		Location:   location,
		SourceName: frames.BaseName(up.FileName),
		Dimensions: dims,
		SizeBytes:  written,
	})
	if err != nil {
		if existing == nil || existing.Location != location {
			if rmErr := p.blobs.Remove(location); rmErr != nil {
				logger.Debug("orphan cleanup failed", logging.Error(rmErr))
			}
		}
		logging.ErrorWithContext(logger, "frame record update failed", "frame_store_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run scrollreel health to check the database"),
		)
		if errors.Is(err, store.ErrAnimationNotFound) {
			return Result{}, frames.NewError(frames.KindNotFound, err, "animation %d does not exist", animationID)
		}
		return Result{}, frames.NewError(frames.KindPersistence, err, "could not record frame %d", ordinal)
	}

	if prev := change.Previous; prev != nil && prev.Location != location {
		if err := p.blobs.Remove(prev.Location); err != nil {
			result.degrade(fmt.Sprintf("replaced frame file %s could not be removed", prev.Location))
			logging.WarnWithContext(logger, "replaced frame file not removed", "frame_cleanup_failed",
				logging.Error(err),
				logging.String("location", prev.Location),
				logging.String(logging.FieldErrorHint, "remove the file manually"),
				logging.String(logging.FieldImpact, "orphaned file uses disk space"),
			)
		}
	}

	result.Entry = frames.Entry{Ordinal: ordinal, Location: location}
	result.FrameURL = p.blobs.URL(location)
	result.FrameCount = change.FrameCount
	result.Width = change.Dimensions.Width
	result.Height = change.Dimensions.Height
	result.Replaced = change.Previous != nil

	logger.Info("frame ingested",
		logging.String(logging.FieldEventType, "frame_ingested"),
		logging.String("location", location),
		logging.Int64("bytes", written),
		logging.Int("frame_count", change.FrameCount),
		logging.String("dimensions", dims.String()),
		logging.Bool("replaced", result.Replaced),
	)
	return result, nil
}

// Delete removes exactly the frame at ordinal. Other ordinals are untouched.
func (p *Pipeline) Delete(ctx context.Context, animationID int64, ordinal int) (DeleteResult, error) {
	ctx = services.WithOperation(services.WithAnimationID(ctx, animationID), "delete_frame")
	logger := logging.WithContext(ctx, p.logger).With(logging.Int(logging.FieldOrdinal, ordinal))

	release, err := p.acquire(ctx, animationID)
	if err != nil {
		return DeleteResult{}, err
	}
	defer release()

	if _, err := p.requireAnimation(ctx, animationID); err != nil {
		return DeleteResult{}, err
	}

	entry, err := p.store.Frame(ctx, animationID, ordinal)
	if err != nil {
		return DeleteResult{}, frames.NewError(frames.KindPersistence, err, "could not read frame %d", ordinal)
	}
	if entry == nil {
		return DeleteResult{}, frames.NewError(frames.KindNotFound, store.ErrFrameNotFound, "frame %d does not exist", ordinal)
	}

	result := DeleteResult{Ordinal: ordinal, Outcome: OutcomeOK}
	if err := p.blobs.Remove(entry.Location); err != nil {
		result.Outcome = OutcomeDegraded
		result.Warnings = append(result.Warnings, fmt.Sprintf("frame file %s could not be removed", entry.Location))
		logging.WarnWithContext(logger, "frame file not removed", "frame_cleanup_failed",
			logging.Error(err),
			logging.String("location", entry.Location),
			logging.String(logging.FieldErrorHint, "remove the file manually"),
			logging.String(logging.FieldImpact, "orphaned file uses disk space"),
		)
	}

	change, err := p.store.RemoveFrame(ctx, animationID, ordinal)
	if err != nil {
		if errors.Is(err, store.ErrFrameNotFound) {
			return DeleteResult{}, frames.NewError(frames.KindNotFound, err, "frame %d does not exist", ordinal)
		}
		return DeleteResult{}, frames.NewError(frames.KindPersistence, err, "could not remove frame %d", ordinal)
	}
	result.FrameCount = change.FrameCount

	logger.Info("frame deleted",
		logging.String(logging.FieldEventType, "frame_deleted"),
		logging.String("location", entry.Location),
		logging.Int("frame_count", change.FrameCount),
	)
	return result, nil
}

// DeleteAnimation removes an animation record, then its frame directory.
func (p *Pipeline) DeleteAnimation(ctx context.Context, animationID int64) (AnimationDeleteResult, error) {
	ctx = services.WithOperation(services.WithAnimationID(ctx, animationID), "delete_animation")
	logger := logging.WithContext(ctx, p.logger)

	release, err := p.acquire(ctx, animationID)
	if err != nil {
		return AnimationDeleteResult{}, err
	}
	defer p.forget(animationID)
	defer release()

	locations, err := p.store.DeleteAnimation(ctx, animationID)
	if err != nil {
		if errors.Is(err, store.ErrAnimationNotFound) {
			return AnimationDeleteResult{}, frames.NewError(frames.KindNotFound, err, "animation %d does not exist", animationID)
		}
		return AnimationDeleteResult{}, frames.NewError(frames.KindPersistence, err, "could not delete animation %d", animationID)
	}

	result := AnimationDeleteResult{FramesRemoved: len(locations), Outcome: OutcomeOK}
	if err := p.blobs.RemoveAnimation(animationID); err != nil {
		result.Outcome = OutcomeDegraded
		result.Warnings = append(result.Warnings, "frame directory could not be removed")
		logging.WarnWithContext(logger, "frame directory not removed", "animation_cleanup_failed",
			logging.Error(err),
			logging.String("dir", p.blobs.Dir(animationID)),
			logging.String(logging.FieldErrorHint, "remove the directory manually"),
			logging.String(logging.FieldImpact, "orphaned files use disk space"),
		)
	}

	logger.Info("animation deleted",
		logging.String(logging.FieldEventType, "animation_deleted"),
		logging.Int("frames_removed", len(locations)),
	)
	return result, nil
}

func (p *Pipeline) requireAnimation(ctx context.Context, animationID int64) (*store.Animation, error) {
	anim, err := p.store.GetAnimation(ctx, animationID)
	if err != nil {
		return nil, frames.NewError(frames.KindPersistence, err, "could not load animation %d", animationID)
	}
	if anim == nil {
		return nil, frames.NewError(frames.KindNotFound, store.ErrAnimationNotFound, "animation %d does not exist", animationID)
	}
	return anim, nil
}

func (r *Result) degrade(warning string) {
	r.Outcome = OutcomeDegraded
	r.Warnings = append(r.Warnings, warning)
}

func probe(content io.ReadSeeker) (frames.Dimensions, error) {
	if content == nil {
		return frames.Dimensions{}, errors.New("no content")
	}
	dims, _, probeErr := imaging.Probe(content)
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return frames.Dimensions{}, fmt.Errorf("%w: %w", errRewind, err)
	}
	return dims, probeErr
}

// errRewind means the upload cannot be read again from the start after
// probing; storing it would save a truncated file.
var errRewind = errors.New("rewind upload")
