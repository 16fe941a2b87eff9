package store

import (
	"fmt"

	"scrollreel/internal/services"
)

var (
	// ErrAnimationNotFound reports a missing animation record.
	ErrAnimationNotFound = fmt.Errorf("%w: animation", services.ErrNotFound)
	// ErrFrameNotFound reports a missing ordinal in an existing animation.
	ErrFrameNotFound = fmt.Errorf("%w: frame", services.ErrNotFound)
)
