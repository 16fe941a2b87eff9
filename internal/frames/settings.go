package frames

import (
	"fmt"
	"strings"
)

// Easing names the curve applied to scroll progress before a frame is chosen.
type Easing string

const (
	EasingLinear    Easing = "linear"
	EasingEaseIn    Easing = "ease-in"
	EasingEaseOut   Easing = "ease-out"
	EasingEaseInOut Easing = "ease-in-out"
)

const (
	DefaultEasing    = EasingLinear
	DefaultLoopCount = 1
	MinLoopCount     = 1
	MaxLoopCount     = 10
)

// Easings lists the supported easing keywords.
func Easings() []Easing {
	return []Easing{EasingLinear, EasingEaseIn, EasingEaseOut, EasingEaseInOut}
}

// Valid reports whether e is a supported keyword.
func (e Easing) Valid() bool {
	switch e {
	case EasingLinear, EasingEaseIn, EasingEaseOut, EasingEaseInOut:
		return true
	default:
		return false
	}
}

// ParseEasing accepts a keyword case-insensitively.
func ParseEasing(value string) (Easing, error) {
	e := Easing(strings.ToLower(strings.TrimSpace(value)))
	if !e.Valid() {
		return "", fmt.Errorf("unsupported easing %q", value)
	}
	return e, nil
}

// ValidLoopCount reports whether n is within [MinLoopCount, MaxLoopCount].
func ValidLoopCount(n int) bool {
	return n >= MinLoopCount && n <= MaxLoopCount
}

// Settings are the per-animation playback settings.
type Settings struct {
	Easing    Easing `json:"easing" yaml:"easing"`
	LoopCount int    `json:"loopCount" yaml:"loop_count"`
}

// DefaultSettings returns linear easing with a single loop.
func DefaultSettings() Settings {
	return Settings{Easing: DefaultEasing, LoopCount: DefaultLoopCount}
}

// Normalized replaces invalid or missing fields with their defaults.
func (s Settings) Normalized() Settings {
	out := s
	if e, err := ParseEasing(string(s.Easing)); err == nil {
		out.Easing = e
	} else {
		out.Easing = DefaultEasing
	}
	if !ValidLoopCount(out.LoopCount) {
		out.LoopCount = DefaultLoopCount
	}
	return out
}

// Dimensions are pixel dimensions. Zero values mean unknown.
type Dimensions struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Known reports whether both dimensions are positive.
func (d Dimensions) Known() bool {
	return d.Width > 0 && d.Height > 0
}

func (d Dimensions) String() string {
	if !d.Known() {
		return "unknown"
	}
	return fmt.Sprintf("%d × %d px", d.Width, d.Height)
}
