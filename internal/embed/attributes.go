package embed

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"scrollreel/internal/frames"
)

// Attribute names written by Render and read back by the player.
const (
	AttrFrames = "data-frames"
	AttrEasing = "data-easing"
	AttrLoops  = "data-loops"
)

// ParseAttributes decodes a container's data attributes. Invalid settings
// fall back to their defaults; an unreadable frame list is an error.
func ParseAttributes(get func(name string) string) ([]string, frames.Settings, error) {
	raw := strings.TrimSpace(get(AttrFrames))
	if raw == "" {
		return nil, frames.Settings{}, errors.New("container has no frame list")
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil, frames.Settings{}, fmt.Errorf("decode frame list: %w", err)
	}

	settings := frames.Settings{Easing: frames.Easing(strings.TrimSpace(get(AttrEasing)))}
	if n, err := strconv.Atoi(strings.TrimSpace(get(AttrLoops))); err == nil {
		settings.LoopCount = n
	}
	return urls, settings.Normalized(), nil
}
