package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"scrollreel/internal/frames"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.FramesDir) == "" {
		return errors.New("paths.frames_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind: %w", err)
	}
	if c.Paths.PublicBaseURL != "" {
		u, err := url.Parse(c.Paths.PublicBaseURL)
		if err != nil {
			return fmt.Errorf("paths.public_base_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("paths.public_base_url must use http or https, got %q", c.Paths.PublicBaseURL)
		}
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.MaxFrameBytes < 0 {
		return fmt.Errorf("ingest.max_frame_bytes must be positive, got %d", c.Ingest.MaxFrameBytes)
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if _, err := frames.ParseEasing(c.Playback.DefaultEasing); err != nil {
		return fmt.Errorf("playback.default_easing: %w", err)
	}
	if !frames.ValidLoopCount(c.Playback.DefaultLoopCount) {
		return fmt.Errorf("playback.default_loop_count must be between %d and %d, got %d", frames.MinLoopCount, frames.MaxLoopCount, c.Playback.DefaultLoopCount)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
}
