// Package imaging reads pixel dimensions from stored frames without decoding
// the full image.
package imaging

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/webp"

	"scrollreel/internal/frames"
)

// Probe reads the image header from r and reports its dimensions and format
// name (jpeg, png, webp).
func Probe(r io.Reader) (frames.Dimensions, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return frames.Dimensions{}, "", fmt.Errorf("decode image header: %w", err)
	}
	return frames.Dimensions{Width: cfg.Width, Height: cfg.Height}, format, nil
}

// ProbeFile opens path and probes it.
func ProbeFile(path string) (frames.Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return frames.Dimensions{}, err
	}
	defer f.Close()

	dims, _, err := Probe(f)
	return dims, err
}
