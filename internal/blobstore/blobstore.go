// Package blobstore keeps frame files on disk, one directory per animation.
//
// Locations handed out by the store are relative slash paths such as
// "7/frame-003.png". They are opaque to callers and resolve to a file under
// the root directory or to a public URL under the configured base.
package blobstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"scrollreel/internal/fileutil"
)

// ErrInsufficientSpace reports that the frames filesystem is below the
// configured free-space floor.
var ErrInsufficientSpace = errors.New("insufficient free space")

// Store manages frame files beneath a root directory.
type Store struct {
	root     string
	baseURL  string
	minFree  uint64
	freeFunc func(string) (uint64, error)
}

// New returns a Store rooted at root. baseURL prefixes public frame URLs.
// Writes are refused when the filesystem has fewer than minFree bytes
// available; zero disables the check.
func New(root, baseURL string, minFree int64) *Store {
	if minFree < 0 {
		minFree = 0
	}
	return &Store{
		root:     root,
		baseURL:  strings.TrimRight(baseURL, "/"),
		minFree:  uint64(minFree),
		freeFunc: FreeBytes,
	}
}

// Root returns the root directory.
func (s *Store) Root() string { return s.root }

// Dir returns the directory holding one animation's frames.
func (s *Store) Dir(animationID int64) string {
	return filepath.Join(s.root, strconv.FormatInt(animationID, 10))
}

// Location returns the opaque location for a stored frame name.
func Location(animationID int64, name string) string {
	return path.Join(strconv.FormatInt(animationID, 10), name)
}

// Path resolves a location to its file path, rejecting locations that escape
// the root.
func (s *Store) Path(location string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(location))
	if clean == "/" || strings.Contains(location, "..") {
		return "", fmt.Errorf("invalid frame location %q", location)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// URL returns the public address of a location.
func (s *Store) URL(location string) string {
	if location == "" {
		return ""
	}
	return s.baseURL + "/" + strings.TrimPrefix(location, "/")
}

// Write persists r as name in the animation's directory, creating the
// directory when needed, and returns the location.
func (s *Store) Write(animationID int64, name string, r io.Reader) (string, int64, error) {
	dir := s.Dir(animationID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create frame directory: %w", err)
	}
	if err := s.ensureSpace(dir); err != nil {
		return "", 0, err
	}
	location := Location(animationID, name)
	target, err := s.Path(location)
	if err != nil {
		return "", 0, err
	}
	written, err := fileutil.WriteAtomic(target, r, 0o644)
	if err != nil {
		return "", written, fmt.Errorf("write frame: %w", err)
	}
	return location, written, nil
}

// Remove deletes the file behind location. A missing file is not an error.
func (s *Store) Remove(location string) error {
	target, err := s.Path(location)
	if err != nil {
		return err
	}
	return fileutil.RemoveIfExists(target)
}

// RemoveAnimation deletes an animation's directory and everything in it.
func (s *Store) RemoveAnimation(animationID int64) error {
	return os.RemoveAll(s.Dir(animationID))
}

func (s *Store) ensureSpace(dir string) error {
	if s.minFree == 0 || s.freeFunc == nil {
		return nil
	}
	free, err := s.freeFunc(dir)
	if err != nil {
		// Unknown free space does not block writes.
		return nil
	}
	if free < s.minFree {
		return fmt.Errorf("%w: %d bytes available, %d required", ErrInsufficientSpace, free, s.minFree)
	}
	return nil
}

// FreeBytes reports the bytes available to unprivileged users on the
// filesystem holding path.
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
