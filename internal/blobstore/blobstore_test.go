package blobstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scrollreel/internal/blobstore"
)

func TestWriteCreatesPerAnimationDirectory(t *testing.T) {
	root := t.TempDir()
	store := blobstore.New(root, "http://example.test/frames/", 0)

	location, written, err := store.Write(7, "frame-003.png", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if location != "7/frame-003.png" {
		t.Fatalf("location = %q", location)
	}
	if written != 4 {
		t.Fatalf("written = %d", written)
	}
	got, err := os.ReadFile(filepath.Join(root, "7", "frame-003.png"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "data" {
		t.Fatalf("content = %q", got)
	}
	if url := store.URL(location); url != "http://example.test/frames/7/frame-003.png" {
		t.Fatalf("url = %q", url)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := blobstore.New(t.TempDir(), "/frames", 0)
	location, _, err := store.Write(1, "frame-001.webp", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := store.Remove(location); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := store.Remove(location); err != nil {
		t.Fatalf("second Remove should succeed: %v", err)
	}
}

func TestPathRejectsEscapes(t *testing.T) {
	store := blobstore.New(t.TempDir(), "/frames", 0)
	for _, loc := range []string{"", "../etc/passwd", "1/../../x"} {
		if _, err := store.Path(loc); err == nil {
			t.Fatalf("expected error for %q", loc)
		}
	}
}

func TestWriteFailsWhenRootIsAFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(root, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := blobstore.New(root, "/frames", 0)
	if _, _, err := store.Write(1, "frame-001.png", strings.NewReader("x")); err == nil {
		t.Fatal("expected directory creation failure")
	}
}

func TestWriteRefusesBelowFreeSpaceFloor(t *testing.T) {
	store := blobstore.New(t.TempDir(), "/frames", 1024)
	store.SetFreeFunc(func(string) (uint64, error) { return 10, nil })
	_, _, err := store.Write(1, "frame-001.png", strings.NewReader("x"))
	if !errors.Is(err, blobstore.ErrInsufficientSpace) {
		t.Fatalf("expected ErrInsufficientSpace, got %v", err)
	}
}

func TestRemoveAnimation(t *testing.T) {
	root := t.TempDir()
	store := blobstore.New(root, "/frames", 0)
	if _, _, err := store.Write(9, "frame-001.png", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}
	if err := store.RemoveAnimation(9); err != nil {
		t.Fatalf("RemoveAnimation: %v", err)
	}
	if _, err := os.Stat(store.Dir(9)); !os.IsNotExist(err) {
		t.Fatalf("expected directory removed: %v", err)
	}
}

func TestFreeBytes(t *testing.T) {
	free, err := blobstore.FreeBytes(t.TempDir())
	if err != nil {
		t.Fatalf("FreeBytes: %v", err)
	}
	if free == 0 {
		t.Fatal("expected some free space in temp dir")
	}
}
