package main

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestCollectFrameFilesOrdersByFrameNumber(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"walk-10.png", "walk-2.webp", "walk-1.jpg", "readme.md", "cover.png"} {
		writeFrameFile(t, dir, name, []byte("x"))
	}
	extra := writeFrameFile(t, t.TempDir(), "notes.txt", []byte("x"))

	files, err := collectFrameFiles([]string{dir, extra})
	if err != nil {
		t.Fatalf("collectFrameFiles: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	want := []string{"walk-1.jpg", "walk-2.webp", "walk-10.png", "cover.png", "notes.txt"}
	if !slices.Equal(names, want) {
		t.Fatalf("got %v, want %v", names, want)
	}
}

func TestCollectFrameFilesMissingPath(t *testing.T) {
	if _, err := collectFrameFiles([]string{filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestParseFrameNumber(t *testing.T) {
	for _, arg := range []string{"3", " 12 ", "999"} {
		if _, err := parseFrameNumber(arg); err != nil {
			t.Fatalf("parseFrameNumber(%q): %v", arg, err)
		}
	}
	for _, arg := range []string{"3abc", "0", "-2", "", "1.5"} {
		if n, err := parseFrameNumber(arg); err == nil {
			t.Fatalf("parseFrameNumber(%q) = %d, want error", arg, n)
		}
	}
}

func TestDeleteFrameRejectsTrailingGarbage(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"create", "Walk"}, env.configPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	requireContains(t, out, "Walk")

	_, _, err = runCLI(t, []string{"delete-frame", "1", "3abc"}, env.configPath)
	if err == nil {
		t.Fatal("expected delete-frame to reject 3abc")
	}
	requireContains(t, err.Error(), `invalid frame number "3abc"`)
}
