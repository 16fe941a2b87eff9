package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"scrollreel/internal/blobstore"
	"scrollreel/internal/config"
	"scrollreel/internal/frames"
	"scrollreel/internal/imaging"
	"scrollreel/internal/ingest"
	"scrollreel/internal/logging"
	"scrollreel/internal/services"
	"scrollreel/internal/store"
	"scrollreel/internal/testsupport"
	"scrollreel/internal/validation"
)

type fixture struct {
	cfg      *config.Config
	store    *store.Store
	blobs    *blobstore.Store
	pipeline *ingest.Pipeline
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	blobs := blobstore.New(cfg.Paths.FramesDir, cfg.FramesBaseURL(), 0)
	return fixture{
		cfg:      cfg,
		store:    st,
		blobs:    blobs,
		pipeline: ingest.New(cfg, st, blobs, logging.NewNop()),
	}
}

func upload(name string, data []byte) validation.Upload {
	return validation.Upload{FileName: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func TestIngestOutOfOrderUploadsPlayInOrdinalOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, f.store, "spin")

	for i, name := range []string{"a-2.png", "a-1.png", "a-3.png"} {
		res, err := f.pipeline.Ingest(ctx, anim.ID, upload(name, testsupport.PNGBytes(t, 64, 36)))
		if err != nil {
			t.Fatalf("Ingest %s: %v", name, err)
		}
		if res.FrameCount != i+1 {
			t.Fatalf("%s: frame count = %d, want %d", name, res.FrameCount, i+1)
		}
		if res.Outcome != ingest.OutcomeOK {
			t.Fatalf("%s: unexpected outcome %s %v", name, res.Outcome, res.Warnings)
		}
	}

	list, err := f.store.Frames(ctx, anim.ID)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	got := list.Ordinals()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("expected [1 2 3], got %v", got)
	}
	first, _ := list.First()
	if first.Location != blobstore.Location(anim.ID, "frame-001.png") {
		t.Fatalf("first location = %q", first.Location)
	}
}

func TestIngestReportsCanonicalLocationAndURL(t *testing.T) {
	f := newFixture(t)
	anim := testsupport.NewAnimation(t, f.store, "urls")

	res, err := f.pipeline.Ingest(context.Background(), anim.ID, upload("Hero Shot-7.WEBP", testsupport.WebPBytes(1280, 720)))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	want := blobstore.Location(anim.ID, "frame-007.webp")
	if res.Entry.Ordinal != 7 || res.Entry.Location != want {
		t.Fatalf("unexpected entry %+v", res.Entry)
	}
	if res.FrameURL != "https://cdn.example.test/frames/"+want {
		t.Fatalf("frame url = %q", res.FrameURL)
	}
	if res.Width != 1280 || res.Height != 720 {
		t.Fatalf("dimensions = %dx%d", res.Width, res.Height)
	}
	if _, err := os.Stat(filepath.Join(f.cfg.Paths.FramesDir, filepath.FromSlash(want))); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
}

func TestIngestReplacementRemovesOldFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, f.store, "replace")

	if _, err := f.pipeline.Ingest(ctx, anim.ID, upload("a-1.png", testsupport.PNGBytes(t, 10, 10))); err != nil {
		t.Fatalf("Ingest png: %v", err)
	}
	res, err := f.pipeline.Ingest(ctx, anim.ID, upload("a-1.jpg", testsupport.JPEGBytes(t, 10, 10)))
	if err != nil {
		t.Fatalf("Ingest jpg: %v", err)
	}
	if !res.Replaced || res.FrameCount != 1 {
		t.Fatalf("expected replacement keeping one frame, got %+v", res)
	}
	oldPath := filepath.Join(f.cfg.Paths.FramesDir, filepath.FromSlash(blobstore.Location(anim.ID, "frame-001.png")))
	if _, err := os.Stat(oldPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("replaced file should be gone, stat err = %v", err)
	}
}

func TestIngestRejectionsLeaveStoreUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, f.store, "reject")

	cases := []struct {
		name string
		up   validation.Upload
		kind frames.Kind
	}{
		{"no dash", upload("anim.png", testsupport.PNGBytes(t, 2, 2)), frames.KindMalformedName},
		{"letters", upload("anim-x.png", testsupport.PNGBytes(t, 2, 2)), frames.KindNonNumericOrdinal},
		{"zero", upload("anim-0.png", testsupport.PNGBytes(t, 2, 2)), frames.KindOrdinalOutOfRange},
		{"gif", upload("anim-1.gif", []byte("GIF89a")), frames.KindUnsupportedExtension},
		{"mismatch", upload("anim-1.png", []byte("plain text")), frames.KindContentTypeMismatch},
		{"too large", validation.Upload{FileName: "anim-1.png", Size: 6 << 20, Content: bytes.NewReader(testsupport.PNGBytes(t, 2, 2))}, frames.KindFileTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.pipeline.Ingest(ctx, anim.ID, tc.up)
			if kind := frames.KindOf(err); kind != tc.kind {
				t.Fatalf("expected %s, got %v", tc.kind, err)
			}
			if !errors.Is(err, services.ErrInput) {
				t.Fatalf("expected input marker, got %v", err)
			}
		})
	}

	reloaded, err := f.store.GetAnimation(ctx, anim.ID)
	if err != nil {
		t.Fatalf("GetAnimation: %v", err)
	}
	if reloaded.FrameCount != 0 {
		t.Fatalf("rejections must not add frames, count = %d", reloaded.FrameCount)
	}
	entries, _ := os.ReadDir(f.cfg.Paths.FramesDir)
	if len(entries) != 0 {
		t.Fatalf("rejections must not write files, found %d entries", len(entries))
	}
}

func TestIngestUnknownAnimation(t *testing.T) {
	f := newFixture(t)
	_, err := f.pipeline.Ingest(context.Background(), 404, upload("a-1.png", testsupport.PNGBytes(t, 2, 2)))
	if frames.KindOf(err) != frames.KindNotFound || !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestIngestProbeFailureIsDegraded(t *testing.T) {
	f := newFixture(t)
	anim := testsupport.NewAnimation(t, f.store, "degraded")

	// Valid PNG signature with a corrupt header.
	data := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x00}, 32)...)
	res, err := f.pipeline.Ingest(context.Background(), anim.ID, upload("a-1.png", data))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Outcome != ingest.OutcomeDegraded || len(res.Warnings) != 1 {
		t.Fatalf("expected degraded outcome with one warning, got %+v", res)
	}
	if res.Width != 0 || res.Height != 0 || res.FrameCount != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestIngestDimensionsFollowLatestFrame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, f.store, "dims")

	if _, err := f.pipeline.Ingest(ctx, anim.ID, upload("a-1.png", testsupport.PNGBytes(t, 40, 30))); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	res, err := f.pipeline.Ingest(ctx, anim.ID, upload("a-2.png", testsupport.PNGBytes(t, 80, 45)))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Width != 80 || res.Height != 45 {
		t.Fatalf("dimensions should follow the newest frame, got %dx%d", res.Width, res.Height)
	}
}

func TestIngestUniformDimensionsRejectsMismatch(t *testing.T) {
	f := newFixture(t, testsupport.WithUniformDimensions(true))
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, f.store, "uniform")

	for _, name := range []string{"a-1.png", "a-2.png"} {
		if _, err := f.pipeline.Ingest(ctx, anim.ID, upload(name, testsupport.PNGBytes(t, 40, 30))); err != nil {
			t.Fatalf("Ingest %s: %v", name, err)
		}
	}
	_, err := f.pipeline.Ingest(ctx, anim.ID, upload("a-1.png", testsupport.PNGBytes(t, 80, 45)))
	if frames.KindOf(err) != frames.KindDimensionMismatch {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}

	// The rejected replacement must not clobber the stored frame.
	path := filepath.Join(f.cfg.Paths.FramesDir, filepath.FromSlash(blobstore.Location(anim.ID, "frame-001.png")))
	dims, err := imaging.ProbeFile(path)
	if err != nil {
		t.Fatalf("probe stored frame: %v", err)
	}
	if dims != (frames.Dimensions{Width: 40, Height: 30}) {
		t.Fatalf("stored frame changed to %s", dims)
	}
}

func TestIngestUniformDimensionsAllowsResizingSoleFrame(t *testing.T) {
	f := newFixture(t, testsupport.WithUniformDimensions(true))
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, f.store, "resize")

	if _, err := f.pipeline.Ingest(ctx, anim.ID, upload("a-1.png", testsupport.PNGBytes(t, 64, 36))); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	res, err := f.pipeline.Ingest(ctx, anim.ID, upload("a-1.png", testsupport.PNGBytes(t, 32, 32)))
	if err != nil {
		t.Fatalf("replacing the only frame: %v", err)
	}
	if res.Width != 32 || res.Height != 32 || res.FrameCount != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	// A second ordinal must now match the new size.
	_, err = f.pipeline.Ingest(ctx, anim.ID, upload("a-2.png", testsupport.PNGBytes(t, 64, 36)))
	if frames.KindOf(err) != frames.KindDimensionMismatch {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
}

// failingSeeker fails its nth Seek call.
type failingSeeker struct {
	*bytes.Reader
	calls  int
	failOn int
}

func (r *failingSeeker) Seek(offset int64, whence int) (int64, error) {
	r.calls++
	if r.calls == r.failOn {
		return 0, errors.New("seek not supported")
	}
	return r.Reader.Seek(offset, whence)
}

func TestIngestRewindFailureIsPersistenceError(t *testing.T) {
	f := newFixture(t)
	anim := testsupport.NewAnimation(t, f.store, "rewind")

	data := testsupport.PNGBytes(t, 16, 16)
	// Validation seeks twice while sniffing; the third seek rewinds after probing.
	content := &failingSeeker{Reader: bytes.NewReader(data), failOn: 3}
	_, err := f.pipeline.Ingest(context.Background(), anim.ID, validation.Upload{
		FileName: "a-1.png",
		Size:     int64(len(data)),
		Content:  content,
	})
	if frames.KindOf(err) != frames.KindPersistence {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("expected persistence marker, got %v", err)
	}

	list, err := f.store.Frames(context.Background(), anim.ID)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if list.Len() != 0 {
		t.Fatalf("no frame should be stored, got %d", list.Len())
	}
	if _, err := os.Stat(filepath.Join(f.cfg.Paths.FramesDir, filepath.FromSlash(blobstore.Location(anim.ID, "frame-001.png")))); !os.IsNotExist(err) {
		t.Fatalf("expected no file on disk, stat err = %v", err)
	}
}

func TestIngestWriteFailureIsPersistenceError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	rootFile := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(rootFile, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p := ingest.New(cfg, st, blobstore.New(rootFile, cfg.FramesBaseURL(), 0), logging.NewNop())
	anim := testsupport.NewAnimation(t, st, "broken")

	_, err := p.Ingest(context.Background(), anim.ID, upload("a-1.png", testsupport.PNGBytes(t, 2, 2)))
	if frames.KindOf(err) != frames.KindPersistence || !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	reloaded, _ := st.GetAnimation(context.Background(), anim.ID)
	if reloaded.FrameCount != 0 {
		t.Fatalf("store must be untouched, count = %d", reloaded.FrameCount)
	}
}

func TestDeleteRemovesOnlyTheRequestedOrdinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, f.store, "delete")

	for _, name := range []string{"a-1.png", "a-2.png", "a-3.png"} {
		if _, err := f.pipeline.Ingest(ctx, anim.ID, upload(name, testsupport.PNGBytes(t, 4, 4))); err != nil {
			t.Fatalf("Ingest %s: %v", name, err)
		}
	}

	res, err := f.pipeline.Delete(ctx, anim.ID, 2)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if res.FrameCount != 2 || res.Outcome != ingest.OutcomeOK {
		t.Fatalf("unexpected result %+v", res)
	}
	list, _ := f.store.Frames(ctx, anim.ID)
	if got := list.Ordinals(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected [1 3], got %v", got)
	}
	removed := filepath.Join(f.cfg.Paths.FramesDir, filepath.FromSlash(blobstore.Location(anim.ID, "frame-002.png")))
	if _, err := os.Stat(removed); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("frame file should be removed, stat err = %v", err)
	}

	_, err = f.pipeline.Delete(ctx, anim.ID, 2)
	if frames.KindOf(err) != frames.KindNotFound {
		t.Fatalf("expected not found for absent ordinal, got %v", err)
	}
	reloaded, _ := f.store.GetAnimation(ctx, anim.ID)
	if reloaded.FrameCount != 2 {
		t.Fatalf("failed delete must not change count, got %d", reloaded.FrameCount)
	}
}

func TestDeleteToleratesMissingFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, f.store, "missing-file")

	res, err := f.pipeline.Ingest(ctx, anim.ID, upload("a-1.png", testsupport.PNGBytes(t, 4, 4)))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if err := os.Remove(filepath.Join(f.cfg.Paths.FramesDir, filepath.FromSlash(res.Entry.Location))); err != nil {
		t.Fatalf("remove: %v", err)
	}
	del, err := f.pipeline.Delete(ctx, anim.ID, 1)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if del.Outcome != ingest.OutcomeOK || del.FrameCount != 0 {
		t.Fatalf("unexpected result %+v", del)
	}
}

func TestDeleteAnimationRemovesDirectory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, f.store, "gone")

	if _, err := f.pipeline.Ingest(ctx, anim.ID, upload("a-1.png", testsupport.PNGBytes(t, 4, 4))); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	res, err := f.pipeline.DeleteAnimation(ctx, anim.ID)
	if err != nil {
		t.Fatalf("DeleteAnimation: %v", err)
	}
	if res.FramesRemoved != 1 {
		t.Fatalf("frames removed = %d", res.FramesRemoved)
	}
	if _, err := os.Stat(f.blobs.Dir(anim.ID)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("directory should be removed, stat err = %v", err)
	}
	if _, err := f.pipeline.DeleteAnimation(ctx, anim.ID); frames.KindOf(err) != frames.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConcurrentIngestKeepsCountConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, f.store, "concurrent")

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 1; i <= n; i++ {
		data := testsupport.PNGBytes(t, 4, 4)
		name := "a-" + string(rune('0'+i)) + ".png"
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.pipeline.Ingest(ctx, anim.ID, upload(name, data)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Ingest: %v", err)
	}

	reloaded, _ := f.store.GetAnimation(ctx, anim.ID)
	list, _ := f.store.Frames(ctx, anim.ID)
	if reloaded.FrameCount != n || list.Len() != n {
		t.Fatalf("frame count %d, list %d, want %d", reloaded.FrameCount, list.Len(), n)
	}
}
