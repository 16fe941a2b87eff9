package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"scrollreel/internal/frames"
	"scrollreel/internal/services"
	"scrollreel/internal/store"
	"scrollreel/internal/testsupport"
)

func record(ordinal int, location string, w, h int) store.FrameRecord {
	return store.FrameRecord{
		Ordinal:    ordinal,
		Location:   location,
		SourceName: filepath.Base(location),
		Dimensions: frames.Dimensions{Width: w, Height: h},
		SizeBytes:  1024,
	}
}

func TestCreateAndGetAnimation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	anim, err := st.CreateAnimation(ctx, "Product spin", frames.Settings{Easing: frames.EasingEaseInOut, LoopCount: 3})
	if err != nil {
		t.Fatalf("CreateAnimation: %v", err)
	}
	if anim.ID == 0 || anim.Title != "Product spin" {
		t.Fatalf("unexpected animation %+v", anim)
	}
	if anim.FrameCount != 0 || anim.Dimensions.Known() {
		t.Fatalf("new animation should be empty, got %+v", anim)
	}
	if anim.Settings.Easing != frames.EasingEaseInOut || anim.Settings.LoopCount != 3 {
		t.Fatalf("settings not persisted: %+v", anim.Settings)
	}
	if anim.CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}

	missing, err := st.GetAnimation(ctx, anim.ID+100)
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing animation, got %v, %v", missing, err)
	}
}

func TestCreateAnimationNormalizesSettings(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	anim, err := st.CreateAnimation(context.Background(), "", frames.Settings{Easing: "bounce", LoopCount: 42})
	if err != nil {
		t.Fatalf("CreateAnimation: %v", err)
	}
	if anim.Settings != frames.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", anim.Settings)
	}
	if anim.DisplayTitle() != "(untitled)" {
		t.Fatalf("unexpected display title %q", anim.DisplayTitle())
	}
}

func TestPutFrameKeepsOrdinalOrderAndCount(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, st, "order")

	for _, ord := range []int{2, 1, 3} {
		loc := frames.CanonicalName(ord, "webp")
		change, err := st.PutFrame(ctx, anim.ID, record(ord, "1/"+loc, 640, 360))
		if err != nil {
			t.Fatalf("PutFrame %d: %v", ord, err)
		}
		if change.Previous != nil {
			t.Fatalf("ordinal %d should be new, previous=%+v", ord, change.Previous)
		}
	}

	list, err := st.Frames(ctx, anim.ID)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	got := list.Ordinals()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("expected [1 2 3], got %v", got)
	}

	reloaded, err := st.GetAnimation(ctx, anim.ID)
	if err != nil {
		t.Fatalf("GetAnimation: %v", err)
	}
	if reloaded.FrameCount != 3 {
		t.Fatalf("frame count = %d, want 3", reloaded.FrameCount)
	}
	if reloaded.Dimensions != (frames.Dimensions{Width: 640, Height: 360}) {
		t.Fatalf("dimensions = %+v", reloaded.Dimensions)
	}
}

func TestPutFrameReplacesExistingOrdinal(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, st, "replace")

	if _, err := st.PutFrame(ctx, anim.ID, record(1, "1/frame-001.png", 100, 100)); err != nil {
		t.Fatalf("PutFrame: %v", err)
	}
	change, err := st.PutFrame(ctx, anim.ID, record(1, "1/frame-001.webp", 200, 150))
	if err != nil {
		t.Fatalf("PutFrame replace: %v", err)
	}
	if change.Previous == nil || change.Previous.Location != "1/frame-001.png" {
		t.Fatalf("expected previous png entry, got %+v", change.Previous)
	}
	if change.FrameCount != 1 {
		t.Fatalf("replacement must not grow the count, got %d", change.FrameCount)
	}
	if change.Dimensions != (frames.Dimensions{Width: 200, Height: 150}) {
		t.Fatalf("dimensions should follow the latest frame, got %+v", change.Dimensions)
	}

	entry, err := st.Frame(ctx, anim.ID, 1)
	if err != nil || entry == nil {
		t.Fatalf("Frame: %v, %v", entry, err)
	}
	if entry.Location != "1/frame-001.webp" {
		t.Fatalf("location = %q", entry.Location)
	}
}

func TestPutFrameUnknownAnimation(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	_, err := st.PutFrame(context.Background(), 999, record(1, "999/frame-001.png", 1, 1))
	if !errors.Is(err, store.ErrAnimationNotFound) || !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected animation not found, got %v", err)
	}
}

func TestRemoveFrameLeavesGapsAndDimensions(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, st, "remove")

	for ord := 1; ord <= 3; ord++ {
		if _, err := st.PutFrame(ctx, anim.ID, record(ord, "1/"+frames.CanonicalName(ord, "png"), 320, 240)); err != nil {
			t.Fatalf("PutFrame: %v", err)
		}
	}

	change, err := st.RemoveFrame(ctx, anim.ID, 2)
	if err != nil {
		t.Fatalf("RemoveFrame: %v", err)
	}
	if change.FrameCount != 2 {
		t.Fatalf("frame count = %d, want 2", change.FrameCount)
	}
	if change.Previous == nil || change.Previous.Location != "1/frame-002.png" {
		t.Fatalf("unexpected removed entry %+v", change.Previous)
	}
	if change.Dimensions != (frames.Dimensions{Width: 320, Height: 240}) {
		t.Fatalf("dimensions should be unchanged, got %+v", change.Dimensions)
	}

	list, err := st.Frames(ctx, anim.ID)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if got := list.Ordinals(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected [1 3], got %v", got)
	}

	if _, err := st.RemoveFrame(ctx, anim.ID, 2); !errors.Is(err, store.ErrFrameNotFound) {
		t.Fatalf("expected frame not found on second removal, got %v", err)
	}
	reloaded, _ := st.GetAnimation(ctx, anim.ID)
	if reloaded.FrameCount != 2 {
		t.Fatalf("failed removal must not change count, got %d", reloaded.FrameCount)
	}
}

func TestUpdateSettingsRejectsInvalidFieldsIndependently(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, st, "settings")

	easing := "ease-out"
	loops := 11
	result, err := st.UpdateSettings(ctx, anim.ID, store.SettingsUpdate{Easing: &easing, LoopCount: &loops})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if len(result.Rejected) != 1 || result.Rejected[0] != "loopCount" {
		t.Fatalf("expected loopCount rejection, got %v", result.Rejected)
	}
	if result.Animation.Settings.Easing != frames.EasingEaseOut {
		t.Fatalf("valid easing should apply, got %q", result.Animation.Settings.Easing)
	}
	if result.Animation.Settings.LoopCount != frames.DefaultLoopCount {
		t.Fatalf("invalid loop count should leave value unchanged, got %d", result.Animation.Settings.LoopCount)
	}

	bad := "bounce"
	loops = 10
	result, err = st.UpdateSettings(ctx, anim.ID, store.SettingsUpdate{Easing: &bad, LoopCount: &loops})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if len(result.Rejected) != 1 || result.Rejected[0] != "easing" {
		t.Fatalf("expected easing rejection, got %v", result.Rejected)
	}
	if result.Animation.Settings.Easing != frames.EasingEaseOut || result.Animation.Settings.LoopCount != 10 {
		t.Fatalf("unexpected settings %+v", result.Animation.Settings)
	}

	if _, err := st.UpdateSettings(ctx, anim.ID+50, store.SettingsUpdate{}); !errors.Is(err, store.ErrAnimationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteAnimationReturnsLocations(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, st, "doomed")

	for ord := 1; ord <= 2; ord++ {
		if _, err := st.PutFrame(ctx, anim.ID, record(ord, "1/"+frames.CanonicalName(ord, "jpg"), 10, 10)); err != nil {
			t.Fatalf("PutFrame: %v", err)
		}
	}
	locs, err := st.DeleteAnimation(ctx, anim.ID)
	if err != nil {
		t.Fatalf("DeleteAnimation: %v", err)
	}
	if len(locs) != 2 || locs[0] != "1/frame-001.jpg" {
		t.Fatalf("unexpected locations %v", locs)
	}
	if _, err := st.Frames(ctx, anim.ID); !errors.Is(err, store.ErrAnimationNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := st.DeleteAnimation(ctx, anim.ID); !errors.Is(err, store.ErrAnimationNotFound) {
		t.Fatalf("expected not found on repeat delete, got %v", err)
	}
}

func TestListAndStats(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	first := testsupport.NewAnimation(t, st, "first")
	testsupport.NewAnimation(t, st, "second")
	if _, err := st.PutFrame(ctx, first.ID, record(1, "1/frame-001.png", 1, 1)); err != nil {
		t.Fatalf("PutFrame: %v", err)
	}

	list, err := st.ListAnimations(ctx)
	if err != nil {
		t.Fatalf("ListAnimations: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID {
		t.Fatalf("most recently updated animation should be first, got %+v", list)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Animations != 2 || stats.Frames != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestCheckHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	anim := testsupport.NewAnimation(t, st, "healthy")
	if _, err := st.PutFrame(ctx, anim.ID, record(1, "1/frame-001.png", 1, 1)); err != nil {
		t.Fatalf("PutFrame: %v", err)
	}

	health, err := st.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.IntegrityCheck {
		t.Fatalf("unexpected health %+v", health)
	}
	if health.SchemaVersion != 1 || health.Animations != 1 || health.Frames != 1 {
		t.Fatalf("unexpected counts %+v", health)
	}
	if len(health.DriftedCounts) != 0 {
		t.Fatalf("expected no drift, got %v", health.DriftedCounts)
	}
	if health.DBPath != cfg.DatabasePath() {
		t.Fatalf("db path = %q", health.DBPath)
	}
}

func TestReopenPreservesData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	anim, err := st.CreateAnimation(context.Background(), "persisted", frames.DefaultSettings())
	if err != nil {
		t.Fatalf("CreateAnimation: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	got, err := reopened.GetAnimation(context.Background(), anim.ID)
	if err != nil || got == nil || got.Title != "persisted" {
		t.Fatalf("reopen lost data: %+v, %v", got, err)
	}
}
