package testsupport

import (
	"context"
	"testing"

	"scrollreel/internal/config"
	"scrollreel/internal/frames"
	"scrollreel/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewAnimation creates an animation with default settings.
func NewAnimation(t testing.TB, st *store.Store, title string) *store.Animation {
	t.Helper()

	anim, err := st.CreateAnimation(context.Background(), title, frames.DefaultSettings())
	if err != nil {
		t.Fatalf("store.CreateAnimation: %v", err)
	}
	return anim
}
